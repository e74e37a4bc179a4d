package plan

import "regexp"

// dateLiteralPattern matches the boundary expressions accepted for
// initial_partition_value: a date-conversion function applied to a literal
// value and a format mask, e.g. TO_DATE('2025-01-01', 'YYYY-MM-DD') or
// TO_TIMESTAMP('2025-01-01 00:00:00', 'YYYY-MM-DD HH24:MI:SS').
var dateLiteralPattern = regexp.MustCompile(`^[A-Z_]+\('[0-9/: -]+'\s*,\s*'[A-Za-z0-9/: .-]+'\)$`)

// ValidDateLiteral reports whether the expression matches the date-literal
// grammar required for partition boundary values.
func ValidDateLiteral(expr string) bool {
	return dateLiteralPattern.MatchString(expr)
}
