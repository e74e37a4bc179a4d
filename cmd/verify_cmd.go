package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/plan"
	"github.com/partplan/partplan/internal/state"
	"github.com/partplan/partplan/internal/verify"
)

var (
	verifyPlanPath string
	verifyTables   []string
	reportOutput   string
)

var premigrateCmd = &cobra.Command{
	Use:   "premigrate",
	Short: "Run pre-migration checks against the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerifySuite("pre_migration", state.PhasePreMigration, state.PhaseMigration,
			func(ctx context.Context, v *verify.Validator) []verify.CheckResult {
				return v.RunPreMigration(ctx)
			})
	},
}

var postmigrateCmd = &cobra.Command{
	Use:   "postmigrate",
	Short: "Verify structure after the migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerifySuite("post_migration", state.PhasePostMigration, state.PhaseComparison,
			func(ctx context.Context, v *verify.Validator) []verify.CheckResult {
				return v.RunPostMigration(ctx)
			})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare data between old and new tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerifySuite("data_comparison", state.PhaseComparison, state.PhaseComplete,
			func(ctx context.Context, v *verify.Validator) []verify.CheckResult {
				return v.RunDataComparison(ctx)
			})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce the full verification report",
	Long: `Run all three verification suites (pre-migration, post-migration,
data comparison) for every enabled table and write a combined report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		doc, _, err := loadPlanDoc(cfg, verifyPlanPath)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		outDir := reportOutput
		if outDir == "" {
			outDir = filepath.Join(cfg.Plan.OutputDirectory, "reports")
		}

		failed := 0
		for i := range doc.Tables {
			tp := &doc.Tables[i]
			if !selectedForVerify(tp) {
				continue
			}

			v := verify.NewValidator(sess, doc.Environment, tp, "", "")
			v.RunPreMigration(ctx)
			v.RunPostMigration(ctx)
			v.RunDataComparison(ctx)

			fmt.Print(v.GenerateReport())
			fmt.Println()

			report := v.BuildReport()
			jsonPath := filepath.Join(outDir, fmt.Sprintf("%s_verification.json", tp.TableName))
			if err := report.WriteJSON(jsonPath); err != nil {
				return fmt.Errorf("writing report for %s: %w", tp.TableName, err)
			}
			fmt.Printf("Report written to %s\n\n", jsonPath)

			failed += v.Counters().Failed
		}

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		st.ReportPath = outDir
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

// runVerifySuite executes one suite for every enabled table and advances
// the run state when nothing failed.
func runVerifySuite(suiteName string, phase, next state.Phase,
	run func(context.Context, *verify.Validator) []verify.CheckResult) error {

	ctx := context.Background()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	doc, _, err := loadPlanDoc(cfg, verifyPlanPath)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	var passed, warned, failed int
	for i := range doc.Tables {
		tp := &doc.Tables[i]
		if !selectedForVerify(tp) {
			continue
		}

		fmt.Printf("%s: %s\n", suiteName, tp.QualifiedName())
		v := verify.NewValidator(sess, doc.Environment, tp, "", "")
		for _, r := range run(ctx, v) {
			fmt.Printf("  [%-4s] %-28s %s\n", r.Status, r.CheckName, r.Message)
		}
		c := v.Counters()
		passed += c.Passed
		warned += c.Warned
		failed += c.Failed
	}

	fmt.Printf("\n%d passed, %d warnings, %d failed\n", passed, warned, failed)

	st, err := state.Load("")
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if failed > 0 {
		st.FailPhase(phase)
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		return fmt.Errorf("%d check(s) failed", failed)
	}
	st.CompletePhase(phase, next)
	return st.Save("")
}

// selectedForVerify applies the --table filter on top of the enabled flag.
func selectedForVerify(tp *plan.TableMigrationPlan) bool {
	if !tp.Enabled {
		return false
	}
	if len(verifyTables) == 0 {
		return true
	}
	for _, name := range verifyTables {
		if name == tp.TableName {
			return true
		}
	}
	return false
}

func init() {
	for _, c := range []*cobra.Command{premigrateCmd, postmigrateCmd, compareCmd, reportCmd} {
		c.Flags().StringVarP(&verifyPlanPath, "plan", "p", "", "plan JSON path (default: configured output)")
		c.Flags().StringSliceVar(&verifyTables, "table", nil, "restrict to the named table(s)")
		rootCmd.AddCommand(c)
	}
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output directory for reports")
}
