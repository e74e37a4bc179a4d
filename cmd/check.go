package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/catalog"
	"github.com/partplan/partplan/internal/plancheck"
	"github.com/partplan/partplan/internal/state"
)

var (
	checkPlanPath string
	checkDB       bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the migration plan document",
	Long: `Run the plan document through structural, logical, and best-practice
validation. With --db, also verify tables and columns against the live
data dictionary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		doc, path, err := loadPlanDoc(cfg, checkPlanPath)
		if err != nil {
			return err
		}

		var sess catalog.Session
		if checkDB {
			oracleSess, err := openSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer oracleSess.Close()
			sess = oracleSess
		}

		fmt.Printf("Validating %s (%d tables)...\n\n", path, len(doc.Tables))
		v := plancheck.NewValidator()
		result := v.Validate(ctx, doc, checkDB, sess)

		for _, e := range result.Errors {
			fmt.Printf("  ERROR  %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("  WARN   %s\n", w)
		}

		fmt.Println()
		if !result.DiscoveryGenerated {
			fmt.Println("Note: plan was edited or hand-authored after discovery.")
		}
		if !result.Valid {
			return fmt.Errorf("plan invalid: %d error(s), %d warning(s)",
				len(result.Errors), len(result.Warnings))
		}
		fmt.Printf("Plan valid: %d warning(s)\n", len(result.Warnings))

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		st.CompletePhase(state.PhasePlanCheck, state.PhaseScripts)
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkPlanPath, "plan", "p", "", "plan JSON path (default: configured output)")
	checkCmd.Flags().BoolVar(&checkDB, "db", false, "verify tables and columns against the live database")
	rootCmd.AddCommand(checkCmd)
}
