package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration run state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}

		fmt.Printf("Run:     %s\n", st.RunID)
		fmt.Printf("Phase:   %s\n\n", st.CurrentPhase)

		phases := []state.Phase{
			state.PhaseDiscovery,
			state.PhaseReview,
			state.PhasePlanCheck,
			state.PhaseScripts,
			state.PhasePreMigration,
			state.PhaseMigration,
			state.PhasePostMigration,
			state.PhaseComparison,
		}

		labels := map[state.Phase]string{
			state.PhaseDiscovery:     "1. Discovery",
			state.PhaseReview:        "2. Plan Review",
			state.PhasePlanCheck:     "3. Plan Check",
			state.PhaseScripts:       "4. Scripts",
			state.PhasePreMigration:  "5. Pre-Migration",
			state.PhaseMigration:     "6. Migration",
			state.PhasePostMigration: "7. Post-Migration",
			state.PhaseComparison:    "8. Data Comparison",
		}

		for _, phase := range phases {
			status := "  "
			if st.IsPhaseComplete(phase) {
				status = "OK"
			} else if ps, ok := st.Phases[phase]; ok && ps.Status == "failed" {
				status = "!!"
			} else if st.CurrentPhase == phase {
				status = ">>"
			}
			fmt.Printf("  [%s] %s\n", status, labels[phase])
		}

		fmt.Println()
		if st.SourceSchema != "" {
			fmt.Printf("Schema:  %s (%s)\n", st.SourceSchema, st.SourceService)
		}
		if st.PlanPath != "" {
			fmt.Printf("Plan:    %s\n", st.PlanPath)
		}
		if st.ScriptsDir != "" {
			fmt.Printf("Scripts: %s\n", st.ScriptsDir)
		}
		if st.ReportPath != "" {
			fmt.Printf("Reports: %s\n", st.ReportPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
