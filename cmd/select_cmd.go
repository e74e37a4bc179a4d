package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/state"
	"github.com/partplan/partplan/internal/wizard"
)

var selectPlanPath string

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Review the plan and toggle tables interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(context.Background())
		if err != nil {
			return err
		}

		doc, path, err := loadPlanDoc(cfg, selectPlanPath)
		if err != nil {
			return err
		}

		changed, err := wizard.RunReview(doc)
		if err != nil {
			return err
		}
		if changed == 0 {
			fmt.Println("No changes.")
			return nil
		}

		doc.Metadata.TablesSelectedForMigration = doc.EnabledCount()
		if err := doc.WriteJSON(path); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}
		fmt.Printf("%d table(s) changed; %d of %d enabled. Plan saved to %s\n",
			changed, doc.EnabledCount(), len(doc.Tables), path)

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		st.PlanPath = path
		st.CompletePhase(state.PhaseReview, state.PhasePlanCheck)
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		return nil
	},
}

func init() {
	selectCmd.Flags().StringVarP(&selectPlanPath, "plan", "p", "", "plan JSON path (default: configured output)")
	rootCmd.AddCommand(selectCmd)
}
