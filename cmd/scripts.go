package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/render"
	"github.com/partplan/partplan/internal/state"
)

var (
	scriptsPlanPath string
	scriptsOutput   string
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Render the migration DDL scripts",
	Long: `Render per-table SQL scripts (create new table, copy data, swap) for
every enabled table in the plan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(context.Background())
		if err != nil {
			return err
		}

		doc, _, err := loadPlanDoc(cfg, scriptsPlanPath)
		if err != nil {
			return err
		}

		outDir := scriptsOutput
		if outDir == "" {
			outDir = filepath.Join(cfg.Plan.OutputDirectory, "scripts")
		}

		r, err := render.NewTemplateRenderer()
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}

		env := doc.Environment
		written := 0
		for i := range doc.Tables {
			tp := &doc.Tables[i]
			if !tp.Enabled {
				continue
			}

			tableDir := filepath.Join(outDir, strings.ToLower(tp.TableName))
			if err := os.MkdirAll(tableDir, 0o755); err != nil {
				return fmt.Errorf("creating script directory: %w", err)
			}

			ctx := render.NewContext(tp, &env)
			for _, name := range r.Names() {
				sql, err := r.Render(name, ctx)
				if err != nil {
					return fmt.Errorf("rendering %s for %s: %w", name, tp.TableName, err)
				}
				outPath := filepath.Join(tableDir, name+".sql")
				if err := os.WriteFile(outPath, []byte(sql), 0o644); err != nil {
					return fmt.Errorf("writing script: %w", err)
				}
				written++
			}
		}

		fmt.Printf("%d script(s) written to %s\n", written, outDir)

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		st.ScriptsDir = outDir
		st.CompletePhase(state.PhaseScripts, state.PhasePreMigration)
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		return nil
	},
}

func init() {
	scriptsCmd.Flags().StringVarP(&scriptsPlanPath, "plan", "p", "", "plan JSON path (default: configured output)")
	scriptsCmd.Flags().StringVarP(&scriptsOutput, "output", "o", "", "output directory for scripts")
	rootCmd.AddCommand(scriptsCmd)
}
