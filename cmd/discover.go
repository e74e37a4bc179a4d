package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/discovery"
	"github.com/partplan/partplan/internal/state"
)

var (
	discoverSchema  string
	discoverInclude []string
	discoverExclude []string
	discoverOutput  string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Analyze the schema and generate a migration plan",
	Long: `Connect to the Oracle database, profile every table in the schema
(size, row counts, columns, LOBs, indexes, grants, current partitioning),
and write a migration plan with recommended interval/hash targets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		env, err := resolveEnvironment(cfg)
		if err != nil {
			return fmt.Errorf("resolving environment: %w", err)
		}

		fmt.Printf("Connecting to %s:%d/%s...\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Service)
		sess, err := openSession(ctx, cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		schema := discoverSchema
		if schema == "" {
			schema = cfg.SchemaName()
		}

		fmt.Printf("Discovering schema %s (environment %s)...\n", schema, env.Name)
		d := discovery.New(sess, discovery.Options{
			Schema:       schema,
			ServiceName:  cfg.Database.Service,
			Environment:  env,
			Include:      discoverInclude,
			Exclude:      discoverExclude,
			QueryTimeout: cfg.Database.QueryTimeout,
			Logger:       appLogger,
		})

		doc, summary, err := d.Run(ctx)
		if err != nil {
			return fmt.Errorf("discovering schema: %w", err)
		}

		fmt.Println(summary.String())
		for _, tp := range doc.Tables {
			if len(tp.DiscoveryWarnings) > 0 {
				fmt.Printf("  warning: %s: %s\n", tp.TableName, tp.DiscoveryWarnings[0])
			}
		}

		outputPath := discoverOutput
		if outputPath == "" {
			outputPath = defaultPlanPath(cfg)
		}
		if err := doc.WriteJSON(outputPath); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}
		fmt.Printf("\nPlan written to %s\n", outputPath)

		st, err := state.Load("")
		if err != nil {
			return fmt.Errorf("loading state: %w", err)
		}
		st.SourceSchema = schema
		st.SourceService = cfg.Database.Service
		st.PlanPath = outputPath
		st.CompletePhase(state.PhaseDiscovery, state.PhaseReview)
		if err := st.Save(""); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverSchema, "schema", "", "schema to analyze (default: configured schema)")
	discoverCmd.Flags().StringSliceVar(&discoverInclude, "include", nil, "table name globs to include")
	discoverCmd.Flags().StringSliceVar(&discoverExclude, "exclude", nil, "table name globs to exclude")
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "", "output path for the plan JSON")
	rootCmd.AddCommand(discoverCmd)
}
