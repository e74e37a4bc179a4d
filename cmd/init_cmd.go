package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partplan/partplan/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walk through prompts to create a partplan configuration file at ~/.partplan/partplan.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("Partplan Configuration Setup")
		fmt.Println("============================")
		fmt.Println()

		host := prompt(reader, "Host", "localhost")
		portStr := prompt(reader, "Port", "1521")
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid port: %s", portStr)
		}
		service := prompt(reader, "Service name", "")
		username := prompt(reader, "Username", "")
		password := prompt(reader, "Password (or ${ENV:VAR}, ${VAULT:path#key}, ${AWS_SM:name})", "")
		schema := prompt(reader, "Schema (leave empty to use username)", "")
		environment := prompt(reader, "Environment", "global")

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Database: config.DatabaseConfig{
				Host:     host,
				Port:     port,
				Service:  service,
				Schema:   schema,
				Username: username,
				Password: password,
			},
			Plan: config.PlanConfig{
				Environment: environment,
			},
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("\nConfig written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  partplan discover   - Analyze the schema and generate a plan")
		fmt.Println("  partplan select     - Review the plan interactively")
		fmt.Println("  partplan check      - Validate the plan document")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
