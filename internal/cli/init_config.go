package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write a sample configuration file",
	Long: `Init-config writes a configuration with every section filled in for a
local development stack (MinIO, Redis, MySQL, RabbitMQ, Tika, OTLP collector).
Remove the sections you do not run; empty endpoints disable a component.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateSampleConfig(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sample config written to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}
