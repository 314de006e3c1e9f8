package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/constants"
)

var (
	// Version 构建时通过 ldflags 注入
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of resumecli",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "resumecli %s\n", Version)
		fmt.Fprintf(out, "Parser version: %s\n", constants.ParserVersion)
		fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
