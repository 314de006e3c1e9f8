package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd 命令行入口
var rootCmd = &cobra.Command{
	Use:   "resumecli",
	Short: "Heuristic resume field extractor",
	Long: `resumecli reads PDF and DOCX resumes and extracts name, email, phone,
skills and the education / experience / projects sections.

The same pipeline backs the HTTP service; this tool runs it locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		_, err := logger.InitWithWriter(logger.Config{Level: level, Format: "pretty", TimeFormat: "15:04:05"}, cmd.ErrOrStderr())
		return err
	},
}

// ExecuteContext 执行根命令，由 main.main 调用
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml, configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig 读取 --config 指定的配置，未指定时查找默认位置
func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}
