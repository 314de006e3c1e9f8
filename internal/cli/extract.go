package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/parser"
	"resume-parser-go/pkg/utils"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the plain text read from a PDF or DOCX file",
	Long: `Extract reads a document with the configured reader backend and prints
its plain text. Unreadable or unsupported files print nothing.

Examples:
  resumecli extract resume.pdf
  resumecli extract --config configs/config.yaml resume.docx
`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readDocument(cmd, cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// readDocument 校验扩展名后读取文档文本
func readDocument(cmd *cobra.Command, cfg *config.Config, path string) (string, error) {
	ext := strings.ToLower(utils.SplitExt(path))
	if !cfg.IsAllowedExtension(ext) {
		return "", fmt.Errorf("unsupported file type %q: only PDF and DOCX files are supported", ext)
	}
	reader, err := parser.BuildDocumentReader(cmd.Context(), cfg.Reader)
	if err != nil {
		return "", err
	}
	return reader.ReadFile(cmd.Context(), path), nil
}
