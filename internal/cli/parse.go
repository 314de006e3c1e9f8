package cli

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"
)

var parseOutDir string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract structured fields from a resume and print them as JSON",
	Long: `Parse reads the document, runs the field extractor and prints the record
with file_name and a generated file_id. With --out the JSON is also written
to <out>/<file_id>.json.

Examples:
  resumecli parse resume.pdf
  resumecli parse resume.docx --out parsed_jsons
`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOutDir, "out", "o", "", "directory to write the parsed JSON into")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fieldExtractor, err := buildExtractor(cfg)
	if err != nil {
		return err
	}
	text, err := readDocument(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate file id: %w", err)
	}
	record := &types.ParsedResume{
		BasicFields: fieldExtractor.ExtractBasicFields(text),
		FileName:    filepath.Base(args[0]),
		FileID:      id.String(),
	}

	data, err := storage.MarshalParsedJSON(record)
	if err != nil {
		return err
	}
	if parseOutDir != "" {
		files, err := storage.NewFileStore(filepath.Join(parseOutDir, "uploads"), parseOutDir)
		if err != nil {
			return err
		}
		path, _, err := files.SaveParsedJSON(record.FileID, record)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// buildExtractor 按配置加载关键词表
func buildExtractor(cfg *config.Config) (*extractor.Extractor, error) {
	if cfg.Extractor.VocabularyFile == "" {
		return extractor.Default(), nil
	}
	v, err := extractor.LoadVocabulary(cfg.Extractor.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return extractor.New(v), nil
}
