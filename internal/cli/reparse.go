package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/ratelimit"
	"resume-parser-go/internal/storage"
)

var (
	reparseBatchSize   int
	reparseConcurrency int
	reparseQuiet       bool
	reparseRate        int
)

var reparseCmd = &cobra.Command{
	Use:   "reparse",
	Short: "Re-extract fields for every stored resume",
	Long: `Reparse walks the parsed_resumes table in file_id order, downloads each
original from MinIO and runs the current reader and vocabulary over it.
Rows are updated in place, the parsed JSON in MinIO is re-uploaded, an
existing local parsed_jsons/{id}.json is rewritten and the Redis cache
entry is dropped. No resume.parsed events are emitted.

Use it after changing the vocabulary file or the PDF backend. Requires
mysql and minio to be configured.

Examples:
  resumecli reparse --config configs/config.yaml
  resumecli reparse --batch-size 100 --concurrency 8
  resumecli reparse --rate-per-minute 120
`,
	Args: cobra.NoArgs,
	RunE: runReparse,
}

func init() {
	rootCmd.AddCommand(reparseCmd)
	reparseCmd.Flags().IntVar(&reparseBatchSize, "batch-size", 50, "rows fetched per page")
	reparseCmd.Flags().IntVar(&reparseConcurrency, "concurrency", 4, "documents processed in parallel")
	reparseCmd.Flags().IntVar(&reparseRate, "rate-per-minute", 0, "max originals downloaded per minute, 0 for unlimited")
	reparseCmd.Flags().BoolVarP(&reparseQuiet, "quiet", "q", false, "hide the progress spinner")
}

func runReparse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.MySQL.Host == "" || cfg.MinIO.Endpoint == "" {
		return errors.New("reparse requires mysql and minio to be configured")
	}

	ctx := cmd.Context()
	fieldExtractor, err := buildExtractor(cfg)
	if err != nil {
		return err
	}
	reader, err := parser.BuildDocumentReader(ctx, cfg.Reader)
	if err != nil {
		return err
	}

	db, err := storage.NewMySQL(&cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()
	objects, err := storage.NewMinIO(&cfg.MinIO, nil)
	if err != nil {
		return err
	}

	opts := []processor.ReparseOption{processor.WithReparseObjects(objects)}
	if cfg.Upload.SaveLocal {
		files, err := storage.NewFileStore(cfg.Upload.UploadDir, cfg.Upload.OutputDir)
		if err != nil {
			return err
		}
		opts = append(opts, processor.WithReparseFileStore(files))
	}
	if cfg.Redis.Address != "" {
		cache, err := storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, processor.WithReparseCache(cache))
	}

	if reparseRate > 0 {
		opts = append(opts, processor.WithReparseThrottle(ratelimit.NewTokenBucket(reparseRate, 0)))
	}

	reparser := processor.NewReparser(reader, fieldExtractor, objects, db, reparseBatchSize, reparseConcurrency, opts...)
	if !reparseQuiet {
		bar := newReparseBar(cmd)
		reparser.OnProcessed(func() { _ = bar.Add(1) })
		defer func() { _ = bar.Finish() }()
	}

	stats, err := reparser.Run(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d skipped=%d failed=%d\n",
		stats.Scanned, stats.Updated, stats.Skipped, stats.Failed)
	return err
}

// newReparseBar 总数未知，用 -1 显示为旋转指示
func newReparseBar(cmd *cobra.Command) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Reparsing resumes"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)
}
