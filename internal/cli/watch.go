package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print resume.parsed events from the configured queue",
	Long: `Watch consumes resume.parsed events published by the outbox relay and
prints one line per event until interrupted. rabbitmq.url and
rabbitmq.parsed_queue must be set in the config.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RabbitMQ.URL == "" || cfg.RabbitMQ.ParsedQueue == "" {
		return errors.New("rabbitmq.url and rabbitmq.parsed_queue are required")
	}

	mq, err := storage.NewRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer mq.Close()
	if err := mq.SetupResumeTopology(); err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if err := mq.StartConsumer(ctx, cfg.RabbitMQ.ParsedQueue, cfg.RabbitMQ.PrefetchCount, eventPrinter(out)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s, press Ctrl+C to stop\n", cfg.RabbitMQ.ParsedQueue)
	<-ctx.Done()
	return nil
}

// eventPrinter 打印事件摘要，无法解析的消息直接确认丢弃
func eventPrinter(out io.Writer) func(context.Context, []byte) bool {
	log := logger.Named("watch")
	return func(_ context.Context, body []byte) bool {
		line, err := formatEvent(body)
		if err != nil {
			log.Warn().Err(err).Int("size", len(body)).Msg("丢弃无法解析的事件")
			return true
		}
		fmt.Fprintln(out, line)
		return true
	}
}

func formatEvent(body []byte) (string, error) {
	var event types.ResumeParsedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return "", err
	}
	if event.FileID == "" {
		return "", errors.New("event has no file_id")
	}
	return fmt.Sprintf("%s  %s  %q  name=%q skills=%d text=%d",
		time.Unix(event.ParsedAt, 0).Format(time.RFC3339), event.FileID, event.FileName,
		event.Name, len(event.Skills), event.TextLength), nil
}
