package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/extractor"
	appCoreLogger "resume-parser-go/internal/logger"
	"resume-parser-go/internal/outbox"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}

	closer, err := appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		File:         cfg.Logger.File,
	})
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("初始化日志失败")
	}
	if closer != nil {
		defer closer.Close()
	}
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level != "debug" {
		glog.SetLevel(glog.LevelInfo)
	}
	log := appCoreLogger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, version)
	if err != nil {
		log.Warn().Err(err).Msg("初始化链路追踪失败, 继续运行")
	}

	vocabulary := extractor.DefaultVocabulary()
	if cfg.Extractor.VocabularyFile != "" {
		vocabulary, err = extractor.LoadVocabulary(cfg.Extractor.VocabularyFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Extractor.VocabularyFile).Msg("加载关键词表失败")
		}
	}
	fieldExtractor := extractor.New(vocabulary)

	reader, err := parser.BuildDocumentReader(ctx, cfg.Reader)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化文档读取器失败")
	}
	log.Info().Str("pdf_backend", cfg.Reader.PDFBackend).Msg("文档读取器初始化成功")

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	service, err := processor.NewResumeService(cfg, reader, fieldExtractor, storageManager.Files,
		processor.WithStorage(storageManager))
	if err != nil {
		log.Fatal().Err(err).Msg("初始化简历服务失败")
	}

	var relay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		relay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ, cfg.Outbox)
		relay.Start(ctx)
		log.Info().Msg("消息中继服务已启动")
	}

	h := newServer(cfg)
	router.RegisterRoutes(h, handler.NewResumeHandler(service), cfg.Server)
	log.Info().Str("address", cfg.Server.Address).Str("version", constants.ParserVersion).Msg("HTTP 服务器启动中")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("接收到终止信号，正在优雅退出...")
		if relay != nil {
			relay.Stop()
			log.Info().Msg("消息中继服务已停止")
		}

		timeout := config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := h.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if shutdownTracing != nil {
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("关闭链路追踪失败")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("服务异常退出")
		os.Exit(1)
	}
	log.Info().Msg("优雅退出完成")
}

// newServer 创建 Hertz 服务器，启用追踪时挂载 OpenTelemetry 中间件
func newServer(cfg *config.Config) *server.Hertz {
	opts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBody),
	}
	if !cfg.Tracing.Enabled {
		return server.New(opts...)
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(append(opts, tracer)...)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	return h
}
