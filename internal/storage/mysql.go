package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/storage/models"
	"resume-parser-go/internal/tracing"
)

// ErrRecordNotFound 解析记录不存在
var ErrRecordNotFound = gorm.ErrRecordNotFound

var mysqlTracer = otel.Tracer("resume-parser/storage/mysql")

type spanContextKey struct{}

// GormTracingPlugin 是一个GORM插件，为每条数据库操作创建span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer: mysqlTracer,
		dbName: dbName,
	}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
		name      string
	}{
		{"CREATE", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "create"},
		{"SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "query"},
		{"UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{"DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{"ROW", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, "row"},
		{"RAW", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}
	for _, h := range hooks {
		if err := h.before("otel:before_"+h.name, p.before(h.operation)); err != nil {
			return err
		}
		if err := h.after("otel:after_"+h.name, p.after()); err != nil {
			return err
		}
	}
	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		attrs := []attribute.KeyValue{
			semconv.DBSystemMySQL,
			attribute.String("db.name", p.dbName),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", tableName),
		}
		if sql := db.Statement.SQL.String(); sql != "" {
			attrs = append(attrs, attribute.String("db.statement", tracing.SafeSQL(sql)))
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		db.Statement.Context = context.WithValue(newCtx, spanContextKey{}, span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 查不到记录属于正常业务分支
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// gormLogLevel 将配置中的 1-4 映射为GORM日志级别
func gormLogLevel(level int) logger.LogLevel {
	switch level {
	case 1:
		return logger.Silent
	case 2:
		return logger.Error
	case 3:
		return logger.Warn
	case 4:
		return logger.Info
	default:
		return logger.Error
	}
}

// buildDSN 构建带超时参数的DSN
func buildDSN(cfg *config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)
}

// NewMySQL 创建MySQL客户端并迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(buildDSN(cfg)), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	return newMySQLFromDB(db, cfg)
}

// newMySQLFromDB 在已打开的连接上完成连接池、追踪插件与迁移设置
func newMySQLFromDB(db *gorm.DB, cfg *config.MySQLConfig) (*MySQL, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg}
	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构，迁移期间关闭SQL日志
func (m *MySQL) autoMigrateSchema() error {
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)
	err := m.db.Session(&gorm.Session{Logger: silentLogger}).AutoMigrate(
		&models.ParsedResume{},
		&models.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// SaveParsedResumeWithOutbox 在同一事务中写入解析记录与outbox消息。
// 同一 file_id 重复写入时更新解析字段，保证幂等
func (m *MySQL) SaveParsedResumeWithOutbox(ctx context.Context, record *models.ParsedResume, msg *models.OutboxMessage) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveParsedResumeWithOutbox",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.name", m.cfg.Database),
		attribute.String("resume.file_id", record.FileID),
		attribute.Bool("outbox.enabled", msg != nil),
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "file_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"file_name", "file_md5", "object_key", "name", "email", "phone",
				"skills_json", "education", "experience", "projects",
				"text_length", "processing_status", "parser_version",
			}),
		}).Create(record).Error
		if err != nil {
			return fmt.Errorf("保存解析记录失败: %w", err)
		}
		if msg == nil {
			return nil
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("写入outbox消息失败: %w", err)
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetParsedResume 按 file_id 查询解析记录
func (m *MySQL) GetParsedResume(ctx context.Context, fileID string) (*models.ParsedResume, error) {
	var record models.ParsedResume
	if err := m.db.WithContext(ctx).Where("file_id = ?", fileID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindParsedResumeByMD5 按文件MD5查询最近一条解析记录
func (m *MySQL) FindParsedResumeByMD5(ctx context.Context, md5Hex string) (*models.ParsedResume, error) {
	var record models.ParsedResume
	err := m.db.WithContext(ctx).
		Where("file_md5 = ?", md5Hex).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListParsedResumes 按 file_id 升序分页，返回 afterFileID 之后的至多 limit 条记录
func (m *MySQL) ListParsedResumes(ctx context.Context, afterFileID string, limit int) ([]models.ParsedResume, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []models.ParsedResume
	query := m.db.WithContext(ctx).Order("file_id ASC").Limit(limit)
	if afterFileID != "" {
		query = query.Where("file_id > ?", afterFileID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("分页查询解析记录失败: %w", err)
	}
	return records, nil
}
