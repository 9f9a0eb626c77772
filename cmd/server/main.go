package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/yamdb/internal/config"
	"github.com/user/yamdb/internal/handler"
	"github.com/user/yamdb/internal/mail"
	"github.com/user/yamdb/internal/middleware"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/repository/memory"
	"github.com/user/yamdb/internal/router"
	"github.com/user/yamdb/internal/service"
	"go.uber.org/zap"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	repos, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer closeStore()

	// 邮件发送
	mailer, closeMailer := newMailer(ctx, cfg, logger)
	defer closeMailer()

	// 限流使用的 Redis
	rdb := middleware.NewRedisClient(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	services := service.New(repos, cfg, mailer, logger)
	h := handler.NewHandler(services, cfg, logger)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 中间件
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(middleware.Authenticate(services.Tokens, services.Identities))

	// 注册路由
	router.RegisterRoutes(r, h, middleware.RateLimit(cfg.RateLimit, rdb, logger))

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("服务器启动", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	<-ctx.Done()
	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器强制关闭", zap.Error(err))
	}

	logger.Info("服务器已退出")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	return logger
}

// openStore 按 STORAGE_DRIVER 选择存储，memory 仅用于本地调试
func openStore(cfg *config.Config) (*repository.Repositories, func(), error) {
	if cfg.StorageDriver == "memory" {
		return memory.NewRepositories(), func() {}, nil
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepositories(db), func() { _ = sqlDB.Close() }, nil
}

// newMailer 按 MAIL_BACKEND 选择邮件发送方式
// queue 模式下同一进程启动消费者，实际投递走 SMTP（未配置时写日志）
func newMailer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (mail.Sender, func()) {
	var direct mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		direct = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}

	switch cfg.MailBackend {
	case "smtp":
		return direct, func() {}
	case "queue":
		sender := mail.NewQueueSender(cfg.RabbitMQURL)
		consumer := mail.NewConsumer(cfg.RabbitMQURL, direct, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mail consumer stopped", zap.Error(err))
			}
		}()
		return sender, func() { _ = sender.Close() }
	default:
		return mail.NewLogSender(logger), func() {}
	}
}
