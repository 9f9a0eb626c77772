// createsuperuser 创建管理员账号并打印首次换取令牌用的确认码
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/user/yamdb/internal/config"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/repository"
	"github.com/user/yamdb/internal/service"
	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "管理员用户名")
	email := flag.String("email", "", "管理员邮箱")
	flag.Parse()

	if *username == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	repos := repository.NewRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	codes := service.NewCodeIssuer(repos.User, cfg.BcryptCost, cfg.CodeTTL, logger)
	user, code, err := codes.IssueAccount(ctx, service.SignupInput{Username: *username, Email: *email}, model.RoleAdmin, true)
	if err != nil {
		logger.Fatal("创建管理员失败", zap.Error(err))
	}

	fmt.Printf("Superuser %q created (id=%d).\n", user.Username, user.ID)
	fmt.Printf("Confirmation code: %s\n", code)
	if user.ConfirmationCodeExpiresAt != nil {
		fmt.Printf("Valid until %s. Exchange it at POST /v1/auth/token/.\n", user.ConfirmationCodeExpiresAt.Format(time.RFC3339))
	}
}
