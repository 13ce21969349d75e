package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_backend_service/internal/api/handlers"
	"chat_backend_service/internal/api/router"
	"chat_backend_service/internal/buffered"
	chatapp "chat_backend_service/internal/chat/app"
	chatrepo "chat_backend_service/internal/chat/repository"
	memberapp "chat_backend_service/internal/member/app"
	memberrepo "chat_backend_service/internal/member/repository"
	"chat_backend_service/pkg/config"
	"chat_backend_service/pkg/database"
	"chat_backend_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.ChatBackend](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	// 建立 PostgreSQL 連線
	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	// 初始化 Repository
	messageRepo := chatrepo.NewMessageRepository(pool)
	chatRepo := chatrepo.NewChatRepository(pool)
	aclRepo := chatrepo.NewACLRepository(pool)
	memberRepo := memberrepo.NewMemberRepository(pool)

	// 初始化 UseCases
	messages, err := chatapp.NewMessageManager(ctx, messageRepo)
	if err != nil {
		logger.Log.Fatal("init message manager", zap.Error(err))
	}
	members, err := memberapp.NewMemberManager(ctx, memberRepo, []byte(cfg.Token.Secret), cfg.Token.Issuer)
	if err != nil {
		logger.Log.Fatal("init member manager", zap.Error(err))
	}
	chats := chatapp.NewChatUseCase(chatRepo, aclRepo, messages)

	flushers := []buffered.Flusher{messages, members}
	stopFlush := startFlushLoop(ctx, cfg.FlushInterval, flushers)

	// 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(r, handlers.NewMemberHandler(members), handlers.NewChatHandler(chats), []byte(cfg.Token.Secret), cfg.Token.Issuer)

	go func() {
		if err := r.Listen(cfg.IP + ":" + cfg.Port); err != nil {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()
	logger.Log.Info(fmt.Sprintf("ChatService listening on : %s", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopFlush()
	if err := r.Shutdown(); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
	}
	flushAll(ctx, flushers)
	logger.Log.Sync()
}

// startFlushLoop 週期性將緩衝的寫入批次落庫
func startFlushLoop(ctx context.Context, interval time.Duration, flushers []buffered.Flusher) func() {
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				flushAll(ctx, flushers)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

func flushAll(ctx context.Context, flushers []buffered.Flusher) {
	for _, f := range flushers {
		if err := f.Flush(ctx); err != nil {
			logger.Log.Error("flush buffered writes", zap.Error(err))
		}
	}
}
