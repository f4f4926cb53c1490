package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decodeit/internal/config"
	"github.com/decodeit/internal/db"
	"github.com/decodeit/internal/handler"
	"github.com/decodeit/internal/router"
	"github.com/decodeit/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	store := service.NewTieredProgressStore(service.NewGormProgressStore(db.DB))
	smtp := service.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
	}
	sender := service.NewSMTPSender(smtp)
	api := buildAPI(cfg, store, service.NewContactService(sender, smtp, cfg.ContactRecipient))

	engine := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.WithCORS(engine, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[HTTP] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return store.Run(gctx, cfg.ReconcileInterval)
	})

	g.Go(func() error {
		verifyMail(gctx, smtp, sender)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("[HTTP] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// 关闭前把暂存的进度写回主存储
		if err := store.Reconcile(shutdownCtx); err != nil {
			log.Printf("[PROGRESS] final reconcile: %v", err)
		}
		if n := store.PendingCount(); n > 0 {
			log.Printf("[PROGRESS] %d pending progress writes were not persisted", n)
		}
		return nil
	})

	return g.Wait()
}

func buildAPI(cfg config.AppConfig, store service.ProgressStore, contact *service.ContactService) *handler.API {
	tokens := service.NewTokenService(cfg.JWTSecret, service.DefaultTokenTTL)
	accounts := service.NewAccountService(db.DB, tokens)
	progress := service.NewProgressService(db.DB, store, nil)
	generator := service.NewAIDeedGenerator(service.AIClientConfig{
		BaseURL: cfg.AIBaseURL,
		TextURL: cfg.AITextURL,
		Model:   cfg.AIModel,
		APIKey:  cfg.AIAPIKey,
		Timeout: cfg.AITimeout,
	})

	return handler.NewAPI(handler.Services{
		Tokens:     tokens,
		Accounts:   accounts,
		Progress:   progress,
		Likes:      service.NewLikeService(db.DB),
		Challenges: service.NewChallengeService(db.DB, accounts, progress, generator, nil, nil),
		Games:      service.NewGameService(db.DB, nil),
		Contact:    contact,
		Images:     service.NewImageService(cfg.UploadDir, cfg.UploadURLPath),
	})
}

// verifyMail 启动时检查一次 SMTP 配置，只记录结果。
func verifyMail(ctx context.Context, cfg service.SMTPConfig, sender *service.SMTPSender) {
	if !cfg.Configured() {
		log.Printf("[MAIL] EMAIL_USER/EMAIL_PASS not set, contact form disabled")
		return
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sender.Verify(verifyCtx); err != nil {
		log.Printf("[MAIL] SMTP verification failed: %v", err)
		return
	}
	log.Printf("[MAIL] SMTP ready as %s", cfg.Username)
}
