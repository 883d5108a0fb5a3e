package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicereach/internal/auth"
	"voicereach/internal/calls"
	"voicereach/internal/campaigns"
	"voicereach/internal/config"
	"voicereach/internal/conversation"
	"voicereach/internal/dialer"
	"voicereach/internal/httpapi"
	"voicereach/internal/leads"
	"voicereach/internal/llm"
	"voicereach/internal/reporting"
	"voicereach/internal/telephony"
	"voicereach/pkg/logger"
	"voicereach/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Stores
	recordStore := calls.NewPostgresStore(db)
	leadStore := leads.NewPostgresStore(db)
	campaignStore := campaigns.NewMemoryStore() // campaign CRUD lives elsewhere

	// Conversation engine
	generator := llm.NewGenerator(llm.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model), log)
	feedback := leads.NewUpdater(leadStore, log)
	orchestrator := conversation.NewOrchestrator(
		conversation.NewMemoryRegistry(),
		generator,
		recordStore,
		feedback,
		log,
	)

	// Dialer
	provider := telephony.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
	dial := dialer.New(dialer.Config{
		MaxLiveCalls:  cfg.Dialer.MaxLiveCalls,
		SlotTTL:       cfg.Dialer.SlotTTL,
		PublicBaseURL: cfg.Twilio.PublicBaseURL,
	}, provider, leadStore, campaignStore, dialer.NewPendingCalls(), rdb, log)

	// Webhook + API handlers
	webhooks := &telephony.WebhookHandler{
		Orchestrator:     orchestrator,
		Placements:       dial.Pending(),
		SpeechActionURL:  cfg.Twilio.PublicBaseURL + "/webhooks/twilio/speech",
		GatherTimeoutSec: cfg.Dialer.GatherTimeoutSec,
		ReleaseSlot:      dial.ReleaseSlot,
	}
	control := &telephony.CallControlHandler{
		Provider:     provider,
		Orchestrator: orchestrator,
	}
	api := httpapi.Handlers{
		Auth:    authManager,
		Dialer:  dial,
		Reports: reporting.NewService(recordStore),
		Records: recordStore,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, auth.RequireAccessToken(authManager), webhooks, control, api, db)

	// Stale placements hold a live-call slot; sweep them on the side.
	go reapLoop(rootCtx, dial, cfg.Dialer.SlotTTL)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated", "active_calls", orchestrator.ActiveCalls())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

func reapLoop(ctx context.Context, d *dialer.Dialer, maxAge time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.ReapStale(ctx, maxAge)
		}
	}
}
