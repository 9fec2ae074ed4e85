package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fmeurer/caseflow/internal/config"
	"github.com/fmeurer/caseflow/internal/conversation"
	"github.com/fmeurer/caseflow/internal/engine"
	"github.com/fmeurer/caseflow/internal/httpapi"
	"github.com/fmeurer/caseflow/internal/knowledge"
	"github.com/fmeurer/caseflow/internal/observability"
	"github.com/fmeurer/caseflow/internal/registry"
	"github.com/fmeurer/caseflow/internal/routing"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	routes, err := routing.LoadTable(cfg.RoutingRulesPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.RoutingRulesPath).Fatal("routing rules load failed")
	}
	log.WithField("teams", len(routes.Teams())).Info("routing rules loaded")

	ctx := context.Background()
	know, err := knowledge.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("knowledge store init failed")
	}
	defer know.Close()

	invoker, engineMode, err := engine.NewInvoker(engine.Config{
		Mode:    cfg.EngineMode,
		HTTPURL: cfg.EngineHTTPURL,
		Routing: routes,
	})
	if err != nil {
		log.WithError(err).Fatal("engine init failed")
	}
	// Health handlers report the backend that is actually live, not "auto".
	cfg.EngineMode = engineMode
	log.WithField("mode", engineMode).Info("engine backend resolved")

	conversations := registry.NewRegistry(cfg.SessionInactivityTimeout)
	conversations.SetExpireHook(func(_ *registry.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveConversations.Set(float64(conversations.ActiveCount()))
	})

	orchestrator := conversation.NewOrchestrator(
		invoker,
		routes,
		know,
		metrics,
		log,
		cfg.StageTimeout,
		cfg.KnowledgeContextLimit,
	)

	api := httpapi.New(cfg, conversations, orchestrator, metrics, log)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	conversations.StartJanitor(runCtx, cfg.SessionSweepInterval)

	go func() {
		log.WithField("addr", cfg.BindAddr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
		_ = httpServer.Close()
	}

	log.Info("shutdown complete")
}
