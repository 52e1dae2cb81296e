package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/kpi-dashboard/internal/api/handler"
	"github.com/vfg2006/kpi-dashboard/internal/api/handler/router"
	"github.com/vfg2006/kpi-dashboard/internal/config"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/viewing"
	"github.com/vfg2006/kpi-dashboard/pkg/middleware"
)

type Server struct {
	httpServer  *http.Server
	stopStreams context.CancelFunc
}

// NewHandler monta as rotas e a cadeia de middlewares
func NewHandler(
	config *config.Config,
	viewer viewing.Viewer,
	synchronizer synchronizing.Synchronizer,
	cronServices handler.CronJobServices,
) http.Handler {
	// um único limite para todas as rotas que disparam refresh no backend
	limiter := handler.NewRefreshLimiter(config.Dashboard.RefreshMinInterval)

	rt := router.New(
		router.WithRoutes(handler.Healthcheck()...),
		router.WithRoutes(handler.Dashboard(viewer)...),
		router.WithRoutes(handler.Refresh(synchronizer, limiter)...),
		router.WithRoutes(handler.Sync(synchronizer, cronServices, limiter)...),
		router.WithRoutes(handler.Metrics()...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
	}

	return alice.New(middlewares...).Then(rt)
}

func New(
	config *config.Config,
	viewer viewing.Viewer,
	synchronizer synchronizing.Synchronizer,
	cronServices handler.CronJobServices,
) (*Server, error) {
	// Contexto base das requisições; cancelado no desligamento para encerrar os streams SSE
	baseCtx, stopStreams := context.WithCancel(context.Background())

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           NewHandler(config, viewer, synchronizer, cronServices),
			ReadHeaderTimeout: 2 * time.Second,
			BaseContext: func(net.Listener) context.Context {
				return baseCtx
			},
		},
		stopStreams: stopStreams,
	}

	return srv, nil
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	logrus.Info("Encerrando streams abertos antes do desligamento")
	s.stopStreams()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
