package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/kpi-dashboard/internal/config"
)

var (
	ErrAutoRefreshDisabled = errors.New("refresh automático desabilitado")
	ErrNotStarted          = errors.New("agendador de refresh automático não iniciado")
	ErrRefreshInProgress   = errors.New("refresh automático já em andamento")
)

// Refresher dispara uma nova coleta no backend
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// AutoRefreshConfig representa a configuração do agendador de refresh automático
type AutoRefreshConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// AutoRefreshService agenda disparos periódicos de refresh no backend de KPIs
type AutoRefreshService struct {
	scheduler *gocron.Scheduler
	config    AutoRefreshConfig
	refresher Refresher
	timeout   time.Duration

	// runCtx vem do Start; execuções manuais são canceladas junto com a aplicação
	runCtx context.Context

	syncMutex           sync.Mutex
	syncRunning         bool
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastRefreshID       string
	lastError           string
	runs                int
}

// NewAutoRefreshService cria uma nova instância do agendador de refresh automático
func NewAutoRefreshService(refresher Refresher, appConfig *config.Config) *AutoRefreshService {
	refreshConfig := AutoRefreshConfig{
		CronSchedule: appConfig.AutoRefresh.CronSchedule,
		SyncEnabled:  appConfig.AutoRefresh.Enabled,
	}

	timeout := appConfig.Instagram.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": refreshConfig.CronSchedule,
		"sync_enabled":  refreshConfig.SyncEnabled,
	}).Info("Configuração do agendador de refresh automático carregada")

	return &AutoRefreshService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    refreshConfig,
		refresher: refresher,
		timeout:   timeout,
	}
}

// Start inicia o agendador
func (s *AutoRefreshService) Start(ctx context.Context) error {
	s.syncMutex.Lock()
	s.runCtx = ctx
	s.syncMutex.Unlock()

	if !s.config.SyncEnabled {
		logrus.Info("Refresh automático desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de refresh automático")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar refresh automático: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de refresh automático")
		s.scheduler.Stop()
	}()

	return nil
}

// runRefresh executa um disparo, ignorando chamadas sobrepostas
func (s *AutoRefreshService) runRefresh(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Refresh automático já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	refreshID, err := s.refresher.Refresh(refreshCtx)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.syncRunning = false
	s.runs++
	s.lastRefreshID = refreshID
	s.lastSyncCompletedAt = time.Now()

	if err != nil {
		s.lastError = err.Error()
		logrus.WithError(err).WithField("refresh_id", refreshID).Error("Erro no refresh automático")
		return
	}

	s.lastError = ""
	logrus.WithField("refresh_id", refreshID).Info("Refresh automático disparado")
}

// CanRun informa se uma execução manual seria aceita agora
func (s *AutoRefreshService) CanRun() error {
	_, err := s.manualRunContext()
	return err
}

func (s *AutoRefreshService) manualRunContext() (context.Context, error) {
	if !s.config.SyncEnabled {
		return nil, ErrAutoRefreshDisabled
	}

	s.syncMutex.Lock()
	ctx := s.runCtx
	running := s.syncRunning
	s.syncMutex.Unlock()

	if ctx == nil {
		return nil, ErrNotStarted
	}
	if running {
		return nil, ErrRefreshInProgress
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotStarted, err)
	}
	return ctx, nil
}

// TriggerManualSync inicia manualmente um refresh fora do agendamento.
// Só é aceito com o agendador habilitado e iniciado; a execução herda o contexto do Start.
func (s *AutoRefreshService) TriggerManualSync() error {
	ctx, err := s.manualRunContext()
	if err != nil {
		logrus.WithError(err).Info("Solicitação manual de refresh automático ignorada")
		return err
	}

	logrus.Info("Iniciando refresh manual pelo agendador")
	go s.runRefresh(ctx)
	return nil
}

// GetStatus retorna o status atual do agendador
func (s *AutoRefreshService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"runs":                   s.runs,
		"last_refresh_id":        s.lastRefreshID,
		"last_error":             s.lastError,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
