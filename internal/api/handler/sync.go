package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"

	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/pkg/apiErrors"
	"github.com/vfg2006/kpi-dashboard/pkg/log"
)

// CronJobTypeAutoRefresh identifica o agendador de refresh automático
const CronJobTypeAutoRefresh = "auto-refresh"

// CronJob é o contrato comum dos agendadores
type CronJob interface {
	CanRun() error
	TriggerManualSync() error
	GetStatus() map[string]any
}

// CronJobServices contém os agendadores disponíveis para execução manual
type CronJobServices struct {
	AutoRefreshService CronJob
}

func (s CronJobServices) byType(cronType string) (CronJob, bool) {
	switch cronType {
	case CronJobTypeAutoRefresh:
		return s.AutoRefreshService, s.AutoRefreshService != nil
	default:
		return nil, false
	}
}

// GetSyncStatus retorna o status da sincronização e dos agendadores
func GetSyncStatus(synchronizer synchronizing.Synchronizer, services CronJobServices) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"sync": synchronizer.Status(),
		}
		if services.AutoRefreshService != nil {
			status[CronJobTypeAutoRefresh] = services.AutoRefreshService.GetStatus()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("sync-status: erro ao serializar resposta")
		}
	})
}

// RunCronJob executa manualmente um agendador.
// Os agendadores disparam refresh no backend, então dividem o limite com RefreshDashboard.
func RunCronJob(services CronJobServices, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		job, ok := services.byType(cronType)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: auto-refresh", nil)
			return
		}

		logger := log.ForContext(r.Context())

		// recusas do agendador não consomem o limite de refresh
		if err := job.CanRun(); err != nil {
			logger.WithError(err).Warnf("cron: execução manual de %s recusada", cronType)
			apiErrors.WriteError(w, apiErrors.ErrCronUnavailable, err.Error(), map[string]string{
				"type": cronType,
			})
			return
		}

		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			logger.Warnf("cron: limite de disparos atingido para %s", cronType)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			apiErrors.WriteError(w, apiErrors.ErrTooManyRequests, "Aguarde antes de solicitar um novo refresh", nil)
			return
		}

		logger.Infof("cron: execução manual de %s solicitada", cronType)
		if err := job.TriggerManualSync(); err != nil {
			logger.WithError(err).Warnf("cron: execução manual de %s recusada", cronType)
			apiErrors.WriteError(w, apiErrors.ErrCronUnavailable, err.Error(), map[string]string{
				"type": cronType,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	})
}
