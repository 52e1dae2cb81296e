package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/pkg/apiErrors"
	"github.com/vfg2006/kpi-dashboard/pkg/log"
)

// NewRefreshLimiter permite um refresh a cada minInterval. Zero desliga o limite.
func NewRefreshLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// RefreshDashboard pede ao backend uma nova coleta; os dados chegam depois pelo canal de push
func RefreshDashboard(synchronizer synchronizing.Synchronizer, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			logger.Warn("refresh: limite de disparos atingido")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			apiErrors.WriteError(w, apiErrors.ErrTooManyRequests, "Aguarde antes de solicitar um novo refresh", nil)
			return
		}

		refreshID, err := synchronizer.Refresh(r.Context())
		if err != nil {
			logger.WithError(err).WithField("refresh_id", refreshID).Error("refresh: erro ao disparar refresh")
			apiErrors.WriteError(w, apiErrors.ErrExternalService, "Não foi possível disparar o refresh", map[string]string{
				"refresh_id": refreshID,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"message":    "Refresh solicitado, os dados chegarão pelo canal de atualizações",
			"refresh_id": refreshID,
		})
	})
}
