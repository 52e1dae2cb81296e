package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/kpi-dashboard/internal/domain"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/viewing"
	"github.com/vfg2006/kpi-dashboard/pkg/apiErrors"
	"github.com/vfg2006/kpi-dashboard/pkg/log"
	"github.com/vfg2006/kpi-dashboard/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New()

// keepAliveInterval é o intervalo dos comentários enviados no stream para manter proxies abertos
var keepAliveInterval = 25 * time.Second

type dashboardQuery struct {
	Metric string `validate:"omitempty,oneof=likes comments shares saves reach impressions"`
	Range  string `validate:"omitempty,max=32"`
	AsOf   string `validate:"omitempty,datetime=2006-01-02"`
}

// parseDashboardQuery lê metric, range e as_of. O range é livre: valores desconhecidos incluem todos os posts.
func parseDashboardQuery(r *http.Request) (domain.ViewQuery, error) {
	values := r.URL.Query()
	raw := dashboardQuery{
		Metric: values.Get("metric"),
		Range:  values.Get("range"),
		AsOf:   values.Get("as_of"),
	}

	if err := validate.Struct(raw); err != nil {
		return domain.ViewQuery{}, err
	}

	query := domain.ViewQuery{
		Metric:    domain.Metric(raw.Metric),
		TimeRange: domain.TimeRange(raw.Range),
	}

	if raw.AsOf != "" {
		asOf, err := utils.ParseDate(raw.AsOf)
		if err != nil {
			return domain.ViewQuery{}, err
		}
		endOfDay := asOf.Add(24*time.Hour - time.Nanosecond)
		query.AsOf = &endOfDay
	}

	return query, nil
}

func validationDetails(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("falhou na regra %s", fieldErr.Tag())
	}
	return details
}

// GetDashboard retorna o modelo de renderização do painel
func GetDashboard(viewer viewing.Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query, err := parseDashboardQuery(r)
		if err != nil {
			logger.WithError(err).Warn("dashboard: parâmetros inválidos")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetros inválidos", validationDetails(err))
			return
		}

		view := viewer.Dashboard(query)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			logger.WithError(err).Error("dashboard: erro ao serializar resposta")
		}
	})
}

// GetDashboardOptions retorna as opções de métrica e janela de tempo
func GetDashboardOptions(viewer viewing.Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(viewer.Options()); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("dashboard-options: erro ao serializar resposta")
		}
	})
}

// StreamDashboard envia o painel via Server-Sent Events a cada mudança de estado
func StreamDashboard(viewer viewing.Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query, err := parseDashboardQuery(r)
		if err != nil {
			logger.WithError(err).Warn("dashboard-stream: parâmetros inválidos")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetros inválidos", validationDetails(err))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Streaming não suportado", nil)
			return
		}

		changes, cancel := viewer.Changes()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := writeDashboardEvent(w, viewer.Dashboard(query)); err != nil {
			logger.WithError(err).Warn("dashboard-stream: erro ao enviar evento")
			return
		}
		flusher.Flush()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		logger.Info("dashboard-stream: cliente conectado")
		for {
			select {
			case <-r.Context().Done():
				logger.Info("dashboard-stream: cliente desconectado")
				return
			case _, open := <-changes:
				if !open {
					return
				}
				if err := writeDashboardEvent(w, viewer.Dashboard(query)); err != nil {
					logger.WithError(err).Warn("dashboard-stream: erro ao enviar evento")
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})
}

func writeDashboardEvent(w http.ResponseWriter, view domain.DashboardView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", data)
	return err
}
