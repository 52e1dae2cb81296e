package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados possíveis de uma mensagem do canal de push
const (
	ResultApplied   = "applied"
	ResultStale     = "stale"
	ResultIgnored   = "ignored"
	ResultMalformed = "malformed"
	ResultClosed    = "closed"
)

var (
	PushMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kpi_dashboard_push_messages_total",
		Help: "Mensagens recebidas do canal de push por coleção e resultado",
	}, []string{"collection", "result"})
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kpi_dashboard_fetch_errors_total",
		Help: "Falhas na carga inicial via REST",
	})
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kpi_dashboard_fetch_duration_seconds",
		Help:    "Duração da carga inicial via REST",
		Buckets: prometheus.DefBuckets,
	})
	RefreshTriggers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kpi_dashboard_refresh_triggers_total",
		Help: "Disparos de refresh no backend por resultado",
	}, []string{"result"})
	ChannelConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kpi_dashboard_push_channel_connected",
		Help: "1 quando a inscrição no canal de push está ativa",
	})
	Reconnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kpi_dashboard_push_channel_reconnections_total",
		Help: "Quedas do canal de push seguidas de nova tentativa",
	})
)

func init() {
	prometheus.MustRegister(PushMessages, FetchErrors, FetchDuration, RefreshTriggers, ChannelConnected, Reconnections)
}

// ObserveFetchDuration registra a duração de uma carga inicial
func ObserveFetchDuration(start time.Time) {
	FetchDuration.Observe(time.Since(start).Seconds())
}

func IncPushMessage(collection, result string) {
	if collection == "" {
		collection = "unknown"
	}
	PushMessages.WithLabelValues(collection, result).Inc()
}

func IncRefreshTrigger(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RefreshTriggers.WithLabelValues(result).Inc()
}

func SetChannelConnected(connected bool) {
	if connected {
		ChannelConnected.Set(1)
		return
	}
	ChannelConnected.Set(0)
}

// Handler expõe as métricas no formato do Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
