package handler

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/vfg2006/kpi-dashboard/internal/api/handler/router"
	"github.com/vfg2006/kpi-dashboard/internal/metrics"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/viewing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Dashboard(viewer viewing.Viewer) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/dashboard",
			Method:  http.MethodGet,
			Handler: GetDashboard(viewer),
		},
		{
			Path:    "/v1/dashboard/stream",
			Method:  http.MethodGet,
			Handler: StreamDashboard(viewer),
		},
		{
			Path:    "/v1/dashboard/options",
			Method:  http.MethodGet,
			Handler: GetDashboardOptions(viewer),
		},
	}
}

func Refresh(synchronizer synchronizing.Synchronizer, limiter *rate.Limiter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/dashboard/refresh",
			Method:  http.MethodPost,
			Handler: RefreshDashboard(synchronizer, limiter),
		},
	}
}

func Sync(synchronizer synchronizing.Synchronizer, services CronJobServices, limiter *rate.Limiter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sync/status",
			Method:  http.MethodGet,
			Handler: GetSyncStatus(synchronizer, services),
		},
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services, limiter),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}
