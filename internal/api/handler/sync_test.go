package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/kpi-dashboard/internal/api/handler/router"
	"github.com/vfg2006/kpi-dashboard/internal/domain"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing/mocks"
	"github.com/vfg2006/kpi-dashboard/pkg/apiErrors"
)

type fakeCronJob struct {
	triggered int
	err       error
}

func (f *fakeCronJob) CanRun() error {
	return f.err
}

func (f *fakeCronJob) TriggerManualSync() error {
	if f.err != nil {
		return f.err
	}
	f.triggered++
	return nil
}

func (f *fakeCronJob) GetStatus() map[string]any {
	return map[string]any{"sync_enabled": true}
}

func TestGetSyncStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	sync := mocks.NewMockSynchronizer(ctrl)
	sync.EXPECT().Status().Return(domain.SyncStatus{Loaded: true, Connected: true, KpisVersion: 4})

	rec := httptest.NewRecorder()
	GetSyncStatus(sync, CronJobServices{AutoRefreshService: &fakeCronJob{}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sync        domain.SyncStatus `json:"sync"`
		AutoRefresh map[string]any    `json:"auto-refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Sync.Connected)
	assert.Equal(t, int64(4), body.Sync.KpisVersion)
	assert.Equal(t, true, body.AutoRefresh["sync_enabled"])
}

func TestRunCronJob(t *testing.T) {
	job := &fakeCronJob{}
	rt := router.New(router.WithRoutes(Sync(nil, CronJobServices{AutoRefreshService: job}, NewRefreshLimiter(0))...))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "auto-refresh disparado", path: "/v1/cron/auto-refresh/run", wantStatus: http.StatusAccepted},
		{name: "tipo desconhecido", path: "/v1/cron/meta/run", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Equal(t, 1, job.triggered)
}

func TestRunCronJob_CompartilhaLimiteDoRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	sync := mocks.NewMockSynchronizer(ctrl)
	sync.EXPECT().Refresh(gomock.Any()).Return("aB3xY9", nil).Times(1)

	job := &fakeCronJob{}
	limiter := NewRefreshLimiter(time.Minute)
	rt := router.New(
		router.WithRoutes(Refresh(sync, limiter)...),
		router.WithRoutes(Sync(sync, CronJobServices{AutoRefreshService: job}, limiter)...),
	)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dashboard/refresh", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cron/auto-refresh/run", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, apiErrors.ErrTooManyRequests, body["code"])
	}

	assert.Equal(t, 0, job.triggered)
}

func TestRunCronJob_AgendadorRecusa(t *testing.T) {
	job := &fakeCronJob{err: errors.New("refresh automático desabilitado")}
	limiter := NewRefreshLimiter(time.Minute)
	rt := router.New(router.WithRoutes(Sync(nil, CronJobServices{AutoRefreshService: job}, limiter)...))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cron/auto-refresh/run", nil))

		// a recusa não consome o limite
		assert.Equal(t, http.StatusConflict, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, apiErrors.ErrCronUnavailable, body["code"])
		assert.Equal(t, map[string]any{"type": "auto-refresh"}, body["details"])
	}

	assert.Equal(t, 0, job.triggered)
	assert.True(t, limiter.Allow())
}
