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

	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing/mocks"
	"github.com/vfg2006/kpi-dashboard/pkg/apiErrors"
)

func TestRefreshDashboard(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(sync *mocks.MockSynchronizer)
		wantStatus int
		wantCode   string
	}{
		{
			name: "refresh aceito",
			setup: func(sync *mocks.MockSynchronizer) {
				sync.EXPECT().Refresh(gomock.Any()).Return("aB3xY9", nil)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name: "falha no backend vira 502",
			setup: func(sync *mocks.MockSynchronizer) {
				sync.EXPECT().Refresh(gomock.Any()).Return("aB3xY9", errors.Join(synchronizing.ErrRefreshTrigger, errors.New("503")))
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   apiErrors.ErrExternalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sync := mocks.NewMockSynchronizer(ctrl)
			tt.setup(sync)

			rec := httptest.NewRecorder()
			RefreshDashboard(sync, NewRefreshLimiter(0)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/dashboard/refresh", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				assert.Equal(t, map[string]any{"refresh_id": "aB3xY9"}, body["details"])
				return
			}
			assert.Equal(t, "aB3xY9", body["refresh_id"])
		})
	}
}

func TestRefreshDashboard_LimiteDeDisparos(t *testing.T) {
	ctrl := gomock.NewController(t)
	sync := mocks.NewMockSynchronizer(ctrl)
	sync.EXPECT().Refresh(gomock.Any()).Return("first1", nil).Times(1)

	handler := RefreshDashboard(sync, NewRefreshLimiter(time.Minute))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/dashboard/refresh", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/dashboard/refresh", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
