package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvironmentDevelopment, cfg.App.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.Instagram.APIURL)
	assert.Equal(t, "ws://localhost:8080/ws/kpi/websocket", cfg.PushChannel.URL)
	assert.Equal(t, "/topic/kpi-updates", cfg.PushChannel.Topic)
	assert.Equal(t, 15*time.Second, cfg.Instagram.HTTPTimeout)
	assert.Equal(t, 150000, cfg.Dashboard.FollowerGoal)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.False(t, cfg.AutoRefresh.Enabled)
}

func TestNewConfig_VariaveisDeAmbiente(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("RECONNECT_MAX_RETRIES", "0")
	t.Setenv("FOLLOWER_GOAL", "2000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.com,http://b.com")
	t.Setenv("AUTO_REFRESH_ENABLED", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvironmentProduction, cfg.App.Environment)
	assert.Equal(t, "https://co-kpi-backend.herokuapp.com", cfg.Instagram.APIURL)
	assert.Equal(t, "wss://co-kpi-backend.herokuapp.com/ws/kpi/websocket", cfg.PushChannel.URL)
	assert.Equal(t, 3*time.Second, cfg.Instagram.HTTPTimeout)
	assert.Equal(t, 0, cfg.PushChannel.ReconnectMaxRetries)
	assert.Equal(t, 2000, cfg.Dashboard.FollowerGoal)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.AutoRefresh.Enabled)
}

func TestResolveEndpoints(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantAPI string
		wantWS  string
		wantEnv string
	}{
		{
			name:    "ambiente vazio usa desenvolvimento",
			wantAPI: "http://localhost:8080",
			wantWS:  "ws://localhost:8080/ws/kpi/websocket",
			wantEnv: EnvironmentDevelopment,
		},
		{
			name: "urls explícitas têm precedência",
			config: Config{
				App:         App{Environment: "production"},
				Instagram:   Instagram{APIURL: "http://backend:9000/"},
				PushChannel: PushChannel{URL: "ws://backend:9000/ws/kpi/websocket"},
			},
			wantAPI: "http://backend:9000",
			wantWS:  "ws://backend:9000/ws/kpi/websocket",
			wantEnv: EnvironmentProduction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			resolveEndpoints(&cfg)
			assert.Equal(t, tt.wantAPI, cfg.Instagram.APIURL)
			assert.Equal(t, tt.wantWS, cfg.PushChannel.URL)
			assert.Equal(t, tt.wantEnv, cfg.App.Environment)
		})
	}
}
