package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Instagram   Instagram   `mapstructure:",squash"`
	PushChannel PushChannel `mapstructure:",squash"`
	Dashboard   Dashboard   `mapstructure:",squash"`
	AutoRefresh AutoRefresh `mapstructure:",squash"`
}

type App struct {
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"app_env"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Instagram struct {
	APIURL      string        `mapstructure:"instagram_api_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type PushChannel struct {
	URL                      string        `mapstructure:"instagram_ws_url"`
	Origin                   string        `mapstructure:"instagram_ws_origin"`
	Topic                    string        `mapstructure:"push_topic"`
	ReconnectInitialInterval time.Duration `mapstructure:"reconnect_initial_interval"`
	ReconnectMaxInterval     time.Duration `mapstructure:"reconnect_max_interval"`
	ReconnectMaxRetries      int           `mapstructure:"reconnect_max_retries"`
}

type Dashboard struct {
	FollowerGoal       int           `mapstructure:"follower_goal"`
	RefreshMinInterval time.Duration `mapstructure:"refresh_min_interval"`
}

type AutoRefresh struct {
	CronSchedule string `mapstructure:"auto_refresh_cron"`
	Enabled      bool   `mapstructure:"auto_refresh_enabled"`
}

// endpoints do backend por ambiente
type endpoints struct {
	apiURL string
	wsURL  string
}

var endpointsByEnvironment = map[string]endpoints{
	EnvironmentDevelopment: {
		apiURL: "http://localhost:8080",
		wsURL:  "ws://localhost:8080/ws/kpi/websocket",
	},
	EnvironmentProduction: {
		apiURL: "https://co-kpi-backend.herokuapp.com",
		wsURL:  "wss://co-kpi-backend.herokuapp.com/ws/kpi/websocket",
	},
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})

	viper.SetDefault("APP_ENV", EnvironmentDevelopment)
	viper.SetDefault("LOG_LEVEL", "debug")

	// Vazios: preenchidos pelo perfil do APP_ENV quando não informados
	viper.SetDefault("INSTAGRAM_API_URL", "")
	viper.SetDefault("INSTAGRAM_WS_URL", "")
	viper.SetDefault("INSTAGRAM_WS_ORIGIN", "")
	viper.SetDefault("HTTP_TIMEOUT", 15*time.Second)

	viper.SetDefault("PUSH_TOPIC", "/topic/kpi-updates")
	viper.SetDefault("RECONNECT_INITIAL_INTERVAL", time.Second)
	viper.SetDefault("RECONNECT_MAX_INTERVAL", 30*time.Second)
	viper.SetDefault("RECONNECT_MAX_RETRIES", 10) // 0 tenta para sempre

	viper.SetDefault("FOLLOWER_GOAL", 150000)
	viper.SetDefault("REFRESH_MIN_INTERVAL", 10*time.Second)

	viper.SetDefault("AUTO_REFRESH_CRON", "*/5 * * * *") // A cada 5 minutos, como a coleta do backend
	viper.SetDefault("AUTO_REFRESH_ENABLED", false)
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	resolveEndpoints(config)

	return config, nil
}

// NormalizeEnvironment reduz os apelidos de ambiente a development ou production
func NormalizeEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return EnvironmentProduction
	default:
		return EnvironmentDevelopment
	}
}

// resolveEndpoints completa as URLs do backend com o perfil do ambiente
func resolveEndpoints(config *Config) {
	config.App.Environment = NormalizeEnvironment(config.App.Environment)
	profile := endpointsByEnvironment[config.App.Environment]

	if config.Instagram.APIURL == "" {
		config.Instagram.APIURL = profile.apiURL
	}
	if config.PushChannel.URL == "" {
		config.PushChannel.URL = profile.wsURL
	}
	config.Instagram.APIURL = strings.TrimRight(config.Instagram.APIURL, "/")
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
