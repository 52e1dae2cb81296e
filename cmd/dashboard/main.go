package main

import (
	"context"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/kpi-dashboard/infrastructure/integrator/instagram/instagramclient"
	"github.com/vfg2006/kpi-dashboard/infrastructure/pushchannel/stomp"
	"github.com/vfg2006/kpi-dashboard/internal/api"
	"github.com/vfg2006/kpi-dashboard/internal/api/handler"
	"github.com/vfg2006/kpi-dashboard/internal/config"
	"github.com/vfg2006/kpi-dashboard/internal/scheduler"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/synchronizing"
	"github.com/vfg2006/kpi-dashboard/internal/usecases/viewing"
	"github.com/vfg2006/kpi-dashboard/pkg/log"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	if err := log.Configure(cfg.App.LogLevel); err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
	}
	logrus.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"api_url":     cfg.Instagram.APIURL,
		"ws_url":      cfg.PushChannel.URL,
	}).Info("Configuração carregada")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instagramClient := instagramclient.NewClient(cfg)

	syncService := synchronizing.NewService(instagramClient, pushSubscriber(cfg))
	if err := syncService.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao iniciar o sincronizador")
	}
	defer syncService.Close()

	viewer := viewing.NewService(syncService, cfg.Dashboard.FollowerGoal)

	autoRefreshService := scheduler.NewAutoRefreshService(syncService, cfg)
	if err := autoRefreshService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de refresh automático")
	} else {
		logrus.Info("Agendador de refresh automático iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		viewer,
		syncService,
		handler.CronJobServices{AutoRefreshService: autoRefreshService},
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// pushSubscriber cria a inscrição STOMP; sem ela o painel fica apenas com a carga inicial
func pushSubscriber(cfg *config.Config) synchronizing.PushSubscriber {
	subscriber, err := stomp.NewSubscriber(stomp.Config{
		URL:             cfg.PushChannel.URL,
		Origin:          cfg.PushChannel.Origin,
		Topic:           cfg.PushChannel.Topic,
		InitialInterval: cfg.PushChannel.ReconnectInitialInterval,
		MaxInterval:     cfg.PushChannel.ReconnectMaxInterval,
		MaxRetries:      cfg.PushChannel.ReconnectMaxRetries,
		DialTimeout:     cfg.Instagram.HTTPTimeout,
	})
	if err != nil {
		logrus.WithError(err).Error("Canal de push desabilitado: configuração inválida")
		return nil
	}
	return subscriber
}

// configureLogger configura o formato dos logs e o diretório de trabalho usado para achar o .env
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	log.Configure("info")
	changeWorkingDir(dir)
}

// changeWorkingDir troca o diretório de trabalho; em caso de falha mantém o atual e avisa
func changeWorkingDir(dir string) bool {
	if err := os.Chdir(dir); err != nil {
		logrus.WithError(err).Warnf("Não foi possível usar %s como diretório de trabalho, o .env pode não ser encontrado", dir)
		return false
	}
	return true
}
