package main

import (
	"context"
	"fmt"
	"os"
	"todoTracker/internal/app"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		application.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runErr error
	runDone := make(chan struct{})
	go func() {
		runErr = application.Run(runCtx)
		close(runDone)
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"todo-tracker": func(ctx context.Context) error {
				logger.Info("App: Получен сигнал остановки")
				cancel()
				<-runDone
				application.Close()
				return runErr
			},
		},
	)

	var code int
	select {
	case <-runDone:
		if runCtx.Err() == nil {
			// сервер упал сам, сигнала не было
			logger.Error("App: Сервер остановился с ошибкой", runErr, zap.String("addr", cfg.GetServerAddr()))
			application.Close()
			return fmt.Errorf("запуск сервера: %w", runErr)
		}
		code = <-wait
	case code = <-wait:
	}

	if code != 0 {
		os.Exit(code)
	}
	return nil
}
