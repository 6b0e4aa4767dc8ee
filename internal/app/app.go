package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"todoTracker/internal/config"
	"todoTracker/internal/handlers"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"
	"todoTracker/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	store     Store
	service   *service.TaskService
	worker    *worker.DigestWorker
	shutdowns []func() // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	mode, err := service.ParseNotFoundMode(a.config.Store.NotFoundMode)
	if err != nil {
		return err
	}

	store, err := OpenStore(ctx, a.config)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.store = store
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Закрытие хранилища...")
		store.Close()
	})

	a.service = service.NewTaskService(store, mode)
	a.router = NewRouter(handlers.NewTaskHandler(a.service), a.config.Server)
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: a.config.Server.RequestTimeout,
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewDigestWorker(a.service, a.config.Worker.Interval)
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("addr", a.server.Addr),
		zap.String("repository", a.config.Repository.Type),
		zap.String("not_found_mode", string(mode)),
		zap.Bool("worker", a.worker != nil))
	return nil
}

func (a *App) Router() http.Handler {
	return a.router
}

// Run блокируется до отмены ctx или падения сервера; сервер останавливается мягко
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: HTTP-сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http-сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("App: Остановка HTTP-сервера...")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка http-сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close освобождает ресурсы; безопасно вызывать после неудачного Init
func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
