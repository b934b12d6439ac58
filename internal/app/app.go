package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskKeeper/internal/config"
	"taskKeeper/internal/handlers"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/middleware"
	"taskKeeper/internal/repository/kv/inmemory"
	"taskKeeper/internal/repository/kv/postgres"
	"taskKeeper/internal/repository/kv/sqlite"
	"taskKeeper/internal/service"
	"taskKeeper/internal/session"
	"taskKeeper/internal/storage"
	"taskKeeper/internal/undo"
	"taskKeeper/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Backend - key-value хранилище, за которым лежат задачи и имя пользователя
type Backend interface {
	storage.KeyValue
	service.HealthChecker
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	backend   Backend
	manager   *service.TaskManager
	undo      *undo.Controller
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает зависимости: логгер, хранилище, сервис, роутер и фоновую проверку
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initBackend(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	a.initService(ctx)
	a.initRouter()

	a.worker = worker.NewOverdueWorker(a.manager, &a.config.Worker.Interval)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "task-keeper"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}

	return a, nil
}

func (a *App) initBackend(ctx context.Context) error {
	cfg := a.config

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			return fmt.Errorf("миграции postgres: %w", err)
		}
		repo, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:    int32(cfg.Database.MaxConnections),
			MinConns:    int32(cfg.Database.MinConnections),
			IdleTimeout: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула PostgreSQL...")
			repo.Close()
		})
		a.backend = repo

	case config.BackendSQLite:
		repo, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("открытие sqlite: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие SQLite...")
			if err := repo.Close(); err != nil {
				logger.Warn("Ошибка закрытия SQLite", zap.Error(err))
			}
		})
		a.backend = repo

	case config.BackendInMemory:
		a.backend = inmemory.NewStorage()

	default:
		return fmt.Errorf("неизвестный тип хранилища %q", cfg.Storage.Backend)
	}

	logger.Info("Хранилище выбрано", zap.String("backend", cfg.Storage.Backend))
	return nil
}

func (a *App) initService(ctx context.Context) {
	adapter := storage.NewAdapter(a.backend, a.config.Storage.Namespace)
	store := service.NewTaskStore(adapter)

	a.undo = undo.NewController()
	a.shutdowns = append(a.shutdowns, a.undo.Close)

	a.manager = service.NewTaskManager(store, adapter, a.undo, session.NewState()).WithHealthCheck(a.backend)
	a.manager.Load(ctx)
}

func (a *App) initRouter() {
	h := handlers.NewTaskHandler(a.manager)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.CORS.Origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	h.Routes(r)
	a.router = r
}

func (a *App) Manager() *service.TaskManager {
	return a.manager
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run запускает HTTP сервер и фоновую проверку. Возвращается после отмены ctx
// и корректной остановки сервера.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown освобождает ресурсы в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
