package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/handler"
	"github.com/aidar/participant-manager/internal/middleware"
	"github.com/aidar/participant-manager/internal/repository"
	"github.com/aidar/participant-manager/internal/repository/httpapi"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	api    *httpapi.Client
	router chi.Router
	server *http.Server
	logger *zap.Logger
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// NewLogger создает zap логгер: JSON в production, консольный в режиме разработки
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// Logger возвращает логгер приложения
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Создаем клиент API исследований
	client, err := httpapi.New(a.config.API, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}
	a.api = client

	// Проверяем доступность API, но не блокируем запуск: дашборд сам покажет статус
	a.probeAPI(ctx)

	// Настраиваем HTTP сервер и роутинг
	if err := a.setupServer(); err != nil {
		return err
	}

	a.logger.Info("Application initialized successfully")
	return nil
}

// probeAPI проверяет API исследований при старте
func (a *App) probeAPI(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.config.API.Timeout)
	defer cancel()

	health, err := a.api.CheckHealth(ctx)
	switch {
	case err != nil:
		a.logger.Warn("Research API is not reachable", zap.String("base_url", a.api.BaseURL()), zap.Error(err))
	case !health.Healthy():
		a.logger.Warn("Research API reports unhealthy status", zap.String("status", health.Status))
	default:
		a.logger.Info("Connected to research API", zap.String("base_url", a.api.BaseURL()))
	}
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() error {
	pages, err := handler.NewRenderer(a.logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	a.router = NewRouter(a.api, a.config.UI, a.api.BaseURL(), pages, a.logger)

	// Создаем HTTP сервер с настройками таймаутов
	addr := a.config.Server.Addr()
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.config.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", zap.String("addr", addr))
	return nil
}

// NewRouter собирает роутер дашборда поверх репозитория
func NewRouter(repo repository.Repository, ui config.UIConfig, apiBase string, pages *handler.Renderer, logger *zap.Logger) chi.Router {
	// Инициализируем HTTP обработчики
	dashboardHandler := handler.NewDashboardHandler(repo, ui, apiBase, pages, logger)
	studyHandler := handler.NewStudyHandler(repo, ui, pages, logger)
	respondentHandler := handler.NewRespondentHandler(repo, ui, pages, logger)
	assignmentHandler := handler.NewAssignmentHandler(repo, logger)
	healthHandler := handler.NewHealthHandler(repo, logger)

	// Настраиваем роутер
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)

	// Статические файлы
	r.Handle("/static/*", http.StripPrefix("/static/", handler.StaticHandler()))

	// Страницы дашборда
	r.Get("/", dashboardHandler.Show)

	r.Route("/studies", func(r chi.Router) {
		r.Get("/", studyHandler.List)
		r.Get("/{id}", studyHandler.Show)
		r.Post("/{id}/assign", studyHandler.Assign)
	})

	r.Route("/respondents", func(r chi.Router) {
		r.Get("/", respondentHandler.List)
		r.Post("/", respondentHandler.Create)
	})

	r.Route("/assignments", func(r chi.Router) {
		r.Post("/{id}", assignmentHandler.Update)
		r.Patch("/{id}", assignmentHandler.Update)
	})

	return r
}

// Handler возвращает HTTP обработчик приложения (используется в тестах)
func (a *App) Handler() http.Handler {
	return a.router
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	a.logger.Info("Application stopped gracefully")
	// Ошибка Sync для stdout/stderr на некоторых платформах ожидаема
	_ = a.logger.Sync()
	return nil
}
