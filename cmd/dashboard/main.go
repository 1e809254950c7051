package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/app"
	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/repository/httpapi"
)

var (
	envFile string
	apiURL  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()

	rootCmd := &cobra.Command{
		Use:          "dashboard",
		Short:        "Research participant manager dashboard",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file with configuration")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "research API base URL (overrides API_BASE_URL)")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(healthCmd())
	return rootCmd
}

// loadConfig загружает конфигурацию и применяет флаги командной строки
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("некорректный --api-url: %w", err)
		}
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Создаем экземпляр приложения
			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("не удалось создать приложение: %w", err)
			}
			logger := application.Logger()

			// Инициализируем приложение (клиент API, настройка роутинга)
			if err := application.Initialize(cmd.Context()); err != nil {
				return fmt.Errorf("не удалось инициализировать приложение: %w", err)
			}

			// Настраиваем graceful shutdown для корректного завершения
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Запускаем HTTP сервер в отдельной горутине
			errCh := make(chan error, 1)
			go func() {
				errCh <- application.Run()
			}()

			select {
			case err := <-errCh:
				if err != nil {
					logger.Error("Ошибка сервера", zap.Error(err))
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Остановка сервера")

			// Создаем контекст с таймаутом для graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("не удалось корректно остановить сервер: %w", err)
			}
			return nil
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the research API once and exit non-zero unless it is healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := httpapi.New(cfg.API, zap.NewNop())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
			defer cancel()

			health, err := client.CheckHealth(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", client.BaseURL(), err)
			}
			if !health.Healthy() {
				return fmt.Errorf("%s: status %q", client.BaseURL(), health.Status)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), health.Status)
			return nil
		},
	}
}
