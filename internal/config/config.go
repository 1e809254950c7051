package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server ServerConfig // Настройки HTTP сервера
	API    APIConfig    // Настройки внешнего API
	UI     UIConfig     // Настройки страниц дашборда
	Log    LogConfig    // Настройки логирования
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// Addr возвращает адрес для прослушивания
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// APIConfig содержит настройки подключения к API исследований
type APIConfig struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"https://web-production-ca37.up.railway.app"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
}

// UIConfig содержит настройки отображения списков
type UIConfig struct {
	PageSize      int `envconfig:"UI_PAGE_SIZE" default:"20"`
	MatchLimit    int `envconfig:"UI_MATCH_LIMIT" default:"50"`
	RecentStudies int `envconfig:"UI_RECENT_STUDIES" default:"5"`
}

// LogConfig содержит настройки логгера
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Validate проверяет корректность значений конфигурации
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API_BASE_URL: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("invalid API_BASE_URL: host is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	if c.UI.PageSize <= 0 {
		return errors.New("UI_PAGE_SIZE must be positive")
	}
	if c.UI.MatchLimit <= 0 {
		return errors.New("UI_MATCH_LIMIT must be positive")
	}
	if c.UI.RecentStudies < 0 {
		return errors.New("UI_RECENT_STUDIES must not be negative")
	}
	return nil
}

// Load читает конфигурацию из .env файла (если есть) и переменных окружения
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
