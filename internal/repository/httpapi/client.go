package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/listing"
)

// maxBodySize ограничивает размер читаемого ответа API
const maxBodySize = 5 * 1024 * 1024

// ErrResponseTooLarge означает, что ответ API превышает maxBodySize
var ErrResponseTooLarge = errors.New("response too large")

// RequestIDHeader заголовок для передачи ID запроса во внешний API
const RequestIDHeader = "X-Request-ID"

// Client реализует repository.Repository поверх HTTP API исследований
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент (используется в тестах)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New создает клиент для API по адресу из конфигурации
func New(cfg config.APIConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL возвращает адрес API
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do выполняет один запрос к API и декодирует JSON ответ в out.
// Повторов и кэширования нет: ошибка возвращается вызывающему как есть.
func (c *Client) do(ctx context.Context, method, path string, query listing.Params, body, out any) error {
	op := method + " " + path

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// Отмененный устаревший запрос не является ошибкой API
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.logger.Warn("API request failed",
			zap.String("op", op),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return &domain.APIError{Kind: domain.KindNetworkUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("API request completed",
		zap.String("op", op),
		zap.String("query", u.RawQuery),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	// Лишний байт сверх лимита отличает обрезанный ответ от ответа ровно maxBodySize
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return &domain.APIError{Kind: domain.KindNetworkUnavailable, Op: op, Err: err}
	}
	tooLarge := len(data) > maxBodySize
	if tooLarge {
		data = data[:maxBodySize]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.APIError{
			Kind:   domain.KindServerError,
			Status: resp.StatusCode,
			Op:     op,
			Err:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	}

	if out == nil {
		return nil
	}
	if tooLarge {
		c.logger.Warn("API response too large",
			zap.String("op", op),
			zap.Int("limit", maxBodySize),
		)
		return &domain.APIError{
			Kind:   domain.KindDecodeError,
			Status: resp.StatusCode,
			Op:     op,
			Err:    fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodySize),
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.APIError{Kind: domain.KindDecodeError, Status: resp.StatusCode, Op: op, Err: err}
	}
	return nil
}

// requestID берет ID входящего запроса из контекста chi или генерирует новый
func requestID(ctx context.Context) string {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
