package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/participant-manager/internal/app"
	"github.com/aidar/participant-manager/internal/config"
)

const wiremockImage = "wiremock/wiremock:3.9.1"

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	Container testcontainers.Container
	App       *app.App
	BaseURL   string
	MockURL   string
	ctx       context.Context
}

// SetupTestEnvironment запускает WireMock вместо API исследований и приложение поверх него
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	// Запускаем WireMock контейнер
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        wiremockImage,
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor: wait.ForHTTP("/__admin/mappings").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start WireMock container")

	mockURL, err := container.PortEndpoint(ctx, "8080/tcp", "http")
	require.NoError(t, err, "Failed to get WireMock endpoint")

	te := &TestEnvironment{
		Container: container,
		MockURL:   mockURL,
		ctx:       ctx,
	}
	te.Stub(t, http.MethodGet, "/health", nil, http.StatusOK, map[string]string{"status": "healthy"})

	// Используем высокий порт для тестов чтобы избежать конфликтов
	testPort := "18081"
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:            testPort,
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
		},
		API: config.APIConfig{
			BaseURL: mockURL,
			Timeout: 5 * time.Second,
		},
		UI: config.UIConfig{
			PageSize:      20,
			MatchLimit:    50,
			RecentStudies: 5,
		},
		Log: config.LogConfig{Level: "debug", Development: true},
	}
	require.NoError(t, cfg.Validate())

	// Создаем и инициализируем приложение
	application, err := app.New(cfg)
	require.NoError(t, err, "Failed to create application")

	err = application.Initialize(ctx)
	require.NoError(t, err, "Failed to initialize application")

	// Запускаем сервер в фоне
	go func() {
		if err := application.Run(); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	te.App = application
	te.BaseURL = fmt.Sprintf("http://%s:%s", cfg.Server.Host, testPort)
	te.WaitForHealthCheck(t)
	return te
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if te.App != nil {
		_ = te.App.Shutdown(shutdownCtx)
	}
	if te.Container != nil {
		_ = te.Container.Terminate(te.ctx)
	}
}

// Stub регистрирует ответ WireMock для запроса method path с точным набором query параметров
func (te *TestEnvironment) Stub(t *testing.T, method, path string, query url.Values, status int, body any) {
	t.Helper()

	request := map[string]any{
		"method":  method,
		"urlPath": path,
	}
	if len(query) > 0 {
		params := make(map[string]any, len(query))
		for k := range query {
			params[k] = map[string]string{"equalTo": query.Get(k)}
		}
		request["queryParameters"] = params
	}

	te.postAdmin(t, "/__admin/mappings", map[string]any{
		"request": request,
		"response": map[string]any{
			"status":   status,
			"jsonBody": body,
			"headers":  map[string]string{"Content-Type": "application/json"},
		},
	}, nil)
}

// CountRequests возвращает число запросов, полученных WireMock по method path
func (te *TestEnvironment) CountRequests(t *testing.T, method, path string) int {
	t.Helper()

	var out struct {
		Count int `json:"count"`
	}
	te.postAdmin(t, "/__admin/requests/count", map[string]string{
		"method":  method,
		"urlPath": path,
	}, &out)
	return out.Count
}

// ReceivedBodies возвращает тела запросов, полученных WireMock по method path
func (te *TestEnvironment) ReceivedBodies(t *testing.T, method, path string) []string {
	t.Helper()

	var out struct {
		Requests []struct {
			Body string `json:"body"`
		} `json:"requests"`
	}
	te.postAdmin(t, "/__admin/requests/find", map[string]string{
		"method":  method,
		"urlPath": path,
	}, &out)

	bodies := make([]string, 0, len(out.Requests))
	for _, r := range out.Requests {
		bodies = append(bodies, r.Body)
	}
	return bodies
}

func (te *TestEnvironment) postAdmin(t *testing.T, path string, in, out any) {
	t.Helper()

	payload, err := json.Marshal(in)
	require.NoError(t, err)

	resp, err := http.Post(te.MockURL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err, "Failed to call WireMock admin API")
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Less(t, resp.StatusCode, 300, "WireMock admin API: %s", data)

	if out != nil {
		require.NoError(t, json.Unmarshal(data, out))
	}
}

// MakeRequest вспомогательная функция для HTTP запросов в тестах
func (te *TestEnvironment) MakeRequest(t *testing.T, method, path string, body io.Reader, contentType, accept string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, te.BaseURL+path, body)
	require.NoError(t, err, "Failed to create request")

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
		// Редиректы проверяются в самих тестах
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "Failed to make request")

	return resp
}

// WaitForHealthCheck ждет пока приложение станет доступным
func (te *TestEnvironment) WaitForHealthCheck(t *testing.T) {
	t.Helper()

	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(te.BaseURL + "/healthz")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatal("Application did not become healthy in time")
}
