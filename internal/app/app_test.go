package app_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aidar/participant-manager/internal/app"
	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/handler"
	"github.com/aidar/participant-manager/internal/repository/httpapi"
	"github.com/aidar/participant-manager/internal/testutil"
)

func TestNewLogger(t *testing.T) {
	logger, err := app.NewLogger(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = app.NewLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = app.NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewRouter(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	stub.AddStudy(domain.Study{ID: 1, Title: "Routed study", Status: domain.StatusDraft})

	pages, err := handler.NewRenderer(zap.NewNop())
	require.NoError(t, err)
	ui := config.UIConfig{PageSize: 20, MatchLimit: 50, RecentStudies: 5}
	srv := httptest.NewServer(app.NewRouter(stub.Client(t), ui, stub.Server.URL, pages, zap.NewNop()))
	defer srv.Close()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Routed study"},
		{"/studies", http.StatusOK, "Routed study"},
		{"/studies/1", http.StatusOK, "Routed study"},
		{"/respondents", http.StatusOK, "Respondents"},
		{"/healthz", http.StatusOK, "ok"},
		{"/static/style.css", http.StatusOK, ".card"},
		{"/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestNewRouter_PropagatesRequestID(t *testing.T) {
	var seen string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(httpapi.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer upstream.Close()

	client, err := httpapi.New(config.APIConfig{BaseURL: upstream.URL}, zap.NewNop())
	require.NoError(t, err)
	pages, err := handler.NewRenderer(nil)
	require.NoError(t, err)
	router := app.NewRouter(client, config.UIConfig{PageSize: 20, MatchLimit: 50}, upstream.URL, pages, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", seen)
}
