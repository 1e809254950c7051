package main

import (
	"bytes"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/participant-manager/internal/testutil"
)

func runHealth(t *testing.T, url string) (string, error) {
	t.Helper()
	t.Cleanup(func() { envFile, apiURL = ".env", "" })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"health", "--api-url", url, "--env-file", filepath.Join(t.TempDir(), "missing.env")})
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthCommand(t *testing.T) {
	stub := testutil.NewStubAPI(t)

	out, err := runHealth(t, stub.Server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")

	stub.SetHealth("degraded")
	_, err = runHealth(t, stub.Server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degraded")

	stub.FailPath("/health", http.StatusInternalServerError)
	_, err = runHealth(t, stub.Server.URL)
	require.Error(t, err)
}

func TestHealthCommand_InvalidURL(t *testing.T) {
	_, err := runHealth(t, "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api-url")
}
