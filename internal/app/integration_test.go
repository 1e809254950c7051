package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// TestE2E_Workflow проверяет страницы дашборда поверх WireMock
func TestE2E_Workflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := SetupTestEnvironment(t)
	defer env.Cleanup(t)

	study := map[string]any{
		"id":               1,
		"title":            "Coffee habits",
		"client_name":      "Acme",
		"methodology":      "focus_group",
		"status":           "recruiting",
		"target_count":     12,
		"incentive_amount": 150,
		"criteria": []map[string]any{
			{"field_name": "state", "operator": "in", "value": []string{"NY", "NJ"}},
		},
	}
	respondents := []map[string]any{
		{"id": 3, "first_name": "Ann", "last_name": "Ray", "email": "ann@example.com", "state": "NY", "age": 31, "is_active": true},
		{"id": 7, "first_name": "Bob", "last_name": "Fox", "email": "bob@example.com", "state": "NJ", "age": 44, "is_active": true},
	}

	env.Stub(t, http.MethodGet, "/api/studies", nil, http.StatusOK, map[string]any{
		"items": []any{study}, "total": 1,
	})
	env.Stub(t, http.MethodGet, "/api/respondents", nil, http.StatusOK, map[string]any{
		"items": respondents[:1], "total": 1234,
	})

	t.Run("dashboard", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/", nil, "", "")
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "API Connected")
		assert.Contains(t, body, "1,234")
		assert.Contains(t, body, "Coffee habits")
	})

	t.Run("respondents filters reach the api", func(t *testing.T) {
		env.Stub(t, http.MethodGet, "/api/respondents", url.Values{
			"state": {"NY"}, "age_min": {"25"}, "limit": {"20"}, "offset": {"0"},
		}, http.StatusOK, map[string]any{"items": respondents[:1], "total": 1})

		resp := env.MakeRequest(t, http.MethodGet, "/respondents?state=NY&age_min=25", nil, "", "application/json")
		body := readBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snap struct {
			Items []struct {
				FirstName string `json:"first_name"`
			} `json:"items"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &snap))
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Ann", snap.Items[0].FirstName)
		assert.Equal(t, 1, snap.Pagination.Total)
	})

	env.Stub(t, http.MethodGet, "/api/studies/1", nil, http.StatusOK, study)
	env.Stub(t, http.MethodGet, "/api/studies/1/match", url.Values{"limit": {"50"}}, http.StatusOK, map[string]any{
		"items": respondents, "total": 2,
	})
	env.Stub(t, http.MethodPost, "/api/studies/1/assign", nil, http.StatusOK, []map[string]any{
		{"id": 10, "study_id": 1, "respondent_id": 3, "status": "invited"},
		{"id": 11, "study_id": 1, "respondent_id": 7, "status": "invited"},
	})

	t.Run("study detail with matches", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodGet, "/studies/1?matches=1&selected=7", nil, "", "")
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "NY, NJ")
		assert.Contains(t, body, "2 respondents match the criteria")
		assert.Contains(t, body, "Assign 1 Selected")
	})

	t.Run("empty assignment makes no api call", func(t *testing.T) {
		resp := env.MakeRequest(t, http.MethodPost, "/studies/1/assign", strings.NewReader(""),
			"application/x-www-form-urlencoded", "application/json")
		readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Zero(t, env.CountRequests(t, http.MethodPost, "/api/studies/1/assign"))
	})

	t.Run("assign selected respondents", func(t *testing.T) {
		before := env.CountRequests(t, http.MethodGet, "/api/studies/1")

		form := url.Values{"respondent_ids": {"3", "7"}}
		resp := env.MakeRequest(t, http.MethodPost, "/studies/1/assign", strings.NewReader(form.Encode()),
			"application/x-www-form-urlencoded", "application/json")
		body := readBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var out struct {
			Assignments []struct {
				ID int64 `json:"id"`
			} `json:"assignments"`
			Study struct {
				Selected []int64 `json:"selected"`
			} `json:"study"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &out))
		assert.Len(t, out.Assignments, 2)
		assert.Empty(t, out.Study.Selected)

		bodies := env.ReceivedBodies(t, http.MethodPost, "/api/studies/1/assign")
		require.Len(t, bodies, 1)
		assert.JSONEq(t, `{"respondent_ids":[3,7]}`, bodies[0])

		// После назначения исследование загружается заново
		assert.Equal(t, before+1, env.CountRequests(t, http.MethodGet, "/api/studies/1"))
	})

	t.Run("study not found", func(t *testing.T) {
		env.Stub(t, http.MethodGet, "/api/studies/99", nil, http.StatusNotFound, map[string]string{"detail": "Study not found"})

		resp := env.MakeRequest(t, http.MethodGet, "/studies/99", nil, "", "")
		body := readBody(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "Study not found")
	})

	t.Run("api down", func(t *testing.T) {
		env.Stub(t, http.MethodGet, "/health", nil, http.StatusServiceUnavailable, map[string]string{"status": "down"})

		resp := env.MakeRequest(t, http.MethodGet, "/", nil, "", "application/json")
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"api_status":"error"`)

		resp = env.MakeRequest(t, http.MethodGet, "/readyz", nil, "", "")
		readBody(t, resp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
