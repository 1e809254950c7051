// Package testutil provides an in-memory stand-in for the research API used by
// package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aidar/participant-manager/internal/config"
	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/repository/httpapi"
)

// RecordedRequest is one request received by the stub.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// StubAPI serves the research API endpoints from memory.
type StubAPI struct {
	Server *httptest.Server

	mu           sync.Mutex
	respondents  []domain.Respondent
	studies      map[int64]*domain.Study
	studyOrder   []int64
	matches      map[int64][]int64
	failures     map[string]int
	requests     []RecordedRequest
	nextAssignID int64
	healthStatus string

	// BeforeRespond, when set, runs before every response. Tests use it to
	// delay or gate responses.
	BeforeRespond func(r *http.Request)
}

// NewStubAPI starts a stub server that is closed when the test ends.
func NewStubAPI(t *testing.T) *StubAPI {
	t.Helper()

	s := &StubAPI{
		studies:      make(map[int64]*domain.Study),
		matches:      make(map[int64][]int64),
		failures:     make(map[string]int),
		nextAssignID: 1,
		healthStatus: "healthy",
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/health", s.health)
	r.Get("/api/respondents", s.listRespondents)
	r.Post("/api/respondents", s.createRespondent)
	r.Get("/api/respondents/{id}", s.getRespondent)
	r.Get("/api/studies", s.listStudies)
	r.Get("/api/studies/{id}", s.getStudy)
	r.Get("/api/studies/{id}/match", s.findMatches)
	r.Post("/api/studies/{id}/assign", s.assign)
	r.Patch("/api/assignments/{id}", s.updateAssignment)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Server.Close)
	return s
}

// Client returns an API client pointed at the stub.
func (s *StubAPI) Client(t *testing.T) *httpapi.Client {
	t.Helper()
	c, err := httpapi.New(config.APIConfig{BaseURL: s.Server.URL, Timeout: 5 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create API client: %v", err)
	}
	return c
}

// AddRespondents appends respondents to the store.
func (s *StubAPI) AddRespondents(rs ...domain.Respondent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondents = append(s.respondents, rs...)
}

// AddStudy stores a study and the ids of respondents matching it.
func (s *StubAPI) AddStudy(study domain.Study, matchIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := study
	if _, ok := s.studies[st.ID]; !ok {
		s.studyOrder = append(s.studyOrder, st.ID)
	}
	s.studies[st.ID] = &st
	s.matches[st.ID] = append([]int64(nil), matchIDs...)
}

// FailPath makes every request to path answer with status.
func (s *StubAPI) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// SetHealth sets the status reported by /health.
func (s *StubAPI) SetHealth(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthStatus = status
}

// Requests returns a copy of the recorded requests.
func (s *StubAPI) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestsTo returns recorded requests for method and path.
func (s *StubAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests.
func (s *StubAPI) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *StubAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
		})
		status, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if s.BeforeRespond != nil {
			s.BeforeRespond(r)
		}
		if failing {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *StubAPI) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.healthStatus
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.Health{Status: status})
}

func (s *StubAPI) listRespondents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ageMin, _ := strconv.Atoi(q.Get("age_min"))
	ageMax, _ := strconv.Atoi(q.Get("age_max"))

	s.mu.Lock()
	var filtered []domain.Respondent
	for _, resp := range s.respondents {
		if v := q.Get("state"); v != "" && resp.State != v {
			continue
		}
		if v := q.Get("household_income"); v != "" && resp.HouseholdIncome != v {
			continue
		}
		if ageMin > 0 && resp.Age < ageMin {
			continue
		}
		if ageMax > 0 && resp.Age > ageMax {
			continue
		}
		filtered = append(filtered, resp)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(filtered, q))
}

func (s *StubAPI) createRespondent(w http.ResponseWriter, r *http.Request) {
	var in domain.RespondentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	created := domain.Respondent{
		ID:              int64(len(s.respondents) + 1),
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		State:           in.State,
		Age:             in.Age,
		HouseholdIncome: in.HouseholdIncome,
		Occupation:      in.Occupation,
		IsActive:        in.IsActive,
	}
	s.respondents = append(s.respondents, created)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *StubAPI) getRespondent(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, resp := range s.respondents {
		if resp.ID == id {
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Respondent not found"})
}

func (s *StubAPI) listStudies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	var filtered []domain.Study
	for _, id := range s.studyOrder {
		st := s.studies[id]
		if v := q.Get("status"); v != "" && string(st.Status) != v {
			continue
		}
		filtered = append(filtered, *st)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(filtered, q))
}

func (s *StubAPI) getStudy(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studies[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Study not found"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *StubAPI) findMatches(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	var matched []domain.Respondent
	for _, rid := range s.matches[id] {
		for _, resp := range s.respondents {
			if resp.ID == rid {
				matched = append(matched, resp)
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, paginate(matched, r.URL.Query()))
}

func (s *StubAPI) assign(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req domain.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.studies[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Study not found"})
		return
	}

	assigned := make(map[int64]bool, len(req.RespondentIDs))
	out := make([]domain.Assignment, 0, len(req.RespondentIDs))
	for _, rid := range req.RespondentIDs {
		assigned[rid] = true
		out = append(out, domain.Assignment{
			ID:           s.nextAssignID,
			StudyID:      id,
			RespondentID: rid,
			Status:       domain.AssignmentInvited,
		})
		s.nextAssignID++
	}
	st.AssignmentCounts.Invited += len(out)

	remaining := s.matches[id][:0]
	for _, rid := range s.matches[id] {
		if !assigned[rid] {
			remaining = append(remaining, rid)
		}
	}
	s.matches[id] = remaining

	writeJSON(w, http.StatusOK, out)
}

func (s *StubAPI) updateAssignment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var patch domain.AssignmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	out := domain.Assignment{ID: id, Status: domain.AssignmentInvited}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	writeJSON(w, http.StatusOK, out)
}

func paginate[T any](items []T, q url.Values) domain.Page[T] {
	total := len(items)
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := domain.Page[T]{Items: items[offset:end], Total: total}
	page.Normalize()
	return page
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
