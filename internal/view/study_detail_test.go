package view

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/participant-manager/internal/domain"
	"github.com/aidar/participant-manager/internal/testutil"
)

func setupStudy(t *testing.T) (*testutil.StubAPI, *StudyDetail) {
	t.Helper()
	stub := testutil.NewStubAPI(t)
	stub.AddRespondents(
		domain.Respondent{ID: 3, FirstName: "Ann", State: "NY", Age: 31},
		domain.Respondent{ID: 7, FirstName: "Bob", State: "NY", Age: 44},
		domain.Respondent{ID: 9, FirstName: "Cid", State: "NJ", Age: 27},
	)
	stub.AddStudy(domain.Study{
		ID:          1,
		Title:       "Coffee habits",
		ClientName:  "Acme",
		Methodology: domain.MethodologyFocusGroup,
		Status:      domain.StatusRecruiting,
		TargetCount: 10,
		Criteria: []domain.Criterion{
			{FieldName: "state", Operator: domain.OpEq, Value: domain.CriterionValue{Values: []string{"NY"}}},
		},
	}, 3, 7, 9)
	return stub, NewStudyDetail(stub.Client(t), 1, 50, nil)
}

func TestStudyDetail_LoadDoesNotFetchMatches(t *testing.T) {
	stub, v := setupStudy(t)

	require.NoError(t, v.Load(context.Background()))

	snap := v.Snapshot()
	require.NotNil(t, snap.Study)
	assert.Equal(t, "Coffee habits", snap.Study.Title)
	assert.Equal(t, domain.AssignmentCounts{}, snap.Study.AssignmentCounts)
	assert.False(t, snap.ShowMatches)
	assert.Empty(t, snap.Matches)
	assert.Empty(t, stub.RequestsTo(http.MethodGet, "/api/studies/1/match"))
}

func TestStudyDetail_FindMatchesUsesMatchLimit(t *testing.T) {
	stub, v := setupStudy(t)

	require.NoError(t, v.FindMatches(context.Background()))

	snap := v.Snapshot()
	assert.True(t, snap.ShowMatches)
	assert.False(t, snap.MatchesLoading)
	assert.Len(t, snap.Matches, 3)
	assert.Equal(t, 3, snap.MatchTotal)

	reqs := stub.RequestsTo(http.MethodGet, "/api/studies/1/match")
	require.Len(t, reqs, 1)
	assert.Equal(t, "50", reqs[0].Query.Get("limit"))
}

func TestStudyDetail_ToggleSelection(t *testing.T) {
	_, v := setupStudy(t)

	v.Select(3, 7)
	assert.False(t, v.Toggle(7))
	assert.Equal(t, []int64{3}, v.Selection().IDs())

	assert.True(t, v.Toggle(9))
	assert.False(t, v.Toggle(9))
	assert.Equal(t, []int64{3}, v.Selection().IDs())

	snap := v.Snapshot()
	assert.True(t, snap.IsSelected(3))
	assert.False(t, snap.IsSelected(7))
	assert.True(t, snap.CanAssign())
}

func TestStudyDetail_AssignEmptySelection(t *testing.T) {
	stub, v := setupStudy(t)

	_, err := v.Assign(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptySelection)

	assert.Empty(t, stub.RequestsTo(http.MethodPost, "/api/studies/1/assign"))
	assert.False(t, v.Snapshot().CanAssign())
}

func TestStudyDetail_AssignSuccess(t *testing.T) {
	stub, v := setupStudy(t)
	ctx := context.Background()

	require.NoError(t, v.Load(ctx))
	require.NoError(t, v.FindMatches(ctx))
	v.Toggle(3)
	v.Toggle(7)
	stub.ResetRequests()

	assignments, err := v.Assign(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 2)

	assigns := stub.RequestsTo(http.MethodPost, "/api/studies/1/assign")
	require.Len(t, assigns, 1)
	var body domain.AssignRequest
	require.NoError(t, json.Unmarshal(assigns[0].Body, &body))
	assert.ElementsMatch(t, []int64{3, 7}, body.RespondentIDs)

	// Study and matches are fetched again after a successful assignment.
	assert.Len(t, stub.RequestsTo(http.MethodGet, "/api/studies/1"), 1)
	assert.Len(t, stub.RequestsTo(http.MethodGet, "/api/studies/1/match"), 1)

	snap := v.Snapshot()
	assert.Empty(t, snap.Selected)
	assert.False(t, snap.Assigning)
	assert.Nil(t, snap.Error)
	assert.Equal(t, 2, snap.Study.AssignmentCounts.Invited)
	require.Len(t, snap.Matches, 1)
	assert.Equal(t, int64(9), snap.Matches[0].ID)
	assert.Len(t, snap.Assigned, 2)
}

func TestStudyDetail_AssignFailureKeepsSelection(t *testing.T) {
	stub, v := setupStudy(t)
	ctx := context.Background()
	stub.FailPath("/api/studies/1/assign", http.StatusInternalServerError)

	v.Select(3, 7)
	_, err := v.Assign(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerError)

	snap := v.Snapshot()
	assert.Equal(t, []int64{3, 7}, snap.Selected)
	assert.False(t, snap.Assigning)
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.CodeServerError, snap.Error.Code)
	assert.True(t, snap.CanAssign())

	// Nothing is refetched after a failed assignment.
	assert.Empty(t, stub.RequestsTo(http.MethodGet, "/api/studies/1"))
}

func TestStudyDetail_NotFound(t *testing.T) {
	stub := testutil.NewStubAPI(t)
	v := NewStudyDetail(stub.Client(t), 42, 50, nil)

	err := v.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrStudyNotFound)

	snap := v.Snapshot()
	assert.True(t, snap.NotFound)
	assert.Nil(t, snap.Study)
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.CodeNotFound, snap.Error.Code)
}
