package source

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "github.com/JPrier/JobSearch/internal/errors"
	"github.com/JPrier/JobSearch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBoard struct {
	name     string
	postings []models.Posting
	err      error
}

func (f *fakeBoard) Name() string {
	return f.name
}

func (f *fakeBoard) Fetch(_ context.Context, _ models.SearchParams) ([]models.Posting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.postings, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestFetchConcatenatesInBoardOrder(t *testing.T) {
	boards := []Board{
		&fakeBoard{name: "a", postings: []models.Posting{{Title: "a1"}, {Title: "a2"}}},
		&fakeBoard{name: "b", postings: []models.Posting{{Title: "b1"}}},
	}
	f := NewFetcher(boards, nil, 0, 4, zap.NewNop())

	got, err := f.Fetch(context.Background(), models.SearchParams{ResultsWanted: 10})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "a1", got[0].Title)
	assert.Equal(t, "a2", got[1].Title)
	assert.Equal(t, "b1", got[2].Title)
	for i, p := range got {
		assert.Equal(t, i, p.FetchIndex)
	}
}

func TestFetchAppliesPerBoardCap(t *testing.T) {
	boards := []Board{
		&fakeBoard{name: "a", postings: []models.Posting{{Title: "a1"}, {Title: "a2"}, {Title: "a3"}}},
		&fakeBoard{name: "b", postings: []models.Posting{{Title: "b1"}, {Title: "b2"}}},
	}
	f := NewFetcher(boards, nil, 0, 2, zap.NewNop())

	got, err := f.Fetch(context.Background(), models.SearchParams{ResultsWanted: 2})
	require.NoError(t, err)

	// Cap is per board, not global.
	require.Len(t, got, 4)
}

func TestFetchDropsStalePostings(t *testing.T) {
	now := time.Now()
	boards := []Board{
		&fakeBoard{name: "a", postings: []models.Posting{
			{Title: "fresh", DatePosted: timePtr(now.Add(-2 * time.Hour))},
			{Title: "stale", DatePosted: timePtr(now.Add(-100 * time.Hour))},
			{Title: "undated"},
		}},
	}
	f := NewFetcher(boards, nil, 0, 1, zap.NewNop())

	got, err := f.Fetch(context.Background(), models.SearchParams{ResultsWanted: 10, MaxAgeHours: 24})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].Title)
	// Undated postings survive the recency cut.
	assert.Equal(t, "undated", got[1].Title)
}

func TestFetchPropagatesBoardFailure(t *testing.T) {
	boards := []Board{
		&fakeBoard{name: "a", postings: []models.Posting{{Title: "a1"}}},
		&fakeBoard{name: "b", err: errors.New("rate limited")},
	}
	f := NewFetcher(boards, nil, 0, 2, zap.NewNop())

	_, err := f.Fetch(context.Background(), models.SearchParams{ResultsWanted: 10})
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrTypeUnavailable))
}

func TestSelectUnknownBoard(t *testing.T) {
	registry := map[string]Board{"a": &fakeBoard{name: "a"}}

	_, err := Select([]string{"a", "nope"}, registry)
	require.Error(t, err)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrTypeConfig))
}

func TestSelectPreservesConfiguredOrder(t *testing.T) {
	registry := map[string]Board{
		"a": &fakeBoard{name: "a"},
		"b": &fakeBoard{name: "b"},
	}

	boards, err := Select([]string{"b", "a"}, registry)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "b", boards[0].Name())
	assert.Equal(t, "a", boards[1].Name())
}

func TestPostingIDDeterministic(t *testing.T) {
	first := postingID("remoteok", "https://example.com/job/1")
	second := postingID("remoteok", "https://example.com/job/1")
	other := postingID("weworkremotely", "https://example.com/job/1")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}
