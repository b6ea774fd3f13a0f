package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/export"
	"github.com/JPrier/JobSearch/internal/filter"
	"github.com/JPrier/JobSearch/internal/models"
	"github.com/JPrier/JobSearch/internal/score"
	"github.com/JPrier/JobSearch/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBoard struct {
	postings []models.Posting
}

func (s *stubBoard) Name() string {
	return "stub"
}

func (s *stubBoard) Fetch(_ context.Context, _ models.SearchParams) ([]models.Posting, error) {
	return s.postings, nil
}

func testConfig(t *testing.T, dir string, remoteOnly bool) *config.Config {
	t.Helper()
	return &config.Config{
		SearchTerm:    "software engineer",
		ResultsWanted: 100,
		RemoteOnly:    remoteOnly,
		KeywordBonuses: map[string]float64{
			"backend": 1000,
		},
		RemoteBonus:    500,
		BenefitsBonus:  200,
		DropColumns:    []string{"description"},
		OutputDir:      dir,
		IncludePattern: regexp.MustCompile(`(?i)(software|engineer|backend|fullstack)`),
		ExcludePattern: regexp.MustCompile(`(?i)(principal|intern)`),
	}
}

func newTestPipeline(t *testing.T, cfg *config.Config, postings []models.Posting) *Pipeline {
	t.Helper()
	logger := zap.NewNop()
	fetcher := source.NewFetcher([]source.Board{&stubBoard{postings: postings}}, nil, 0, 1, logger)
	return New(
		fetcher,
		filter.NewTitle(cfg.IncludePattern, cfg.ExcludePattern),
		filter.NewLocation(cfg.RemoteOnly),
		score.New(cfg),
		export.NewCSVWriter(cfg.OutputDir, cfg.DropColumns, logger),
		nil,
		nil,
		logger,
		cfg,
	)
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func column(t *testing.T, rows [][]string, name string) []string {
	t.Helper()
	idx := -1
	for i, col := range rows[0] {
		if col == name {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0, "column %s not found", name)
	var out []string
	for _, row := range rows[1:] {
		out = append(out, row[idx])
	}
	return out
}

func TestRunFiltersScoresAndSorts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)

	earlier := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	postings := []models.Posting{
		{Title: "Backend Engineer", Description: "backend", Location: "Boston, MA", DatePosted: &earlier, JobURL: "u1"},
		{Title: "Principal Software Engineer", Location: "Boston, MA", DatePosted: &later, JobURL: "u2"},
		{Title: "Software Engineer", Location: "Berlin, Germany", DatePosted: &later, JobURL: "u3"},
		{Title: "Fullstack Engineer", Location: "Austin, TX", DatePosted: &later, JobURL: "u4"},
		{Title: "Gardener", Location: "Boston, MA", DatePosted: &later, JobURL: "u5"},
	}

	p := newTestPipeline(t, cfg, postings)
	path, err := p.Run(context.Background())
	require.NoError(t, err)

	rows := readRows(t, path)
	titles := column(t, rows, "title")

	// Principal (exclusion), Berlin (location), Gardener (inclusion) are gone.
	// Fullstack sorts first on the later date despite the lower score.
	assert.Equal(t, []string{"Fullstack Engineer", "Backend Engineer"}, titles)
}

func TestRunScoresOnlySurvivors(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), false)

	postings := []models.Posting{
		{Title: "Backend Engineer", Location: "Boston, MA", JobURL: "u1"},
		{Title: "Gardener", Location: "Boston, MA", JobURL: "u2"},
	}

	p := newTestPipeline(t, cfg, postings)

	fetched, err := p.fetcher.Fetch(context.Background(), models.SearchParams{ResultsWanted: 100})
	require.NoError(t, err)
	kept := p.applyFilters(deduplicate(fetched))

	require.Len(t, kept, 1)
	assert.Equal(t, "Backend Engineer", kept[0].Title)
	assert.False(t, kept[0].Scored)
}

func TestRunRemoteOnlyRejectsUnknown(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, true)

	postings := []models.Posting{
		{Title: "Backend Engineer", Remote: models.RemoteYes, JobURL: "u1"},
		{Title: "Software Engineer", Remote: models.RemoteUnknown, JobURL: "u2"},
		{Title: "Fullstack Engineer", Remote: models.RemoteNo, JobURL: "u3"},
	}

	p := newTestPipeline(t, cfg, postings)
	path, err := p.Run(context.Background())
	require.NoError(t, err)

	titles := column(t, readRows(t, path), "title")
	assert.Equal(t, []string{"Backend Engineer"}, titles)
}

func TestRunEmptyFetchProducesEmptyExport(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)

	p := newTestPipeline(t, cfg, nil)
	path, err := p.Run(context.Background())
	require.NoError(t, err)

	rows := readRows(t, path)
	require.Len(t, rows, 1)
}

func TestRunDeduplicatesByURL(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)

	postings := []models.Posting{
		{Title: "Backend Engineer", JobURL: "https://example.com/1"},
		{Title: "Backend Engineer", JobURL: "https://EXAMPLE.com/1"},
		{Title: "Software Engineer", JobURL: "https://example.com/2"},
	}

	p := newTestPipeline(t, cfg, postings)
	path, err := p.Run(context.Background())
	require.NoError(t, err)

	titles := column(t, readRows(t, path), "title")
	assert.Len(t, titles, 2)
}

func TestRunIdempotentContent(t *testing.T) {
	cfg := testConfig(t, t.TempDir(), false)

	posted := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	postings := []models.Posting{
		{Title: "Backend Engineer", Description: "backend benefits", Location: "Boston, MA", DatePosted: &posted, JobURL: "u1"},
		{Title: "Software Engineer", Location: "Austin, TX", DatePosted: &posted, JobURL: "u2"},
	}

	first := newTestPipeline(t, cfg, postings)
	firstPath, err := first.Run(context.Background())
	require.NoError(t, err)

	cfg2 := testConfig(t, t.TempDir(), false)
	second := newTestPipeline(t, cfg2, postings)
	secondPath, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, readRows(t, firstPath), readRows(t, secondPath))
}

func TestSortPostingsStable(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	postings := []models.Posting{
		{Title: "first", DatePosted: &date, Score: 100, FetchIndex: 0},
		{Title: "second", DatePosted: &date, Score: 100, FetchIndex: 1},
		{Title: "third", DatePosted: &date, Score: 100, FetchIndex: 2},
	}

	sortPostings(postings)

	assert.Equal(t, "first", postings[0].Title)
	assert.Equal(t, "second", postings[1].Title)
	assert.Equal(t, "third", postings[2].Title)
}

func TestSortPostingsDateThenScore(t *testing.T) {
	older := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	postings := []models.Posting{
		{Title: "old high score", DatePosted: &older, Score: 99999},
		{Title: "undated", Score: 50000},
		{Title: "new low score", DatePosted: &newer, Score: 1},
		{Title: "new high score", DatePosted: &newer, Score: 100},
	}

	sortPostings(postings)

	assert.Equal(t, "new high score", postings[0].Title)
	assert.Equal(t, "new low score", postings[1].Title)
	assert.Equal(t, "old high score", postings[2].Title)
	assert.Equal(t, "undated", postings[3].Title)
}
