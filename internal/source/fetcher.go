package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JPrier/JobSearch/internal/cache"
	"github.com/JPrier/JobSearch/internal/errors"
	"github.com/JPrier/JobSearch/internal/models"
	"github.com/JPrier/JobSearch/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobsearch/source")

// Fetcher runs every selected board for one search and materializes the
// combined posting collection. Board results are cached when a cache is
// configured; board failures propagate unchanged, with no retries.
type Fetcher struct {
	boards   []Board
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	workers  int
}

func NewFetcher(boards []Board, c cache.Cache, cacheTTL time.Duration, workers int, logger *zap.Logger) *Fetcher {
	if workers <= 0 {
		workers = 1
	}
	return &Fetcher{
		boards:   boards,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
		workers:  workers,
	}
}

// Fetch fans the boards out over a bounded worker pool and concatenates
// their results in registry order, so the fetch order is stable across runs.
// FetchIndex is assigned from that order.
func (f *Fetcher) Fetch(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	ctx, span := tracer.Start(ctx, "Fetcher.Fetch")
	defer span.End()
	span.SetAttributes(
		telemetry.String("search.term", params.Term),
		telemetry.Int("boards.count", len(f.boards)),
	)

	results := make([]models.PostingList, len(f.boards))
	boardChan := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	workers := f.workers
	if workers > len(f.boards) {
		workers = len(f.boards)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range boardChan {
				postings, err := f.fetchBoard(ctx, f.boards[idx], params)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				results[idx] = postings
			}
		}()
	}

	for idx := range f.boards {
		boardChan <- idx
	}
	close(boardChan)
	wg.Wait()

	if firstErr != nil {
		span.RecordError(firstErr)
		return nil, firstErr
	}

	var combined []models.Posting
	for _, postings := range results {
		combined = append(combined, postings...)
	}
	for i := range combined {
		combined[i].FetchIndex = i
	}

	span.SetAttributes(telemetry.Int("postings.count", len(combined)))
	f.logger.Info("fetched postings from all boards",
		zap.Int("boards", len(f.boards)),
		zap.Int("postings", len(combined)))

	return combined, nil
}

func (f *Fetcher) fetchBoard(ctx context.Context, board Board, params models.SearchParams) (models.PostingList, error) {
	ctx, span := tracer.Start(ctx, "Fetcher.fetchBoard")
	defer span.End()
	span.SetAttributes(telemetry.String("board", board.Name()))

	cacheKey := buildCacheKey(board.Name(), params)

	if f.cache != nil {
		var cached models.PostingList
		err := f.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			f.logger.Debug("cache hit for board results", zap.String("board", board.Name()))
			return f.trim(cached, params), nil
		} else if err != cache.ErrNotFound {
			span.SetAttributes(telemetry.String("cache.result", "error"))
			span.RecordError(err)
			f.logger.Warn("cache error for board results",
				zap.String("board", board.Name()),
				zap.Error(err))
		} else {
			span.SetAttributes(telemetry.String("cache.result", "miss"))
		}
	}

	postings, err := board.Fetch(ctx, params)
	if err != nil {
		span.RecordError(err)
		f.logger.Error("board fetch failed",
			zap.String("board", board.Name()),
			zap.Error(err))
		return nil, errors.Unavailable("fetching from "+board.Name(), err)
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, cacheKey, models.PostingList(postings), f.cacheTTL); err != nil {
			f.logger.Warn("failed to cache board results",
				zap.String("board", board.Name()),
				zap.Error(err))
		}
	}

	return f.trim(postings, params), nil
}

// trim applies the recency cut and the per-board result cap.
func (f *Fetcher) trim(postings models.PostingList, params models.SearchParams) models.PostingList {
	kept := postings
	if params.MaxAgeHours > 0 {
		cutoff := time.Now().Add(-time.Duration(params.MaxAgeHours) * time.Hour)
		kept = kept[:0:0]
		for _, p := range postings {
			// Undated postings are kept; the cut only drops provably stale ones.
			if p.DatePosted != nil && p.DatePosted.Before(cutoff) {
				continue
			}
			kept = append(kept, p)
		}
	}

	if params.ResultsWanted > 0 && len(kept) > params.ResultsWanted {
		kept = kept[:params.ResultsWanted]
	}
	return kept
}

func buildCacheKey(board string, params models.SearchParams) string {
	raw := strings.ToLower(board + ":" + params.Term + ":" + params.Location)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("jobsearch:boards:%s:%x", board, hash[:8])
}
