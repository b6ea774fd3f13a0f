package pipeline

import (
	"context"
	"sort"

	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/events"
	"github.com/JPrier/JobSearch/internal/export"
	"github.com/JPrier/JobSearch/internal/filter"
	"github.com/JPrier/JobSearch/internal/models"
	"github.com/JPrier/JobSearch/internal/notify"
	"github.com/JPrier/JobSearch/internal/score"
	"github.com/JPrier/JobSearch/internal/source"
	"github.com/JPrier/JobSearch/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobsearch/pipeline")

// Pipeline is the single-pass batch run: fetch, de-duplicate, filter, score,
// sort, export. Publisher and notifier are optional post-export sinks; their
// failures are logged but do not fail a run whose export already succeeded.
type Pipeline struct {
	fetcher   *source.Fetcher
	titles    *filter.Title
	locations *filter.Location
	scorer    *score.Scorer
	exporter  *export.CSVWriter
	publisher events.Publisher
	notifier  *notify.Notifier
	logger    *zap.Logger
	cfg       *config.Config
}

func New(
	fetcher *source.Fetcher,
	titles *filter.Title,
	locations *filter.Location,
	scorer *score.Scorer,
	exporter *export.CSVWriter,
	publisher events.Publisher,
	notifier *notify.Notifier,
	logger *zap.Logger,
	cfg *config.Config,
) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		titles:    titles,
		locations: locations,
		scorer:    scorer,
		exporter:  exporter,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes one pass and returns the export file path. Zero postings,
// before or after filtering, still produce a valid empty export.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	params := models.SearchParams{
		Term:          p.cfg.SearchTerm,
		Location:      p.cfg.Location,
		ResultsWanted: p.cfg.ResultsWanted,
		MaxAgeHours:   p.cfg.MaxAgeHours,
		RemoteOnly:    p.cfg.RemoteOnly,
	}

	fetched, err := p.fetcher.Fetch(ctx, params)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	unique := deduplicate(fetched)
	kept := p.applyFilters(unique)

	for i := range kept {
		kept[i].Score = p.scorer.Score(kept[i])
		kept[i].Scored = true
	}

	sortPostings(kept)

	span.SetAttributes(
		telemetry.Int("postings.fetched", len(fetched)),
		telemetry.Int("postings.exported", len(kept)),
	)
	p.logger.Info("pipeline pass complete",
		zap.Int("fetched", len(fetched)),
		zap.Int("unique", len(unique)),
		zap.Int("exported", len(kept)))

	path, err := p.exporter.Write(kept)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	p.publish(ctx, kept)
	p.sendDigest(kept)

	return path, nil
}

func (p *Pipeline) applyFilters(postings []models.Posting) []models.Posting {
	var kept []models.Posting
	for _, posting := range postings {
		if !p.titles.Accepts(posting.Title) {
			continue
		}
		if !p.locations.Accepts(posting.Location, posting.Remote) {
			continue
		}
		kept = append(kept, posting)
	}
	return kept
}

func (p *Pipeline) publish(ctx context.Context, postings []models.Posting) {
	if p.publisher == nil {
		return
	}
	for _, posting := range postings {
		if err := p.publisher.PublishExported(ctx, posting); err != nil {
			p.logger.Warn("failed to publish exported posting",
				zap.String("id", posting.ID),
				zap.Error(err))
		}
	}
}

func (p *Pipeline) sendDigest(postings []models.Posting) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.SendDigest(postings); err != nil {
		p.logger.Warn("failed to send telegram digest", zap.Error(err))
	}
}

// deduplicate keeps the first occurrence of each posting key, preserving
// fetch order.
func deduplicate(postings []models.Posting) []models.Posting {
	seen := make(map[string]bool, len(postings))
	var unique []models.Posting
	for _, p := range postings {
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}
	return unique
}

// sortPostings orders by date posted descending, then score descending. The
// sort is stable and the input carries fetch order, so exact ties keep their
// original relative order. Undated postings sort after dated ones.
func sortPostings(postings []models.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		di, dj := postings[i].DatePosted, postings[j].DatePosted
		switch {
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.After(*dj)
		}
		return postings[i].Score > postings[j].Score
	})
}
