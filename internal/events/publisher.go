package events

import (
	"context"
	"encoding/json"

	"github.com/JPrier/JobSearch/internal/config"
	"github.com/JPrier/JobSearch/internal/errors"
	"github.com/JPrier/JobSearch/internal/models"
	"github.com/JPrier/JobSearch/internal/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobsearch/events")

const (
	ExportedSubject = "jobs.exported"
)

// Publisher announces exported postings so downstream consumers can react
// to each run without reading the export file.
type Publisher interface {
	PublishExported(ctx context.Context, posting models.Posting) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger, cfg *config.Config) (Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATS.ConnTimeout),
		nats.Name("jobsearch"),
		nats.RetryOnFailedConnect(true),
	}

	conn, err := nats.Connect(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, errors.Internal("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

func (p *natsPublisher) PublishExported(ctx context.Context, posting models.Posting) error {
	_, span := tracer.Start(ctx, "PublishExported")
	defer span.End()

	data, err := json.Marshal(posting)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling posting", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", ExportedSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(ExportedSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish posting",
			zap.String("id", posting.ID),
			zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published posting",
		zap.String("id", posting.ID),
		zap.String("subject", ExportedSubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
