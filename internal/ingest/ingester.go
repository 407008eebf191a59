package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/search"
)

// Report counts the outcome of one ingestion run.
type Report struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Ingester uploads documents into a search collection.
type Ingester struct {
	service search.Service
	logger  *zap.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets a logger for per-document failures.
func WithLogger(l *zap.Logger) Option {
	return func(i *Ingester) {
		i.logger = l
	}
}

// NewIngester returns an Ingester writing to service.
func NewIngester(service search.Service, opts ...Option) *Ingester {
	i := &Ingester{service: service, logger: zap.NewNop()}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Ingest uploads docs into index one at a time. Documents without any text are skipped;
// an upload failure is counted and does not stop the run. It returns early only when
// ctx is cancelled.
func (i *Ingester) Ingest(ctx context.Context, index string, docs []models.RetrievedDocument) (Report, error) {
	var rep Report
	for n := range docs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		doc := &docs[n]
		if !doc.HasText() {
			i.logger.Debug("skipping empty document", zap.String("id", doc.ID))
			rep.Skipped++
			continue
		}
		if err := i.service.Upload(ctx, index, doc); err != nil {
			i.logger.Warn("failed to index document", zap.String("index", index), zap.String("id", doc.ID), zap.Error(err))
			rep.Failed++
			continue
		}
		rep.Succeeded++
	}
	i.logger.Info("ingestion completed",
		zap.String("index", index),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", rep.Failed),
		zap.Int("skipped", rep.Skipped))
	return rep, nil
}
