// Package retrieval fetches the top-ranked survey documents for a routed question.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
	"github.com/hyperjump/surveyrag/internal/search"
)

// Failure messages returned to callers.
const (
	MsgCollectionUnavailable = "No valid search client available."
	MsgNoResults             = "No relevant information found for the provided question."
	MsgServiceFailure        = "An unexpected error occurred while querying the search service."
)

// DefaultTopK is the number of documents requested when none is configured.
const DefaultTopK = 5

// Retriever resolves a collection tag to its index and queries the search service.
type Retriever struct {
	service search.Service
	indexes map[models.IndexTag]string
	topK    int
	logger  *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets a logger for retrieval events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) {
		r.logger = l
	}
}

// WithTopK overrides the number of documents requested per query.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// New returns a Retriever over the configured collections.
func New(service search.Service, cols []config.CollectionConfig, opts ...Option) *Retriever {
	r := &Retriever{
		service: service,
		indexes: make(map[models.IndexTag]string, len(cols)),
		topK:    DefaultTopK,
		logger:  zap.NewNop(),
	}
	for _, c := range cols {
		r.indexes[c.Tag] = c.Index
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Retrieve returns up to topK documents for question from the collection named by tag,
// in the service's ranking order. An unknown tag, an empty result and a service failure
// each produce a distinct outcome kind.
func (r *Retriever) Retrieve(ctx context.Context, tag models.IndexTag, question models.Question) ([]models.RetrievedDocument, error) {
	index, ok := r.indexes[tag]
	if !ok || r.service == nil {
		return nil, outcome.New(outcome.KindCollectionUnavailable, MsgCollectionUnavailable)
	}

	docs, err := r.service.Search(ctx, index, string(question), r.topK)
	if err != nil {
		r.logger.Error("search failed", zap.String("index", index), zap.Error(err))
		return nil, outcome.Wrap(outcome.KindRetrievalService, MsgServiceFailure, err)
	}
	if len(docs) > r.topK {
		docs = docs[:r.topK]
	}
	if len(docs) == 0 {
		r.logger.Info("no documents matched", zap.String("index", index))
		return nil, outcome.New(outcome.KindNoResults, MsgNoResults)
	}
	r.logger.Debug("documents retrieved", zap.String("index", index), zap.Int("count", len(docs)))
	return docs, nil
}
