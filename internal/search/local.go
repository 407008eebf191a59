package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/keyword"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/storage"
)

// IndexSource hands out the keyword index of a collection.
type IndexSource interface {
	Get(collection string) (keyword.Index, error)
	Close() error
}

const reindexPageSize = 200

// Local serves searches from per-collection keyword indexes with documents held in storage.
type Local struct {
	indexes IndexSource
	store   storage.Storage
	logger  *zap.Logger
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithLocalLogger sets a logger for skipped hits and indexing events.
func WithLocalLogger(l *zap.Logger) LocalOption {
	return func(s *Local) {
		s.logger = l
	}
}

// NewLocal returns a backend over indexes and store.
func NewLocal(indexes IndexSource, store storage.Storage, opts ...LocalOption) *Local {
	s := &Local{indexes: indexes, store: store, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search matches query in the collection's index and loads hit documents from storage in rank order.
// Hits whose stored document has disappeared are skipped and dropped from the index.
func (s *Local) Search(ctx context.Context, index, query string, top int) ([]models.RetrievedDocument, error) {
	idx, err := s.indexes.Get(index)
	if err != nil {
		return nil, err
	}
	hits, err := idx.Search(ctx, query, top)
	if err != nil {
		return nil, err
	}
	docs := make([]models.RetrievedDocument, 0, len(hits))
	for _, hit := range hits {
		doc, err := s.store.GetDocument(ctx, index, hit.ID)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("index hit without stored document", zap.String("index", index), zap.String("id", hit.ID))
			if err := idx.Delete(ctx, hit.ID); err != nil {
				s.logger.Warn("failed to drop stale hit", zap.String("id", hit.ID), zap.Error(err))
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", hit.ID, err)
		}
		doc.Score = hit.Score
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Upload stores doc and indexes its searchable text. When indexing fails the stored
// copy is removed again so storage and index stay in step.
func (s *Local) Upload(ctx context.Context, index string, doc *models.RetrievedDocument) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	idx, err := s.indexes.Get(index)
	if err != nil {
		return err
	}
	if err := s.store.PutDocument(ctx, index, doc); err != nil {
		return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}
	if err := idx.Index(ctx, doc.ID, keywordDocument(doc)); err != nil {
		if delErr := s.store.DeleteDocument(ctx, index, doc.ID); delErr != nil {
			s.logger.Error("failed to roll back stored document", zap.String("id", doc.ID), zap.Error(delErr))
		}
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}
	s.logger.Debug("document indexed", zap.String("index", index), zap.String("id", doc.ID))
	return nil
}

func keywordDocument(doc *models.RetrievedDocument) *keyword.Document {
	return &keyword.Document{
		Content:      doc.Content.OrEmpty(),
		Demographics: doc.Demographics,
		Responses:    flattenResponses(doc.QuestionsAndResponses),
	}
}

// Count returns the number of stored documents in index. A keyword index holding a
// different number is logged; Reindex brings it back in line.
func (s *Local) Count(ctx context.Context, index string) (int64, error) {
	n, err := s.store.CountDocuments(ctx, index)
	if err != nil {
		return 0, err
	}
	idx, err := s.indexes.Get(index)
	if err != nil {
		return 0, err
	}
	indexed, err := idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	if int64(indexed) != n {
		s.logger.Warn("keyword index out of step with storage",
			zap.String("index", index), zap.Int64("stored", n), zap.Uint64("indexed", indexed))
	}
	return n, nil
}

// Reindex writes every stored document of index into its keyword index again and
// returns how many were indexed. Index entries without a stored document are left for
// Search to drop.
func (s *Local) Reindex(ctx context.Context, index string) (int, error) {
	idx, err := s.indexes.Get(index)
	if err != nil {
		return 0, err
	}
	total := 0
	for offset := 0; ; offset += reindexPageSize {
		docs, err := s.store.ListDocuments(ctx, index, offset, reindexPageSize)
		if err != nil {
			return total, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, doc := range docs {
			if err := idx.Index(ctx, doc.ID, keywordDocument(doc)); err != nil {
				return total, fmt.Errorf("failed to index document %s: %w", doc.ID, err)
			}
			total++
		}
		if len(docs) < reindexPageSize {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
	s.logger.Info("collection reindexed", zap.String("index", index), zap.Int("documents", total))
	return total, nil
}

// Close releases the indexes and the store.
func (s *Local) Close() error {
	return errors.Join(s.indexes.Close(), s.store.Close())
}
