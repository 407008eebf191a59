// Package search provides the document search services the retriever queries:
// a REST client for the hosted search index and an embedded Bleve/SQLite backend.
package search

import (
	"context"
	"strings"

	"github.com/hyperjump/surveyrag/internal/models"
)

// Service runs keyword queries against named indexes and accepts uploads into them.
type Service interface {
	// Search returns at most top documents from index ranked by relevance.
	Search(ctx context.Context, index, query string, top int) ([]models.RetrievedDocument, error)
	// Upload adds or replaces one document in index.
	Upload(ctx context.Context, index string, doc *models.RetrievedDocument) error
	// Count returns the number of documents in index.
	Count(ctx context.Context, index string) (int64, error)
}

// flattenResponses renders pairs as "Question: Response" joined by spaces.
func flattenResponses(pairs []models.QAPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.Question+": "+p.Response)
	}
	return strings.Join(parts, " ")
}
