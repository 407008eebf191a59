// Package storage persists survey documents for the local search backend.
package storage

import (
	"context"

	"github.com/hyperjump/surveyrag/internal/models"
)

// Storage defines per-collection document persistence.
type Storage interface {
	PutDocument(ctx context.Context, collection string, doc *models.RetrievedDocument) error
	GetDocument(ctx context.Context, collection, id string) (*models.RetrievedDocument, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	ListDocuments(ctx context.Context, collection string, offset, limit int) ([]*models.RetrievedDocument, error)
	CountDocuments(ctx context.Context, collection string) (int64, error)
	Close() error
}
