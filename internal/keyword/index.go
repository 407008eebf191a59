// Package keyword provides per-collection full-text indexes for the local search backend.
package keyword

import (
	"context"
)

// Index defines keyword search operations over one collection.
type Index interface {
	Index(ctx context.Context, id string, doc *Document) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	Close() error
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
}

// Document is the searchable projection of a survey record.
type Document struct {
	Content      string `json:"content"`
	Demographics string `json:"demographics"`
	Responses    string `json:"responses"`
}

// Result is a single keyword search hit.
type Result struct {
	ID    string
	Score float64
}
