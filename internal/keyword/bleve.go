package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so "eco" does not collapse into other words.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("demographics", textFieldMapping)
	docMapping.AddFieldMappingsAt("responses", textFieldMapping)
	im.AddDocumentMapping("survey", docMapping)
	im.DefaultType = "survey"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory to force a re-ingest.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemIndex creates an in-memory Bleve index.
func NewMemIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a document by id, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, id string, doc *Document) error {
	return b.index.Index(id, doc)
}

// Search runs a match query over all fields and returns up to limit hits by descending score.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes a document from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Registry lazily opens one BleveIndex per collection under dir.
type Registry struct {
	dir string

	mu      sync.Mutex
	indexes map[string]Index
}

// NewRegistry returns a Registry rooted at dir. The directory is created on first use.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, indexes: make(map[string]Index)}
}

// Get returns the index for collection, opening or creating it if needed.
func (r *Registry) Get(collection string) (Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.indexes[collection]; ok {
		return idx, nil
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	idx, err := NewBleveIndex(filepath.Join(r.dir, unsafeName.ReplaceAllString(collection, "_")+".bleve"))
	if err != nil {
		return nil, err
	}
	r.indexes[collection] = idx
	return idx, nil
}

// Close closes every opened index and returns the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for name, idx := range r.indexes {
		if err := idx.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.indexes, name)
	}
	return first
}
