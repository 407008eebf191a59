// Package ingest loads survey exports and uploads them into a search collection.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/surveyrag/internal/models"
)

// Extensions lists the export formats Load understands.
var Extensions = []string{".json", ".csv", ".xlsx"}

// Load reads the file at path and returns its survey documents.
// Supported formats: .json (array of documents), .csv and .xlsx (one respondent per row).
func Load(path string) ([]models.RetrievedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadBytes(content, strings.ToLower(filepath.Ext(path)))
}

// LoadBytes parses content based on the given extension, which includes the leading dot.
func LoadBytes(content []byte, ext string) ([]models.RetrievedDocument, error) {
	switch ext {
	case ".json":
		return loadJSON(content)
	case ".csv":
		return loadCSV(content)
	case ".xlsx":
		return loadExcel(content)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

func loadJSON(content []byte) ([]models.RetrievedDocument, error) {
	var docs []models.RetrievedDocument
	if err := json.Unmarshal(bytes.TrimPrefix(content, utf8BOM), &docs); err != nil {
		return nil, fmt.Errorf("parse JSON documents: %w", err)
	}
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
	}
	return docs, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}
