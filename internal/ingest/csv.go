package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/hyperjump/surveyrag/internal/models"
)

func loadCSV(content []byte) ([]models.RetrievedDocument, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV has no header row")
	}
	return fromTable(records[0], records[1:]), nil
}
