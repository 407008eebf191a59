package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/mo"

	"github.com/hyperjump/surveyrag/internal/models"
)

// ErrNotFound is returned when a document does not exist in the collection.
var ErrNotFound = errors.New("document not found")

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS survey_documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		content TEXT,
		demographics TEXT,
		responses TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_survey_documents_created_at ON survey_documents(collection, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// PutDocument inserts or replaces a document. Content is stored as NULL when absent.
func (s *SQLiteStorage) PutDocument(ctx context.Context, collection string, doc *models.RetrievedDocument) error {
	responsesJSON, err := json.Marshal(doc.QuestionsAndResponses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}
	var content sql.NullString
	if v, ok := doc.Content.Get(); ok {
		content = sql.NullString{String: v, Valid: true}
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO survey_documents (collection, id, content, demographics, responses, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET
		   content = excluded.content,
		   demographics = excluded.demographics,
		   responses = excluded.responses,
		   updated_at = excluded.updated_at`,
		collection, doc.ID, content, doc.Demographics, string(responsesJSON), now, now,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.RetrievedDocument, error) {
	var (
		doc           models.RetrievedDocument
		content       sql.NullString
		demographics  sql.NullString
		responsesJSON sql.NullString
	)
	if err := row.Scan(&doc.ID, &content, &demographics, &responsesJSON); err != nil {
		return nil, err
	}
	if content.Valid {
		doc.Content = mo.Some(content.String)
	} else {
		doc.Content = mo.None[string]()
	}
	doc.Demographics = demographics.String
	if responsesJSON.Valid && responsesJSON.String != "" {
		if err := json.Unmarshal([]byte(responsesJSON.String), &doc.QuestionsAndResponses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
		}
	}
	return &doc, nil
}

// GetDocument returns a document by collection and ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, collection, id string) (*models.RetrievedDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, demographics, responses
		 FROM survey_documents WHERE collection = ? AND id = ?`, collection, id,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM survey_documents WHERE collection = ? AND id = ?`, collection, id)
	return err
}

// ListDocuments returns documents of a collection in insertion order with offset and limit.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, collection string, offset, limit int) ([]*models.RetrievedDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, demographics, responses
		 FROM survey_documents WHERE collection = ?
		 ORDER BY created_at, rowid LIMIT ? OFFSET ?`,
		collection, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.RetrievedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocuments returns the number of documents in a collection.
func (s *SQLiteStorage) CountDocuments(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_documents WHERE collection = ?`, collection).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
