package models

import "strings"

// Question is the caller's natural-language question.
type Question string

// Normalize trims surrounding whitespace.
func (q Question) Normalize() Question {
	return Question(strings.TrimSpace(string(q)))
}

// IsEmpty reports whether the question is empty or whitespace-only.
func (q Question) IsEmpty() bool {
	return strings.TrimSpace(string(q)) == ""
}

// Answer is the generated text plus the routing facts that produced it.
type Answer struct {
	Text       string   `json:"response"`
	Collection IndexTag `json:"collection"`
	Documents  int      `json:"documents"`
}

// QueryRequest is the JSON body of POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question"`
}

// LegacyQueryResponse is the body of GET /query/, kept compatible with the web frontend.
type LegacyQueryResponse struct {
	Response string `json:"response"`
}

// ErrorResponse carries a short human-readable failure detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CollectionInfo describes one routing table entry.
type CollectionInfo struct {
	Tag       IndexTag `json:"tag"`
	Index     string   `json:"index"`
	Keywords  []string `json:"keywords"`
	Documents *int64   `json:"documents,omitempty"`
}
