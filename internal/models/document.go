// Package models defines the data carried through a query: questions, collection tags,
// retrieved documents and answers.
package models

import (
	"github.com/samber/mo"
)

// IndexTag names one of the configured document collections (e.g. "christmas").
type IndexTag string

// QAPair is one survey question with the respondent's answer.
type QAPair struct {
	Question string `json:"Question,omitempty"`
	Response string `json:"Response,omitempty"`
}

// RetrievedDocument is a record returned by the search service. Either field may be absent.
// Extra fields returned by the service (id, Demographics, scores) are ignored by context building.
type RetrievedDocument struct {
	ID                    string            `json:"id,omitempty"`
	Content               mo.Option[string] `json:"content"`
	Demographics          string            `json:"Demographics,omitempty"`
	QuestionsAndResponses []QAPair          `json:"QuestionsAndResponses,omitempty"`
	Score                 float64           `json:"@search.score,omitempty"`
}

// HasText reports whether the document can contribute anything to a context.
func (d *RetrievedDocument) HasText() bool {
	if d.Content.OrEmpty() != "" {
		return true
	}
	for _, qa := range d.QuestionsAndResponses {
		if qa.Question != "" || qa.Response != "" {
			return true
		}
	}
	return false
}
