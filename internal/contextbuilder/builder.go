// Package contextbuilder flattens retrieved survey documents into the prompt context.
package contextbuilder

import (
	"strings"

	"github.com/hyperjump/surveyrag/internal/models"
)

// Sentinel is returned when no document contributed any text.
const Sentinel = "No relevant context found."

// Build concatenates, in input order, each document's content followed by its
// "Question: Response" pairs. It never fails; missing fields are skipped.
func Build(docs []models.RetrievedDocument) string {
	var b strings.Builder
	for i := range docs {
		writeDocument(&b, &docs[i])
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return Sentinel
	}
	return out
}

func writeDocument(b *strings.Builder, d *models.RetrievedDocument) {
	if c := d.Content.OrEmpty(); strings.TrimSpace(c) != "" {
		b.WriteString(c)
		b.WriteByte(' ')
	}
	if len(d.QuestionsAndResponses) == 0 {
		return
	}
	pairs := make([]string, 0, len(d.QuestionsAndResponses))
	for _, qa := range d.QuestionsAndResponses {
		if qa.Question == "" && qa.Response == "" {
			continue
		}
		pairs = append(pairs, qa.Question+": "+qa.Response)
	}
	if len(pairs) == 0 {
		return
	}
	b.WriteString(strings.Join(pairs, " "))
	b.WriteByte('\n')
}
