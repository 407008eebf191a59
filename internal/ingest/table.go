package ingest

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/surveyrag/internal/models"
)

// DemographicsColumn is kept as a document field instead of becoming a question.
const DemographicsColumn = "Demographics"

// MissingDemographics fills the field when the row has no demographics value.
const MissingDemographics = "N/A"

var (
	nonIdentifier  = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	leadingNonWord = regexp.MustCompile(`^[^a-zA-Z]+`)
)

// QuestionName turns a column header into an identifier: every character outside
// [a-zA-Z0-9_] becomes "_" and anything before the first letter is dropped.
func QuestionName(header string) string {
	q := nonIdentifier.ReplaceAllString(strings.TrimSpace(header), "_")
	return leadingNonWord.ReplaceAllString(q, "")
}

type column struct {
	index    int
	question string
}

// fromTable converts a header row plus data rows into documents. Rows with no
// non-empty answers are dropped. An "id" column, when present, supplies document ids.
func fromTable(header []string, rows [][]string) []models.RetrievedDocument {
	idCol, demoCol := -1, -1
	var cols []column
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case strings.EqualFold(h, "id"):
			idCol = i
		case h == DemographicsColumn:
			demoCol = i
		case h == "" || strings.Contains(h, "Unnamed"):
		default:
			if q := QuestionName(h); q != "" {
				cols = append(cols, column{index: i, question: q})
			}
		}
	}

	docs := make([]models.RetrievedDocument, 0, len(rows))
	for _, row := range rows {
		var pairs []models.QAPair
		for _, c := range cols {
			v := cell(row, c.index)
			if v == "" {
				continue
			}
			pairs = append(pairs, models.QAPair{Question: c.question, Response: v})
		}
		if len(pairs) == 0 {
			continue
		}
		demographics := cell(row, demoCol)
		if demographics == "" {
			demographics = MissingDemographics
		}
		id := cell(row, idCol)
		if id == "" {
			id = uuid.NewString()
		}
		docs = append(docs, models.RetrievedDocument{
			ID:                    id,
			Demographics:          demographics,
			QuestionsAndResponses: pairs,
		})
	}
	return docs
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
