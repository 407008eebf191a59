// Package e2e provides end-to-end tests that ingest survey exports and answer questions over them.
package e2e

import (
	"fmt"

	"github.com/hyperjump/surveyrag/internal/ingest"
	"github.com/hyperjump/surveyrag/internal/models"
)

// Respondent is one survey row. Signature is a token that appears only in this row's answers.
type Respondent struct {
	ID           string
	Demographics string
	Answers      []string
	Signature    string
}

// Survey is one collection's export: column headers plus one respondent per row.
type Survey struct {
	Tag         models.IndexTag
	Index       string
	Questions   []string
	Respondents []Respondent
}

// QuestionTestCase is a question together with the collection it must route to and a
// "Question: Response" fragment that must reach the prompt.
type QuestionTestCase struct {
	Question         string
	ExpectedTag      models.IndexTag
	ExpectedFragment string
	Description      string
}

// Corpus holds the surveys and question test cases for E2E tests.
type Corpus struct {
	Surveys      []*Survey
	TestCases    []QuestionTestCase
	TotalRows    int
	TotalQueries int
}

const respondentsPerSurvey = 20

// BuildCorpus returns a christmas and a sustainability survey with respondentsPerSurvey rows each
// and one question test case per row.
func BuildCorpus() *Corpus {
	surveys := []*Survey{
		buildSurvey("christmas", "christmas-index",
			[]string{"How much will you spend on gifts?", "Where do you shop for presents?", "Anything else?"},
			func(i int, sig string) []string {
				return []string{
					fmt.Sprintf("About %d dollars", 100+i*10),
					[]string{"Mostly online", "Local markets", "Department stores"}[i%3],
					fmt.Sprintf("We always hang %s ornaments", sig),
				}
			}),
		buildSurvey("sustainability", "sustainability-index",
			[]string{"Do you recycle packaging?", "Would you pay more for eco products?", "Anything else?"},
			func(i int, sig string) []string {
				return []string{
					[]string{"Always", "Sometimes", "Never"}[i%3],
					[]string{"Yes", "No"}[i%2],
					fmt.Sprintf("I compost %s peelings weekly", sig),
				}
			}),
	}

	var cases []QuestionTestCase
	rows := 0
	for _, s := range surveys {
		lastQuestion := ingest.QuestionName(s.Questions[len(s.Questions)-1])
		for _, r := range s.Respondents {
			rows++
			cases = append(cases, QuestionTestCase{
				Question:         questionFor(s.Tag, r.Signature),
				ExpectedTag:      s.Tag,
				ExpectedFragment: lastQuestion + ": " + r.Answers[len(r.Answers)-1],
				Description:      fmt.Sprintf("%s respondent %s", s.Tag, r.ID),
			})
		}
	}
	return &Corpus{
		Surveys:      surveys,
		TestCases:    cases,
		TotalRows:    rows,
		TotalQueries: len(cases),
	}
}

func buildSurvey(tag models.IndexTag, index string, questions []string, answers func(i int, sig string) []string) *Survey {
	s := &Survey{Tag: tag, Index: index, Questions: questions}
	demographics := []string{"Age 18-24", "Age 25-34", "Age 35-44", "Age 45+"}
	for i := 0; i < respondentsPerSurvey; i++ {
		sig := signature(string(tag[0]), i)
		s.Respondents = append(s.Respondents, Respondent{
			ID:           fmt.Sprintf("%s-%02d", tag, i),
			Demographics: demographics[i%len(demographics)],
			Answers:      answers(i, sig),
			Signature:    sig,
		})
	}
	return s
}

// signature returns a letters-only token unique per prefix and i, so the analyzer keeps it whole.
func signature(prefix string, i int) string {
	return "zq" + prefix + string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func questionFor(tag models.IndexTag, sig string) string {
	if tag == "christmas" {
		return fmt.Sprintf("What did christmas shoppers say about %s ornaments?", sig)
	}
	return fmt.Sprintf("How do sustainable households handle %s peelings?", sig)
}

// Documents converts the survey into the documents ingestion is expected to produce.
func (s *Survey) Documents() []models.RetrievedDocument {
	docs := make([]models.RetrievedDocument, 0, len(s.Respondents))
	for _, r := range s.Respondents {
		doc := models.RetrievedDocument{ID: r.ID, Demographics: r.Demographics}
		for i, q := range s.Questions {
			doc.QuestionsAndResponses = append(doc.QuestionsAndResponses, models.QAPair{
				Question: ingest.QuestionName(q),
				Response: r.Answers[i],
			})
		}
		docs = append(docs, doc)
	}
	return docs
}
