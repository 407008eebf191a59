package e2e

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions is the list of survey export formats used in E2E tests.
var SupportedFileExtensions = []string{".json", ".csv", ".xlsx"}

// WriteSurveyFile renders the survey in the format named by ext and returns the file bytes.
func WriteSurveyFile(ext string, s *Survey) ([]byte, error) {
	switch ext {
	case ".json":
		return json.MarshalIndent(s.Documents(), "", "  ")
	case ".csv":
		return surveyCSV(s)
	case ".xlsx":
		return surveyXlsx(s)
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

func surveyTable(s *Survey) [][]string {
	header := append([]string{"id", "Demographics"}, s.Questions...)
	table := [][]string{header}
	for _, r := range s.Respondents {
		table = append(table, append([]string{r.ID, r.Demographics}, r.Answers...))
	}
	return table
}

func surveyCSV(s *Survey) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(surveyTable(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func surveyXlsx(s *Survey) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range surveyTable(s) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Sheet1", cell, &cells); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
