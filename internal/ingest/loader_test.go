package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestQuestionName(t *testing.T) {
	tests := map[string]string{
		"How much will you spend?":  "How_much_will_you_spend_",
		"  Q1. Favourite gift ":     "Q1__Favourite_gift",
		"2023 budget (£)":           "budget____",
		"123":                       "",
		"already_valid":             "already_valid",
	}
	for in, want := range tests {
		if got := QuestionName(in); got != want {
			t.Errorf("QuestionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadBytes_CSV(t *testing.T) {
	content := []byte("\xEF\xBB\xBFDemographics,How much will you spend?,Unnamed: 3,Where do you shop?\n" +
		"18-24,100-200,x,Online\n" +
		",  ,y,\n" +
		",300,,\n")
	docs, err := LoadBytes(content, ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2 (blank row skipped): %+v", len(docs), docs)
	}
	first := docs[0]
	if first.Demographics != "18-24" || first.ID == "" {
		t.Errorf("first = %+v", first)
	}
	if len(first.QuestionsAndResponses) != 2 ||
		first.QuestionsAndResponses[0].Question != "How_much_will_you_spend_" ||
		first.QuestionsAndResponses[1].Response != "Online" {
		t.Errorf("pairs = %+v", first.QuestionsAndResponses)
	}
	if docs[1].Demographics != MissingDemographics {
		t.Errorf("missing demographics = %q", docs[1].Demographics)
	}
	if docs[0].ID == docs[1].ID {
		t.Error("generated ids must be unique")
	}
}

func TestLoadBytes_CSVWithIDColumn(t *testing.T) {
	docs, err := LoadBytes([]byte("id,Recycle\nr-1,Yes\n"), ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "r-1" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestLoadBytes_CSVEmpty(t *testing.T) {
	if _, err := LoadBytes(nil, ".csv"); err == nil {
		t.Error("expected error for empty CSV")
	}
}

func TestLoadBytes_JSON(t *testing.T) {
	content := []byte(`[
		{"id": "a", "content": "Summary text", "Demographics": "Urban"},
		{"QuestionsAndResponses": [{"Question": "Recycle", "Response": "Yes"}]}
	]`)
	docs, err := LoadBytes(content, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs", len(docs))
	}
	if docs[0].ID != "a" || docs[0].Content.OrEmpty() != "Summary text" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].ID == "" || docs[1].Content.IsPresent() {
		t.Errorf("docs[1] = %+v", docs[1])
	}
}

func TestLoadBytes_invalid(t *testing.T) {
	if _, err := LoadBytes([]byte("{not json"), ".json"); err == nil {
		t.Error("expected JSON error")
	}
	if _, err := LoadBytes([]byte("x"), ".pdf"); err == nil {
		t.Error("expected unsupported type error")
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_ = f.SetCellValue("Sheet1", "A1", "Demographics")
	_ = f.SetCellValue("Sheet1", "B1", "Favourite eco brand")
	_ = f.SetCellValue("Sheet1", "A2", "Female 35-44")
	_ = f.SetCellValue("Sheet1", "B2", "Patagonia")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	path := filepath.Join(t.TempDir(), "survey.XLSX")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	docs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs", len(docs))
	}
	if docs[0].Demographics != "Female 35-44" ||
		len(docs[0].QuestionsAndResponses) != 1 ||
		docs[0].QuestionsAndResponses[0].Question != "Favourite_eco_brand" {
		t.Errorf("doc = %+v", docs[0])
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected read error")
	}
}
