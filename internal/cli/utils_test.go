package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/surveyrag/internal/ingest"
	"github.com/hyperjump/surveyrag/internal/models"
)

func TestWriteAnswer_JSON(t *testing.T) {
	answer := &models.Answer{Text: "62% buy online.", Collection: "christmas", Documents: 5}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, answer, OutputJSON); err != nil {
		t.Fatalf("WriteAnswer(json): %v", err)
	}
	var decoded models.Answer
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded != *answer {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteAnswer_text(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteAnswer(&buf, &models.Answer{Text: "Answer body", Collection: "sustainability", Documents: 2}, OutputText)
	out := buf.String()
	if !strings.Contains(out, "Answer body") || !strings.Contains(out, "collection: sustainability, documents: 2") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteError(&buf, "No relevant information found for the provided question.", OutputJSON)
	if !strings.Contains(buf.String(), `"detail": "No relevant information found`) {
		t.Errorf("json = %s", buf.String())
	}
	buf.Reset()
	_ = WriteError(&buf, "boom", OutputText)
	if buf.String() != "Error: boom\n" {
		t.Errorf("text = %q", buf.String())
	}
}

func TestWriteCollections_text(t *testing.T) {
	n := int64(12)
	cols := []models.CollectionInfo{
		{Tag: "christmas", Index: "christmas-index", Keywords: []string{"christmas", "holiday"}, Documents: &n},
		{Tag: "sustainability", Index: "sustainability-index", Keywords: []string{"eco"}},
	}
	var buf bytes.Buffer
	if err := WriteCollections(&buf, cols, OutputText); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[1], "12") || !strings.Contains(lines[1], "christmas, holiday") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "-") {
		t.Errorf("unknown count should render as '-': %q", lines[2])
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteReport(&buf, "christmas-index", ingest.Report{Succeeded: 3, Failed: 1}, OutputText)
	if !strings.Contains(buf.String(), "Total successful: 3, Total failed: 1") {
		t.Errorf("text = %q", buf.String())
	}
	buf.Reset()
	_ = WriteReport(&buf, "christmas-index", ingest.Report{Succeeded: 3}, OutputJSON)
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["index"] != "christmas-index" || decoded["succeeded"] != float64(3) {
		t.Errorf("json = %v", decoded)
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != OutputJSON || ParseFormat("yaml") != OutputText {
		t.Error("ParseFormat mismatch")
	}
}
