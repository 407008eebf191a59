// Package cli provides output helpers for the surveyrag commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/surveyrag/internal/ingest"
	"github.com/hyperjump/surveyrag/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the output format named by s; anything other than "json" is text.
func ParseFormat(s string) OutputFormat {
	if strings.EqualFold(s, string(OutputJSON)) {
		return OutputJSON
	}
	return OutputText
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer to w in the given format.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintf(w, "\n%s\n\n", answer.Text)
	fmt.Fprintf(w, "(collection: %s, documents: %d)\n", answer.Collection, answer.Documents)
	return nil
}

// WriteError writes a failure detail in the given format, matching the HTTP error body.
func WriteError(w io.Writer, detail string, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, models.ErrorResponse{Detail: detail})
	}
	_, err := fmt.Fprintf(w, "Error: %s\n", detail)
	return err
}

// WriteCollections writes the routing table.
func WriteCollections(w io.Writer, cols []models.CollectionInfo, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, cols)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tINDEX\tDOCUMENTS\tKEYWORDS")
	for _, c := range cols {
		docs := "-"
		if c.Documents != nil {
			docs = fmt.Sprintf("%d", *c.Documents)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Tag, c.Index, docs, strings.Join(c.Keywords, ", "))
	}
	return tw.Flush()
}

// WriteReport writes an ingestion summary.
func WriteReport(w io.Writer, index string, rep ingest.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			Index string `json:"index"`
			ingest.Report
		}{index, rep})
	}
	_, err := fmt.Fprintf(w, "Ingestion into %s completed. Total successful: %d, Total failed: %d, Skipped: %d\n",
		index, rep.Succeeded, rep.Failed, rep.Skipped)
	return err
}
