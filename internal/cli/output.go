// Package cli provides output helpers for the sitegen commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/healthai/sitegen/internal/models"
	"github.com/healthai/sitegen/internal/search"
	"github.com/healthai/sitegen/pkg/utils"
)

// OutputFormat selects human-readable or machine-readable output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to a format, defaulting to text.
func ParseFormat(v string) OutputFormat {
	if v == string(OutputJSON) {
		return OutputJSON
	}
	return OutputText
}

// WriteDiagnostics writes the check report to w in the given format.
func WriteDiagnostics(w io.Writer, diags []models.Diagnostic, format OutputFormat) error {
	if format == OutputJSON {
		if diags == nil {
			diags = []models.Diagnostic{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	}
	if len(diags) == 0 {
		fmt.Fprintln(w, "No problems found.")
		return nil
	}
	fmt.Fprintf(w, "%d problem(s) found:\n\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(w, "  [%s]", d.Type)
		if d.Sheet != "" {
			fmt.Fprintf(w, " %s", d.Sheet)
		}
		if d.ID != "" {
			fmt.Fprintf(w, " id=%s", d.ID)
		}
		if d.Row != 0 {
			fmt.Fprintf(w, " row=%d", d.Row)
		}
		fmt.Fprintf(w, ": %s\n", d.Message)
	}
	return nil
}

// WriteHits writes search results to w in the given format.
func WriteHits(w io.Writer, query string, hits []search.Hit, format OutputFormat) error {
	if format == OutputJSON {
		if hits == nil {
			hits = []search.Hit{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Fprintf(w, "No results for %q.\n", query)
		return nil
	}
	fmt.Fprintf(w, "%d result(s) for %q:\n\n", len(hits), query)
	for i, h := range hits {
		fmt.Fprintf(w, "  %d. [%s] %s (%s) score=%.4f\n", i+1, h.Kind, utils.Truncate(h.Name, 80), h.Path, h.Score)
	}
	return nil
}
