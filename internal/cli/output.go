package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/rastreio/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result event.BatchResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result event.BatchResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result event.BatchResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintln(w, "No tracking codes given.")
		return nil
	}

	succeeded := 0
	for _, out := range result.Results {
		code := out.TrackCode
		if code == "" {
			code = "(empty)"
		}

		if !out.Success {
			fmt.Fprintf(w, "%s: FAILED (%s)\n", code, out.Error)
		} else {
			succeeded++
			if out.HasData {
				fmt.Fprintf(w, "%s (%s): %d events via %s parser\n", code, out.Carrier, len(out.Events), out.Parser)
			} else {
				fmt.Fprintf(w, "%s (%s): no events found\n", code, out.Carrier)
			}
			for _, evt := range out.Events {
				if evt.DateTime != "" {
					fmt.Fprintf(w, "  %s  %s\n", evt.DateTime, evt.Description)
				} else {
					fmt.Fprintf(w, "  %s\n", evt.Description)
				}
			}
		}

		if verbose && out.URL != "" {
			fmt.Fprintf(w, "     URL: %s\n", out.URL)
			fmt.Fprintf(w, "     HTTP: %d, attempts: %d, HTML size: %d\n", out.HTTPStatus, out.Debug.Attempts, out.Debug.HTMLSize)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d codes, %d succeeded\n", result.Count, succeeded)
	return nil
}
