// Package report renders insights into delivery artifacts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/forgeflow-dev/forgeflow/internal/forecast"
	"github.com/forgeflow-dev/forgeflow/internal/insight"
)

// DefaultTitle heads every rendered report.
const DefaultTitle = "ForgeAI Flow - Cashflow Forecast"

// Report is everything a renderer may lay out. Projection may be nil.
type Report struct {
	Title      string
	Insight    insight.Insight
	Projection *forecast.Projection
}

func (r Report) title() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r Report) error
	ContentType() string
	Extension() string
}

// ForName returns the renderer for "pdf", "text" or "json".
func ForName(name string) (Renderer, error) {
	switch strings.ToLower(name) {
	case "pdf", "":
		return PDF{}, nil
	case "text", "txt":
		return Text{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", name)
	}
}

// Text renders the title followed by one insight per line.
type Text struct{}

// Render writes the plain-text report.
func (Text) Render(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "%s\n\n%s\n", r.title(), r.Insight.Text()); err != nil {
		return fmt.Errorf("writing text report: %w", err)
	}
	return nil
}

// ContentType returns the MIME type.
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

// Extension returns the file extension.
func (Text) Extension() string { return ".txt" }
