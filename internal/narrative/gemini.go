// Package narrative provides insight.Narrator backends.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/forgeflow-dev/forgeflow/internal/insight"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

var errEmptyResponse = errors.New("gemini: empty response from model")

// contentGenerator is the part of *genai.Models the narrator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini narrates forecast summaries with a Gemini model.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini narrator using the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, model), nil
}

func newGemini(models contentGenerator, model string) *Gemini {
	if model == "" {
		model = DefaultModelName
	}
	return &Gemini{models: models, model: model}
}

// Narrate asks the model for a short plain-text cashflow commentary.
func (g *Gemini) Narrate(ctx context.Context, s insight.Summary) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.2),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(s)), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errEmptyResponse
	}
	return stripFences(text), nil
}

const systemPrompt = "You are a cashflow analyst for a small business.\n" +
	"Write 5 to 8 short lines of plain text, one insight per line.\n" +
	"No Markdown, no bullet characters, no code fences.\n" +
	"Quote amounts in dollars with two decimals."

// BuildPrompt renders the forecast summary for the model.
func BuildPrompt(s insight.Summary) string {
	var b strings.Builder
	b.WriteString("Analyse this 90-day linear cash balance forecast.\n\n")
	fmt.Fprintf(&b, "Forecast range: %s to %s\n", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Starting balance: $%s\n", s.StartBalance.StringFixed(2))
	fmt.Fprintf(&b, "Ending balance: $%s\n", s.EndBalance.StringFixed(2))
	fmt.Fprintf(&b, "Lowest balance: $%s\n", s.MinBalance.StringFixed(2))
	fmt.Fprintf(&b, "Highest balance: $%s\n", s.MaxBalance.StringFixed(2))
	fmt.Fprintf(&b, "Average daily change: $%s\n", s.AvgDailyChange.StringFixed(2))
	fmt.Fprintf(&b, "Average weekly trend: $%s\n", s.WeeklyTrend.StringFixed(2))
	if !s.FirstNegative.IsZero() {
		fmt.Fprintf(&b, "Balance first goes negative on: %s\n", s.FirstNegative.Format("2006-01-02"))
	}
	b.WriteString("\nCover liquidity risk, the weekly trend, the burn rate, and one piece of advice.\n")
	return b.String()
}

// stripFences removes a Markdown code fence if the model added one anyway.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return s
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
