package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const promptTemplate = `You are a reservation-desk assistant. Extract reservation
fields from the raw booking text below. Respond with a single JSON object:

{"fields": {...}, "confidence": 0.0, "notes": ""}

"fields" may use these keys when the text supports them: %s.
Keep values as they appear in the text; do not invent data. Include any other
clearly labeled values under their own keys. "confidence" is your overall
confidence in the extraction, between 0 and 1.

Raw booking text:
%s`

// Gemini is an Extractor backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a Gemini extractor.
type GeminiOption func(*Gemini)

// WithModel overrides the Gemini model name.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		g.model = model
	}
}

// NewGemini creates a Gemini-backed extractor with the given API key.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.NewConfigError("extract", "Gemini API key required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewOracleError(DefaultModel, "creating client", err)
	}

	g := &Gemini{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Extract implements Extractor. Timeout and cancellation are owned by ctx.
func (g *Gemini) Extract(ctx context.Context, rawText string) (*Result, error) {
	prompt := fmt.Sprintf(promptTemplate, strings.Join(booking.Fields, ", "), rawText)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, errors.NewOracleError(g.model, "generate content failed", err)
	}

	result, err := parseOracleResponse(resp.Text())
	if err != nil {
		return nil, errors.NewOracleError(g.model, "unusable response", err)
	}

	logging.Debug().
		Float64("confidence", result.Confidence).
		Int("field_count", len(result.Fields)).
		Str("model", g.model).
		Msg("Extraction completed")

	return result, nil
}

// parseOracleResponse plucks the guess out of the model's reply leniently:
// code fences are stripped and the reply is trimmed to its outermost JSON
// object before parsing, since models decorate JSON despite instructions.
func parseOracleResponse(raw string) (*Result, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	if !gjson.Valid(text) {
		return nil, errors.New("response is not valid JSON")
	}

	parsed := gjson.Parse(text)

	fields := booking.Document{}
	if raw := parsed.Get("fields"); raw.IsObject() {
		for k, v := range raw.Map() {
			fields[k] = v.Value()
		}
	}

	return &Result{
		Fields:     fields,
		Confidence: clampConfidence(parsed.Get("confidence").Float()),
		Notes:      parsed.Get("notes").String(),
	}, nil
}
