// Package insights asks a hosted language model for a short executive
// summary of the collected responses.
//
// The call is best effort. Summarizer never fails; it returns one of the
// fixed fallback messages instead.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/boothsync/internal/survey"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-3-flash-preview"

	// DefaultBaseURL is the Gemini REST endpoint root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// FallbackEmpty is returned when the model answers with no text.
	FallbackEmpty = "No se pudieron generar insights en este momento."

	// FallbackError is returned when the model cannot be reached.
	FallbackError = "Error al conectar con la IA para análisis."
)

// Sample is the per-response projection sent to the model. Contact fields
// never leave the device.
type Sample struct {
	Role     survey.Role `json:"role"`
	NPS      int         `json:"nps"`
	Products []string    `json:"products"`
}

// FromResponses projects rs into samples.
func FromResponses(rs []survey.Response) []Sample {
	out := make([]Sample, len(rs))
	for i, r := range rs {
		products := r.SelectedProducts
		if products == nil {
			products = []string{}
		}
		out[i] = Sample{Role: r.Role, NPS: r.NPS, Products: products}
	}
	return out
}

// BuildPrompt renders the analysis prompt for samples.
func BuildPrompt(samples []Sample) (string, error) {
	if samples == nil {
		samples = []Sample{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(samples); err != nil {
		return "", fmt.Errorf("insights: encode samples: %w", err)
	}
	data := strings.TrimSuffix(buf.String(), "\n")

	return "Analiza los siguientes resultados de una encuesta de John Deere en un stand de feria.\n" +
		"Proporciona un resumen ejecutivo de 3 puntos clave sobre el sentimiento de los visitantes " +
		"y qué productos están generando más interés.\n\n" +
		"Datos: " + data + "\n\n" +
		"Responde en español, de forma profesional y concisa.", nil
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client. An empty model selects DefaultModel.
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt and returns the concatenated text of the first
// candidate. An answer without text is not an error and yields "".
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", survey.NewDependencyError("no API key configured", nil)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("insights: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", survey.NewDependencyError("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", survey.NewDependencyError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", survey.NewDependencyError(
			fmt.Sprintf("model returned %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(snippet)),
		)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", survey.NewDependencyError("decode response", err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer turns responses into an executive summary.
type Summarizer struct {
	gen    Generator
	logger *slog.Logger
}

// NewSummarizer creates a summarizer over gen.
func NewSummarizer(gen Generator, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{gen: gen, logger: logger}
}

// Summarize returns the model's summary of rs, or a fallback message.
func (s *Summarizer) Summarize(ctx context.Context, rs []survey.Response) string {
	prompt, err := BuildPrompt(FromResponses(rs))
	if err != nil {
		s.logger.Warn("insights unavailable", "error", err)
		return FallbackError
	}
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("insights unavailable", "error", err)
		return FallbackError
	}
	if text == "" {
		return FallbackEmpty
	}
	return text
}
