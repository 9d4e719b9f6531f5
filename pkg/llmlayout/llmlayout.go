// Package llmlayout asks a chat model to turn OCR text into a page-builder
// layout. The model output is untrusted: it is accepted only when it is a
// single JSON object, otherwise ErrMalformedOutput is returned and the caller
// falls back to the deterministic layout.
package llmlayout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/gardar/ocrlayout/pkg/layout"
)

// ErrMalformedOutput is returned when the model reply is not a JSON object
var ErrMalformedOutput = errors.New("malformed LLM layout output")

// Config configures the OpenAI-compatible chat model
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible gateways
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Generator produces layouts with a langchaingo model
type Generator struct {
	llm    llms.Model
	config Config
}

var promptTemplate = template.Must(template.New("layout").Parse(`You convert OCR text from a screenshot of a web page into an Elementor page layout.

Reply with a single JSON object and nothing else, shaped like:
{"version": "1.0", "title": "{{.Title}}", "content": [{"type": "section", "elements": [{"type": "widget", "widgetType": "heading", "settings": {"title": "..."}}]}]}

Use the widget types heading, text-editor, button and image. Keep the text as recognized.

Source image: {{.Title}}
OCR text:
"""
{{.Text}}
"""
`))

// New creates a generator backed by the OpenAI provider
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("LLM model is not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewWithModel(llm, cfg), nil
}

// NewWithModel wraps an existing model
func NewWithModel(llm llms.Model, cfg Config) *Generator {
	return &Generator{llm: llm, config: cfg}
}

// Generate prompts the model and returns the validated, re-indented layout JSON
func (g *Generator) Generate(ctx context.Context, ocrText, sourceName string) ([]byte, error) {
	prompt, err := buildPrompt(ocrText, sourceName)
	if err != nil {
		return nil, err
	}

	var callOpts []llms.CallOption
	if g.config.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(g.config.MaxTokens))
	}
	callOpts = append(callOpts, llms.WithTemperature(g.config.Temperature))

	completion, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("error getting response from LLM: %w", err)
	}
	return Validate(completion)
}

func buildPrompt(ocrText, sourceName string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Title, Text string }{sourceName, ocrText}
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// Validate strips Markdown code fences from a model reply, checks that the
// rest is exactly one JSON object and re-indents it without reordering keys.
func Validate(reply string) ([]byte, error) {
	body := stripFences(reply)
	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrMalformedOutput)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	out, err := layout.Indent([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}

// stripFences removes a surrounding ``` or ```json fence
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the info string, e.g. "json"
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
