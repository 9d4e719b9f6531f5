package llmlayout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
	opts   llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	for _, m := range messages {
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				f.prompt += tp.Text
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerator_Generate(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"version\":\"1.0\",\"title\":\"home.png\",\"content\":[]}\n```"}
	g := NewWithModel(model, Config{MaxTokens: 512, Temperature: 0.2})

	out, err := g.Generate(context.Background(), "Welcome to our site", "home.png")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "{\n  \"version\": \"1.0\",\n  \"title\": \"home.png\",\n  \"content\": []\n}"
	if string(out) != want {
		t.Errorf("Unexpected layout:\n%s", out)
	}

	if !strings.Contains(model.prompt, "Welcome to our site") || !strings.Contains(model.prompt, "home.png") {
		t.Errorf("Prompt is missing OCR text or source name:\n%s", model.prompt)
	}
	if model.opts.MaxTokens != 512 {
		t.Errorf("Expected max tokens 512, got %d", model.opts.MaxTokens)
	}
}

func TestGenerator_Generate_Errors(t *testing.T) {
	failing := NewWithModel(&fakeModel{err: errors.New("rate limited")}, Config{})
	_, err := failing.Generate(context.Background(), "text", "a.png")
	if err == nil || errors.Is(err, ErrMalformedOutput) {
		t.Errorf("Expected transport error, got %v", err)
	}

	chatty := NewWithModel(&fakeModel{reply: "Sure! Here is your layout."}, Config{})
	if _, err := chatty.Generate(context.Background(), "text", "a.png"); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("Expected ErrMalformedOutput, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		ok    bool
	}{
		{"plain object", `{"b":1,"a":2}`, "{\n  \"b\": 1,\n  \"a\": 2\n}", true},
		{"fenced", "```\n{\"x\":true}\n```", "{\n  \"x\": true\n}", true},
		{"fenced json with spaces", "  ```json\n {\"x\":null} \n```  ", "{\n  \"x\": null\n}", true},
		{"array", `[{"x":1}]`, "", false},
		{"string", `"layout"`, "", false},
		{"prose", "Here you go: {\"x\":1}", "", false},
		{"truncated", `{"x":`, "", false},
		{"trailing text", `{"x":1} thanks`, "", false},
		{"two objects", `{"x":1}{"y":2}`, "", false},
		{"empty", "", "", false},
		{"empty fence", "```json```", "", false},
	}

	for _, tt := range tests {
		out, err := Validate(tt.reply)
		if !tt.ok {
			if !errors.Is(err, ErrMalformedOutput) {
				t.Errorf("%s: expected ErrMalformedOutput, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: Validate() error = %v", tt.name, err)
			continue
		}
		if string(out) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, out, tt.want)
		}
	}
}

func TestNew_RequiresKeyAndModel(t *testing.T) {
	if _, err := New(Config{Model: "gpt-4o-mini"}); err == nil {
		t.Error("Expected error without API key")
	}
	if _, err := New(Config{APIKey: "sk-test"}); err == nil {
		t.Error("Expected error without model")
	}
	if _, err := New(Config{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: "http://localhost:8080/v1"}); err != nil {
		t.Errorf("New() error = %v", err)
	}
}
