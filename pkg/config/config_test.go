package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/ocrspace"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yml", `
ocr:
  engine: OCRSpace
  allowed_formats: [png, jpg]
  ocrspace:
    api_key: from-file
    engine: 2
llm:
  enabled: true
  model: gpt-4o
  api_key: sk-file
server:
  addr: ":9000"
  request_timeout: 45s
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OCR.Engine != ocrspace.Name {
		t.Errorf("Expected normalized engine name, got %q", cfg.OCR.Engine)
	}
	if cfg.OCR.OCRSpace.APIKey != "from-file" || cfg.OCR.OCRSpace.Engine != 2 {
		t.Errorf("Unexpected ocrspace config %+v", cfg.OCR.OCRSpace)
	}
	if !cfg.OCR.OCRSpace.Overlay || cfg.OCR.OCRSpace.Language != "eng" {
		t.Errorf("Expected defaults to survive partial section, got %+v", cfg.OCR.OCRSpace)
	}
	if cfg.Server.RequestTimeout != 45*time.Second || cfg.Server.Addr != ":9000" {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("Expected default upload limit, got %d", cfg.Server.MaxUploadBytes)
	}
	if len(cfg.OCR.AllowedFormats) != 2 {
		t.Errorf("Unexpected formats %v", cfg.OCR.AllowedFormats)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yml", "ocr:\n  engine: ocrspace\n")
	t.Setenv("OCRSPACE_API_KEY", "from-env")
	t.Setenv("OCRLAYOUT_ADDR", "127.0.0.1:7000")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OCR.OCRSpace.APIKey != "from-env" {
		t.Errorf("Expected API key from environment, got %q", cfg.OCR.OCRSpace.APIKey)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Expected address from environment, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Errorf("Expected OpenAI key from environment, got %q", cfg.LLM.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeFile(t, "bad.yml", "ocr: [unclosed")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown engine", func(c *Config) { c.OCR.Engine = "abbyy" }, "unsupported ocr.engine"},
		{"ocrspace without key", func(c *Config) { c.OCR.Engine = "ocrspace" }, "OCRSPACE_API_KEY"},
		{"documentai without processor", func(c *Config) {
			c.OCR.Engine = "documentai"
			c.OCR.DocumentAI.ProjectID = "p"
			c.OCR.DocumentAI.Location = "us"
		}, "processor id"},
		{"documentai complete", func(c *Config) {
			c.OCR.Engine = "documentai"
			c.OCR.DocumentAI = DocumentAIConfig{ProjectID: "p", Location: "us", ProcessorID: "x"}
		}, ""},
		{"llm without key", func(c *Config) { c.LLM.Enabled = true }, "OPENAI_API_KEY"},
		{"llm without model", func(c *Config) {
			c.LLM.Enabled = true
			c.LLM.APIKey = "sk"
			c.LLM.Model = ""
		}, "llm.model"},
		{"upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.modify(cfg)
		err := cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error = %v, want %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestNewRecognizer(t *testing.T) {
	cfg := Default()
	cfg.OCR.Engine = ocrspace.Name
	cfg.OCR.OCRSpace.APIKey = "k"

	rec, err := cfg.NewRecognizer(nil)
	if err != nil {
		t.Fatalf("NewRecognizer() error = %v", err)
	}
	if rec.Name() != ocrspace.Name {
		t.Errorf("Expected ocrspace recognizer, got %s", rec.Name())
	}

	names := strings.Join(cfg.Registry(nil).Names(), ",")
	if names != "documentai,ocrspace,tesseract" {
		t.Errorf("Unexpected registry %s", names)
	}

	cfg.OCR.Engine = "nope"
	if _, err := cfg.NewRecognizer(nil); err == nil {
		t.Error("Expected error for unknown engine")
	}
}

func TestNewExtractor(t *testing.T) {
	cfg := Default()
	cfg.OCR.Engine = ocrspace.Name
	cfg.OCR.OCRSpace.APIKey = "k"

	ex, err := cfg.NewExtractor(logrus.NewEntry(logrus.New()), nil)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if ex.LLMEnabled() {
		t.Error("LLM enabled without configuration")
	}

	cfg.LLM.Enabled = true
	cfg.LLM.APIKey = "sk-test"
	ex, err = cfg.NewExtractor(logrus.NewEntry(logrus.New()), nil)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if !ex.LLMEnabled() || ex.Engine() != ocrspace.Name {
		t.Errorf("Unexpected extractor wiring")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "OCRLAYOUT_TEST_SECRET=hunter2\n")
	t.Setenv("OCRLAYOUT_TEST_SECRET", "")
	os.Unsetenv("OCRLAYOUT_TEST_SECRET")

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("OCRLAYOUT_TEST_SECRET"); got != "hunter2" {
		t.Errorf("Expected value from .env, got %q", got)
	}
}

func TestLogConfig_Apply(t *testing.T) {
	logger := logrus.New()
	if err := (LogConfig{Level: "warn", Format: "json"}).Apply(logger); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Unexpected level %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Formatter)
	}
}
