// Package config loads the YAML configuration shared by the CLI and the HTTP
// service. Secrets may be left out of the file and supplied through the
// environment or a .env file instead.
//
//	ocr:
//	  engine: tesseract        # tesseract, ocrspace or documentai
//	  tesseract:
//	    languages: [eng]
//	  ocrspace:
//	    overlay: true
//	  documentai:
//	    project_id: "your-gcp-project-id"
//	    location: "us"
//	    processor_id: "your-processor-id"
//	llm:
//	  enabled: true
//	  model: gpt-4o-mini
//	server:
//	  addr: ":8080"
//	  request_timeout: 2m
//	log:
//	  level: info
//	  format: text
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrlayout/pkg/gdocai"
	"github.com/gardar/ocrlayout/pkg/imagefile"
	"github.com/gardar/ocrlayout/pkg/ocrspace"
	"github.com/gardar/ocrlayout/pkg/tesseract"
)

// Config is the root of the configuration file
type Config struct {
	OCR    OCRConfig    `yaml:"ocr"`
	LLM    LLMConfig    `yaml:"llm"`
	Server ServerConfig `yaml:"server"`
	PDF    PDFConfig    `yaml:"pdf"`
	Log    LogConfig    `yaml:"log"`
}

type OCRConfig struct {
	Engine         string           `yaml:"engine"`
	AllowedFormats []string         `yaml:"allowed_formats"`
	Tesseract      TesseractConfig  `yaml:"tesseract"`
	OCRSpace       OCRSpaceConfig   `yaml:"ocrspace"`
	DocumentAI     DocumentAIConfig `yaml:"documentai"`
}

type TesseractConfig struct {
	Languages   []string `yaml:"languages"`
	PageSegMode int      `yaml:"psm"`
}

type OCRSpaceConfig struct {
	APIKey   string        `yaml:"api_key"`
	Endpoint string        `yaml:"endpoint"`
	Language string        `yaml:"language"`
	Engine   int           `yaml:"engine"`
	Overlay  bool          `yaml:"overlay"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DocumentAIConfig struct {
	ProjectID       string        `yaml:"project_id"`
	Location        string        `yaml:"location"`
	ProcessorID     string        `yaml:"processor_id"`
	CredentialsFile string        `yaml:"credentials_file"`
	Timeout         time.Duration `yaml:"timeout"`
}

type LLMConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type PDFConfig struct {
	Debug     bool   `yaml:"debug"`
	LayerName string `yaml:"layer_name"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used for keys missing from the file
func Default() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:         tesseract.Name,
			AllowedFormats: imagefile.DefaultFormats,
			OCRSpace: OCRSpaceConfig{
				Endpoint: ocrspace.DefaultEndpoint,
				Language: "eng",
				Overlay:  true,
				Timeout:  60 * time.Second,
			},
			DocumentAI: DocumentAIConfig{Timeout: 60 * time.Second},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
			RequestTimeout: 2 * time.Minute,
		},
		PDF: PDFConfig{LayerName: "OCR Text"},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadDotEnv loads environment files, skipping the ones that do not exist
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and deployment settings from the environment
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.OCR.Engine, "OCRLAYOUT_OCR_ENGINE")
	set(&c.OCR.OCRSpace.APIKey, "OCRSPACE_API_KEY")
	set(&c.OCR.DocumentAI.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	set(&c.LLM.APIKey, "OPENAI_API_KEY")
	set(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	set(&c.Server.Addr, "OCRLAYOUT_ADDR")
	set(&c.Log.Level, "OCRLAYOUT_LOG_LEVEL")
}

// Validate reports the first setting that makes the configuration unusable
func (c *Config) Validate() error {
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	switch c.OCR.Engine {
	case tesseract.Name:
	case ocrspace.Name:
		if c.OCR.OCRSpace.APIKey == "" {
			return fmt.Errorf("ocr.ocrspace.api_key or OCRSPACE_API_KEY is required for the ocrspace engine")
		}
	case gdocai.Name:
		if err := c.OCR.DocumentAI.gdocai().Validate(); err != nil {
			return fmt.Errorf("ocr.documentai: %w", err)
		}
	default:
		return fmt.Errorf("unsupported ocr.engine %q (expected %s, %s or %s)",
			c.OCR.Engine, tesseract.Name, ocrspace.Name, gdocai.Name)
	}

	if c.LLM.Enabled {
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key or OPENAI_API_KEY is required when llm.enabled is set")
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm.enabled is set")
		}
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Apply configures logger according to the log section
func (l LogConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
