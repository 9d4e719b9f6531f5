// ocrlayout runs OCR on images and writes their text layout as JSON.
//
// Configuration:
//
// The tool reads an optional YAML configuration file selecting the OCR engine
// (tesseract, ocrspace or documentai) and the LLM used for page layouts. API
// keys are read from the environment or a .env file in the working directory:
//
//	OCRSPACE_API_KEY, OPENAI_API_KEY, GOOGLE_APPLICATION_CREDENTIALS
//
// Usage:
//
//	ocrlayout [--config config.yml] [--mode flat|page] [--llm] [--out DIR] image...
//
// Output options:
//
//	--mode      flat writes <name>_layout.json with positioned words,
//	            page writes elementor_layout.json with a page-builder layout
//	--llm       let the language model build the page layout (page mode)
//	--out       directory for the output files (default: current directory);
//	            page layouts of several images go to one subdirectory per image
//	--stdout    print the layout JSON instead of writing it
//	--pdf       also write <name>_ocr.pdf, the image with a searchable text layer
//	--hocr      also write <name>.hocr
//	--debug-api path to save raw Document AI responses as JSON
//
// Example:
//
//	export OCRSPACE_API_KEY=...
//	ocrlayout --config config.yml --mode flat --pdf --out out/ screenshot.png
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/config"
	"github.com/gardar/ocrlayout/pkg/extractor"
)

var args struct {
	Config   string   `arg:"-c,--config" help:"path to the YAML configuration file"`
	Mode     string   `arg:"-m,--mode" default:"flat" help:"flat (elements) or page (elementor)"`
	LLM      bool     `arg:"--llm" help:"let the language model build the page layout"`
	Out      string   `arg:"-o,--out" default:"." help:"output directory"`
	Stdout   bool     `arg:"--stdout" help:"print the layout JSON instead of writing it"`
	PDF      bool     `arg:"--pdf" help:"also write a searchable PDF"`
	HOCR     bool     `arg:"--hocr" help:"also write an hOCR file"`
	DebugAPI string   `arg:"--debug-api" help:"path to save raw Document AI responses as JSON"`
	Images   []string `arg:"positional,required" help:"image files"`
}

var log = logrus.New()

func main() {
	p := arg.MustParse(&args)

	mode, err := extractor.ParseMode(args.Mode)
	if err != nil {
		p.Fail(err.Error())
	}
	if args.LLM && mode != extractor.ModePage {
		p.Fail("--llm requires --mode page")
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(args.Config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Log.Apply(log); err != nil {
		log.Fatalf("Invalid log settings: %v", err)
	}
	if args.LLM && !cfg.LLM.Enabled {
		log.Fatalf("--llm given but llm.enabled is not set in the configuration")
	}

	var dump io.Writer
	if args.DebugAPI != "" {
		f, err := os.Create(args.DebugAPI)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", args.DebugAPI, err)
		}
		defer f.Close()
		dump = f
	}

	ex, err := cfg.NewExtractor(logrus.NewEntry(log), dump)
	if err != nil {
		log.Fatalf("Failed to set up OCR: %v", err)
	}

	if !args.Stdout || args.PDF || args.HOCR {
		if err := os.MkdirAll(args.Out, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, path := range args.Images {
		if err := process(ctx, ex, path, mode); err != nil {
			log.WithField("file", path).Errorf("%v", err)
			failed++
		}
	}
	if failed > 0 {
		log.Errorf("%d of %d images failed", failed, len(args.Images))
		stop()
		os.Exit(1)
	}
}

func process(ctx context.Context, ex *extractor.Extractor, path string, mode extractor.Mode) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	artifacts, err := ex.Bundle(ctx, extractor.Request{
		Name:   filepath.Base(path),
		Data:   data,
		Mode:   mode,
		UseLLM: args.LLM,
	}, args.PDF, args.HOCR)
	if err != nil {
		return err
	}

	if artifacts[0].Fallback {
		log.WithField("file", path).Warn("LLM layout unavailable, using the basic page layout")
	}
	dir := args.Out
	if mode == extractor.ModePage && len(args.Images) > 1 {
		// page layouts share one file name, keep them apart
		base := filepath.Base(path)
		dir = filepath.Join(args.Out, strings.TrimSuffix(base, filepath.Ext(base)))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	for i, art := range artifacts {
		if i == 0 && args.Stdout {
			fmt.Println(string(art.Data))
			continue
		}
		out := filepath.Join(dir, art.FileName)
		if err := os.WriteFile(out, art.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintln(os.Stderr, "Saved:", out)
	}
	return nil
}
