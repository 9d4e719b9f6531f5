// ocrlayout-server serves the image upload page and the extraction API.
//
// Usage:
//
//	ocrlayout-server [--config config.yml] [--addr :8080]
//
// The listen address may also be set with OCRLAYOUT_ADDR. API keys are read
// from the environment or a .env file in the working directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrlayout/pkg/config"
	"github.com/gardar/ocrlayout/pkg/server"
)

var args struct {
	Config string `arg:"-c,--config" help:"path to the YAML configuration file"`
	Addr   string `arg:"-a,--addr" help:"listen address, overrides server.addr"`
}

var log = logrus.New()

func main() {
	arg.MustParse(&args)

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
	if args.Addr != "" {
		cfg.Server.Addr = args.Addr
	}

	entry := logrus.NewEntry(log)
	ex, err := cfg.NewExtractor(entry, nil)
	if err != nil {
		log.Fatalf("Failed to set up OCR: %v", err)
	}
	log.WithFields(logrus.Fields{
		"engine": ex.Engine(),
		"llm":    ex.LLMEnabled(),
	}).Info("OCR pipeline ready")

	srv := server.New(ex, server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedFormats: cfg.OCR.AllowedFormats,
	}, entry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
