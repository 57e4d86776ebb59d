package commands

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/forgeflow-dev/forgeflow/internal/analysis"
	"github.com/forgeflow-dev/forgeflow/internal/config"
	"github.com/forgeflow-dev/forgeflow/internal/importer"
	"github.com/forgeflow-dev/forgeflow/internal/insight"
	"github.com/forgeflow-dev/forgeflow/internal/logger"
	"github.com/forgeflow-dev/forgeflow/internal/metrics"
	"github.com/forgeflow-dev/forgeflow/internal/narrative"
	"github.com/forgeflow-dev/forgeflow/internal/ocr"
)

// app is the wired dependency graph for one command invocation.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Registry
	service *analysis.Service
}

func newApp(ctx context.Context, configPath, logLevel string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	narrator, err := narrative.New(ctx, cfg.NarrativeOptions(), log)
	if err != nil {
		return nil, err
	}
	engine := insight.NewEngine(cfg.Thresholds(), narrator, cfg.Narrative.Timeout, log)

	var recognizer ocr.Recognizer
	if tess := (ocr.Tesseract{Binary: cfg.OCR.Binary, Lang: cfg.OCR.Lang}); tess.Available() {
		recognizer = tess
	} else {
		log.Debug().Str("binary", cfg.OCR.Binary).Msg("OCR binary not found, image inputs disabled")
	}

	m := metrics.NewRegistry()
	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		service: analysis.NewService(importer.DefaultRegistry(), recognizer, engine, m, log),
	}, nil
}
