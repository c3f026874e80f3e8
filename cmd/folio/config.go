package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// config holds everything the build step needs, read from the environment.
type config struct {
	SourceDir   string `env:"FOLIO_SOURCE_DIR" envDefault:"pages"`
	TemplateDir string `env:"FOLIO_TEMPLATE_DIR"`
	OutputDir   string `env:"FOLIO_OUTPUT_DIR" envDefault:"public"`
	Concurrency int    `env:"FOLIO_CONCURRENCY" envDefault:"0"`
	SiteFile    string `env:"FOLIO_SITE_FILE"`
	LogLevel    string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"FOLIO_LOG_FORMAT" envDefault:"text"`
}

// siteInfo is the optional YAML file describing the site as a whole.
type siteInfo struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

func parseConfig(environ map[string]string) (config, error) {
	var cfg config
	err := env.ParseWithOptions(&cfg, env.Options{Environment: environ})
	if err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.SourceDir) == "" {
		return config{}, fmt.Errorf("FOLIO_SOURCE_DIR must not be empty")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return config{}, fmt.Errorf("FOLIO_OUTPUT_DIR must not be empty")
	}
	return cfg, nil
}

func loadSiteInfo(file string) (siteInfo, error) {
	if file == "" {
		return siteInfo{}, nil
	}
	contents, err := os.ReadFile(file)
	if err != nil {
		return siteInfo{}, fmt.Errorf("read site file: %w", err)
	}
	var info siteInfo
	err = yaml.Unmarshal(contents, &info)
	if err != nil {
		return siteInfo{}, fmt.Errorf("parse site file %s: %w", file, err)
	}
	return info, nil
}

func newLogger(cfg config, out io.Writer) (*slog.Logger, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("parse FOLIO_LOG_LEVEL: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("unknown FOLIO_LOG_FORMAT %q", cfg.LogFormat)
	}
}

func environMap(environ []string) map[string]string {
	results := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		results[k] = v
	}
	return results
}
