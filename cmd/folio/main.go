// Command folio renders a directory of page definitions into a directory of
// static HTML files.
//
// It takes no flags; see config for the environment variables it reads.
package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"impractical.co/folio"
)

const (
	exitOK          = 0
	exitPageFailure = 1
	exitConfig      = 2
)

// site is the folio.Site the build renders with.
type site struct {
	*folio.CachedSite

	Name    string
	BaseURL string
}

// FuncMap makes siteURL available to the header and footer.
func (s site) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"siteURL": func(p string) string {
			if s.BaseURL == "" {
				return p
			}
			return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(p, "/")
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, environMap(os.Environ()), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, environ map[string]string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(environ)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	ctx = folio.LoggingContext(ctx, logger)

	info, err := loadSiteInfo(cfg.SiteFile)
	if err != nil {
		logger.ErrorContext(ctx, "error loading site file", "file", cfg.SiteFile, "error", err)
		return exitConfig
	}

	var templates fs.FS = folio.DefaultTemplates()
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	}
	s := site{
		CachedSite: folio.NewCachedSite(templates),
		Name:       info.Name,
		BaseURL:    info.BaseURL,
	}

	report, err := folio.Build(ctx, s, folio.BuildOptions{
		Source:      os.DirFS(cfg.SourceDir),
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.Concurrency,
	})
	var buildErr *folio.BuildError
	if errors.As(err, &buildErr) {
		fmt.Fprintf(stdout, "wrote %d page(s) to %s\n", len(report.Written), cfg.OutputDir)
		fmt.Fprintln(stderr, buildErr)
		return exitPageFailure
	}
	if err != nil {
		logger.ErrorContext(ctx, "build failed", "error", err)
		return exitConfig
	}
	fmt.Fprintf(stdout, "wrote %d page(s) to %s\n", len(report.Written), cfg.OutputDir)
	return exitOK
}
