package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNoSource is returned when Build is called without a source fs.FS.
	ErrNoSource = errors.New("no page source")

	// ErrNoOutputDir is returned when Build is called without an output
	// directory.
	ErrNoOutputDir = errors.New("no output directory")

	// ErrOutputConflict is returned, wrapped in a PageFailure, for every
	// page definition that would be written to the same output file as
	// another one, like news.html and news.md.
	ErrOutputConflict = errors.New("output file claimed by more than one page")
)

// BuildOptions controls a call to Build.
type BuildOptions struct {
	// Source holds the page definitions to render. Every file for which
	// IsPageSource returns true is loaded with LoadPage.
	Source fs.FS

	// OutputDir is the directory HTML files are written to. A page at
	// docs/changes.md in Source is written to docs/changes.html in
	// OutputDir.
	OutputDir string

	// Concurrency is the number of pages rendered at the same time. If
	// it's less than 1, runtime.GOMAXPROCS(0) is used.
	Concurrency int
}

// BuildReport describes what a call to Build did.
type BuildReport struct {
	// Written lists the source paths of every page written, sorted.
	Written []string

	// Failed lists the source paths of every page that wasn't written,
	// sorted.
	Failed []string
}

// PageFailure is a single page that Build couldn't write.
type PageFailure struct {
	Path string
	Err  error
}

func (f PageFailure) Error() string {
	return f.Path + ": " + f.Err.Error()
}

func (f PageFailure) Unwrap() error {
	return f.Err
}

// BuildError is returned by Build when one or more pages failed. Each failed
// page is reported individually; errors.Is and errors.As look through all of
// them.
type BuildError struct {
	Failures []PageFailure
}

func (e *BuildError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%d page(s) failed to build:", len(e.Failures))
	for _, failure := range e.Failures {
		msg.WriteString("\n\t")
		msg.WriteString(failure.Error())
	}
	return msg.String()
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, failure := range e.Failures {
		errs = append(errs, failure)
	}
	return errs
}

// OutputPath returns the path, relative to the output directory, that the
// page definition at source is written to.
func OutputPath(source string) string {
	return strings.TrimSuffix(source, path.Ext(source)) + ".html"
}

// Build renders every page definition in opts.Source and writes each one to
// opts.OutputDir as its own HTML file.
//
// A page that can't be loaded or rendered is skipped, and no file is written
// for it; the rest of the pages are still built. When any page fails, Build
// returns a *BuildError listing every failure alongside the BuildReport.
// Other errors mean the build couldn't start or was cancelled through ctx.
func Build[SiteType Site](ctx context.Context, site SiteType, opts BuildOptions) (report BuildReport, err error) {
	ctx, span := startSpan(ctx, "folio.Build",
		attribute.String("folio.output_dir", opts.OutputDir),
	)
	defer func() { endSpan(span, err) }()

	if opts.Source == nil {
		return BuildReport{}, ErrNoSource
	}
	if opts.OutputDir == "" {
		return BuildReport{}, ErrNoOutputDir
	}

	sources, err := findPageSources(opts.Source)
	if err != nil {
		return BuildReport{}, err
	}
	sources, failures := splitOutputConflicts(sources)
	for _, failure := range failures {
		logger(ctx).ErrorContext(ctx, "skipping page", "path", failure.Path, "error", failure.Err)
	}
	span.SetAttributes(attribute.Int("folio.pages", len(sources)))
	logger(ctx).InfoContext(ctx, "building pages", "pages", len(sources), "output_dir", opts.OutputDir)

	workers := opts.Concurrency
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(sources), 1))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	jobs := make(chan string)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				pageErr := buildPage(ctx, site, opts, source)
				mu.Lock()
				if pageErr != nil {
					failures = append(failures, PageFailure{Path: source, Err: pageErr})
				} else {
					report.Written = append(report.Written, source)
				}
				mu.Unlock()
			}
		}()
	}

	var cancelled error
	for _, source := range sources {
		if ctx.Err() != nil {
			cancelled = ctx.Err()
			break
		}
		select {
		case jobs <- source:
		case <-ctx.Done():
			cancelled = ctx.Err()
		}
		if cancelled != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	slices.Sort(report.Written)
	slices.SortFunc(failures, func(a, b PageFailure) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, failure := range failures {
		report.Failed = append(report.Failed, failure.Path)
	}

	if cancelled != nil {
		return report, fmt.Errorf("build cancelled: %w", cancelled)
	}
	if len(failures) > 0 {
		logger(ctx).WarnContext(ctx, "some pages failed to build", "written", len(report.Written), "failed", len(failures))
		return report, &BuildError{Failures: failures}
	}
	logger(ctx).InfoContext(ctx, "built pages", "written", len(report.Written))
	return report, nil
}

func findPageSources(fsys fs.FS) ([]string, error) {
	var results []string
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if name != "." && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if IsPageSource(name) {
			results = append(results, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing page sources: %w", err)
	}
	slices.Sort(results)
	return results, nil
}

// splitOutputConflicts removes every source whose OutputPath is shared with
// another source, returning the rest in their original order and a failure
// for each one removed.
func splitOutputConflicts(sources []string) ([]string, []PageFailure) {
	claims := map[string][]string{}
	for _, source := range sources {
		dest := OutputPath(source)
		claims[dest] = append(claims[dest], source)
	}
	results := make([]string, 0, len(sources))
	var failures []PageFailure
	for _, source := range sources {
		claimants := claims[OutputPath(source)]
		if len(claimants) < 2 {
			results = append(results, source)
			continue
		}
		others := slices.DeleteFunc(slices.Clone(claimants), func(other string) bool {
			return other == source
		})
		failures = append(failures, PageFailure{
			Path: source,
			Err:  fmt.Errorf("%w: %s is also written by %s", ErrOutputConflict, OutputPath(source), strings.Join(others, ", ")),
		})
	}
	return results, failures
}

func buildPage[SiteType Site](ctx context.Context, site SiteType, opts BuildOptions, source string) (err error) {
	ctx, span := startSpan(ctx, "folio.BuildPage", attribute.String("folio.page.path", source))
	defer func() { endSpan(span, err) }()

	page, err := LoadPage(opts.Source, source)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error loading page", "path", source, "error", err)
		return err
	}
	html, err := Render(ctx, site, page)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error rendering page", "path", source, "error", err)
		return err
	}
	dest := filepath.Join(opts.OutputDir, filepath.FromSlash(OutputPath(source)))
	err = os.MkdirAll(filepath.Dir(dest), 0o755)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error creating output directory", "path", source, "error", err)
		return fmt.Errorf("error creating directory for %q: %w", dest, err)
	}
	err = writeFileAtomic(dest, []byte(html))
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error writing page", "path", source, "error", err)
		return fmt.Errorf("error writing %q: %w", dest, err)
	}
	logger(ctx).DebugContext(ctx, "wrote page", "path", source, "dest", dest)
	return nil
}

// writeFileAtomic writes contents to a temporary file next to dest and renames
// it into place, so dest is either absent or complete.
func writeFileAtomic(dest string, contents []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	_, err = tmp.Write(contents)
	if err != nil {
		_ = tmp.Close()
		return err
	}
	err = tmp.Chmod(0o644) // #nosec G302
	if err != nil {
		_ = tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
