package folio

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

const (
	// FormatHTML marks a page body as HTML, used as-is.
	FormatHTML = "html"

	// FormatMarkdown marks a page body as Markdown, converted to HTML
	// when the page is loaded.
	FormatMarkdown = "markdown"
)

var (
	// ErrUnknownFormat is returned when a page definition's front matter
	// names a format other than FormatHTML or FormatMarkdown.
	ErrUnknownFormat = errors.New("unknown page format")
)

// pageFrontMatter is the YAML block, delimited by --- lines, that can start a
// page definition file.
type pageFrontMatter struct {
	Title    string   `yaml:"title"`
	Menu     []string `yaml:"menu"`
	Format   string   `yaml:"format"`
	Sanitize bool     `yaml:"sanitize"`
}

var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

// IsPageSource reports whether the file at name is a page definition that
// Build should render. Page definitions end in .html or .md, and files whose
// name starts with _ or . are skipped.
func IsPageSource(name string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	switch path.Ext(base) {
	case ".html", ".md":
		return true
	}
	return false
}

// LoadPage reads the page definition at name in fsys.
//
// A page definition is an optional front matter block followed by the body:
//
//	---
//	title: Changes for CC Mode 5.33
//	menu: [links.h, changelinks.h]
//	---
//	<p>This version contains a few new big features...</p>
//
// Front matter keys are title, menu, format (html or markdown), and sanitize.
// Files ending in .md default to markdown, everything else to html. Markdown
// bodies are converted to HTML, and also run through an HTML sanitizer when
// sanitize is true; HTML bodies are kept byte for byte.
//
// LoadPage doesn't require a title. Rendering a Page without one fails.
func LoadPage(fsys fs.FS, name string) (Page, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Page{}, fmt.Errorf("error reading %q: %w", name, err)
	}
	var meta pageFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(contents), &meta, frontMatterFormats...)
	if err != nil {
		return Page{}, fmt.Errorf("error parsing front matter in %q: %w", name, err)
	}

	format := strings.ToLower(strings.TrimSpace(meta.Format))
	if format == "" {
		format = FormatHTML
		if path.Ext(name) == ".md" {
			format = FormatMarkdown
		}
	}

	page := Page{
		Path:     name,
		Title:    strings.TrimSpace(meta.Title),
		MenuRefs: meta.Menu,
	}
	switch format {
	case FormatHTML:
		page.Body = template.HTML(body) // #nosec G203
	case FormatMarkdown:
		converted, err := convertMarkdown(body)
		if err != nil {
			return Page{}, fmt.Errorf("error converting %q: %w", name, err)
		}
		if meta.Sanitize {
			converted = bluemonday.UGCPolicy().SanitizeBytes(converted)
		}
		page.Body = template.HTML(converted) // #nosec G203
	default:
		return Page{}, fmt.Errorf("error loading %q: %w: %q", name, ErrUnknownFormat, meta.Format)
	}
	return page, nil
}

func convertMarkdown(source []byte) ([]byte, error) {
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
