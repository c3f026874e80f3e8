package folio

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"slices"
	"strings"
)

const (
	// HeaderTemplate is the path, within a Site's TemplateDir, of the
	// fragment written before every page body.
	HeaderTemplate = "header.html.tmpl"

	// FooterTemplate is the path, within a Site's TemplateDir, of the
	// fragment written after every page body.
	FooterTemplate = "footer.html.tmpl"

	// MenuDir is the directory, within a Site's TemplateDir, that menu
	// references are resolved against.
	MenuDir = "menus"
)

var (
	// ErrNoFragment is returned when a Site's TemplateDir doesn't contain
	// a fragment that rendering needs.
	ErrNoFragment = errors.New("fragment not found")
)

//go:embed defaults
var defaultTemplates embed.FS

// DefaultTemplates returns an fs.FS containing a minimal header, footer, and
// the menus/links.h fragment DefaultMenuRefs points to. It can be passed to
// NewCachedSite directly.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(defaultTemplates, "defaults")
	if err != nil {
		// "defaults" is a valid path embedded at compile time
		panic(fmt.Sprintf("error opening embedded templates: %s", err))
	}
	return sub
}

// builtinFuncs are available to every header and footer. Sites can override
// them with FuncMapExtender.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"hasMenu": func(refs []string, ref string) bool {
			return slices.Contains(refs, ref)
		},
		"join": strings.Join,
	}
}

// getFragment returns the parsed template at name in the site's TemplateDir,
// using the site's template cache if it has one.
func getFragment(ctx context.Context, site Site, name string) (*template.Template, error) {
	key := "fragment:" + name
	if cache, ok := site.(TemplateCacher); ok {
		cached := cache.GetCachedTemplate(ctx, key)
		if cached != nil {
			return cached, nil
		}
	}
	funcMap := builtinFuncs()
	if fm, ok := site.(FuncMapExtender); ok {
		funcMap = mergeFuncMaps(funcMap, fm.FuncMap(ctx))
	}
	parsed, err := parseFragment(site.TemplateDir(ctx), funcMap, name)
	if err != nil {
		return nil, err
	}
	if cache, ok := site.(TemplateCacher); ok {
		cache.SetCachedTemplate(ctx, key, parsed)
	}
	return parsed, nil
}

func parseFragment(fsys fs.FS, funcs template.FuncMap, name string) (*template.Template, error) {
	if fsys == nil {
		return nil, fmt.Errorf("error reading %q: %w", name, ErrNoFragment)
	}
	contents, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading %q: %w", name, ErrNoFragment)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(contents))
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", name, err)
	}
	return tmpl, nil
}

// mergeFuncMaps flattens two FuncMaps into one, with the values in `site`
// overriding the values in `in` if they have the same keys.
func mergeFuncMaps(in template.FuncMap, site template.FuncMap) template.FuncMap {
	res := template.FuncMap{}
	for k, v := range in {
		res[k] = v
	}
	for k, v := range site {
		res[k] = v
	}
	return res
}
