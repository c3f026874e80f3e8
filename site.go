package folio

import (
	"context"
	"html/template"
	"io/fs"
	"sync"
)

// Site is an interface for the singleton that holds the fragments Pages are
// rendered with. Consumers can also use it to store configuration shared by
// every page, like the site's name; it's available to the header and footer
// as .Site.
//
// A Site needs to be able to surface its fragments as an fs.FS.
type Site interface {
	// TemplateDir returns an fs.FS containing header.html.tmpl,
	// footer.html.tmpl, and a menus directory holding one file per menu
	// reference that Pages may use.
	TemplateDir(ctx context.Context) fs.FS
}

// TemplateCacher is an optional interface for Sites. Those fulfilling it can
// cache the parsed header and footer fragments, to save on the overhead of
// parsing them for every page. The output HTML still depends on each page's
// data, so it cannot be presumed to be cacheable.
type TemplateCacher interface {
	// GetCachedTemplate returns the *template.Template specified by the
	// passed key. It should return nil if the template hasn't been cached
	// yet.
	GetCachedTemplate(ctx context.Context, key string) *template.Template

	// SetCachedTemplate stores the passed *template.Template under the
	// passed key, for later retrieval with GetCachedTemplate.
	//
	// Any errors encountered should be logged, but as this is a
	// best-effort operation, will not be surfaced outside the function.
	SetCachedTemplate(ctx context.Context, key string, tmpl *template.Template)
}

// ResourceCacher is an optional interface for Sites. Those fulfilling it can
// cache the contents of menu fragments, so each one is only read from the
// Site's fs.FS once.
type ResourceCacher interface {
	// GetCachedResource returns the *string specified by the passed key.
	// It should return nil if the resource hasn't been cached yet.
	GetCachedResource(ctx context.Context, key string) *string

	// SetCachedResource stores the passed string under the passed key, for
	// later retrieval with GetCachedResource.
	//
	// Any errors encountered should be logged, but as this is a
	// best-effort operation, will not be surfaced outside the function.
	SetCachedResource(ctx context.Context, key, resource string)
}

// FuncMapExtender is an interface that Sites can fulfill to add to the map of
// functions available to the header and footer fragments.
type FuncMapExtender interface {
	// FuncMap returns an html/template.FuncMap containing all the
	// functions that the Site is adding to the FuncMap.
	FuncMap(context.Context) template.FuncMap
}

var _ Site = &CachedSite{}
var _ TemplateCacher = &CachedSite{}
var _ ResourceCacher = &CachedSite{}

// CachedSite is an implementation of the Site interface that can be embedded
// in other Site implementations. It fulfills the Site, TemplateCacher, and
// ResourceCacher interfaces, caching fragments in memory and exposing the
// fs.FS passed to it in NewCachedSite. A CachedSite must be instantiated
// through NewCachedSite, its empty value is not usable.
type CachedSite struct {
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex

	resourceCache   map[string]string
	resourceCacheMu sync.RWMutex

	// templateDir is where Render will look for fragments.
	templateDir fs.FS
}

// NewCachedSite returns a CachedSite instance that is ready to be used.
func NewCachedSite(templates fs.FS) *CachedSite {
	return &CachedSite{
		templateCache: map[string]*template.Template{},
		templateDir:   templates,
		resourceCache: map[string]string{},
	}
}

// GetCachedTemplate returns the cached template associated with the passed
// key, if one exists. If no template is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedTemplate(_ context.Context, key string) *template.Template {
	s.templateCacheMu.RLock()
	defer s.templateCacheMu.RUnlock()
	res, ok := s.templateCache[key]
	if !ok {
		return nil
	}
	return res
}

// SetCachedTemplate caches a template for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedTemplate(_ context.Context, key string, tmpl *template.Template) {
	s.templateCacheMu.Lock()
	defer s.templateCacheMu.Unlock()
	s.templateCache[key] = tmpl
}

// GetCachedResource returns the cached resource associated with the passed
// key, if one exists. If no resource is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedResource(_ context.Context, key string) *string {
	s.resourceCacheMu.RLock()
	defer s.resourceCacheMu.RUnlock()
	res, ok := s.resourceCache[key]
	if !ok {
		return nil
	}
	return &res
}

// SetCachedResource caches a resource for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedResource(_ context.Context, key, resource string) {
	s.resourceCacheMu.Lock()
	defer s.resourceCacheMu.Unlock()
	s.resourceCache[key] = resource
}

// TemplateDir returns the fs.FS the CachedSite was created with.
func (s *CachedSite) TemplateDir(_ context.Context) fs.FS {
	return s.templateDir
}
