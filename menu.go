package folio

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"slices"
	"strings"
)

var (
	// ErrUnknownMenu is returned when a Page names a menu reference that
	// has no fragment in the Site's menus directory.
	ErrUnknownMenu = errors.New("unknown menu reference")

	// ErrInvalidMenuRef is returned when a menu reference is empty or
	// isn't a plain file name.
	ErrInvalidMenuRef = errors.New("invalid menu reference")
)

var defaultMenuRefs = []string{"links.h"}

// DefaultMenuRefs returns the menu references used by Pages that don't name
// any. The returned slice is a copy.
func DefaultMenuRefs() []string {
	return slices.Clone(defaultMenuRefs)
}

// normalizeMenuRefs returns the menu references a page will actually render
// with: DefaultMenuRefs when refs is empty, otherwise refs in their original
// order with repeated references dropped.
func normalizeMenuRefs(refs []string) []string {
	if len(refs) < 1 {
		return DefaultMenuRefs()
	}
	results := make([]string, 0, len(refs))
	seen := map[string]struct{}{}
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		results = append(results, ref)
	}
	return results
}

func validMenuRef(ref string) bool {
	if strings.TrimSpace(ref) != ref || ref == "" {
		return false
	}
	if ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) {
		return false
	}
	return fs.ValidPath(path.Join(MenuDir, ref))
}

// ResolveMenu returns the navigation markup for refs: the contents of each
// referenced menu fragment, concatenated in order. An empty refs selects
// DefaultMenuRefs, and a reference repeated in refs is only included the
// first time.
func ResolveMenu(ctx context.Context, site Site, refs []string) (template.HTML, error) {
	var result strings.Builder
	for _, ref := range normalizeMenuRefs(refs) {
		contents, err := getMenuFragment(ctx, site, ref)
		if err != nil {
			return "", err
		}
		result.WriteString(contents)
	}
	return template.HTML(result.String()), nil // #nosec G203
}

func getMenuFragment(ctx context.Context, site Site, ref string) (string, error) {
	if !validMenuRef(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMenuRef, ref)
	}
	key := "menu:" + ref
	if cache, ok := site.(ResourceCacher); ok {
		if cached := cache.GetCachedResource(ctx, key); cached != nil {
			return *cached, nil
		}
	}
	fsys := site.TemplateDir(ctx)
	if fsys == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownMenu, ref)
	}
	contents, err := fs.ReadFile(fsys, path.Join(MenuDir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMenu, ref)
	}
	if err != nil {
		return "", fmt.Errorf("error reading menu %q: %w", ref, err)
	}
	if cache, ok := site.(ResourceCacher); ok {
		cache.SetCachedResource(ctx, key, string(contents))
	}
	return string(contents), nil
}
