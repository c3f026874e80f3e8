package folio

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"go.opentelemetry.io/otel/attribute"
)

// HeaderData is the data the header fragment is executed with.
type HeaderData[SiteType Site] struct {
	// Site is an instance of the Site type, containing all the
	// configuration and information about a Site. This can be used to
	// avoid repeating site-wide values in every page.
	Site SiteType

	// Title is the title of the page being rendered.
	Title string

	// MenuRefs are the menu references the page is rendered with, after
	// defaults are applied and repeats are dropped.
	MenuRefs []string

	// Menu is the contents of every fragment named in MenuRefs,
	// concatenated in order.
	Menu template.HTML
}

// FooterData is the data the footer fragment is executed with.
type FooterData[SiteType Site] struct {
	// Site is an instance of the Site type, containing all the
	// configuration and information about a Site.
	Site SiteType
}

// Render returns the full HTML document for page: the site's header
// fragment, then page.Body exactly as given, then the site's footer
// fragment.
//
// If the page has no title, Render returns a MissingTitleError. Other errors
// mean the site's fragments couldn't be loaded or executed.
func Render[SiteType Site](ctx context.Context, site SiteType, page Page) (string, error) {
	var out bytes.Buffer
	err := RenderTo(ctx, &out, site, page)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// RenderTo writes the full HTML document for page to out. See Render for
// what's written. Nothing is written to out unless the whole document
// rendered successfully.
func RenderTo[SiteType Site](ctx context.Context, out io.Writer, site SiteType, page Page) (err error) {
	ctx, span := startSpan(ctx, "folio.Render",
		attribute.String("folio.page.path", page.Path),
		attribute.String("folio.page.title", page.Title),
	)
	defer func() { endSpan(span, err) }()

	err = page.validate()
	if err != nil {
		logger(ctx).DebugContext(ctx, "refusing to render page", "path", page.Path, "error", err)
		return err
	}

	refs := normalizeMenuRefs(page.MenuRefs)
	span.SetAttributes(attribute.StringSlice("folio.page.menu_refs", refs))
	menu, err := ResolveMenu(ctx, site, refs)
	if err != nil {
		return fmt.Errorf("error resolving menu for %q: %w", page.Title, err)
	}

	header, err := getFragment(ctx, site, HeaderTemplate)
	if err != nil {
		return err
	}
	footer, err := getFragment(ctx, site, FooterTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = header.Execute(&buf, HeaderData[SiteType]{
		Site:     site,
		Title:    page.Title,
		MenuRefs: refs,
		Menu:     menu,
	})
	if err != nil {
		return fmt.Errorf("error executing template %q for %q: %w", HeaderTemplate, page.Title, err)
	}
	buf.WriteString(string(page.Body))
	err = footer.Execute(&buf, FooterData[SiteType]{
		Site: site,
	})
	if err != nil {
		return fmt.Errorf("error executing template %q for %q: %w", FooterTemplate, page.Title, err)
	}

	_, err = buf.WriteTo(out)
	if err != nil {
		return fmt.Errorf("error writing %q: %w", page.Title, err)
	}
	logger(ctx).DebugContext(ctx, "rendered page", "path", page.Path, "title", page.Title, "menu_refs", refs)
	return nil
}
