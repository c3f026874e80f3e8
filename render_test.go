package folio_test

import (
	"context"
	"errors"
	"html/template"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"impractical.co/folio"
)

type errWriter struct {
	writes int
}

func (w *errWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("write refused")
}

func TestRenderDefaultTemplates(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(folio.DefaultTemplates())
	bodies := []string{
		"<p>hello</p>",
		"<p>See also the <a href=\"changes-532.php\">user visible changes for\n5.32</a>.\n",
		"<ul>\n   <p><li>Emacs 22 is no longer supported</ul>\n",
		"&quot;&gt;&gt;&quot; as a double template ender {{ .Title }}",
		"",
	}
	for _, body := range bodies {
		page := folio.Page{
			Title:    "Changes for CC Mode 5.33",
			MenuRefs: []string{"links.h"},
			Body:     template.HTML(body),
		}
		out, err := folio.Render(context.Background(), site, page)
		if err != nil {
			t.Fatalf("Unexpected error rendering body %q: %s", body, err)
		}
		header, rest, ok := strings.Cut(out, "<main>\n")
		if !ok {
			t.Fatalf("Expected output to contain the header's <main>, got %q", out)
		}
		if count := strings.Count(header, page.Title); count != 1 {
			t.Errorf("Expected title once in header, found it %d times in %q", count, header)
		}
		if !strings.HasPrefix(rest, body) {
			t.Errorf("Expected body %q verbatim after header, got %q", body, rest)
		}
		if !strings.HasSuffix(rest, "</main>\n</body>\n</html>\n") {
			t.Errorf("Expected output to end with the footer, got %q", rest)
		}
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(folio.DefaultTemplates())
	page := folio.Page{
		Title: "Compatibility Notes",
		Body:  "<p>CC Mode should work out of the box with Emacs &gt;= 23.1</p>",
	}
	first, err := folio.Render(context.Background(), site, page)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	for i := 0; i < 3; i++ {
		again, err := folio.Render(context.Background(), site, page)
		if err != nil {
			t.Fatalf("Unexpected error on render %d: %s", i+2, err)
		}
		if again != first {
			t.Errorf("Expected identical output on render %d, got %q then %q", i+2, first, again)
		}
	}
}

func TestRenderConcatenation(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(fstest.MapFS{
		"header.html.tmpl":    {Data: []byte(`H({{ .Title }};{{ join .MenuRefs "," }};{{ .Menu }})`)},
		"footer.html.tmpl":    {Data: []byte(`F`)},
		"menus/links.h":       {Data: []byte(`[links]`)},
		"menus/changelinks.h": {Data: []byte(`[changes]`)},
	})

	cases := map[string]struct {
		page     folio.Page
		expected string
	}{
		"scenario": {
			page:     folio.Page{Title: "Changes for X", MenuRefs: []string{"links.h"}, Body: "<p>hello</p>"},
			expected: "H(Changes for X;links.h;[links])<p>hello</p>F",
		},
		"default-menu": {
			page:     folio.Page{Title: "Compat", Body: "b"},
			expected: "H(Compat;links.h;[links])bF",
		},
		"ordered-menus": {
			page:     folio.Page{Title: "T", MenuRefs: []string{"changelinks.h", "links.h"}, Body: "b"},
			expected: "H(T;changelinks.h,links.h;[changes][links])bF",
		},
		"repeated-menus": {
			page:     folio.Page{Title: "T", MenuRefs: []string{"links.h", "changelinks.h", "links.h"}, Body: "b"},
			expected: "H(T;links.h,changelinks.h;[links][changes])bF",
		},
		"body-not-templated": {
			page:     folio.Page{Title: "T", MenuRefs: []string{"links.h"}, Body: `{{ .Title }}<script>alert("x")</script>`},
			expected: `H(T;links.h;[links]){{ .Title }}<script>alert("x")</script>F`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := folio.Render(context.Background(), site, tc.page)
			if err != nil {
				t.Fatalf("Unexpected error: %s", err)
			}
			if out != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, out)
			}
		})
	}
}

func TestRenderMissingTitle(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(folio.DefaultTemplates())
	for _, title := range []string{"", "   ", "\n\t"} {
		var out strings.Builder
		err := folio.RenderTo(context.Background(), &out, site, folio.Page{Path: "compat.html", Title: title, Body: "<p>body</p>"})
		if !errors.Is(err, folio.ErrMissingTitle) {
			t.Errorf("Expected ErrMissingTitle for title %q, got %v", title, err)
		}
		var missing folio.MissingTitleError
		if !errors.As(err, &missing) {
			t.Errorf("Expected a MissingTitleError for title %q, got %T", title, err)
		} else if missing.Path != "compat.html" {
			t.Errorf("Expected error for compat.html, got %q", missing.Path)
		}
		if out.Len() != 0 {
			t.Errorf("Expected no output for title %q, got %q", title, out.String())
		}
	}
}

func TestRenderSiteErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		files    fstest.MapFS
		refs     []string
		expected error
	}{
		"no-header": {
			files: fstest.MapFS{
				"footer.html.tmpl": {Data: []byte(`F`)},
				"menus/links.h":    {Data: []byte(`L`)},
			},
			expected: folio.ErrNoFragment,
		},
		"no-footer": {
			files: fstest.MapFS{
				"header.html.tmpl": {Data: []byte(`H`)},
				"menus/links.h":    {Data: []byte(`L`)},
			},
			expected: folio.ErrNoFragment,
		},
		"unknown-menu": {
			files: fstest.MapFS{
				"header.html.tmpl": {Data: []byte(`H`)},
				"footer.html.tmpl": {Data: []byte(`F`)},
				"menus/links.h":    {Data: []byte(`L`)},
			},
			refs:     []string{"links.h", "nope.h"},
			expected: folio.ErrUnknownMenu,
		},
		"traversal-menu": {
			files: fstest.MapFS{
				"header.html.tmpl": {Data: []byte(`H`)},
				"footer.html.tmpl": {Data: []byte(`F`)},
			},
			refs:     []string{"../header.html.tmpl"},
			expected: folio.ErrInvalidMenuRef,
		},
		"empty-menu-ref": {
			files: fstest.MapFS{
				"header.html.tmpl": {Data: []byte(`H`)},
				"footer.html.tmpl": {Data: []byte(`F`)},
			},
			refs:     []string{""},
			expected: folio.ErrInvalidMenuRef,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			site := folio.NewCachedSite(tc.files)
			out, err := folio.Render(context.Background(), site, folio.Page{Title: "T", MenuRefs: tc.refs, Body: "b"})
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected error %v, got %v", tc.expected, err)
			}
			if out != "" {
				t.Errorf("Expected no output, got %q", out)
			}
		})
	}
}

func TestRenderTemplateErrors(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(fstest.MapFS{
		"header.html.tmpl": {Data: []byte(`{{ .Imaginary }}`)},
		"footer.html.tmpl": {Data: []byte(`F`)},
		"menus/links.h":    {Data: []byte(`L`)},
	})
	_, err := folio.Render(context.Background(), site, folio.Page{Title: "T", Body: "b"})
	if err == nil {
		t.Fatal("Expected an error executing a header that uses unknown fields, got nil")
	}
	if errors.Is(err, folio.ErrMissingTitle) {
		t.Errorf("Expected a template error, got %v", err)
	}

	unparseable := folio.NewCachedSite(fstest.MapFS{
		"header.html.tmpl": {Data: []byte(`{{ if }`)},
		"footer.html.tmpl": {Data: []byte(`F`)},
		"menus/links.h":    {Data: []byte(`L`)},
	})
	_, err = folio.Render(context.Background(), unparseable, folio.Page{Title: "T", Body: "b"})
	if err == nil {
		t.Fatal("Expected an error parsing a broken header, got nil")
	}
}

func TestRenderToWriteError(t *testing.T) {
	t.Parallel()

	site := folio.NewCachedSite(folio.DefaultTemplates())
	w := &errWriter{}
	err := folio.RenderTo(context.Background(), w, site, folio.Page{Title: "T", Body: "b"})
	if err == nil {
		t.Fatal("Expected an error from a failing writer, got nil")
	}
	if w.writes != 1 {
		t.Errorf("Expected the document to be written in one call, got %d writes", w.writes)
	}
}

func TestDefaultMenuRefs(t *testing.T) {
	t.Parallel()

	refs := folio.DefaultMenuRefs()
	if !slices.Equal(refs, []string{"links.h"}) {
		t.Fatalf("Expected [links.h], got %v", refs)
	}
	refs[0] = "changelinks.h"
	if again := folio.DefaultMenuRefs(); !slices.Equal(again, []string{"links.h"}) {
		t.Errorf("Expected changing a returned slice to leave the default alone, got %v", again)
	}

	site := folio.NewCachedSite(fstest.MapFS{
		"header.html.tmpl":    {Data: []byte(`H({{ .Menu }})`)},
		"footer.html.tmpl":    {Data: []byte(`F`)},
		"menus/links.h":       {Data: []byte(`[links]`)},
		"menus/changelinks.h": {Data: []byte(`[changes]`)},
	})
	out, err := folio.Render(context.Background(), site, folio.Page{Title: "T", Body: "b"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if out != "H([links])bF" {
		t.Errorf("Expected the links.h menu, got %q", out)
	}
}
