package folio_test

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"impractical.co/folio"
)

type FuncMapSite struct {
	*folio.CachedSite
}

func (FuncMapSite) FuncMap(_ context.Context) template.FuncMap {
	// these functions will be available to the header and footer
	return template.FuncMap{
		"shout": strings.ToUpper,
	}
}

func ExampleRender_funcMaps() {
	var templates = staticFS{
		"header.html.tmpl": `<h1>{{ shout .Title }}</h1>
{{ if hasMenu .MenuRefs "changelinks.h" }}<p>Older versions: {{ .Menu }}</p>
{{ end }}`,
		"footer.html.tmpl":    `<hr>`,
		"menus/links.h":       `<a href="index.html">Home</a>`,
		"menus/changelinks.h": `<a href="changes-532.html">5.32</a>`,
	}
	site := FuncMapSite{CachedSite: folio.NewCachedSite(templates)}

	out, err := folio.Render(context.Background(), site, folio.Page{
		Title:    "Changes for CC Mode 5.33",
		MenuRefs: []string{"changelinks.h"},
		Body:     "<p>Many bugs have been fixed.</p>\n",
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(out)

	//Output:
	// <h1>CHANGES FOR CC MODE 5.33</h1>
	// <p>Older versions: <a href="changes-532.html">5.32</a></p>
	// <p>Many bugs have been fixed.</p>
	// <hr>
}
