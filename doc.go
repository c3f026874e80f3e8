// Package folio renders static documentation pages by composing a shared
// header fragment, a page body, and a shared footer fragment.
//
// folio is organized around Pages and Sites. A Page is a single static
// document: a title, an ordered list of menu references, and a body of
// markup. A Site provides the fs.FS holding the fragments every Page is
// wrapped in, and is available to those fragments at render time as .Site,
// so it can hold configuration data used across all pages.
//
// The fragments a Site needs are:
//
//   - header.html.tmpl, executed with a HeaderData. It receives the Page's
//     title as .Title and the resolved navigation markup as .Menu.
//   - footer.html.tmpl, executed with a FooterData.
//   - menus/<ref>, one static markup file per menu reference a Page can
//     name. A Page without menu references gets DefaultMenuRefs.
//
// DefaultTemplates returns a minimal set of fragments that can be used as-is
// or as a starting point.
//
// To render a single Page, pass it to Render or RenderTo. The body is never
// run through a template; it appears in the output exactly as supplied. To
// render a whole tree of page definition files into a directory of HTML
// files, use Build, which keeps going when individual pages fail and reports
// every failure at the end.
package folio
