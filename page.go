package folio

import (
	"errors"
	"html/template"
	"strings"
)

var (
	// ErrMissingTitle is returned, wrapped in a MissingTitleError, when a
	// Page without a title is rendered.
	ErrMissingTitle = errors.New("page has no title")
)

// Page is a single static document to be rendered.
type Page struct {
	// Path is where the page was loaded from, relative to the root of
	// the source tree. Build uses it to name the output file; rendering
	// ignores it.
	Path string

	// Title is the page's title. It must not be empty.
	Title string

	// MenuRefs selects the menu fragments the header embeds, in order.
	// If empty, DefaultMenuRefs is used.
	MenuRefs []string

	// Body is the page's content. It is written to the output exactly as
	// given.
	Body template.HTML
}

// MissingTitleError is returned when a Page is rendered without a title.
// It matches ErrMissingTitle when used with errors.Is.
type MissingTitleError struct {
	// Path is the Page's Path, which may be empty.
	Path string
}

func (e MissingTitleError) Error() string {
	if e.Path == "" {
		return ErrMissingTitle.Error()
	}
	return ErrMissingTitle.Error() + ": " + e.Path
}

// Is reports whether target is ErrMissingTitle.
func (e MissingTitleError) Is(target error) bool {
	return target == ErrMissingTitle
}

func (p Page) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return MissingTitleError{Path: p.Path}
	}
	return nil
}
