package domain

// Template is a named speech template. Body uses text/template syntax.
type Template struct {
	Name string
	Body string
}
