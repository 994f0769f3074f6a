package parser

import "fmt"

// ParseError is a fatal front-end failure: the translation unit could not be
// turned into a declaration tree.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s: %s", e.Path, e.Reason)
}
