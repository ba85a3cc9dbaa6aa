// Package formats provides parsers for mesh exchange file formats.
package formats

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by a parser in this package wraps
// exactly one of them, so callers can branch with errors.Is.
var (
	// ErrFormat covers a wrong magic token, an unsupported encoding and
	// records that cannot be read.
	ErrFormat = errors.New("format error")
	// ErrMissingField covers absent mandatory header declarations.
	ErrMissingField = errors.New("missing field")
	// ErrTopology covers faces that are not triangles or that reference
	// vertices which do not exist.
	ErrTopology = errors.New("topology error")
)

// ParseError records the source line a parse failure was detected on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
