//go:build !cgo

package syntax

import "context"

type unavailable struct{}

// NewParser returns a parser that always fails; tree-sitter requires cgo
func NewParser() Parser {
	return unavailable{}
}

func (unavailable) Parse(context.Context, []byte) (*Node, error) {
	return nil, ErrParserUnavailable
}
