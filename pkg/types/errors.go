package types

import "errors"

// Domain errors shared across packages
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotIndexed       = errors.New("document not indexed")
	ErrEmptyQuery       = errors.New("query cannot be empty")
)
