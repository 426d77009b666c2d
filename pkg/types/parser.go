package types

// ParseResult represents the output of reading a PHP syntax tree
type ParseResult struct {
	// Root is the synthetic None-kind root of the document symbol tree
	Root *Symbol

	// Errors encountered while reading; never fatal
	Errors []ParseError
}

// ParseError represents a malformed region of the syntax tree
type ParseError struct {
	URI     string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return pe.Message
}

// HasErrors returns true if any malformed input was encountered
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError records a malformed region
func (pr *ParseResult) AddError(uri string, line, col int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		URI:     uri,
		Line:    line,
		Column:  col,
		Message: msg,
	})
}
