// Package document holds open PHP source documents and converts between
// byte offsets and LSP positions.
package document

import (
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Document is a versioned source text identified by a uri
type Document struct {
	uri     protocol.DocumentURI
	text    string
	version int32
	lines   []int // byte offset of the start of each line
}

// New creates a document
func New(u protocol.DocumentURI, text string, version int32) *Document {
	d := &Document{uri: u}
	d.SetText(text, version)
	return d
}

// FromPath creates a document for a file path
func FromPath(path, text string) *Document {
	return New(protocol.DocumentURI(uri.File(path)), text, 0)
}

// URI returns the document identity
func (d *Document) URI() protocol.DocumentURI { return d.uri }

// Text returns the full source
func (d *Document) Text() string { return d.text }

// Version returns the version given with the last SetText
func (d *Document) Version() int32 { return d.version }

// Path returns the file system path of a file:// document, or "" for
// other schemes
func (d *Document) Path() string {
	if !strings.HasPrefix(string(d.uri), uri.FileScheme+"://") {
		return ""
	}
	return uri.URI(d.uri).Filename()
}

// SetText replaces the content
func (d *Document) SetText(text string, version int32) {
	d.text = text
	d.version = version
	d.lines = d.lines[:0]
	d.lines = append(d.lines, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lines = append(d.lines, i+1)
		}
	}
}

// LineCount returns the number of lines
func (d *Document) LineCount() int { return len(d.lines) }

// PositionAt converts a byte offset to a position. Characters are counted in
// UTF-16 code units. Offsets are clamped to the text.
func (d *Document) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > offset }) - 1
	start := d.lines[line]

	var col int
	for i := start; i < offset; {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		if i+size > offset {
			break
		}
		col += utf16.RuneLen(r)
		i += size
	}
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

// OffsetAt converts a position to a byte offset. Positions past the end of a
// line resolve to the line end, positions past the last line to the text end.
func (d *Document) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lines) {
		return len(d.text)
	}
	i := d.lines[line]
	end := len(d.text)
	if line+1 < len(d.lines) {
		end = d.lines[line+1] - 1
	}

	want := int(pos.Character)
	for col := 0; i < end && col < want; {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		if r == '\r' && i+1 == end {
			break
		}
		col += utf16.RuneLen(r)
		i += size
	}
	return i
}

// RangeOf converts a byte span to a range
func (d *Document) RangeOf(start, end int) protocol.Range {
	return protocol.Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

// LocationOf converts a byte span to a location in this document
func (d *Document) LocationOf(start, end int) *protocol.Location {
	return &protocol.Location{URI: d.uri, Range: d.RangeOf(start, end)}
}

// Slice returns the text between two byte offsets
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}
