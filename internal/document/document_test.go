package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func TestPositionAt(t *testing.T) {
	d := New("file:///a.php", "<?php\n$a = 1;\n\n$b;", 1)

	tests := []struct {
		offset int
		want   protocol.Position
	}{
		{0, pos(0, 0)},
		{5, pos(0, 5)},
		{6, pos(1, 0)},
		{8, pos(1, 2)},
		{14, pos(2, 0)},
		{15, pos(3, 0)},
		{18, pos(3, 3)},
		{100, pos(3, 3)},
		{-4, pos(0, 0)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.PositionAt(tt.offset), "offset %d", tt.offset)
	}
}

func TestOffsetAt(t *testing.T) {
	d := New("file:///a.php", "<?php\n$a = 1;\n\n$b;", 1)

	assert.Equal(t, 0, d.OffsetAt(pos(0, 0)))
	assert.Equal(t, 8, d.OffsetAt(pos(1, 2)))
	assert.Equal(t, 13, d.OffsetAt(pos(1, 99)))
	assert.Equal(t, 14, d.OffsetAt(pos(2, 0)))
	assert.Equal(t, 18, d.OffsetAt(pos(9, 0)))
}

func TestUTF16Columns(t *testing.T) {
	// é is 2 bytes and one code unit, 😀 is 4 bytes and two code units
	d := New("file:///u.php", "$é = '😀';\n$x", 0)

	assert.Equal(t, pos(0, 2), d.PositionAt(3))
	assert.Equal(t, 3, d.OffsetAt(pos(0, 2)))

	emoji := len("$é = '")
	assert.Equal(t, pos(0, 6), d.PositionAt(emoji))
	assert.Equal(t, pos(0, 8), d.PositionAt(emoji+4))
	assert.Equal(t, emoji+4, d.OffsetAt(pos(0, 8)))

	// an offset inside a rune maps to the rune start
	assert.Equal(t, pos(0, 6), d.PositionAt(emoji+2))
}

func TestRoundTrip(t *testing.T) {
	d := New("file:///r.php", "<?php\r\nclass A {}\n", 0)
	for off := 0; off <= len(d.Text()); off++ {
		if off == 6 {
			continue // between \r and \n
		}
		assert.Equal(t, off, d.OffsetAt(d.PositionAt(off)), "offset %d", off)
	}
}

func TestSetTextAndLocation(t *testing.T) {
	d := New("file:///l.php", "a", 0)
	d.SetText("one\ntwo", 2)
	assert.Equal(t, int32(2), d.Version())
	assert.Equal(t, 2, d.LineCount())

	loc := d.LocationOf(4, 7)
	assert.Equal(t, protocol.DocumentURI("file:///l.php"), loc.URI)
	assert.Equal(t, protocol.Range{Start: pos(1, 0), End: pos(1, 3)}, loc.Range)
	assert.Equal(t, "two", d.Slice(4, 7))
	assert.Equal(t, "", d.Slice(5, 2))
}

func TestFromPath(t *testing.T) {
	d := FromPath("/tmp/x.php", "<?php")
	assert.Equal(t, protocol.DocumentURI("file:///tmp/x.php"), d.URI())
	assert.Equal(t, "/tmp/x.php", d.Path())
}
