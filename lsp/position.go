package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// positionAt converts a byte offset in content to an LSP position, whose
// character counts UTF-16 code units.
func positionAt(content string, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}

	var line, char uint32

	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(content[i:])
		i += size

		if r == '\n' {
			line++
			char = 0

			continue
		}

		char += uint32(utf16.RuneLen(r)) //nolint:gosec // 1 or 2
	}

	return protocol.Position{Line: line, Character: char}
}

// nextRuneEnd returns the offset just past the rune at offset, or offset
// itself at the end of content or a line.
func nextRuneEnd(content string, offset int) int {
	if offset >= len(content) || content[offset] == '\n' {
		return offset
	}

	_, size := utf8.DecodeRuneInString(content[offset:])

	return offset + size
}

// fullRange returns the range covering all of content.
func fullRange(content string) protocol.Range {
	return protocol.Range{End: positionAt(content, len(content))}
}
