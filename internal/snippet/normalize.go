// Package snippet turns raw snippet file bytes into the literal payload to
// act upon: an optional front-matter header is stripped and the outermost
// blank lines are trimmed. Normalization is pure; the same input bytes always
// produce the same output bytes.
package snippet

import "bytes"

var bom = []byte{0xef, 0xbb, 0xbf}

// Normalize strips a leading front-matter block, if present, and trims
// leading and trailing blank lines.
func Normalize(b []byte) []byte {
	return trimBlankEdges(stripFrontMatter(b))
}

// stripFrontMatter removes a header delimited by a bare "---" opener and a
// bare "---" or "..." closer, both markers included. A missing closer means
// the presumed header is ordinary content: the input is returned unchanged.
func stripFrontMatter(b []byte) []byte {
	s := b
	if bytes.HasPrefix(s, bom) {
		s = s[len(bom):]
	}
	i := bytes.IndexByte(s, '\n')
	if i < 0 || !isMarker(s[:i], "---") {
		return b
	}
	rest := s[i+1:]
	for len(rest) > 0 {
		var line []byte
		if j := bytes.IndexByte(rest, '\n'); j >= 0 {
			line, rest = rest[:j], rest[j+1:]
		} else {
			line, rest = rest, nil
		}
		if isMarker(line, "---") || isMarker(line, "...") {
			return rest
		}
	}
	return b
}

// isMarker reports whether line is exactly marker, ignoring a carriage return.
func isMarker(line []byte, marker string) bool {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return string(line) == marker
}

// trimBlankEdges removes blank lines from the start and end of the content.
// Interior blank lines are preserved.
func trimBlankEdges(b []byte) []byte {
	// Leading: drop whole lines that are empty or all-whitespace.
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			if isBlank(b) {
				return nil
			}
			break
		}
		if !isBlank(b[:i]) {
			break
		}
		b = b[i+1:]
	}

	// Trailing: drop a blank unterminated fragment, then blank whole lines.
	if k := bytes.LastIndexByte(b, '\n'); k >= 0 && len(b[k+1:]) > 0 && isBlank(b[k+1:]) {
		b = b[:k+1]
	}
	for len(b) > 0 && b[len(b)-1] == '\n' {
		k := bytes.LastIndexByte(b[:len(b)-1], '\n')
		var line []byte
		if k < 0 {
			line = b[:len(b)-1]
		} else {
			line = b[k+1 : len(b)-1]
		}
		if !isBlank(line) {
			break
		}
		if k < 0 {
			return nil
		}
		b = b[:k+1]
	}
	return b
}

func isBlank(line []byte) bool {
	for _, c := range line {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}
