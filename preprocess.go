// preprocess.go — strips comments and '#'-prefixed directive lines,
// preserving the source's line count so downstream diagnostics can still
// point at the original line (§4.1). No directive semantics are
// interpreted; a '#include' or '#define' line simply vanishes.
package cflat

import "strings"

// Preprocess consumes raw source and returns preprocessed source with the
// same number of lines. Failure is impossible on well-formed input; an
// unterminated block comment simply consumes to end of input (undefined but
// non-crashing, per §4.1).
func Preprocess(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	runes := []byte(src)
	n := len(runes)
	i := 0
	atLineStart := true

	for i < n {
		c := runes[i]

		if atLineStart && c == '#' {
			for i < n && runes[i] != '\n' {
				i++
			}
			atLineStart = false
			continue
		}

		if c == '/' && i+1 < n && runes[i+1] == '/' {
			for i < n && runes[i] != '\n' {
				i++
			}
			continue
		}

		if c == '/' && i+1 < n && runes[i+1] == '*' {
			i += 2
			for i < n && !(runes[i] == '*' && i+1 < n && runes[i+1] == '/') {
				if runes[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			if i < n {
				i += 2 // consume "*/"
			}
			atLineStart = false
			continue
		}

		out.WriteByte(c)
		atLineStart = c == '\n'
		i++
	}

	s := out.String()
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
