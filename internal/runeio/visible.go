// Package runeio renders text for terminal display, keeping control runes
// from acting on the terminal.
package runeio

import (
	"io"
	"strings"
	"unicode/utf8"
)

// CaretForm computes the ^-escaped printable form of a control rune: C0
// controls and DEL like "^[" for ESC, C1 controls in their 7-bit form like
// "^[[" for CSI. Returns "" for any other rune.
func CaretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	} else if 0x80 <= r && r <= 0x9f {
		return "^[" + string(r^0xc0)
	}
	return ""
}

// WriteVisible writes s to w with every control rune in caret form, and
// invalid UTF-8 bytes as U+FFFD.
func WriteVisible(w io.Writer, s string) (n int, err error) {
	sw, ok := w.(io.StringWriter)
	if !ok {
		sw = stringWriter{w}
	}
	for len(s) > 0 {
		i := strings.IndexFunc(s, needsEscape)
		if i < 0 {
			m, err := sw.WriteString(s)
			return n + m, err
		}
		if i > 0 {
			m, err := sw.WriteString(s[:i])
			n += m
			if err != nil {
				return n, err
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		esc := CaretForm(r)
		if esc == "" {
			esc = string(utf8.RuneError)
		}
		m, err := sw.WriteString(esc)
		n += m
		if err != nil {
			return n, err
		}
		s = s[i+size:]
	}
	return n, nil
}

// Visible returns s as WriteVisible would write it.
func Visible(s string) string {
	if strings.IndexFunc(s, needsEscape) < 0 {
		return s
	}
	var sb strings.Builder
	WriteVisible(&sb, s)
	return sb.String()
}

func needsEscape(r rune) bool {
	return r == utf8.RuneError || CaretForm(r) != ""
}

type stringWriter struct{ io.Writer }

func (sw stringWriter) WriteString(s string) (int, error) { return sw.Write([]byte(s)) }
