package html

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	TokenText TokenType = iota
	TokenTag
)

// Token is either a tag or a run of text. For tags Data is the raw text
// between '<' and '>', attributes included (e.g. "/p", `a href="x"`).
type Token struct {
	Type TokenType
	Data string
}

func Text(s string) Token { return Token{Type: TokenText, Data: s} }
func Tag(s string) Token { return Token{Type: TokenTag, Data: s} }

func (t Token) String() string {
	if t.Type == TokenTag {
		return fmt.Sprintf("Tag(%q)", t.Data)
	}
	return fmt.Sprintf("Text(%q)", t.Data)
}

// entities are the only character references decoded, and only outside tags.
var entities = []struct{ ref, char string }{
	{"&lt;", "<"},
	{"&gt;", ">"},
}

// Lex splits body into tag and text tokens in document order.
//
// A tag still open at the end of input is dropped. Every '>' ends a tag,
// even one seen outside a tag, in which case the pending text becomes the
// tag name.
func Lex(body string) []Token {
	var out []Token
	var buf strings.Builder
	inTag := false

	for i := 0; i < len(body); {
		switch c := body[i]; {
		case c == '<':
			inTag = true
			if buf.Len() > 0 {
				out = append(out, Text(buf.String()))
			}
			buf.Reset()
			i++
		case c == '>':
			inTag = false
			out = append(out, Tag(buf.String()))
			buf.Reset()
			i++
		case !inTag && c == '&':
			n := decodeEntity(body[i:], &buf)
			i += n
		default:
			buf.WriteByte(c)
			i++
		}
	}
	if !inTag && buf.Len() > 0 {
		out = append(out, Text(buf.String()))
	}
	return out
}

// decodeEntity writes the character for a known reference at the start of
// s, or a literal '&', and returns the bytes consumed.
func decodeEntity(s string, buf *strings.Builder) int {
	for _, e := range entities {
		if strings.HasPrefix(s, e.ref) {
			buf.WriteString(e.char)
			return len(e.ref)
		}
	}
	buf.WriteByte('&')
	return 1
}
