package dart

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind classifies a lexed token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenPunct
)

// StringPart is one segment of a string literal. Exactly one of Text or
// Expr is meaningful: Text for a contiguous literal run, Expr for the
// tokens of an interpolated expression.
type StringPart struct {
	Text string  `json:"text,omitempty"`
	Expr []Token `json:"expr,omitempty"`
}

// Token is a single lexeme. String tokens carry their decomposed parts;
// interpolated expressions are lexed recursively into Parts[i].Expr.
type Token struct {
	Kind  TokenKind    `json:"kind"`
	Text  string       `json:"text"`
	Line  int          `json:"line"`
	Parts []StringPart `json:"parts,omitempty"`
}

type lexer struct {
	src   string
	pos   int
	line  int
	diags []Diagnostic
}

// Lex tokenizes Dart source. It never fails: malformed input yields a
// best-effort token stream plus advisory diagnostics.
func Lex(src string) ([]Token, []Diagnostic) {
	l := &lexer{src: src, line: 1}
	var toks []Token
	for {
		t, ok := l.next()
		if !ok {
			break
		}
		toks = append(toks, t)
	}
	return toks, l.diags
}

func (l *lexer) diag(msg string) {
	l.diags = append(l.diags, Diagnostic{Line: l.line, Message: msg})
}

func (l *lexer) next() (Token, bool) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{}, false
	}
	c := l.src[l.pos]
	line := l.line
	switch {
	case c == 'r' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '\'' || l.src[l.pos+1] == '"'):
		l.pos++
		return l.scanString(true), true
	case c == '\'' || c == '"':
		return l.scanString(false), true
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokenIdent, Text: l.src[start:l.pos], Line: line}, true
	case c >= '0' && c <= '9':
		return l.scanNumber(), true
	default:
		return l.scanPunct(), true
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// Dart block comments nest.
func (l *lexer) skipBlockComment() {
	depth := 0
	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '\n':
			l.line++
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			depth++
			l.pos += 2
		case strings.HasPrefix(l.src[l.pos:], "*/"):
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
		default:
			l.pos++
		}
	}
}

func (l *lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokenNumber, Text: l.src[start:l.pos], Line: line}
	}
	digits := func() {
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	digits()
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		l.pos++
		digits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			digits()
		} else {
			l.pos = save
		}
	}
	return Token{Kind: TokenNumber, Text: l.src[start:l.pos], Line: line}
}

func (l *lexer) scanPunct() Token {
	line := l.line
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		if two == "=>" || two == "==" {
			l.pos += 2
			return Token{Kind: TokenPunct, Text: two, Line: line}
		}
	}
	c, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return Token{Kind: TokenPunct, Text: string(c), Line: line}
}

func (l *lexer) scanString(raw bool) Token {
	line := l.line
	quote := l.src[l.pos]
	l.pos++
	triple := false
	if strings.HasPrefix(l.src[l.pos:], string(quote)+string(quote)) {
		triple = true
		l.pos += 2
	}
	closer := string(quote)
	if triple {
		closer = strings.Repeat(string(quote), 3)
	}

	var parts []StringPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, StringPart{Text: lit.String()})
			lit.Reset()
		}
	}

scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == quote:
			if strings.HasPrefix(l.src[l.pos:], closer) {
				l.pos += len(closer)
				break scan
			}
			lit.WriteByte(c)
			l.pos++
		case c == '\n':
			if !triple {
				l.diag("unterminated string literal")
				break scan
			}
			lit.WriteByte('\n')
			l.line++
			l.pos++
		case c == '\\' && !raw:
			l.pos++
			l.writeEscape(&lit)
		case c == '$' && !raw:
			l.pos++
			if l.pos < len(l.src) && l.src[l.pos] == '{' {
				l.pos++
				flush()
				parts = append(parts, StringPart{Expr: l.lexInterp()})
				continue
			}
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			if l.pos == start {
				lit.WriteByte('$')
				continue
			}
			flush()
			parts = append(parts, StringPart{Expr: []Token{{
				Kind: TokenIdent,
				Text: l.src[start:l.pos],
				Line: l.line,
			}}})
		default:
			lit.WriteByte(c)
			l.pos++
		}
	}

	if lit.Len() > 0 || len(parts) == 0 {
		parts = append(parts, StringPart{Text: lit.String()})
	}
	var text strings.Builder
	for _, p := range parts {
		text.WriteString(p.Text)
	}
	return Token{Kind: TokenString, Text: text.String(), Line: line, Parts: parts}
}

// lexInterp consumes tokens of a ${...} expression up to the matching
// closing brace. Nested strings and comments are handled by recursion
// through next.
func (l *lexer) lexInterp() []Token {
	depth := 1
	var toks []Token
	for {
		t, ok := l.next()
		if !ok {
			l.diag("unterminated string interpolation")
			return toks
		}
		if t.Kind == TokenPunct {
			switch t.Text {
			case "{":
				depth++
			case "}":
				depth--
				if depth == 0 {
					return toks
				}
			}
		}
		toks = append(toks, t)
	}
}

func (l *lexer) writeEscape(b *strings.Builder) {
	if l.pos >= len(l.src) {
		return
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'x':
		b.WriteRune(l.hexEscape(2))
	case 'u':
		if l.pos < len(l.src) && l.src[l.pos] == '{' {
			l.pos++
			end := strings.IndexByte(l.src[l.pos:], '}')
			if end < 0 {
				return
			}
			if v, err := strconv.ParseUint(l.src[l.pos:l.pos+end], 16, 32); err == nil {
				b.WriteRune(rune(v))
			}
			l.pos += end + 1
			return
		}
		b.WriteRune(l.hexEscape(4))
	case '\n':
		l.line++
		b.WriteByte('\n')
	default:
		// covers \\ \' \" \$ and anything unrecognized
		b.WriteByte(c)
	}
}

func (l *lexer) hexEscape(n int) rune {
	if l.pos+n > len(l.src) {
		l.pos = len(l.src)
		return utf8.RuneError
	}
	v, err := strconv.ParseUint(l.src[l.pos:l.pos+n], 16, 32)
	l.pos += n
	if err != nil {
		return utf8.RuneError
	}
	return rune(v)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
