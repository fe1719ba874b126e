package enkellang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	source *Source
	src    string
	offset int
	line   int
	column int
	tokens []Token
}

func Lex(source *Source) ([]Token, error) {
	l := &lexer{
		source: source,
		src:    source.Content,
		line:   1,
		column: 1,
	}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) pos() Pos {
	return Pos{
		Source: l.source,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *lexer) peek() (rune, int) {
	if l.offset >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.offset:])
}

func (l *lexer) advance() rune {
	r, size := l.peek()
	if size == 0 {
		return r
	}
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) run() error {
	for {
		if err := l.skipSpaceAndComments(); err != nil {
			return err
		}
		start := l.pos()
		r, size := l.peek()
		if size == 0 {
			l.tokens = append(l.tokens, Token{Kind: TokenEOF, Pos: start})
			return nil
		}

		switch {
		case r == '"':
			tok, err := l.lexString(start)
			if err != nil {
				return err
			}
			l.tokens = append(l.tokens, tok)
		case isDigit(r):
			tok, err := l.lexNumber(start)
			if err != nil {
				return err
			}
			l.tokens = append(l.tokens, tok)
		case r == '_' || unicode.IsLetter(r):
			l.tokens = append(l.tokens, l.lexIdentifier(start))
		default:
			tok, ok := l.lexSymbol(start)
			if !ok {
				return syntaxError(start, "unexpected character %q", r)
			}
			l.tokens = append(l.tokens, tok)
		}
	}
}

func (l *lexer) skipSpaceAndComments() error {
	for {
		r, size := l.peek()
		if size == 0 {
			return nil
		}
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case strings.HasPrefix(l.src[l.offset:], "//"):
			for {
				r, size := l.peek()
				if size == 0 || r == '\n' {
					break
				}
				l.advance()
			}
		case strings.HasPrefix(l.src[l.offset:], "/*"):
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if strings.HasPrefix(l.src[l.offset:], "*/") {
					l.advance()
					l.advance()
					break
				}
				if _, size := l.peek(); size == 0 {
					return syntaxError(start, "unterminated comment")
				}
				l.advance()
			}
		default:
			return nil
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *lexer) lexNumber(start Pos) (Token, error) {
	begin := l.offset
	hasDot := false
	for {
		r, size := l.peek()
		if size == 0 {
			break
		}
		if isDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && !hasDot {
			next := l.offset + 1
			if next < len(l.src) && isDigit(rune(l.src[next])) {
				hasDot = true
				l.advance()
				continue
			}
		}
		break
	}
	text := l.src[begin:l.offset]
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return Token{}, syntaxError(start, "bad number literal %q", text)
	}
	return Token{
		Kind: TokenNumber,
		Text: text,
		Num:  float32(f),
		Pos:  start,
	}, nil
}

func (l *lexer) lexIdentifier(start Pos) Token {
	begin := l.offset
	for {
		r, size := l.peek()
		if size == 0 {
			break
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}
	text := l.src[begin:l.offset]
	kind := TokenIdentifier
	if keywords[text] {
		kind = TokenKeyword
	}
	return Token{
		Kind: kind,
		Text: text,
		Pos:  start,
	}
}

func (l *lexer) lexString(start Pos) (Token, error) {
	l.advance()
	var sb strings.Builder
	for {
		r, size := l.peek()
		if size == 0 || r == '\n' {
			return Token{}, syntaxError(start, "unterminated string")
		}
		l.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			esc, size := l.peek()
			if size == 0 {
				return Token{}, syntaxError(start, "unterminated string")
			}
			l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"', '\\':
				sb.WriteRune(esc)
			default:
				return Token{}, syntaxError(start, "unknown escape \\%c", esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
	return Token{
		Kind: TokenString,
		Text: sb.String(),
		Pos:  start,
	}, nil
}

func (l *lexer) lexSymbol(start Pos) (Token, bool) {
	rest := l.src[l.offset:]
	for _, sym := range symbols {
		if strings.HasPrefix(rest, sym) {
			for range len(sym) {
				l.advance()
			}
			return Token{
				Kind: TokenSymbol,
				Text: sym,
				Pos:  start,
			}, true
		}
	}
	return Token{}, false
}
