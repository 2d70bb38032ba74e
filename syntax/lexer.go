package syntax

import (
	"unicode"
	"unicode/utf8"
)

type rawToken struct {
	kind       TokenKind
	trivia     bool
	triviaKind TriviaKind
	offset     int
	end        int
}

// Lexer splits source text into significant tokens and trivia. It never
// fails: bytes it does not recognize become TokenUnknown.
type Lexer struct {
	input string
	mode  Mode
	pos   int

	prev     TokenKind
	havePrev bool

	// braces has one entry per open `{` or `${`; true marks a template
	// substitution, whose `}` resumes the template text.
	braces []bool
}

func NewLexer(input []byte, mode Mode) *Lexer {
	return &Lexer{input: string(input), mode: mode}
}

// Tokenize lexes src and attaches trivia to the surrounding tokens. The last
// token is always TokenEOF.
func Tokenize(src []byte, mode Mode) []Token {
	return NewLexer(src, mode).Tokens()
}

// Tokens runs the lexer to the end of the input. A token's trailing trivia
// holds the whitespace and comments on its line up to and including the line
// break; everything after that belongs to the next token's leading trivia.
func (l *Lexer) Tokens() []Token {
	var raws []rawToken
	for {
		raw := l.next()
		raws = append(raws, raw)
		if raw.kind == TokenEOF && !raw.trivia {
			break
		}
	}

	var tokens []Token
	var leading []Trivia
	i := 0
	for i < len(raws) {
		raw := raws[i]
		i++
		if raw.trivia {
			leading = append(leading, l.trivia(raw))
			continue
		}
		tok := Token{
			Kind:    raw.kind,
			Text:    l.input[raw.offset:raw.end],
			Offset:  raw.offset,
			Leading: leading,
		}
		leading = nil
		if raw.kind == TokenEOF {
			tokens = append(tokens, tok)
			break
		}
		for i < len(raws) && raws[i].trivia {
			tr := raws[i]
			i++
			tok.Trailing = append(tok.Trailing, l.trivia(tr))
			if tr.triviaKind == TriviaNewline {
				break
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (l *Lexer) trivia(raw rawToken) Trivia {
	return Trivia{Kind: raw.triviaKind, Text: l.input[raw.offset:raw.end], Offset: raw.offset}
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) next() rawToken {
	start := l.pos
	if l.pos >= len(l.input) {
		return rawToken{kind: TokenEOF, offset: start, end: start}
	}

	ch := l.input[l.pos]
	switch {
	case ch == '\n':
		l.pos++
		return l.triviaToken(TriviaNewline, start)
	case ch == '\r':
		l.pos++
		if l.peekN(0) == '\n' {
			l.pos++
		}
		return l.triviaToken(TriviaNewline, start)
	case ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f':
		for l.pos < len(l.input) {
			c := l.input[l.pos]
			if c != ' ' && c != '\t' && c != '\v' && c != '\f' {
				break
			}
			l.pos++
		}
		return l.triviaToken(TriviaWhitespace, start)
	case ch == '/' && l.peekN(1) == '/':
		for l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
			l.pos++
		}
		return l.triviaToken(TriviaLineComment, start)
	case ch == '/' && l.peekN(1) == '*':
		l.pos += 2
		for {
			if l.pos >= len(l.input) {
				l.pos = len(l.input)
				break
			}
			if l.input[l.pos] == '*' && l.peekN(1) == '/' {
				l.pos += 2
				break
			}
			l.pos++
		}
		return l.triviaToken(TriviaBlockComment, start)
	case ch >= utf8.RuneSelf:
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch {
		case r == '\u2028' || r == '\u2029':
			l.pos += size
			return l.triviaToken(TriviaNewline, start)
		case r == '\uFEFF' || unicode.IsSpace(r):
			l.pos += size
			return l.triviaToken(TriviaWhitespace, start)
		case r != utf8.RuneError && isIdentStartRune(r):
			return l.token(l.scanIdent(), start)
		}
		l.pos += size
		return l.token(TokenUnknown, start)
	case isIdentStart(ch):
		return l.token(l.scanIdent(), start)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))):
		l.scanNumber()
		return l.token(TokenNumber, start)
	case ch == '-' && l.mode == JSON && isDigit(l.peekN(1)):
		l.pos++
		l.scanNumber()
		return l.token(TokenNumber, start)
	case ch == '"' || ch == '\'':
		l.scanString(ch)
		return l.token(TokenString, start)
	case ch == '`' && l.mode != JSON:
		l.pos++
		return l.token(l.scanTemplate(TokenTemplate, TokenTemplateHead), start)
	case ch == '}' && len(l.braces) > 0 && l.braces[len(l.braces)-1]:
		l.braces = l.braces[:len(l.braces)-1]
		l.pos++
		return l.token(l.scanTemplate(TokenTemplateTail, TokenTemplateMiddle), start)
	case ch == '#' && l.mode != JSON && l.pos+1 < len(l.input) && isIdentStart(l.input[l.pos+1]):
		l.pos++
		l.scanIdent()
		return l.token(TokenPrivateName, start)
	case ch == '/' && l.regexAllowed():
		if l.scanRegex() {
			return l.token(TokenRegex, start)
		}
		l.pos = start
	}
	kind := l.scanPunct()
	switch kind {
	case TokenLBrace:
		l.braces = append(l.braces, false)
	case TokenRBrace:
		if len(l.braces) > 0 {
			l.braces = l.braces[:len(l.braces)-1]
		}
	}
	return l.token(kind, start)
}

func (l *Lexer) triviaToken(kind TriviaKind, start int) rawToken {
	return rawToken{trivia: true, triviaKind: kind, offset: start, end: l.pos}
}

func (l *Lexer) token(kind TokenKind, start int) rawToken {
	l.prev = kind
	l.havePrev = true
	return rawToken{kind: kind, offset: start, end: l.pos}
}

func (l *Lexer) scanIdent() TokenKind {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch < utf8.RuneSelf {
			if !isIdentPart(ch) {
				break
			}
			l.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == utf8.RuneError || !isIdentPartRune(r) {
			break
		}
		l.pos += size
	}
	if l.mode == JSON {
		switch l.input[start:l.pos] {
		case "true":
			return TokenTrue
		case "false":
			return TokenFalse
		case "null":
			return TokenNull
		}
		return TokenIdent
	}
	return LookupKeyword(l.input[start:l.pos])
}

func (l *Lexer) scanNumber() {
	if l.peekN(0) == '0' {
		switch l.peekN(1) {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			l.pos += 2
			for l.pos < len(l.input) && (isHexDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
				l.pos++
			}
			if l.peekN(0) == 'n' {
				l.pos++
			}
			return
		}
	}
	l.skipDigits()
	if l.peekN(0) == '.' {
		l.pos++
		l.skipDigits()
	}
	if c := l.peekN(0); c == 'e' || c == 'E' {
		if isDigit(l.peekN(1)) {
			l.pos++
			l.skipDigits()
		} else if (l.peekN(1) == '+' || l.peekN(1) == '-') && isDigit(l.peekN(2)) {
			l.pos += 2
			l.skipDigits()
		}
	}
	if l.peekN(0) == 'n' {
		l.pos++
	}
}

func (l *Lexer) skipDigits() {
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
}

// scanString stops at the closing quote or, for unterminated strings, before
// the line break.
func (l *Lexer) scanString(quote byte) {
	l.pos++
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case quote:
			l.pos++
			return
		case '\\':
			l.pos++
			if l.pos < len(l.input) {
				if l.input[l.pos] == '\r' && l.peekN(1) == '\n' {
					l.pos++
				}
				l.pos++
			}
		case '\n', '\r':
			return
		default:
			l.pos++
		}
	}
}

// scanTemplate consumes template text after a backtick or a closing
// substitution brace. It returns end when the text reaches the closing
// backtick (or the end of input) and open when it stops after `${`.
func (l *Lexer) scanTemplate(end, open TokenKind) TokenKind {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos++
			if l.pos < len(l.input) {
				l.pos++
			}
		case '`':
			l.pos++
			return end
		case '$':
			l.pos++
			if l.peekN(0) == '{' {
				l.pos++
				l.braces = append(l.braces, true)
				return open
			}
		default:
			l.pos++
		}
	}
	return end
}

// regexAllowed decides whether a slash starts a regular expression from the
// previous significant token.
func (l *Lexer) regexAllowed() bool {
	if l.mode == JSON {
		return false
	}
	if !l.havePrev {
		return true
	}
	switch l.prev {
	case TokenIdent, TokenPrivateName, TokenNumber, TokenString, TokenTemplate, TokenTemplateTail, TokenRegex,
		TokenRParen, TokenRBracket, TokenRBrace,
		TokenTrue, TokenFalse, TokenNull, TokenThis, TokenSuper,
		TokenIncrement, TokenDecrement:
		return false
	}
	return true
}

// scanRegex reports false when the literal is unterminated on its line, in
// which case the caller lexes a plain slash.
func (l *Lexer) scanRegex() bool {
	l.pos++
	inClass := false
	for {
		if l.pos >= len(l.input) {
			return false
		}
		ch := l.input[l.pos]
		switch {
		case ch == '\n' || ch == '\r':
			return false
		case ch == '\\':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
				l.pos++
			}
			continue
		case ch == '[':
			inClass = true
		case ch == ']':
			inClass = false
		case ch == '/' && !inClass:
			l.pos++
			for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
				l.pos++
			}
			return true
		}
		l.pos++
	}
}

func (l *Lexer) take(n int, kind TokenKind) TokenKind {
	l.pos += n
	return kind
}

func (l *Lexer) scanPunct() TokenKind {
	ch := l.input[l.pos]
	n1, n2, n3 := l.peekN(1), l.peekN(2), l.peekN(3)
	switch ch {
	case '(':
		return l.take(1, TokenLParen)
	case ')':
		return l.take(1, TokenRParen)
	case '{':
		return l.take(1, TokenLBrace)
	case '}':
		return l.take(1, TokenRBrace)
	case '[':
		return l.take(1, TokenLBracket)
	case ']':
		return l.take(1, TokenRBracket)
	case ';':
		return l.take(1, TokenSemicolon)
	case ',':
		return l.take(1, TokenComma)
	case ':':
		return l.take(1, TokenColon)
	case '~':
		return l.take(1, TokenTilde)
	case '@':
		return l.take(1, TokenAt)
	case '.':
		if n1 == '.' && n2 == '.' {
			return l.take(3, TokenEllipsis)
		}
		return l.take(1, TokenDot)
	case '?':
		if n1 == '.' && !isDigit(n2) {
			return l.take(2, TokenQuestionDot)
		}
		if n1 == '?' {
			if n2 == '=' {
				return l.take(3, TokenNullishAssign)
			}
			return l.take(2, TokenNullish)
		}
		return l.take(1, TokenQuestion)
	case '=':
		if n1 == '=' {
			if n2 == '=' {
				return l.take(3, TokenStrictEQ)
			}
			return l.take(2, TokenEQ)
		}
		if n1 == '>' {
			return l.take(2, TokenArrow)
		}
		return l.take(1, TokenAssign)
	case '!':
		if n1 == '=' {
			if n2 == '=' {
				return l.take(3, TokenStrictNE)
			}
			return l.take(2, TokenNE)
		}
		return l.take(1, TokenBang)
	case '<':
		if n1 == '<' {
			if n2 == '=' {
				return l.take(3, TokenShlAssign)
			}
			return l.take(2, TokenShl)
		}
		if n1 == '=' {
			return l.take(2, TokenLE)
		}
		return l.take(1, TokenLT)
	case '>':
		if n1 == '>' {
			if n2 == '>' {
				if n3 == '=' {
					return l.take(4, TokenUShrAssign)
				}
				return l.take(3, TokenUShr)
			}
			if n2 == '=' {
				return l.take(3, TokenShrAssign)
			}
			return l.take(2, TokenShr)
		}
		if n1 == '=' {
			return l.take(2, TokenGE)
		}
		return l.take(1, TokenGT)
	case '+':
		if n1 == '+' {
			return l.take(2, TokenIncrement)
		}
		if n1 == '=' {
			return l.take(2, TokenPlusAssign)
		}
		return l.take(1, TokenPlus)
	case '-':
		if n1 == '-' {
			return l.take(2, TokenDecrement)
		}
		if n1 == '=' {
			return l.take(2, TokenMinusAssign)
		}
		return l.take(1, TokenMinus)
	case '*':
		if n1 == '*' {
			if n2 == '=' {
				return l.take(3, TokenStarStarAssign)
			}
			return l.take(2, TokenStarStar)
		}
		if n1 == '=' {
			return l.take(2, TokenStarAssign)
		}
		return l.take(1, TokenStar)
	case '/':
		if n1 == '=' {
			return l.take(2, TokenSlashAssign)
		}
		return l.take(1, TokenSlash)
	case '%':
		if n1 == '=' {
			return l.take(2, TokenPercentAssign)
		}
		return l.take(1, TokenPercent)
	case '&':
		if n1 == '&' {
			if n2 == '=' {
				return l.take(3, TokenLogicalAndAssign)
			}
			return l.take(2, TokenLogicalAnd)
		}
		if n1 == '=' {
			return l.take(2, TokenAndAssign)
		}
		return l.take(1, TokenBitAnd)
	case '|':
		if n1 == '|' {
			if n2 == '=' {
				return l.take(3, TokenLogicalOrAssign)
			}
			return l.take(2, TokenLogicalOr)
		}
		if n1 == '=' {
			return l.take(2, TokenOrAssign)
		}
		return l.take(1, TokenBitOr)
	case '^':
		if n1 == '=' {
			return l.take(2, TokenXorAssign)
		}
		return l.take(1, TokenBitXor)
	}
	return l.take(1, TokenUnknown)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isIdentStartRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentPartRune(r rune) bool {
	return isIdentStartRune(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) ||
		r == '\u200C' || r == '\u200D'
}
