package syntax

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenUnknown

	// Literals and names
	TokenIdent
	TokenPrivateName
	TokenNumber
	TokenString
	TokenTemplate
	TokenTemplateHead
	TokenTemplateMiddle
	TokenTemplateTail
	TokenRegex

	// Reserved words
	TokenBreak
	TokenCase
	TokenCatch
	TokenClass
	TokenConst
	TokenContinue
	TokenDebugger
	TokenDefault
	TokenDelete
	TokenDo
	TokenElse
	TokenEnum
	TokenExport
	TokenExtends
	TokenFalse
	TokenFinally
	TokenFor
	TokenFunction
	TokenIf
	TokenImport
	TokenIn
	TokenInstanceof
	TokenNew
	TokenNull
	TokenReturn
	TokenSuper
	TokenSwitch
	TokenThis
	TokenThrow
	TokenTrue
	TokenTry
	TokenTypeof
	TokenVar
	TokenVoid
	TokenWhile
	TokenWith

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenEllipsis
	TokenQuestion
	TokenQuestionDot
	TokenColon
	TokenArrow
	TokenAt

	// Operators
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenStarStarAssign
	TokenShlAssign
	TokenShrAssign
	TokenUShrAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenLogicalAndAssign
	TokenLogicalOrAssign
	TokenNullishAssign
	TokenEQ
	TokenNE
	TokenStrictEQ
	TokenStrictNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenStarStar
	TokenIncrement
	TokenDecrement
	TokenShl
	TokenShr
	TokenUShr
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenBang
	TokenTilde
	TokenLogicalAnd
	TokenLogicalOr
	TokenNullish
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:              "EOF",
	TokenUnknown:          "Unknown",
	TokenIdent:            "Identifier",
	TokenPrivateName:      "PrivateName",
	TokenNumber:           "Number",
	TokenString:           "String",
	TokenTemplate:         "Template",
	TokenTemplateHead:     "TemplateHead",
	TokenTemplateMiddle:   "TemplateMiddle",
	TokenTemplateTail:     "TemplateTail",
	TokenRegex:            "Regex",
	TokenBreak:            "break",
	TokenCase:             "case",
	TokenCatch:            "catch",
	TokenClass:            "class",
	TokenConst:            "const",
	TokenContinue:         "continue",
	TokenDebugger:         "debugger",
	TokenDefault:          "default",
	TokenDelete:           "delete",
	TokenDo:               "do",
	TokenElse:             "else",
	TokenEnum:             "enum",
	TokenExport:           "export",
	TokenExtends:          "extends",
	TokenFalse:            "false",
	TokenFinally:          "finally",
	TokenFor:              "for",
	TokenFunction:         "function",
	TokenIf:               "if",
	TokenImport:           "import",
	TokenIn:               "in",
	TokenInstanceof:       "instanceof",
	TokenNew:              "new",
	TokenNull:             "null",
	TokenReturn:           "return",
	TokenSuper:            "super",
	TokenSwitch:           "switch",
	TokenThis:             "this",
	TokenThrow:            "throw",
	TokenTrue:             "true",
	TokenTry:              "try",
	TokenTypeof:           "typeof",
	TokenVar:              "var",
	TokenVoid:             "void",
	TokenWhile:            "while",
	TokenWith:             "with",
	TokenLParen:           "(",
	TokenRParen:           ")",
	TokenLBrace:           "{",
	TokenRBrace:           "}",
	TokenLBracket:         "[",
	TokenRBracket:         "]",
	TokenSemicolon:        ";",
	TokenComma:            ",",
	TokenDot:              ".",
	TokenEllipsis:         "...",
	TokenQuestion:         "?",
	TokenQuestionDot:      "?.",
	TokenColon:            ":",
	TokenArrow:            "=>",
	TokenAt:               "@",
	TokenAssign:           "=",
	TokenPlusAssign:       "+=",
	TokenMinusAssign:      "-=",
	TokenStarAssign:       "*=",
	TokenSlashAssign:      "/=",
	TokenPercentAssign:    "%=",
	TokenStarStarAssign:   "**=",
	TokenShlAssign:        "<<=",
	TokenShrAssign:        ">>=",
	TokenUShrAssign:       ">>>=",
	TokenAndAssign:        "&=",
	TokenOrAssign:         "|=",
	TokenXorAssign:        "^=",
	TokenLogicalAndAssign: "&&=",
	TokenLogicalOrAssign:  "||=",
	TokenNullishAssign:    "??=",
	TokenEQ:               "==",
	TokenNE:               "!=",
	TokenStrictEQ:         "===",
	TokenStrictNE:         "!==",
	TokenLT:               "<",
	TokenLE:               "<=",
	TokenGT:               ">",
	TokenGE:               ">=",
	TokenPlus:             "+",
	TokenMinus:            "-",
	TokenStar:             "*",
	TokenSlash:            "/",
	TokenPercent:          "%",
	TokenStarStar:         "**",
	TokenIncrement:        "++",
	TokenDecrement:        "--",
	TokenShl:              "<<",
	TokenShr:              ">>",
	TokenUShr:             ">>>",
	TokenBitAnd:           "&",
	TokenBitOr:            "|",
	TokenBitXor:           "^",
	TokenBang:             "!",
	TokenTilde:            "~",
	TokenLogicalAnd:       "&&",
	TokenLogicalOr:        "||",
	TokenNullish:          "??",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenBreak && k <= TokenWith
}

var keywords = map[string]TokenKind{
	"break":      TokenBreak,
	"case":       TokenCase,
	"catch":      TokenCatch,
	"class":      TokenClass,
	"const":      TokenConst,
	"continue":   TokenContinue,
	"debugger":   TokenDebugger,
	"default":    TokenDefault,
	"delete":     TokenDelete,
	"do":         TokenDo,
	"else":       TokenElse,
	"enum":       TokenEnum,
	"export":     TokenExport,
	"extends":    TokenExtends,
	"false":      TokenFalse,
	"finally":    TokenFinally,
	"for":        TokenFor,
	"function":   TokenFunction,
	"if":         TokenIf,
	"import":     TokenImport,
	"in":         TokenIn,
	"instanceof": TokenInstanceof,
	"new":        TokenNew,
	"null":       TokenNull,
	"return":     TokenReturn,
	"super":      TokenSuper,
	"switch":     TokenSwitch,
	"this":       TokenThis,
	"throw":      TokenThrow,
	"true":       TokenTrue,
	"try":        TokenTry,
	"typeof":     TokenTypeof,
	"var":        TokenVar,
	"void":       TokenVoid,
	"while":      TokenWhile,
	"with":       TokenWith,
}

// LookupKeyword returns the reserved-word kind of ident, or TokenIdent.
// Contextual words such as let, async, of and type stay identifiers.
func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// TriviaKind classifies source text that carries no grammatical meaning.
type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	default:
		return "Unknown"
	}
}

type Trivia struct {
	Kind   TriviaKind
	Text   string
	Offset int
}

// Token is a significant token with the trivia attached to it. Offset is the
// byte offset of Text; leading trivia precedes it and trailing trivia follows.
type Token struct {
	Kind     TokenKind
	Text     string
	Offset   int
	Leading  []Trivia
	Trailing []Trivia
}

// End returns the byte offset just past Text.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// FullText returns the token text surrounded by its trivia.
func (t Token) FullText() string {
	n := len(t.Text)
	for _, tr := range t.Leading {
		n += len(tr.Text)
	}
	for _, tr := range t.Trailing {
		n += len(tr.Text)
	}
	buf := make([]byte, 0, n)
	for _, tr := range t.Leading {
		buf = append(buf, tr.Text...)
	}
	buf = append(buf, t.Text...)
	for _, tr := range t.Trailing {
		buf = append(buf, tr.Text...)
	}
	return string(buf)
}

// HasLeadingNewline reports whether a line break precedes the token.
func (t Token) HasLeadingNewline() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaNewline || (tr.Kind == TriviaBlockComment && containsNewline(tr.Text)) {
			return true
		}
	}
	return false
}

func (t Token) hasTrailingNewline() bool {
	for _, tr := range t.Trailing {
		if tr.Kind == TriviaNewline {
			return true
		}
	}
	return false
}

func containsNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return true
		}
	}
	return false
}
