package expression

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// wordOperators are matched before names; multi-word operators allow any
// whitespace between their words.
var wordOperators = regexp.MustCompile(`^(not\s+in|starts\s+with|ends\s+with|contains|matches|not|and|or|in)\b`)

// symbolOperators are tried longest first
var symbolOperators = []string{
	"===", "!==",
	"**", "..", "??", "==", "!=", "<=", ">=", "&&", "||",
	"<", ">", "+", "-", "*", "/", "%", "~", "!", "|", "^", "&",
}

var whitespace = regexp.MustCompile(`\s+`)

// LexError is a lexical error
type LexError struct {
	Message  string
	Position int
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("%s around position %d", e.Message, e.Position)
}

// Lexer tokenizes one expression. Lexer instances are not reusable.
type Lexer struct {
	source  string
	start   int
	current int
	tokens  []Token
	errors  []LexError
}

// NewLexer creates a lexer for source
func NewLexer(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{Type: TOKEN_EOF, Position: l.current + 1})
	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	c := l.peek()

	switch {
	case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		l.advance()
	case isDigit(c):
		l.number()
	case c == '"' || c == '\'':
		l.string(c)
	case c == '?' && l.peekNext() == '.' && !isDigit(l.peekAt(2)):
		l.current += 2
		l.addToken(TOKEN_SAFE_DOT)
	case isAlpha(c):
		if !l.wordOperator() {
			l.name()
		}
	default:
		if l.symbolOperator() {
			return
		}
		l.punctuation()
	}
}

func (l *Lexer) punctuation() {
	c := l.advance()
	switch c {
	case '(':
		l.addToken(TOKEN_LEFT_PAREN)
	case ')':
		l.addToken(TOKEN_RIGHT_PAREN)
	case '[':
		l.addToken(TOKEN_LEFT_BRACKET)
	case ']':
		l.addToken(TOKEN_RIGHT_BRACKET)
	case '{':
		l.addToken(TOKEN_LEFT_BRACE)
	case '}':
		l.addToken(TOKEN_RIGHT_BRACE)
	case ',':
		l.addToken(TOKEN_COMMA)
	case '.':
		l.addToken(TOKEN_DOT)
	case '?':
		l.addToken(TOKEN_QUESTION)
	case ':':
		l.addToken(TOKEN_COLON)
	default:
		l.addError(fmt.Sprintf("Unexpected character %q", c))
	}
}

func (l *Lexer) symbolOperator() bool {
	rest := l.source[l.current:]
	for _, op := range symbolOperators {
		if strings.HasPrefix(rest, op) {
			l.current += len(op)
			l.addOperator(op)
			return true
		}
	}
	return false
}

func (l *Lexer) wordOperator() bool {
	m := wordOperators.FindString(l.source[l.current:])
	if m == "" {
		return false
	}
	// "user.contains" is an attribute, not an operator
	if n := len(l.tokens); n > 0 && (l.tokens[n-1].Type == TOKEN_DOT || l.tokens[n-1].Type == TOKEN_SAFE_DOT) {
		return false
	}
	l.current += len(m)
	l.addOperator(whitespace.ReplaceAllString(m, " "))
	return true
}

func (l *Lexer) name() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	l.addToken(TOKEN_NAME)
}

func (l *Lexer) number() {
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekNext()) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekNext()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			isFloat = true
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	text := strings.ReplaceAll(l.source[l.start:l.current], "_", "")
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.addError("Invalid number " + text)
			return
		}
		l.addTokenWithLiteral(TOKEN_NUMBER, v)
		return
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			l.addError("Invalid number " + text)
			return
		}
		l.addTokenWithLiteral(TOKEN_NUMBER, f)
		return
	}
	l.addTokenWithLiteral(TOKEN_NUMBER, v)
}

func (l *Lexer) string(quote byte) {
	l.advance()

	var sb strings.Builder
	for !l.isAtEnd() && l.peek() != quote {
		c := l.advance()
		if c == '\\' && !l.isAtEnd() {
			sb.WriteByte(l.advance())
			continue
		}
		sb.WriteByte(c)
	}

	if l.isAtEnd() {
		l.addError("Unterminated string")
		return
	}

	l.advance()
	l.addTokenWithLiteral(TOKEN_STRING, sb.String())
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekNext() byte {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.current+offset >= len(l.source) {
		return 0
	}
	return l.source[l.current+offset]
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

func (l *Lexer) addOperator(op string) {
	l.tokens = append(l.tokens, Token{
		Type:     TOKEN_OPERATOR,
		Lexeme:   op,
		Position: l.start + 1,
	})
}

func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:     tokenType,
		Lexeme:   l.source[l.start:l.current],
		Literal:  literal,
		Position: l.start + 1,
	})
}

func (l *Lexer) addError(message string) {
	l.errors = append(l.errors, LexError{Message: message, Position: l.start + 1})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c >= 0x80
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
