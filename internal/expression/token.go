package expression

import "fmt"

// TokenType represents the type of a token in an access-control expression
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_NUMBER is an integer or float literal.
	TOKEN_NUMBER
	// TOKEN_STRING is a single- or double-quoted string literal.
	TOKEN_STRING
	// TOKEN_NAME is a variable, function or attribute name.
	TOKEN_NAME
	// TOKEN_OPERATOR is a symbolic or word operator; Lexeme holds its normalized form.
	TOKEN_OPERATOR

	// Punctuation
	TOKEN_LEFT_PAREN    // (
	TOKEN_RIGHT_PAREN   // )
	TOKEN_LEFT_BRACKET  // [
	TOKEN_RIGHT_BRACKET // ]
	TOKEN_LEFT_BRACE    // {
	TOKEN_RIGHT_BRACE   // }
	TOKEN_COMMA         // ,
	TOKEN_DOT           // .
	TOKEN_SAFE_DOT      // ?.
	TOKEN_QUESTION      // ?
	TOKEN_COLON         // :
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:           "EOF",
	TOKEN_NUMBER:        "NUMBER",
	TOKEN_STRING:        "STRING",
	TOKEN_NAME:          "NAME",
	TOKEN_OPERATOR:      "OPERATOR",
	TOKEN_LEFT_PAREN:    "LEFT_PAREN",
	TOKEN_RIGHT_PAREN:   "RIGHT_PAREN",
	TOKEN_LEFT_BRACKET:  "LEFT_BRACKET",
	TOKEN_RIGHT_BRACKET: "RIGHT_BRACKET",
	TOKEN_LEFT_BRACE:    "LEFT_BRACE",
	TOKEN_RIGHT_BRACE:   "RIGHT_BRACE",
	TOKEN_COMMA:         "COMMA",
	TOKEN_DOT:           "DOT",
	TOKEN_SAFE_DOT:      "SAFE_DOT",
	TOKEN_QUESTION:      "QUESTION",
	TOKEN_COLON:         "COLON",
}

// String returns the token type name
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexical unit. Position is the 1-indexed byte offset.
type Token struct {
	Type     TokenType
	Lexeme   string
	Literal  interface{}
	Position int
}

// String returns a debug representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s '%s' at %d", t.Type, t.Lexeme, t.Position)
}

// Is reports whether the token is the operator op
func (t Token) Is(op string) bool {
	return t.Type == TOKEN_OPERATOR && t.Lexeme == op
}
