package expression

import "fmt"

// SyntaxError is the first syntax error found in an expression
type SyntaxError struct {
	Message    string
	Position   int
	Token      Token
	Expression string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	if e.Token.Lexeme != "" {
		return fmt.Sprintf("%s around position %d (near '%s') for expression `%s`",
			e.Message, e.Position, e.Token.Lexeme, e.Expression)
	}
	return fmt.Sprintf("%s around position %d for expression `%s`", e.Message, e.Position, e.Expression)
}
