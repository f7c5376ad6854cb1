// Package expression parses access-control expressions written in the
// ExpressionLanguage dialect used by API resource security attributes. Only
// syntax is checked; expressions are never evaluated.
package expression

import (
	"fmt"
	"strings"
)

// Grammar (precedence climbing, lowest to highest):
//
// expression  → binary ( "?" expression? ":" expression | "?" expression )*
// binary      → unary ( OPERATOR binary )*           [by precedence table]
// unary       → ( "not" | "!" | "-" | "+" ) binary | "(" expression ")" postfix | primary
// primary     → literal | NAME | NAME arguments | array | hash
// postfix     → ( "." NAME arguments? | "?." NAME arguments? | "[" expression "]" )*
// array       → "[" ( expression ( "," expression )* ","? )? "]"
// hash        → "{" ( key ":" expression ( "," key ":" expression )* ","? )? "}"
// key         → NAME | STRING | NUMBER | "(" expression ")"

type associativity int

const (
	leftAssoc associativity = iota
	rightAssoc
)

type operatorInfo struct {
	precedence    int
	associativity associativity
}

var unaryOperators = map[string]int{
	"not": 50,
	"!":   50,
	"-":   500,
	"+":   500,
}

var binaryOperators = map[string]operatorInfo{
	"??":          {5, leftAssoc},
	"or":          {10, leftAssoc},
	"||":          {10, leftAssoc},
	"and":         {15, leftAssoc},
	"&&":          {15, leftAssoc},
	"|":           {16, leftAssoc},
	"^":           {17, leftAssoc},
	"&":           {18, leftAssoc},
	"==":          {20, leftAssoc},
	"===":         {20, leftAssoc},
	"!=":          {20, leftAssoc},
	"!==":         {20, leftAssoc},
	"<":           {20, leftAssoc},
	">":           {20, leftAssoc},
	">=":          {20, leftAssoc},
	"<=":          {20, leftAssoc},
	"not in":      {20, leftAssoc},
	"in":          {20, leftAssoc},
	"matches":     {20, leftAssoc},
	"contains":    {20, leftAssoc},
	"starts with": {20, leftAssoc},
	"ends with":   {20, leftAssoc},
	"..":          {25, leftAssoc},
	"+":           {30, leftAssoc},
	"-":           {30, leftAssoc},
	"~":           {40, leftAssoc},
	"*":           {60, leftAssoc},
	"/":           {60, leftAssoc},
	"%":           {60, leftAssoc},
	"**":          {200, rightAssoc},
}

// Parser builds a syntax tree from tokens. It stops at the first error.
type Parser struct {
	tokens  []Token
	current int
	err     *SyntaxError
	source  string
}

// NewParser creates a parser over tokens produced from source
func NewParser(tokens []Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source}
}

// Parse tokenizes and parses source
func Parse(source string) (Node, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &SyntaxError{Message: "Expression is empty", Position: 1, Expression: source}
	}

	tokens, lexErrors := NewLexer(source).ScanTokens()
	if len(lexErrors) > 0 {
		return nil, &SyntaxError{
			Message:    lexErrors[0].Message,
			Position:   lexErrors[0].Position,
			Expression: source,
		}
	}

	return NewParser(tokens, source).Parse()
}

// Lint reports whether source is a syntactically valid expression
func Lint(source string) error {
	_, err := Parse(source)
	return err
}

// Parse parses the whole token stream as one expression
func (p *Parser) Parse() (Node, error) {
	node := p.parseExpression(0)
	if p.err == nil && !p.isAtEnd() {
		p.error(p.peek(), fmt.Sprintf("Unexpected token %q", p.peek().Lexeme))
	}
	if p.err != nil {
		return nil, p.err
	}
	return node, nil
}

func (p *Parser) parseExpression(precedence int) Node {
	expr := p.parseUnary()

	for p.err == nil && p.peek().Type == TOKEN_OPERATOR {
		op := p.peek()
		info, ok := binaryOperators[op.Lexeme]
		if !ok || info.precedence < precedence {
			break
		}
		p.advance()

		next := info.precedence + 1
		if info.associativity == rightAssoc {
			next = info.precedence
		}
		right := p.parseExpression(next)
		expr = &BinaryNode{Operator: op.Lexeme, Left: expr, Right: right, Position: op.Position}
	}

	if precedence == 0 {
		expr = p.parseConditional(expr)
	}

	return expr
}

func (p *Parser) parseConditional(expr Node) Node {
	for p.err == nil && p.check(TOKEN_QUESTION) {
		question := p.advance()

		if p.match(TOKEN_COLON) {
			// short form "a ?: b"
			expr = &ConditionalNode{Condition: expr, Else: p.parseExpression(0), Position: question.Position}
			continue
		}

		then := p.parseExpression(0)
		var otherwise Node = &ConstantNode{Position: question.Position}
		if p.match(TOKEN_COLON) {
			otherwise = p.parseExpression(0)
		}
		expr = &ConditionalNode{Condition: expr, Then: then, Else: otherwise, Position: question.Position}
	}
	return expr
}

func (p *Parser) parseUnary() Node {
	token := p.peek()

	if token.Type == TOKEN_OPERATOR {
		if precedence, ok := unaryOperators[token.Lexeme]; ok {
			p.advance()
			operand := p.parseExpression(precedence)
			return p.parsePostfix(&UnaryNode{Operator: token.Lexeme, Operand: operand, Position: token.Position})
		}
	}

	if p.match(TOKEN_LEFT_PAREN) {
		expr := p.parseExpression(0)
		p.consume(TOKEN_RIGHT_PAREN, "An opened parenthesis is not properly closed")
		return p.parsePostfix(expr)
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Node {
	token := p.advance()

	var node Node
	switch token.Type {
	case TOKEN_NAME:
		switch strings.ToLower(token.Lexeme) {
		case "true":
			node = &ConstantNode{Value: true, Position: token.Position}
		case "false":
			node = &ConstantNode{Value: false, Position: token.Position}
		case "null":
			node = &ConstantNode{Value: nil, Position: token.Position}
		default:
			if p.check(TOKEN_LEFT_PAREN) {
				node = &FunctionNode{Name: token.Lexeme, Arguments: p.parseArguments(), Position: token.Position}
			} else {
				node = &NameNode{Name: token.Lexeme, Position: token.Position}
			}
		}
	case TOKEN_NUMBER, TOKEN_STRING:
		node = &ConstantNode{Value: token.Literal, Position: token.Position}
	case TOKEN_LEFT_BRACKET:
		node = p.parseArray(token)
	case TOKEN_LEFT_BRACE:
		node = p.parseHash(token)
	case TOKEN_EOF:
		p.error(token, "Unexpected end of expression")
		return &ConstantNode{Position: token.Position}
	default:
		p.error(token, fmt.Sprintf("Unexpected token %q", token.Lexeme))
		return &ConstantNode{Position: token.Position}
	}

	return p.parsePostfix(node)
}

func (p *Parser) parsePostfix(node Node) Node {
	for p.err == nil {
		switch {
		case p.check(TOKEN_DOT) || p.check(TOKEN_SAFE_DOT):
			dot := p.advance()
			name := p.advance()
			if name.Type != TOKEN_NAME && !(name.Type == TOKEN_OPERATOR && isWord(name.Lexeme)) {
				p.error(name, "Expected name after "+dot.Lexeme)
				return node
			}
			access := &GetAttrNode{
				Object:    node,
				Attribute: &ConstantNode{Value: name.Lexeme, Position: name.Position},
				Kind:      AccessProperty,
				NullSafe:  dot.Type == TOKEN_SAFE_DOT,
				Position:  dot.Position,
			}
			if p.check(TOKEN_LEFT_PAREN) {
				access.Kind = AccessMethod
				access.Arguments = p.parseArguments()
			}
			node = access

		case p.check(TOKEN_LEFT_BRACKET):
			bracket := p.advance()
			index := p.parseExpression(0)
			p.consume(TOKEN_RIGHT_BRACKET, "Unclosed \"[\"")
			node = &GetAttrNode{Object: node, Attribute: index, Kind: AccessIndex, Position: bracket.Position}

		default:
			return node
		}
	}
	return node
}

func (p *Parser) parseArguments() []Node {
	p.consume(TOKEN_LEFT_PAREN, "A list of arguments must begin with an opening parenthesis")

	var args []Node
	for p.err == nil && !p.check(TOKEN_RIGHT_PAREN) {
		if len(args) > 0 {
			p.consume(TOKEN_COMMA, "Arguments must be separated by a comma")
		}
		args = append(args, p.parseExpression(0))
	}
	p.consume(TOKEN_RIGHT_PAREN, "A list of arguments must be closed by a parenthesis")

	return args
}

func (p *Parser) parseArray(open Token) Node {
	node := &ArrayNode{Position: open.Position}
	for p.err == nil && !p.check(TOKEN_RIGHT_BRACKET) {
		if len(node.Values) > 0 {
			p.consume(TOKEN_COMMA, "An array element must be followed by a comma")
			// trailing comma
			if p.check(TOKEN_RIGHT_BRACKET) {
				break
			}
		}
		node.Values = append(node.Values, p.parseExpression(0))
	}
	p.consume(TOKEN_RIGHT_BRACKET, "An opened array is not properly closed")
	return node
}

func (p *Parser) parseHash(open Token) Node {
	node := &ArrayNode{IsHash: true, Position: open.Position}
	for p.err == nil && !p.check(TOKEN_RIGHT_BRACE) {
		if len(node.Values) > 0 {
			p.consume(TOKEN_COMMA, "A hash value must be followed by a comma")
			if p.check(TOKEN_RIGHT_BRACE) {
				break
			}
		}

		var key Node
		token := p.peek()
		switch token.Type {
		case TOKEN_NAME:
			p.advance()
			key = &ConstantNode{Value: token.Lexeme, Position: token.Position}
		case TOKEN_STRING, TOKEN_NUMBER:
			p.advance()
			key = &ConstantNode{Value: token.Literal, Position: token.Position}
		case TOKEN_LEFT_PAREN:
			p.advance()
			key = p.parseExpression(0)
			p.consume(TOKEN_RIGHT_PAREN, "An opened parenthesis is not properly closed")
		default:
			p.error(token, fmt.Sprintf("A hash key must be a quoted string, a number, a name, or an expression enclosed in parentheses (unexpected %q)", token.Lexeme))
			return node
		}

		p.consume(TOKEN_COLON, "A hash key must be followed by a colon (:)")
		node.Keys = append(node.Keys, key)
		node.Values = append(node.Values, p.parseExpression(0))
	}
	p.consume(TOKEN_RIGHT_BRACE, "An opened hash is not properly closed")
	return node
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isAlpha(s[i]) && s[i] != ' ' {
			return false
		}
	}
	return s != ""
}

// Helpers

func (p *Parser) peek() Token {
	if len(p.tokens) == 0 {
		return Token{Type: TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return Token{Type: TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
		return p.previous()
	}
	return p.peek()
}

func (p *Parser) check(tokenType TokenType) bool {
	return p.peek().Type == tokenType
}

func (p *Parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tokenType TokenType, message string) Token {
	if p.check(tokenType) {
		return p.advance()
	}
	p.error(p.peek(), message)
	return Token{Type: tokenType}
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == TOKEN_EOF
}

// error records the first parse error; later ones are consequences of it
func (p *Parser) error(token Token, message string) {
	if p.err != nil {
		return
	}
	p.err = &SyntaxError{
		Message:    message,
		Position:   token.Position,
		Token:      token,
		Expression: p.source,
	}
}
