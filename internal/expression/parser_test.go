package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"is_granted('ROLE_ADMIN')", `is_granted("ROLE_ADMIN")`},
		{"a or b and c", "(a or (b and c))"},
		{"a || b && !c", "(a || (b && (!c)))"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-a.b", "(-a.b)"},
		{"not user.isAdmin()", "(not user.isAdmin())"},
		{"object.owner == user", "(object.owner == user)"},
		{"user?.profile?.name", "user?.profile?.name"},
		{"roles[0] in ['ROLE_A', 'ROLE_B']", `(roles[0] in ["ROLE_A", "ROLE_B"])`},
		{"x not in [1, 2,]", "(x not in [1, 2])"},
		{"name starts with 'a' and name ends   with \"z\"", `((name starts with "a") and (name ends with "z"))`},
		{"email matches '/@example\\\\.com$/'", `(email matches "/@example\\.com$/")`},
		{"list contains 3", "(list contains 3)"},
		{"1..10", "(1 .. 10)"},
		{"'a' ~ 'b'", `("a" ~ "b")`},
		{"a ? b : c", "(a ? b : c)"},
		{"a ?: c", "(a ?: c)"},
		{"a ? b", "(a ? b : null)"},
		{"a ?? b", "(a ?? b)"},
		{"{foo: 1, 'bar': 2, (baz): 3}", `{"foo": 1, "bar": 2, baz: 3}`},
		{"TRUE === true", "(true === true)"},
		{"1_000 + 1.5e3", "(1000 + 1500)"},
		{"a !== null", "(a !== null)"},
		{"x & 1 | 2 ^ 3", "((x & 1) | (2 ^ 3))"},
		{"user.contains", "user.contains"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}
}

func TestParseInvalidExpressions(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"is_granted(",
		"is_granted('ROLE_ADMIN'",
		"a and",
		"a b",
		"'unterminated",
		"user.",
		"[1, 2",
		"{foo 1}",
		"a # b",
		"(a",
		"a ? b :",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			err := Lint(input)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
			assert.Greater(t, syntaxErr.Position, 0)
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	err := Lint("is_granted('ROLE_ADMIN'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is_granted('ROLE_ADMIN'")
	assert.Contains(t, err.Error(), "around position")
}

func TestLexerOperators(t *testing.T) {
	tokens, errs := NewLexer("a not   in b and c?.d").ScanTokens()
	require.Empty(t, errs)

	var ops []string
	for _, tok := range tokens {
		if tok.Type == TOKEN_OPERATOR {
			ops = append(ops, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"not in", "and"}, ops)
	assert.Equal(t, TOKEN_SAFE_DOT, tokens[5].Type)
	assert.Equal(t, TOKEN_EOF, tokens[len(tokens)-1].Type)
}

func TestLexerNamesAreNotOperators(t *testing.T) {
	tokens, errs := NewLexer("notify or index").ScanTokens()
	require.Empty(t, errs)
	assert.Equal(t, TOKEN_NAME, tokens[0].Type)
	assert.True(t, tokens[1].Is("or"))
	assert.Equal(t, TOKEN_NAME, tokens[2].Type)
}
