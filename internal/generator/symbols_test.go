package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/conduit-lang/apischema/internal/errors"
	"github.com/conduit-lang/apischema/internal/schema/validation"
)

func aliases(t *testing.T, table *SymbolTable) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, s := range table.Symbols() {
		out[s.FQCN] = s.Alias
	}
	return out
}

func TestResolveSymbols(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		reserved map[string]bool
		expected map[string]string
	}{
		{
			name:     "unique short name stays short",
			input:    []string{`\Pyz\Glue\Validator\Email`},
			expected: map[string]string{`Pyz\Glue\Validator\Email`: "Email"},
		},
		{
			name:     "reserved short name gets vendor prefix",
			input:    []string{`Acme\Constraints\Get`},
			reserved: map[string]bool{"Get": true},
			expected: map[string]string{`Acme\Constraints\Get`: "AcmeGet"},
		},
		{
			name:  "shared short name across vendors",
			input: []string{`Pyz\Glue\Constraints\Iban`, `Spryker\Glue\Constraints\Iban`},
			expected: map[string]string{
				`Pyz\Glue\Constraints\Iban`:     "PyzIban",
				`Spryker\Glue\Constraints\Iban`: "SprykerIban",
			},
		},
		{
			name:  "symfony classes are aliased like any other vendor",
			input: []string{`Symfony\Component\Validator\Constraints\Email`, `Pyz\Glue\Email`},
			expected: map[string]string{
				`Symfony\Component\Validator\Constraints\Email`: "SymfonyEmail",
				`Pyz\Glue\Email`: "PyzEmail",
			},
		},
		{
			name:  "shared vendor uses the third namespace segment",
			input: []string{`Pyz\Glue\Orders\Constraint\Unique`, `Pyz\Glue\Customers\Constraint\Unique`},
			expected: map[string]string{
				`Pyz\Glue\Orders\Constraint\Unique`:    "PyzOrdersUnique",
				`Pyz\Glue\Customers\Constraint\Unique`: "PyzCustomersUnique",
			},
		},
		{
			name:  "shared vendor falls back to the second segment",
			input: []string{`Pyz\Orders\Unique`, `Pyz\Customers\Unique`},
			expected: map[string]string{
				`Pyz\Orders\Unique`:    "PyzOrdersUnique",
				`Pyz\Customers\Unique`: "PyzCustomersUnique",
			},
		},
		{
			name:  "remaining collisions use the full namespace",
			input: []string{`Pyz\A\X\Unique`, `Pyz\B\X\Unique`},
			expected: map[string]string{
				`Pyz\A\X\Unique`: "PyzAXUnique",
				`Pyz\B\X\Unique`: "PyzBXUnique",
			},
		},
		{
			name:     "duplicates collapse",
			input:    []string{`Pyz\Email`, `\Pyz\Email`},
			expected: map[string]string{`Pyz\Email`: "Email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ResolveSymbols("orders", tt.input, tt.reserved)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, aliases(t, table))
		})
	}
}

func TestResolveSymbolsIsDeterministic(t *testing.T) {
	input := []string{`Pyz\Glue\Orders\Constraint\Unique`, `Pyz\Glue\Customers\Constraint\Unique`, `Spryker\Unique`}
	first, err := ResolveSymbols("orders", input, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ResolveSymbols("orders", []string{input[2], input[0], input[1]}, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Symbols(), again.Symbols())
	}
}

func TestResolveSymbolsCollision(t *testing.T) {
	_, err := ResolveSymbols("orders", []string{`PyzX\Unique`, `Pyz\X\Unique`, `Pyz\Y\Unique`}, nil)
	require.Error(t, err)

	var pe *apierrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, apierrors.ErrAliasCollision, pe.Code)
	assert.Equal(t, "orders", pe.Resource)
}

func TestSymbolTableAliasFallback(t *testing.T) {
	var empty *SymbolTable
	assert.Equal(t, "Iban", empty.Alias(`Pyz\Iban`))
	assert.Equal(t, 0, empty.Len())

	table, err := ResolveSymbols("orders", []string{`Pyz\Iban`}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Iban", table.Alias(`\Pyz\Iban`))
	assert.False(t, table.Symbols()[0].IsAliased())
}

func TestCollectQualified(t *testing.T) {
	all := validation.NewConstraint("All").WithParam(validation.NestedKey, []*validation.Constraint{
		validation.NewConstraint("NotBlank"),
		validation.NewConstraint(`Pyz\Glue\Tag`),
	})
	names := collectQualified(
		[]*validation.Constraint{validation.NewConstraint("Email"), all},
		[]*validation.Constraint{validation.NewConstraint(`\Pyz\Glue\Iban`)},
	)
	assert.Equal(t, []string{`Pyz\Glue\Tag`, `Pyz\Glue\Iban`}, names)
}
