package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResourceName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"customers", "Customers"},
		{"access-tokens", "AccessTokens"},
		{"access_tokens", "AccessTokens"},
		{"access.tokens", "AccessTokens"},
		{"access/tokens", "AccessTokens"},
		{`access\tokens`, "AccessTokens"},
		{"accessTokens", "Accesstokens"},
		{"access@tokens#v2", "AccessTokensV2"},
		{"  padded name  ", "PaddedName"},
		{"CUSTOMER-ADDRESSES", "CustomerAddresses"},
		{"auth2fa", "Auth2fa"},
		{"a--b__c", "ABC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeResourceName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeResourceNameErrors(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"", "cannot be empty"},
		{"   ", "cannot be empty"},
		{"@#$%", "at least one alphanumeric"},
		{"---", "at least one alphanumeric"},
		{"2fa", "cannot start with a number"},
		{"9-lives", "cannot start with a number"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NormalizeResourceName(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)

			var invalid *ErrInvalidName
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNormalizeAPIType(t *testing.T) {
	assert.Equal(t, "storefront", NormalizeAPITypeForLookup("Storefront"))
	assert.Equal(t, "backend", NormalizeAPITypeForLookup("BACKEND"))

	assert.Equal(t, "Storefront", NormalizeAPITypeForGeneration("storefront"))
	assert.Equal(t, "Backend", NormalizeAPITypeForGeneration("BACKEND"))
	assert.Equal(t, "Backoffice", NormalizeAPITypeForGeneration("BackOffice"))
	assert.Equal(t, "", NormalizeAPITypeForGeneration(""))
}

func TestFindMatchingConfiguredType(t *testing.T) {
	configured := []string{"Storefront", "Backend"}

	match, ok := FindMatchingConfiguredType("storefront", configured)
	assert.True(t, ok)
	assert.Equal(t, "Storefront", match)

	match, ok = FindMatchingConfiguredType("BACKEND", configured)
	assert.True(t, ok)
	assert.Equal(t, "Backend", match)

	_, ok = FindMatchingConfiguredType("merchant", configured)
	assert.False(t, ok)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("email"))
	assert.True(t, IsIdentifier("_private"))
	assert.True(t, IsIdentifier("address2"))
	assert.False(t, IsIdentifier("2address"))
	assert.False(t, IsIdentifier("first-name"))
	assert.False(t, IsIdentifier(""))
}
