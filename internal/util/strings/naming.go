// Package strings holds the naming rules that turn resource identifiers and
// api types into symbol names for generated artifacts.
package strings

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	specialCharsPattern = regexp.MustCompile(`[^\w\s\-_./]`)
	separatorPattern    = regexp.MustCompile(`[\s\-_./]+`)
	identifierPattern   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// ErrInvalidName is returned when a name cannot become a symbol name
type ErrInvalidName struct {
	Input  string
	Reason string
}

// Error implements the error interface
func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("%s. Got: %q", e.Reason, e.Input)
}

// NormalizeResourceName converts a resource identifier into a PascalCase
// symbol name. Separators (space, dash, underscore, dot, slashes) and any
// other non-word character split the input into parts; each part is
// lower-cased and then capitalized:
//
//	access-tokens    -> AccessTokens
//	accessTokens     -> Accesstokens
//	access@tokens#v2 -> AccessTokensV2
func NormalizeResourceName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &ErrInvalidName{Input: name, Reason: "Resource name cannot be empty"}
	}

	cleaned := specialCharsPattern.ReplaceAllString(trimmed, " ")

	var b strings.Builder
	for _, part := range separatorPattern.Split(cleaned, -1) {
		if part == "" {
			continue
		}
		b.WriteString(UpperFirst(strings.ToLower(part)))
	}

	normalized := b.String()
	if normalized == "" {
		return "", &ErrInvalidName{Input: name, Reason: "Resource name must contain at least one alphanumeric character"}
	}

	if normalized[0] >= '0' && normalized[0] <= '9' {
		return "", &ErrInvalidName{
			Input:  name,
			Reason: `Resource name cannot start with a number; prefix it with a word (e.g. "Auth2fa" instead of "2fa")`,
		}
	}

	if !identifierPattern.MatchString(normalized) {
		return "", &ErrInvalidName{Input: name, Reason: fmt.Sprintf("Invalid identifier %q after normalization", normalized)}
	}

	return normalized, nil
}

// NormalizeAPITypeForLookup returns the form used to match api type
// directories on disk.
func NormalizeAPITypeForLookup(apiType string) string {
	return strings.ToLower(apiType)
}

// NormalizeAPITypeForGeneration returns the form used in symbol names and
// output directories ("STOREFRONT" -> "Storefront").
func NormalizeAPITypeForGeneration(apiType string) string {
	return UpperFirst(strings.ToLower(apiType))
}

// FindMatchingConfiguredType returns the configured api type matching input
// case-insensitively, preserving the configured spelling.
func FindMatchingConfiguredType(input string, configured []string) (string, bool) {
	needle := strings.ToLower(input)
	for _, candidate := range configured {
		if strings.ToLower(candidate) == needle {
			return candidate, true
		}
	}
	return "", false
}

// IsIdentifier reports whether s is a valid symbol identifier
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// UpperFirst upper-cases the first rune of s
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
