package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsKeyOrder(t *testing.T) {
	v, err := Decode([]byte("zeta: 1\nalpha: 2\nmid: 3\n"))
	require.NoError(t, err)

	m, ok := AsMap(v)
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, Keys(m))
}

func TestDecodeScalars(t *testing.T) {
	v, err := Decode([]byte(`
count: 3
flag: true
name: hello
none: ~
created: 2024-01-01
items: [a, 1]
`))
	require.NoError(t, err)
	m, _ := AsMap(v)

	count, _ := m.Get("count")
	n, ok := AsInt(count)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	flag, _ := m.Get("flag")
	assert.Equal(t, true, flag)

	none, present := m.Get("none")
	assert.True(t, present)
	assert.Nil(t, none)

	created, _ := m.Get("created")
	assert.Equal(t, "2024-01-01", created)

	items, _ := m.Get("items")
	list, ok := AsList(items)
	require.True(t, ok)
	assert.Equal(t, []any{"a", 1}, list)
}

func TestDecodeAliases(t *testing.T) {
	v, err := Decode([]byte("base: &b {x: 1}\ncopy: *b\n"))
	require.NoError(t, err)
	m, _ := AsMap(v)
	copied, _ := m.Get("copy")
	inner, ok := AsMap(copied)
	require.True(t, ok)
	x, _ := inner.Get("x")
	assert.Equal(t, 1, x)
}

func TestDecodeExpandsMergeKeys(t *testing.T) {
	v, err := Decode([]byte(`
shared: &shared
  type: string
  required: true
audit: &audit
  writable: false
  required: false
properties:
  email:
    <<: *shared
    description: Login address
  createdAt:
    <<: [*audit, *shared]
  nickname:
    required: false
    <<: *shared
`))
	require.NoError(t, err)
	root, _ := AsMap(v)
	props, _ := root.Get("properties")
	properties, ok := AsMap(props)
	require.True(t, ok)

	emailValue, _ := properties.Get("email")
	email, _ := AsMap(emailValue)
	assert.Equal(t, []string{"type", "required", "description"}, Keys(email))
	assert.NotContains(t, Keys(email), "<<")

	createdValue, _ := properties.Get("createdAt")
	created, _ := AsMap(createdValue)
	required, _ := created.Get("required")
	assert.Equal(t, false, required, "earlier merged mapping wins")
	typ, _ := created.Get("type")
	assert.Equal(t, "string", typ)

	nickValue, _ := properties.Get("nickname")
	nick, _ := AsMap(nickValue)
	required, _ = nick.Get("required")
	assert.Equal(t, false, required, "explicit key wins over merged one")
}

func TestDecodeRejectsScalarMerge(t *testing.T) {
	_, err := Decode([]byte("base: &base plain\nitem:\n  <<: *base\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge key (<<) must reference a mapping")
}

func TestDecodeEmpty(t *testing.T) {
	v, err := Decode([]byte(""))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeFileSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.resource.yml")
	require.NoError(t, os.WriteFile(path, []byte("resource:\n  name: [unclosed\n"), 0644))

	_, err := DecodeFile(path)
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, path, syntaxErr.File)
	assert.Greater(t, syntaxErr.Line, 0)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "absent.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlain(t *testing.T) {
	m := NewMap()
	m.Set("b", []any{1, "x"})
	m.Set("a", true)

	plain, err := Plain(m)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": []any{float64(1), "x"}, "a": true}, plain)
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewMap()
	inner.Set("k", "v")
	m := NewMap()
	m.Set("inner", inner)
	m.Set("list", []any{"a"})

	c := Clone(m).(*Map)
	ci, _ := c.Get("inner")
	ci.(*Map).Set("k", "changed")
	cl, _ := c.Get("list")
	cl.([]any)[0] = "b"

	v, _ := inner.Get("k")
	assert.Equal(t, "v", v)
	l, _ := m.Get("list")
	assert.Equal(t, []any{"a"}, l)
}
