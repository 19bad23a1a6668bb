package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Plain", "hello", "hello"},
		{"Newline", "a\nb", "a\\nb"},
		{"CarriageReturn", "a\rb", "a\\rb"},
		{"Tab", "a\tb", "a\\tb"},
		{"Quote", `say "hi"`, `say \"hi\"`},
		{"SurroundingSpace", "  padded  ", "padded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeText(tc.in))
		})
	}
}

func TestFlattenText(t *testing.T) {
	assert.Equal(t, "N/A", FlattenText(""))
	assert.Equal(t, "one line", FlattenText("one line"))
	assert.Equal(t, "line one line two", FlattenText("line one\nline two"))
	assert.Equal(t, "a b c", FlattenText("a\tb\rc"))
}

func TestTrimmedQuery(t *testing.T) {
	assert.Equal(t, "", trimmedQuery(""))
	assert.Equal(t, "", trimmedQuery(" a "))
	assert.Equal(t, "ab", trimmedQuery("  ab  "))
	assert.Equal(t, "query", trimmedQuery("query"))
}
