package normalize

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"lowercases", "The PACT", "the pact"},
		{"strips punctuation", "Don't Look Now!", "dont look now"},
		{"trims whitespace", "  Taboo \t", "taboo"},
		{"keeps inner spacing", "a  b", "a  b"},
		{"keeps underscores and digits", "Catch_22", "catch_22"},
		{"keeps accented letters", "Café Society", "café society"},
		{"decomposed accents compare equal", "Cafe\u0301", "caf\u00e9"},
		{"drops hyphens", "Hwang Bo-Reum", "hwang boreum"},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeHasNoPunctuationOrUppercase(t *testing.T) {
	inputs := []string{
		"Welcome to the Hyunam-dong Bookshop",
		"The Pact: A Thriller",
		"\"Quoted\" (Title) [Series #3]",
		"Sharon J. Bolton, Narrator Jane Doe",
	}

	for _, in := range inputs {
		out := Normalize(in)
		for _, r := range out {
			assert.False(t, unicode.IsPunct(r), "punctuation %q left in %q", r, out)
			assert.False(t, unicode.IsUpper(r), "uppercase %q left in %q", r, out)
		}
	}
}

func TestNormalizeAny(t *testing.T) {
	assert.Equal(t, "", NormalizeAny(nil))
	assert.Equal(t, "", NormalizeAny(42))
	assert.Equal(t, "", NormalizeAny(map[string]any{"main": "Foo"}))
	assert.Equal(t, "foo", NormalizeAny("Foo!"))
}

func TestPreprocessTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"parenthesis", "Foo (2019)", "Foo"},
		{"colon", "Foo: A Novel", "Foo"},
		{"neither", "Foo", "Foo"},
		{"parenthesis before colon", "Foo (x): y", "Foo"},
		{"colon before parenthesis", "Foo: y (x)", "Foo"},
		{"trims", "  Foo  ", "Foo"},
		{"leading cut", "(Series) Foo", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PreprocessTitle(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "the pact", Key("The Pact: A Thriller"))
	assert.Equal(t, "the pact", Key("The Pact"))
	assert.Equal(t, "foo", Key("Foo (2020)"))
}
