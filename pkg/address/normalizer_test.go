package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_WhitespaceAndCasing(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"collapses whitespace", "9810   spring  st", "9810 Spring St"},
		{"title cases street words", "9810 SPRING ST, SEATTLE, WA 98101", "9810 Spring St, Seattle, WA 98101"},
		{"uppercases directionals", "1105 nw market st", "1105 NW Market St"},
		{"lowercases ordinal suffix", "401 5TH AVE N", "401 5th Ave N"},
		{"canonical unit token", "800 Pine St Suite 300", "800 Pine St STE 300"},
		{"apartment abbreviation", "12 Oak Ln apartment 2", "12 Oak Ln APT 2"},
		{"state code at tail", "123 Main St, Spokane, wa", "123 Main St, Spokane, WA"},
		{"hyphenated name", "77 smith-jones rd", "77 Smith-Jones Rd"},
		{"hash unit passes through", "500 Union St #4B", "500 Union St #4B"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_DoesNotUppercaseMidAddressWords(t *testing.T) {
	// "La" is a state code but only at the tail position.
	assert.Equal(t, "10 La Mesa Dr, San Diego, CA", Normalize("10 la mesa dr, san diego, ca"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"9810 spring st",
		"9810 Spring St",
		"1105 NW MARKET ST APT 4, SEATTLE, WA 98107",
		"401 5th Ave N",
		"500 Union St #4B",
		"10 la mesa dr, san diego, ca 92041",
		"weird   input -- 123",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", in)
	}
}
