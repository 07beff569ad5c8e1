package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		numericLead  bool
		zipCandidate bool
	}{
		{name: "five digit zip", query: "98101", numericLead: true, zipCandidate: true},
		{name: "partial zip", query: "981", numericLead: true, zipCandidate: true},
		{name: "single digit", query: "9", numericLead: true, zipCandidate: true},
		{name: "street address", query: "9810 Spring St", numericLead: true, zipCandidate: false},
		{name: "six digits is not a zip", query: "981015", numericLead: true, zipCandidate: false},
		{name: "city name", query: "Seattle", numericLead: false, zipCandidate: false},
		{name: "state code", query: "WA", numericLead: false, zipCandidate: false},
		{name: "letter then digits", query: "N 98101", numericLead: false, zipCandidate: false},
		{name: "digits with trailing space kept by caller", query: "98101 ", numericLead: true, zipCandidate: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.query)
			assert.Equal(t, tt.numericLead, c.NumericLead, "NumericLead")
			assert.Equal(t, tt.zipCandidate, c.ZipCandidate, "ZipCandidate")
		})
	}
}

func TestClassifyEmptyString(t *testing.T) {
	c := Classify("")
	assert.False(t, c.NumericLead)
	assert.False(t, c.ZipCandidate)
}
