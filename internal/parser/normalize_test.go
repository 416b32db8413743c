package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "John   Smith\t Jr", "John Smith Jr"},
		{"pipes become spaces", "Acme|Corp", "Acme Corp"},
		{"leading glyphs stripped", "~~*John Smith", "John Smith"},
		{"empty stays empty", "   ", ""},
		{"plain text untouched", "Acme Corp", "Acme Corp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLine(tt.in))
		})
	}
}

func TestNormalizeLineIdempotent(t *testing.T) {
	inputs := []string{"|| John  Smith ||", "~Acme Corp", "  a  b  c  "}
	for _, in := range inputs {
		once := NormalizeLine(in)
		assert.Equal(t, once, NormalizeLine(once), "input %q", in)
	}
}

func TestCleanSemanticLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ul: Main Street 5", "Main Street 5"},
		{"wJohn Smith", "John Smith"},
		{"John Smith", "John Smith"},
		{"T: Director", "Director"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanSemanticLine(tt.in), "input %q", tt.in)
	}
}

func TestCleanupFieldText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Smith,", "John Smith"},
		{", Acme Corp —", "Acme Corp"},
		{"ai Director", "Director"},
		{"Boy 123 Main Street", "123 Main Street"},
		{"Acme  Corp", "Acme Corp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanupFieldText(tt.in), "input %q", tt.in)
	}
}
