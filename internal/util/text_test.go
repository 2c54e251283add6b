package util

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "surrounding whitespace",
			input: "  hello\n",
			want:  "hello",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
		{
			name:  "inner newlines kept",
			input: "first\n\nsecond",
			want:  "first\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected normalized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops blanks", []string{" a ", "", "  ", "b"}, []string{"a", "b"}},
		{"dedupes keeping order", []string{"Funder", "Media", "Funder"}, []string{"Funder", "Media"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeList(%#v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}
