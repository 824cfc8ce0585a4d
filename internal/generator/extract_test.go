package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare array",
			input: `[{"a":1}]`,
			want:  `[{"a":1}]`,
		},
		{
			name:  "markdown fenced",
			input: "Here you go:\n```json\n[{\"a\":1}]\n```\nEnjoy!",
			want:  `[{"a":1}]`,
		},
		{
			name:  "prose around the array",
			input: `Sure! The questions are [{"q":"x"},{"q":"y"}] as requested.`,
			want:  `[{"q":"x"},{"q":"y"}]`,
		},
		{
			name:  "nested arrays",
			input: `[{"opts":["a","b"]},{"opts":["c"]}]`,
			want:  `[{"opts":["a","b"]},{"opts":["c"]}]`,
		},
		{
			name:  "bracket inside string literal",
			input: `[{"text":"solve f(x) = [x]"}]`,
			want:  `[{"text":"solve f(x) = [x]"}]`,
		},
		{
			name:  "escaped quote inside string",
			input: `[{"text":"say \"hi]\" now"}]`,
			want:  `[{"text":"say \"hi]\" now"}]`,
		},
		{
			name:  "no array present",
			input: "I could not generate anything.",
			want:  "",
		},
		{
			name:  "unterminated array",
			input: `[{"a":1}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONArray(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"score":1.0}`,
			want:  `{"score":1.0}`,
		},
		{
			name:  "fenced object with prose",
			input: "```json\n{\"score\":0.5,\"feedback\":\"ok\"}\n```",
			want:  `{"score":0.5,"feedback":"ok"}`,
		},
		{
			name:  "nested objects",
			input: `{"outer":{"inner":1}}`,
			want:  `{"outer":{"inner":1}}`,
		},
		{
			name:  "brace inside string literal",
			input: `{"feedback":"use {braces} carefully"}`,
			want:  `{"feedback":"use {braces} carefully"}`,
		},
		{
			name:  "no object present",
			input: "nothing here",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.input))
		})
	}
}
