package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"strips script", "<script>alert('x')</script>hello", "hello"},
		{"strips tags keeps space", "<b>a</b> <b>b</b>", "a b"},
		{"trims and collapses", "  <p>Hello</p>   world  ", "Hello world"},
		{"markdown preserved", "**bold** _em_", "**bold** _em_"},
		{"nbsp normalized", "a b", "a b"},
		{"newlines kept", "line one\nline  two", "line one\nline two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
