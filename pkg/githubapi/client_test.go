package githubapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next and last present",
			header: `<https://api.github.com/repositories/1/commits?page=2>; rel="next", <https://api.github.com/repositories/1/commits?page=5>; rel="last"`,
			want:   "https://api.github.com/repositories/1/commits?page=2",
		},
		{
			name:   "only last present, no next",
			header: `<https://api.github.com/repositories/1/commits?page=5>; rel="last"`,
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNextLink(tt.header))
		})
	}
}
