package githubapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{name: "plain repo URL", input: "https://github.com/psf/requests", wantOwner: "psf", wantRepo: "requests"},
		{name: "dot-git suffix", input: "https://github.com/psf/requests.git", wantOwner: "psf", wantRepo: "requests"},
		{name: "trailing slash", input: "https://github.com/psf/requests/", wantOwner: "psf", wantRepo: "requests"},
		{name: "non-github host rejected", input: "https://gitlab.com/psf/requests", wantErr: true},
		{name: "missing repo segment rejected", input: "https://github.com/psf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}
