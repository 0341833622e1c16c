package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name       string
		path       string
		wantMethod string
	}{
		{"requirements root", "requirements.txt", "pip-requirements"},
		{"requirements dev variant", "requirements-dev.txt", "pip-requirements"},
		{"pyproject", "pyproject.toml", "pyproject-toml"},
		{"pom nested", "services/auth/pom.xml", "maven-pom"},
		{"gradle groovy", "build.gradle", "gradle-build"},
		{"gradle kotlin", "build.gradle.kts", "gradle-build"},
		{"go mod", "go.mod", "go-mod"},
		{"cargo", "Cargo.toml", "cargo-toml"},
		{"conan", "conanfile.txt", "conan"},
		{"vcpkg", "vcpkg.json", "vcpkg"},
		{"cmake", "CMakeLists.txt", "cmake-find-package"},
		{"gitmodules", ".gitmodules", "gitmodules"},
		{"soldeer lock", "soldeer.lock", "foundry-soldeer"},
		{"foundry toml", "foundry.toml", "foundry-soldeer"},
		{"unmatched", "README.md", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := r.Match(tt.path)
			if tt.wantMethod == "" {
				assert.Nil(t, p)
				return
			}
			if assert.NotNil(t, p) {
				assert.Equal(t, tt.wantMethod, p.DetectionMethod())
			}
		})
	}
}

func TestRegistryParsersCoversAllEleven(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Parsers(), 11)
}
