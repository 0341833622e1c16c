package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipParserParse(t *testing.T) {
	content := []byte(`
# a comment
Django==4.2.1
requests[security]>=2.28,<3
-r other-requirements.txt

flask
`)

	deps, err := (&PipParser{}).Parse("requirements.txt", content)
	assert.NoError(t, err)
	assert.Equal(t, []ScannedDependency{
		{LibraryName: "django", ConstraintExpr: "==4.2.1", SourceFile: "requirements.txt", DetectionMethod: "pip-requirements"},
		{LibraryName: "requests", ConstraintExpr: ">=2.28,<3", SourceFile: "requirements.txt", DetectionMethod: "pip-requirements"},
		{LibraryName: "flask", ConstraintExpr: "", SourceFile: "requirements.txt", DetectionMethod: "pip-requirements"},
	}, deps)
}
