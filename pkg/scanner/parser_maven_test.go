package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMavenParserResolvesPropertyPlaceholders(t *testing.T) {
	content := []byte(`<?xml version="1.0"?>
<project>
  <properties>
    <jackson.version>2.15.2</jackson.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>com.fasterxml.jackson.core</groupId>
      <artifactId>jackson-databind</artifactId>
      <version>${jackson.version}</version>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>2.0.9</version>
    </dependency>
  </dependencies>
</project>`)

	deps, err := (&MavenParser{}).Parse("pom.xml", content)
	assert.NoError(t, err)
	assert.Equal(t, []ScannedDependency{
		{LibraryName: "com.fasterxml.jackson.core:jackson-databind", ConstraintExpr: "2.15.2", SourceFile: "pom.xml", DetectionMethod: "maven-pom"},
		{LibraryName: "org.slf4j:slf4j-api", ConstraintExpr: "2.0.9", SourceFile: "pom.xml", DetectionMethod: "maven-pom"},
	}, deps)
}

func TestMavenParserLeavesUnresolvablePropertyAsIs(t *testing.T) {
	content := []byte(`<project>
  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>widget</artifactId>
      <version>${parent.defined.elsewhere}</version>
    </dependency>
  </dependencies>
</project>`)

	deps, err := (&MavenParser{}).Parse("pom.xml", content)
	assert.NoError(t, err)
	assert.Equal(t, "${parent.defined.elsewhere}", deps[0].ConstraintExpr)
}
