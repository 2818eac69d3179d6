package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "deploy.yaml", "deploy:\n  - cmd: helm upgrade\n")
	writeFixture(t, dir, "stop.yml", "stop:\n  - cmd: kubectl scale\n")
	writeFixture(t, dir, "notes.txt", "not a fixture")
	writeFixture(t, dir, "nested/logs.yaml", "logs:\n  - cmd: kubectl logs\n")

	files, err := Discover(filepath.Join(dir, "**/*.yaml"), filepath.Join(dir, "**/*.yml"))
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "deploy.yaml"), files[0])
	assert.Equal(t, filepath.Join(dir, "nested/logs.yaml"), files[1])
	assert.Equal(t, filepath.Join(dir, "stop.yml"), files[2])

	// Overlapping patterns do not duplicate results.
	files, err = Discover(filepath.Join(dir, "**/*.yaml"), filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverBadPattern(t *testing.T) {
	_, err := Discover("fixtures/[")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid glob pattern")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "deploy.yaml", "deploy:\n  - cmd: helm upgrade\n    rsp: deployed\n")
	writeFixture(t, dir, "scale.md", `# Scale

`+"```yaml"+`
stop:
  - cmd: kubectl scale --replicas=0
    rsp: scaled
`+"```"+`
`)

	docs, err := LoadAll([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Sorted by file name: deploy.yaml before scale.md.
	assert.Equal(t, []string{"deploy"}, docs[0].ActionNames())
	assert.Equal(t, []string{"stop"}, docs[1].ActionNames())
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFixture(t, dir, "deploy.yaml", "deploy:\n  - cmd: helm upgrade\n")
	mdPath := writeFixture(t, dir, "deploy.md", "```yaml\ndeploy:\n  - cmd: helm upgrade\n```\n")

	doc, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, yamlPath, doc.Source)
	assert.Equal(t, []string{"deploy"}, doc.ActionNames())

	doc, err = Load(mdPath)
	require.NoError(t, err)
	assert.Equal(t, mdPath, doc.Source)
	assert.Equal(t, []string{"deploy"}, doc.ActionNames())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read fixture")
}

func TestDefaultPatterns(t *testing.T) {
	t.Setenv("UNDERSTUDY_FIXTURES", "mocks/**/*.yaml, extra/*.md")
	assert.Equal(t, []string{"mocks/**/*.yaml", "extra/*.md"}, DefaultPatterns())

	t.Setenv("UNDERSTUDY_FIXTURES", "")
	patterns := DefaultPatterns()
	require.Len(t, patterns, 3)
	assert.Contains(t, patterns[0], "fixtures/")
}
