package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	assert.Len(t, v.Skills, 52)
	assert.Equal(t, []string{
		"education", "work experience", "experience", "professional experience",
		"projects", "academic projects", "personal projects", "internship",
	}, v.Headers)

	// 返回副本，修改不影响内置表
	v.Skills[0] = "changed"
	assert.Equal(t, "python", DefaultVocabulary().Skills[0])
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.yaml")
	content := `
skills:
  - Go
  - " Rust "
  - go
  - ""
headers:
  - Summary
  - Education
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, v.Skills)
	assert.Equal(t, []string{"summary", "education"}, v.Headers)

	e := New(v)
	assert.Equal(t, []string{"go", "rust"}, e.ExtractSkills("GOLANG and Rust"))
	sections := e.ExtractSections("SUMMARY\nbackend dev\nEDUCATION\nBSc")
	assert.Equal(t, []string{"summary", "education"}, sections.Keys())
	assert.Equal(t, "BSc", sections.Education())
}

func TestLoadVocabulary_FallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: [terraform]\n"), 0644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"terraform"}, v.Skills)
	assert.Equal(t, DefaultVocabulary().Headers, v.Headers)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: [unclosed"), 0644))
	_, err = LoadVocabulary(path)
	assert.Error(t, err)
}

func TestNew_EmptyVocabularyUsesDefaults(t *testing.T) {
	e := New(Vocabulary{})
	assert.Equal(t, DefaultVocabulary().Skills, e.Skills())
	assert.Equal(t, DefaultVocabulary().Headers, e.Headers())
}
