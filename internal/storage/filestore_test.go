package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "uploads"), filepath.Join(root, "parsed_jsons"))
	require.NoError(t, err)

	path, err := store.SaveUpload("abc", ".pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "uploads", "abc.pdf"), path)

	record := types.ParsedResume{
		BasicFields: types.BasicFields{Name: "张伟", Email: "a&b@example.com"},
		FileName:    "cv.pdf",
		FileID:      "abc",
	}
	jsonPath, data, err := store.SaveParsedJSON("abc", record)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "parsed_jsons", "abc.json"), jsonPath)

	loaded, err := store.LoadParsedJSON("abc")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
	assert.Contains(t, string(loaded), "张伟", "非ASCII字符不转义")
	assert.Contains(t, string(loaded), "a&b@example.com")
	assert.Contains(t, string(loaded), "\n    \"name\"", "4空格缩进")
	assert.Contains(t, string(loaded), `"skills": []`)
}

func TestFileStore_LoadMissing(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(filepath.Join(root, "u"), filepath.Join(root, "p"))
	require.NoError(t, err)

	_, err = store.LoadParsedJSON("nope")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	for _, id := range []string{"", "..", "../etc/passwd", `a\b`} {
		_, err = store.LoadParsedJSON(id)
		assert.True(t, errors.Is(err, os.ErrNotExist), id)
	}
}

func TestMarshalParsedJSON_KeyOrder(t *testing.T) {
	data, err := MarshalParsedJSON(types.ParsedResume{FileName: "x.docx", FileID: "1"})
	require.NoError(t, err)
	want := `{
    "name": "",
    "email": "",
    "phone": "",
    "skills": [],
    "education": "",
    "experience": "",
    "projects": "",
    "file_name": "x.docx",
    "file_id": "1"
}`
	assert.Equal(t, want, string(data))
}
