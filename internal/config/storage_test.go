package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_ListAndLoad(t *testing.T) {
	dir := t.TempDir()
	componentsDir := filepath.Join(dir, ComponentsDir)
	writeFile(t, componentsDir, "redis.yml", "type: cache\n")
	writeFile(t, componentsDir, "openai.yaml", "type: llm\n")
	writeFile(t, componentsDir, "notes.txt", "ignored")

	storage := NewStorageWithPath(dir)

	names, err := storage.List(ComponentsDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "redis"}, names)

	data, err := storage.Load(ComponentsDir, "redis")
	require.NoError(t, err)
	assert.Equal(t, "type: cache\n", string(data))

	_, err = storage.Load(ComponentsDir, "vault")
	assert.Error(t, err)

	_, err = storage.Load("", "redis")
	assert.Error(t, err)

	empty, err := storage.List("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_ReadAll(t *testing.T) {
	dir := t.TempDir()
	componentsDir := filepath.Join(dir, ComponentsDir)
	writeFile(t, componentsDir, "b.yaml", "b")
	writeFile(t, componentsDir, "a.yml", "a")

	files, failed, err := NewStorageWithPath(dir).ReadAll(ComponentsDir)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, files, 2)
	assert.Equal(t, "a", files[0].Name)
	assert.Equal(t, filepath.Join(componentsDir, "a.yml"), files[0].Path)
	assert.Equal(t, []byte("b"), files[1].Data)
}

func TestSanitizeFilename(t *testing.T) {
	storage := NewStorage()

	tests := map[string]string{
		"llm/openai":      "llm_openai",
		"  spaced name  ": "spaced_name",
		"a..b":            "a_b",
		"///":             "unnamed",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, storage.sanitizeFilename(input), input)
	}
}
