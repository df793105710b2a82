package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leave.md", "# Leave")
	writeFile(t, dir, "b/travel.TXT", "Travel")
	writeFile(t, dir, "handbook.pdf", "%PDF")
	writeFile(t, dir, "notes.docx", "ignored")

	files, err := Discover(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"b/travel.TXT", "handbook.pdf", "leave.md"}, names)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadFile_ShortText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leave.txt", "Employees accrue 1.5 days of leave per month.\n")

	docs, err := NewLoader(DefaultChunkSize, DefaultChunkOverlap).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Employees accrue 1.5 days of leave per month.", docs[0].Content)
	assert.Equal(t, "leave.txt", docs[0].Source)
	assert.Equal(t, 1, docs[0].Page)
	assert.Equal(t, 0, docs[0].Chunk)
}

func TestLoadFile_SplitsLongText(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 30; i++ {
		paragraphs = append(paragraphs, strings.Repeat("Leave requests must be approved by a manager. ", 3))
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "policy.md", strings.Join(paragraphs, "\n\n"))

	docs, err := NewLoader(DefaultChunkSize, DefaultChunkOverlap).LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Greater(t, len(docs), 1)

	for i, d := range docs {
		assert.Equal(t, i, d.Chunk)
		assert.Equal(t, "policy.md", d.Source)
		assert.LessOrEqual(t, utf8.RuneCountInString(d.Content), DefaultChunkSize)
		assert.NotEmpty(t, d.Content)
	}
}

func TestLoadFile_Unsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.docx", "x")

	_, err := NewLoader(0, 0).LoadFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestNewLoader_InvalidOverlapFallsBack(t *testing.T) {
	l := NewLoader(50, 80)
	require.NotNil(t, l)

	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", strings.Repeat("word ", 40))
	docs, err := l.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Greater(t, len(docs), 1)
}
