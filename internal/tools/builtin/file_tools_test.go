package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileFullContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbravo\ncharlie"), 0o644))

	tool := NewReadFile(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{"file_path": path})
	require.NoError(t, err)
	assert.Contains(t, out, "alpha\nbravo\ncharlie")
}

func TestReadFileLineRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("l0\nl1\nl2\nl3"), 0o644))

	tool := NewReadFile(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{
		"file_path":  path,
		"line_start": float64(1),
		"line_end":   float64(2),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Lines 1-2")
	assert.Contains(t, out, "l1\nl2")
	assert.NotContains(t, out, "l0\n")
	assert.NotContains(t, out, "l3")
}

func TestReadFileMissing(t *testing.T) {
	tool := NewReadFile(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{"file_path": filepath.Join(t.TempDir(), "nope.txt")})
	require.NoError(t, err)
	assert.Contains(t, out, "File not found")
}

func TestReadFileRequiresPath(t *testing.T) {
	tool := NewReadFile(Config{})
	_, err := tool.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path is required")
}

func TestReadFileResolvesWorkspaceRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rel.txt"), []byte("relative"), 0o644))

	tool := NewReadFile(Config{WorkspaceDir: dir})
	out, err := tool.Execute(context.Background(), map[string]any{"file_path": "rel.txt"})
	require.NoError(t, err)
	assert.Contains(t, out, "relative")
}

func TestWriteFileOverwriteAndAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.txt")
	tool := NewWriteFile(Config{})

	out, err := tool.Execute(context.Background(), map[string]any{
		"file_path": path,
		"content":   "first",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "5 bytes")

	_, err = tool.Execute(context.Background(), map[string]any{
		"file_path": path,
		"content":   " second",
		"mode":      "append",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first second", string(data))
}

func TestWriteFileUnknownMode(t *testing.T) {
	tool := NewWriteFile(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{
		"file_path": filepath.Join(t.TempDir(), "x.txt"),
		"content":   "c",
		"mode":      "sideways",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "unknown mode")
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "child"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), nil, 0o644))

	tool := NewListDirectory(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{"directory": dir})
	require.NoError(t, err)
	assert.Contains(t, out, "child/")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.py")
}

func TestListDirectoryPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), nil, 0o644))

	tool := NewListDirectory(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{
		"directory": dir,
		"pattern":   "*.py",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "b.py")
	assert.NotContains(t, out, "a.txt")
}

func TestListDirectoryEmptyMatch(t *testing.T) {
	tool := NewListDirectory(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{
		"directory": t.TempDir(),
		"pattern":   "*.nothing",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "No items found")
}

func TestListDirectoryMissing(t *testing.T) {
	tool := NewListDirectory(Config{})
	out, err := tool.Execute(context.Background(), map[string]any{
		"directory": filepath.Join(t.TempDir(), "ghost"),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Directory not found")
}
