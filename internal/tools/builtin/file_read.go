package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reagent/internal/toolregistry"
)

type readFile struct {
	workspace string
}

// NewReadFile returns the read_file tool.
func NewReadFile(cfg Config) toolregistry.Tool {
	return &readFile{workspace: cfg.WorkspaceDir}
}

func (t *readFile) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "read_file",
		Description: "Read the contents of a file.",
		Parameters: map[string]toolregistry.Parameter{
			"file_path":  {Type: "string", Description: "Path to the file to read."},
			"line_start": {Type: "integer", Description: "Optional line number to start reading from (0-indexed)."},
			"line_end":   {Type: "integer", Description: "Optional line number to end reading at (0-indexed, inclusive)."},
		},
		Output: "The contents of the file, possibly limited to specified lines.",
	}
}

func (t *readFile) Execute(_ context.Context, input map[string]any) (string, error) {
	path, err := stringArg(input, "file_path")
	if err != nil {
		return "", err
	}
	path = resolvePath(t.workspace, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: File not found: %s", path), nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	start, hasStart, err := intArg(input, "line_start")
	if err != nil {
		return "", err
	}
	end, hasEnd, err := intArg(input, "line_end")
	if err != nil {
		return "", err
	}

	if hasStart && hasEnd {
		lines := strings.Split(string(data), "\n")
		if start < 0 {
			start = 0
		}
		if end > len(lines)-1 {
			end = len(lines) - 1
		}
		if start > end {
			return fmt.Sprintf("Error: invalid line range %d-%d for %s", start, end, path), nil
		}
		content := strings.Join(lines[start:end+1], "\n")
		return fmt.Sprintf("Lines %d-%d from %s:\n%s", start, end, path, content), nil
	}

	return fmt.Sprintf("Contents of %s:\n%s", path, string(data)), nil
}

// resolvePath anchors relative paths at the workspace directory.
func resolvePath(workspace, path string) string {
	if workspace == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}
