package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reagent/internal/toolregistry"
)

type writeFile struct {
	workspace string
}

// NewWriteFile returns the write_file tool.
func NewWriteFile(cfg Config) toolregistry.Tool {
	return &writeFile{workspace: cfg.WorkspaceDir}
}

func (t *writeFile) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "write_file",
		Description: "Write content to a file, creating parent directories as needed.",
		Parameters: map[string]toolregistry.Parameter{
			"file_path": {Type: "string", Description: "Path to the file to write."},
			"content":   {Type: "string", Description: "Content to write to the file."},
			"mode":      {Type: "string", Description: "Write mode: 'overwrite' (default) or 'append'."},
		},
		Output: "Confirmation of the write with the number of bytes written.",
	}
}

func (t *writeFile) Execute(_ context.Context, input map[string]any) (string, error) {
	path, err := stringArg(input, "file_path")
	if err != nil {
		return "", err
	}
	content, err := stringArg(input, "content")
	if err != nil {
		return "", err
	}
	path = resolvePath(t.workspace, path)

	mode := "overwrite"
	if raw, ok := input["mode"].(string); ok && raw != "" {
		mode = raw
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	switch mode {
	case "overwrite":
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	case "append":
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return "", fmt.Errorf("append to %s: %w", path, err)
		}
	default:
		return fmt.Sprintf("Error: unknown mode %q, use 'overwrite' or 'append'", mode), nil
	}

	return fmt.Sprintf("Successfully wrote %d bytes to %s (mode: %s)", len(content), path, mode), nil
}
