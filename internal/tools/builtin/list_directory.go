package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reagent/internal/toolregistry"
)

type listDirectory struct {
	workspace string
}

// NewListDirectory returns the list_directory tool.
func NewListDirectory(cfg Config) toolregistry.Tool {
	return &listDirectory{workspace: cfg.WorkspaceDir}
}

func (t *listDirectory) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "list_directory",
		Description: "List the contents of a directory.",
		Parameters: map[string]toolregistry.Parameter{
			"directory": {Type: "string", Description: "Path to the directory to list."},
			"pattern":   {Type: "string", Description: "Optional glob pattern to filter entries (default: *)."},
		},
		Output: "Directories and files in the directory matching the pattern.",
	}
}

func (t *listDirectory) Execute(_ context.Context, input map[string]any) (string, error) {
	dir, err := stringArg(input, "directory")
	if err != nil {
		return "", err
	}
	dir = resolvePath(t.workspace, dir)

	pattern := "*"
	if raw, ok := input["pattern"].(string); ok && raw != "" {
		pattern = raw
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: Directory not found: %s", dir), nil
		}
		return "", fmt.Errorf("list %s: %w", dir, err)
	}

	var dirs, files []string
	for _, entry := range entries {
		matched, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return fmt.Sprintf("Error: invalid pattern %q: %v", pattern, err), nil
		}
		if !matched {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry.Name()+"/")
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	var b strings.Builder
	fmt.Fprintf(&b, "Contents of %s (pattern: %s):\n", dir, pattern)
	if len(dirs) > 0 {
		b.WriteString("\nDirectories:\n")
		b.WriteString(strings.Join(dirs, "\n"))
		b.WriteString("\n")
	}
	if len(files) > 0 {
		b.WriteString("\nFiles:\n")
		b.WriteString(strings.Join(files, "\n"))
		b.WriteString("\n")
	}
	if len(dirs) == 0 && len(files) == 0 {
		b.WriteString("\nNo items found matching the pattern.")
	}
	return b.String(), nil
}
