// Package builtin provides the standard tool set: file access, shell
// command execution, system introspection, and web retrieval. Each tool
// reports problems as descriptive strings wherever the model can recover by
// trying something else; hard errors are reserved for broken inputs.
package builtin

import (
	"fmt"
	"time"

	"reagent/internal/toolregistry"
)

// Config carries the knobs shared by the builtin tools.
type Config struct {
	// WorkspaceDir anchors relative paths used by the file tools.
	// Empty means the process working directory.
	WorkspaceDir string
	// CommandTimeout is the default budget for run_command; individual
	// calls may lower or raise it via the timeout parameter.
	CommandTimeout time.Duration
}

// RegisterAll registers every builtin tool on the registry.
func RegisterAll(registry *toolregistry.Registry, cfg Config) {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 30 * time.Second
	}

	registry.Register(NewReadFile(cfg))
	registry.Register(NewWriteFile(cfg))
	registry.Register(NewListDirectory(cfg))
	registry.Register(NewRunCommand(cfg))
	registry.Register(NewSystemInfo())
	registry.Register(NewWebSearch())
	registry.Register(NewReadWebpage())
}

// stringArg extracts a required string parameter.
func stringArg(input map[string]any, key string) (string, error) {
	v, ok := input[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

// intArg extracts an optional integer parameter. JSON numbers arrive as
// float64; anything else non-integer is rejected.
func intArg(input map[string]any, key string) (int, bool, error) {
	v, ok := input[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), true, nil
	case int:
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
}
