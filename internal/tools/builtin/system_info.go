package builtin

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"reagent/internal/toolregistry"
)

type systemInfo struct{}

// NewSystemInfo returns the system_info tool.
func NewSystemInfo() toolregistry.Tool {
	return &systemInfo{}
}

func (t *systemInfo) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "system_info",
		Description: "Get information about the system.",
		Parameters: map[string]toolregistry.Parameter{
			"type": {Type: "string", Description: "Type of information to get. One of: 'basic', 'env', 'all'."},
		},
		Output: "System information of the requested type.",
	}
}

func (t *systemInfo) Execute(_ context.Context, input map[string]any) (string, error) {
	infoType := "basic"
	if raw, ok := input["type"].(string); ok && raw != "" {
		infoType = raw
	}

	var b strings.Builder
	b.WriteString("System Information:\n\n")

	if infoType == "basic" || infoType == "all" {
		hostname, _ := os.Hostname()
		b.WriteString("Basic Information:\n")
		fmt.Fprintf(&b, "  OS: %s\n", runtime.GOOS)
		fmt.Fprintf(&b, "  Architecture: %s\n", runtime.GOARCH)
		fmt.Fprintf(&b, "  Hostname: %s\n", hostname)
		fmt.Fprintf(&b, "  CPUs: %d\n", runtime.NumCPU())
		fmt.Fprintf(&b, "  Runtime: %s\n\n", runtime.Version())
	}

	if infoType == "env" || infoType == "all" {
		b.WriteString("Environment Variables:\n")
		env := os.Environ()
		sort.Strings(env)
		for _, kv := range env {
			key, value, _ := strings.Cut(kv, "=")
			fmt.Fprintf(&b, "  %s: %s\n", key, redactEnvValue(key, value))
		}
	}

	return b.String(), nil
}

// redactEnvValue hides credential-looking values and truncates the very long
// path-style ones so the observation stays readable.
func redactEnvValue(key, value string) string {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"TOKEN", "SECRET", "PASSWORD", "KEY"} {
		if strings.Contains(upper, marker) {
			return "*** (redacted)"
		}
	}
	if len(value) > 100 {
		return value[:100] + "... (truncated)"
	}
	return value
}
