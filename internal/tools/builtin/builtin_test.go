package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reagent/internal/toolregistry"
)

func TestRegisterAll(t *testing.T) {
	registry := toolregistry.NewRegistry()
	RegisterAll(registry, Config{})

	names := registry.Names()
	assert.Equal(t, []string{
		"read_file",
		"write_file",
		"list_directory",
		"run_command",
		"system_info",
		"web_search",
		"read_webpage",
	}, names)

	for _, def := range registry.List() {
		assert.NotEmpty(t, def.Description, "tool %s needs a description", def.Name)
		assert.NotEmpty(t, def.Output, "tool %s needs an output description", def.Name)
	}

	defs, err := registry.Subset([]string{"read_file", "run_command"})
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}
