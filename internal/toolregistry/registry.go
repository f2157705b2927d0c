// Package toolregistry maps capability names to executable tools with
// declared schemas. The registry is populated during startup and treated as
// read-only while runs are in flight; the RWMutex covers the serving layer
// registering late.
package toolregistry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Parameter describes a single tool parameter for prompt documentation.
// Nothing is validated against it at invocation time.
type Parameter struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Definition is the schema view of a tool, rendered into the system prompt.
type Definition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
	Output      string               `json:"output"`
}

// Tool binds a definition to an executable implementation.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, input map[string]any) (string, error)
}

// NotFoundError is returned by Subset when a caller requests tools that were
// never registered. It is a hard failure: subset resolution happens before
// any model call, so a typo fails the run up front instead of mid-loop.
type NotFoundError struct {
	Missing   []string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown tools: %s (available: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// Registry holds tool bindings keyed by name, preserving registration order
// for listing and prompt construction.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register stores the tool under its declared name. Registering a second
// tool under an existing name silently overwrites the binding; the name
// keeps its original position in the listing order.
func (r *Registry) Register(tool Tool) {
	name := tool.Definition().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// List returns the schema view of every registered tool in registration
// order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Subset resolves the named tools in the order requested. If any name is
// unregistered it fails with a *NotFoundError listing every missing name and
// all valid ones.
func (r *Registry) Subset(names []string) ([]Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		defs = append(defs, tool.Definition())
	}
	if len(missing) > 0 {
		available := append([]string(nil), r.order...)
		sort.Strings(available)
		return nil, &NotFoundError{Missing: missing, Available: available}
	}
	return defs, nil
}

// Invoke resolves the named tool and executes it with the parsed input.
// Every failure mode at this boundary (unknown tool, non-object input, tool
// error, tool panic) is converted into a descriptive observation string and
// fed back to the model; nothing escapes as an error.
func (r *Registry) Invoke(ctx context.Context, name string, input any) (observation string) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	available := append([]string(nil), r.order...)
	r.mu.RUnlock()

	if !ok {
		sort.Strings(available)
		return fmt.Sprintf("Error: Tool '%s' not found. Available tools: %s",
			name, strings.Join(available, ", "))
	}

	args, ok := asArguments(input)
	if !ok {
		return fmt.Sprintf("Error executing tool '%s': input is not a JSON object: %v", name, input)
	}

	defer func() {
		if rec := recover(); rec != nil {
			observation = fmt.Sprintf("Error executing tool '%s': panic: %v", name, rec)
		}
	}()

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error executing tool '%s': %v", name, err)
	}
	return result
}

// asArguments normalizes parsed ACTION_INPUT into the argument map tools
// consume. A missing input becomes an empty map so parameterless tools run;
// raw text that never decoded as an object is rejected here, surfacing as a
// recoverable observation.
func asArguments(input any) (map[string]any, bool) {
	switch v := input.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}
