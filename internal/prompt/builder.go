// Package prompt assembles the full prompt handed to the generation
// backend. Build is pure and deterministic: the orchestrator re-derives the
// prompt from the accumulated transcript on every iteration, so any
// nondeterminism here would make replay inconsistent.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"reagent/internal/toolregistry"
)

// ConversationTurn is one prior exchange supplied by the caller. Either side
// may be empty.
type ConversationTurn struct {
	User      string `json:"user,omitempty"`
	Assistant string `json:"assistant,omitempty"`
}

// FewShotExample is a fully worked turn rendered into the prompt to shape
// the output grammar. It is never executed.
type FewShotExample struct {
	Query       string         `json:"query"`
	Thinking    string         `json:"thinking,omitempty"`
	Action      string         `json:"action,omitempty"`
	ActionInput map[string]any `json:"action_input,omitempty"`
	Observation string         `json:"observation,omitempty"`
	FinalAnswer string         `json:"final_answer,omitempty"`
}

const grammarInstructions = `To use a tool, respond with:
THINKING: Think step by step about what you need to do.
ACTION: <tool_name>
ACTION_INPUT: {
  "parameter1": "value1",
  "parameter2": "value2"
}

When you receive the result from a tool, continue with:
OBSERVATION: <result from the tool>
THINKING: Think about what the result means and what to do next.

If you need to use multiple tools, repeat the ACTION/ACTION_INPUT/OBSERVATION sequence.
When you have the final answer and don't need any more tools, respond with:
FINAL_ANSWER: your detailed final answer

Remember:
1. Follow the exact format for tool use
2. Think through the problem carefully before using tools
3. Always use proper JSON for ACTION_INPUT
4. Don't make up tool results or guess what a tool would return
5. Use only the tools described above`

// Build renders the complete prompt: system block with tool schemas and the
// output grammar, optional few-shot examples, prior conversation history,
// and the query with an open continuation marker for the generator.
func Build(query string, tools []toolregistry.Definition, examples []FewShotExample, history []ConversationTurn) string {
	var b strings.Builder

	b.WriteString(systemBlock(tools))
	b.WriteString("\n\n")

	if len(examples) > 0 {
		b.WriteString("Here are some examples:\n\n")
		for _, ex := range examples {
			b.WriteString(renderExample(ex))
			b.WriteString("\n")
		}
	}

	for _, turn := range history {
		if turn.User != "" {
			fmt.Fprintf(&b, "User: %s\n", turn.User)
		}
		if turn.Assistant != "" {
			fmt.Fprintf(&b, "Assistant: %s\n", turn.Assistant)
		}
	}

	fmt.Fprintf(&b, "User: %s\n\nAssistant:", query)
	return b.String()
}

func systemBlock(tools []toolregistry.Definition) string {
	descriptions := make([]string, 0, len(tools))
	for _, tool := range tools {
		descriptions = append(descriptions, renderDefinition(tool))
	}

	return fmt.Sprintf(`You are an AI assistant that can use tools to answer questions.
When you need to use a tool, format your response using the specific syntax below.
First, think step by step about how to solve the problem, then decide if you need to use a tool.

Available tools:
%s

%s`, strings.Join(descriptions, "\n\n"), grammarInstructions)
}

// renderDefinition documents one tool. Parameters render in sorted name
// order; map iteration order must never leak into the prompt.
func renderDefinition(def toolregistry.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", def.Name)
	fmt.Fprintf(&b, "Description: %s\n", def.Description)
	b.WriteString("Parameters:\n")
	if len(def.Parameters) == 0 {
		b.WriteString("  (none)\n")
	} else {
		names := make([]string, 0, len(def.Parameters))
		for name := range def.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := def.Parameters[name]
			fmt.Fprintf(&b, "  %s (%s): %s\n", name, p.Type, p.Description)
		}
	}
	fmt.Fprintf(&b, "Output: %s", def.Output)
	return b.String()
}

func renderExample(ex FewShotExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n\nAssistant: ", ex.Query)
	if ex.Thinking != "" {
		fmt.Fprintf(&b, "THINKING: %s\n", ex.Thinking)
	}
	if ex.Action != "" {
		fmt.Fprintf(&b, "ACTION: %s\n", ex.Action)
		fmt.Fprintf(&b, "ACTION_INPUT: %s\n", renderExampleInput(ex.ActionInput))
	}
	if ex.Observation != "" {
		fmt.Fprintf(&b, "OBSERVATION: %s\n", ex.Observation)
	}
	if ex.FinalAnswer != "" {
		fmt.Fprintf(&b, "FINAL_ANSWER: %s\n", ex.FinalAnswer)
	}
	return b.String()
}

// renderExampleInput relies on encoding/json emitting map keys in sorted
// order, which keeps Build deterministic.
func renderExampleInput(input map[string]any) string {
	if len(input) == 0 {
		return "{}"
	}
	data, err := json.Marshal(input)
	if err != nil {
		return "{}"
	}
	return string(data)
}
