package parser

import (
	"encoding/json"
	"strings"
)

// Render writes a Turn back into the text grammar. For well-formed turns
// (section bodies free of the label words themselves) Parse(Render(t))
// reconstructs an equivalent Turn, which is what keeps the accumulated
// transcript the single source of truth across iterations.
func Render(t Turn) string {
	var b strings.Builder
	for _, thought := range t.Thinking {
		b.WriteString(labelThinking)
		b.WriteString(" ")
		b.WriteString(thought)
		b.WriteString("\n")
	}
	for _, a := range t.Actions {
		b.WriteString(RenderAction(a))
	}
	if t.FinalAnswer != nil {
		b.WriteString(labelFinalAnswer)
		b.WriteString(" ")
		b.WriteString(*t.FinalAnswer)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderAction writes a single ACTION/ACTION_INPUT/OBSERVATION group. The
// orchestrator appends exactly this after executing a tool so the next
// generation sees the observation in the grammar it was prompted with.
func RenderAction(a Action) string {
	var b strings.Builder
	b.WriteString(labelAction)
	b.WriteString(" ")
	b.WriteString(a.Tool)
	b.WriteString("\n")
	b.WriteString(labelActionInput)
	b.WriteString(" ")
	b.WriteString(renderInput(a.Input))
	b.WriteString("\n")
	if a.Observation != nil {
		b.WriteString(labelObservation)
		b.WriteString(" ")
		b.WriteString(*a.Observation)
		b.WriteString("\n")
	}
	return b.String()
}

func renderInput(input any) string {
	switch v := input.(type) {
	case nil:
		return "null"
	case string:
		// Raw text that never decoded as an object goes back verbatim.
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		return string(data)
	}
}
