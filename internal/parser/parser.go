// Package parser recovers structured turns from free-form ReAct text.
//
// The grammar is five labeled sections (THINKING, ACTION, ACTION_INPUT,
// OBSERVATION, FINAL_ANSWER), each span running until the next recognized
// label or end of text. The generator emitting this text is untrusted, so
// parsing never fails: malformed pieces degrade instead of erroring.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Action is one tool invocation recovered from the text. Input is a
// map[string]any when the ACTION_INPUT span decoded as a JSON object, the
// trimmed raw string when it did not, and nil when the span was missing.
// Observation is nil until the tool has been executed.
type Action struct {
	Tool        string  `json:"tool"`
	Input       any     `json:"input"`
	Observation *string `json:"observation"`
}

// Turn is one parsed unit of generated text. A nil FinalAnswer means the
// model has not concluded; an empty non-nil FinalAnswer is a real (empty)
// answer and terminates the run all the same.
type Turn struct {
	Thinking    []string `json:"thinking"`
	Actions     []Action `json:"actions"`
	FinalAnswer *string  `json:"final_answer"`
	RawOutput   string   `json:"raw_output"`
}

// HasFinalAnswer reports whether the turn is terminal.
func (t Turn) HasFinalAnswer() bool {
	return t.FinalAnswer != nil
}

// FirstPending returns the index of the first action without an observation,
// or -1 when every action has been observed.
func (t Turn) FirstPending() int {
	for i, a := range t.Actions {
		if a.Observation == nil {
			return i
		}
	}
	return -1
}

const (
	labelThinking    = "THINKING:"
	labelAction      = "ACTION:"
	labelActionInput = "ACTION_INPUT:"
	labelObservation = "OBSERVATION:"
	labelFinalAnswer = "FINAL_ANSWER:"
)

// labels ordered with ACTION_INPUT before ACTION so a span starting with the
// longer label is never claimed by its prefix.
var labels = []string{
	labelThinking,
	labelActionInput,
	labelAction,
	labelObservation,
	labelFinalAnswer,
}

type span struct {
	label string
	body  string
}

// Parse converts raw generated text into a Turn. It is pure: the same text
// always yields an equal Turn, and it never returns an error.
func Parse(text string) Turn {
	turn := Turn{RawOutput: text}

	var actions, inputs, observations []string
	for _, s := range scan(text) {
		body := strings.TrimSpace(s.body)
		switch s.label {
		case labelThinking:
			if body != "" {
				turn.Thinking = append(turn.Thinking, body)
			}
		case labelAction:
			actions = append(actions, body)
		case labelActionInput:
			inputs = append(inputs, body)
		case labelObservation:
			observations = append(observations, body)
		case labelFinalAnswer:
			// Last occurrence wins when the model emits several.
			answer := body
			turn.FinalAnswer = &answer
		}
	}

	for i, name := range actions {
		action := Action{Tool: name}
		if i < len(inputs) {
			action.Input = decodeInput(inputs[i])
		}
		if i < len(observations) {
			obs := observations[i]
			action.Observation = &obs
		}
		turn.Actions = append(turn.Actions, action)
	}

	return turn
}

// scan splits text into labeled spans in order of appearance. Text before
// the first label is ignored; each span ends where the next label begins.
func scan(text string) []span {
	var spans []span
	label, start := nextLabel(text, 0)
	for start >= 0 {
		bodyStart := start + len(label)
		nextLbl, nextStart := nextLabel(text, bodyStart)
		bodyEnd := len(text)
		if nextStart >= 0 {
			bodyEnd = nextStart
		}
		spans = append(spans, span{label: label, body: text[bodyStart:bodyEnd]})
		label, start = nextLbl, nextStart
	}
	return spans
}

// nextLabel finds the earliest occurrence of any recognized label at or
// after pos. It returns ("", -1) when no label remains.
func nextLabel(text string, pos int) (string, int) {
	bestLabel, bestIdx := "", -1
	for _, l := range labels {
		idx := strings.Index(text[pos:], l)
		if idx < 0 {
			continue
		}
		abs := pos + idx
		if bestIdx < 0 || abs < bestIdx {
			bestLabel, bestIdx = l, abs
		}
	}
	return bestLabel, bestIdx
}

// decodeInput attempts a structured decode of an ACTION_INPUT span. The
// generator frequently emits almost-JSON (trailing commas, single quotes,
// unquoted keys), so a failed strict decode is retried through jsonrepair
// before degrading to the raw string. Only JSON objects count as structured
// input; a bare array or scalar stays raw text.
func decodeInput(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil && obj != nil {
		return obj
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		obj = nil
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil && obj != nil {
			return obj
		}
	}

	return trimmed
}
