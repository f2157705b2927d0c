package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reagent/internal/toolregistry"
)

// scriptedGen replays canned outputs and records every prompt it was
// handed.
type scriptedGen struct {
	outputs []string
	prompts []string
	err     error
}

func (g *scriptedGen) Generate(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.prompts = append(g.prompts, prompt)
	i := len(g.prompts) - 1
	if i < len(g.outputs) {
		return g.outputs[i], nil
	}
	return g.outputs[len(g.outputs)-1], nil
}

func (g *scriptedGen) Model() string { return "test-model" }

type stubTool struct {
	name   string
	result string
	err    error
	calls  int
	inputs []map[string]any
}

func (s *stubTool) Definition() toolregistry.Definition {
	return toolregistry.Definition{Name: s.name, Description: "stub"}
}

func (s *stubTool) Execute(_ context.Context, input map[string]any) (string, error) {
	s.calls++
	s.inputs = append(s.inputs, input)
	return s.result, s.err
}

func newTestMetrics() *Metrics {
	return MustNewMetrics(prometheus.NewRegistry())
}

func newOrchestrator(t *testing.T, gen Generator, tools ...toolregistry.Tool) *Orchestrator {
	t.Helper()
	registry := toolregistry.NewRegistry()
	for _, tool := range tools {
		registry.Register(tool)
	}
	return New(registry, gen, WithMetrics(newTestMetrics()))
}

func TestRunReturnsFinalAnswerAfterTool(t *testing.T) {
	tool := &stubTool{name: "list_directory", result: "file1.txt file2.py"}
	gen := &scriptedGen{outputs: []string{
		"THINKING: need the files\nACTION: list_directory\nACTION_INPUT: {\"directory\": \".\"}",
		"THINKING: got them\nFINAL_ANSWER: the directory holds file1.txt and file2.py",
	}}

	result, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{Query: "what files are here?"})
	require.NoError(t, err)

	require.NotNil(t, result.FinalAnswer)
	assert.Equal(t, "the directory holds file1.txt and file2.py", *result.FinalAnswer)
	assert.Equal(t, "what files are here?", result.Query)
	assert.Equal(t, "test-model", result.ModelUsed)
	assert.Equal(t, 1, tool.calls)
	require.NotEmpty(t, tool.inputs)
	assert.Equal(t, map[string]any{"directory": "."}, tool.inputs[0])

	require.NotEmpty(t, result.Actions)
	require.NotNil(t, result.Actions[0].Observation)
	assert.Equal(t, "file1.txt file2.py", *result.Actions[0].Observation)
	assert.Equal(t, []string{"need the files", "got them"}, result.Thinking)
}

func TestRunNoActionsNoFinalAnswer(t *testing.T) {
	gen := &scriptedGen{outputs: []string{"THINKING: I have nothing to do"}}

	result, err := newOrchestrator(t, gen).Run(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	assert.Nil(t, result.FinalAnswer)
	assert.Empty(t, result.Actions)
	assert.Len(t, gen.prompts, 1)
}

func TestRunExhaustsIterationBudget(t *testing.T) {
	tool := &stubTool{name: "ping", result: "pong"}
	gen := &scriptedGen{outputs: []string{"ACTION: ping\nACTION_INPUT: {}"}}

	result, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{
		Query:         "loop forever",
		MaxIterations: 3,
	})
	require.NoError(t, err)

	assert.Nil(t, result.FinalAnswer)
	assert.Equal(t, 3, tool.calls)
	// Initial generation plus one continuation per executed tool.
	assert.Len(t, gen.prompts, 4)
}

func TestRunSubsetFailsBeforeGeneration(t *testing.T) {
	tool := &stubTool{name: "real", result: "ok"}
	gen := &scriptedGen{outputs: []string{"FINAL_ANSWER: never reached"}}

	_, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{
		Query: "q",
		Tools: []string{"real", "ghost"},
	})
	require.Error(t, err)

	var nf *toolregistry.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"ghost"}, nf.Missing)
	assert.Empty(t, gen.prompts, "no generation call may happen for an invalid subset")
}

func TestRunToolFailureIsRecoverable(t *testing.T) {
	tool := &stubTool{name: "flaky", err: errors.New("connection refused")}
	gen := &scriptedGen{outputs: []string{
		"ACTION: flaky\nACTION_INPUT: {}",
		"THINKING: tool is down, answering from memory\nFINAL_ANSWER: partial answer",
	}}

	result, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	require.NotNil(t, result.FinalAnswer)
	assert.Equal(t, "partial answer", *result.FinalAnswer)
	require.NotEmpty(t, result.Actions)
	require.NotNil(t, result.Actions[0].Observation)
	assert.Contains(t, *result.Actions[0].Observation, "flaky")
	assert.Contains(t, *result.Actions[0].Observation, "connection refused")
}

func TestRunUnknownToolMidRunIsRecoverable(t *testing.T) {
	tool := &stubTool{name: "known", result: "ok"}
	gen := &scriptedGen{outputs: []string{
		"ACTION: made_up\nACTION_INPUT: {}",
		"FINAL_ANSWER: fell back",
	}}

	result, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	require.NotNil(t, result.FinalAnswer)
	require.NotEmpty(t, result.Actions)
	require.NotNil(t, result.Actions[0].Observation)
	assert.Contains(t, *result.Actions[0].Observation, "Tool 'made_up' not found")
	assert.Contains(t, *result.Actions[0].Observation, "known")
	assert.Equal(t, 0, tool.calls)
}

func TestRunGeneratorFailureIsFatal(t *testing.T) {
	gen := &scriptedGen{err: errors.New("backend unavailable")}

	_, err := newOrchestrator(t, gen).Run(context.Background(), Request{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestRunLastFinalAnswerWins(t *testing.T) {
	gen := &scriptedGen{outputs: []string{
		"FINAL_ANSWER: first\nTHINKING: wait\nFINAL_ANSWER: second",
	}}

	result, err := newOrchestrator(t, gen).Run(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	require.NotNil(t, result.FinalAnswer)
	assert.Equal(t, "second", *result.FinalAnswer)
}

func TestRunPromptsAreReplayStable(t *testing.T) {
	tool := &stubTool{name: "ping", result: "pong"}
	gen := &scriptedGen{outputs: []string{"ACTION: ping\nACTION_INPUT: {}"}}

	_, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{
		Query:         "q",
		MaxIterations: 2,
	})
	require.NoError(t, err)
	require.True(t, len(gen.prompts) >= 2)

	// Every continuation prompt extends the previous one: the transcript
	// only ever grows, and the base prompt is re-derived identically.
	for i := 1; i < len(gen.prompts); i++ {
		assert.True(t, strings.HasPrefix(gen.prompts[i], gen.prompts[0]),
			"continuation prompt must extend the initial prompt")
	}
	assert.Contains(t, gen.prompts[1], "OBSERVATION: pong")
}

func TestRunObservationFeedbackRendersGrammar(t *testing.T) {
	tool := &stubTool{name: "read_file", result: "hello world"}
	gen := &scriptedGen{outputs: []string{
		"ACTION: read_file\nACTION_INPUT: {\"file_path\": \"a.txt\"}",
		"FINAL_ANSWER: the file says hello world",
	}}

	_, err := newOrchestrator(t, gen, tool).Run(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	require.Len(t, gen.prompts, 2)

	continuation := gen.prompts[1]
	assert.Contains(t, continuation, "ACTION: read_file")
	assert.Contains(t, continuation, `ACTION_INPUT: {"file_path":"a.txt"}`)
	assert.Contains(t, continuation, "OBSERVATION: hello world")
}
