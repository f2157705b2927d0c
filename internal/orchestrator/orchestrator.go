// Package orchestrator drives the ReAct loop: generate, parse, execute one
// pending tool, feed the observation back, repeat until a final answer
// appears or the iteration budget runs out.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"reagent/internal/observability"
	"reagent/internal/parser"
	"reagent/internal/prompt"
	"reagent/internal/toolregistry"
)

// DefaultMaxIterations bounds runaway loops when the caller does not set a
// budget of its own.
const DefaultMaxIterations = 10

// Generator is the opaque text-generation backend. Generate is synchronous
// and may be arbitrarily slow; its output is untrusted free text. A Generate
// error is the single fatal failure mode of a run.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Request describes one orchestration run. Tools restricts the active tool
// set by name; nil means every registered tool. History and Examples are
// rendered into the initial prompt only.
type Request struct {
	Query         string
	Tools         []string
	History       []prompt.ConversationTurn
	Examples      []prompt.FewShotExample
	MaxIterations int
}

// Result is the payload returned to the caller. It is created fresh per run
// and never retained by the orchestrator; the caller owns persistence. A nil
// FinalAnswer means the run ended without the model concluding (no pending
// work left, or budget exhausted).
type Result struct {
	Query       string          `json:"query"`
	Thinking    []string        `json:"thinking"`
	Actions     []parser.Action `json:"actions"`
	FinalAnswer *string         `json:"final_answer"`
	RawOutput   string          `json:"raw_output"`
	ModelUsed   string          `json:"model_used"`
}

// Orchestrator coordinates the registry, the prompt builder, and the
// generation backend. It holds no per-run state; one instance serves
// concurrent runs.
type Orchestrator struct {
	registry *toolregistry.Registry
	gen      Generator
	logger   *observability.Logger
	metrics  *Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the default logger.
func WithLogger(logger *observability.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics overrides the shared metrics instance, mainly so tests can use
// a private registry.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(registry *toolregistry.Registry, gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		gen:      gen,
		logger:   observability.NewNopLogger(),
		metrics:  defaultMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one ReAct loop to completion. Tool-level and parse-level
// problems are fed back to the model as observations; only a generator
// failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	logger := o.logger.WithContext(ctx)
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	// Resolve the tool subset before any model call so a typo in a tool
	// name fails the request instead of burning a generation.
	var defs []toolregistry.Definition
	var err error
	if req.Tools != nil {
		defs, err = o.registry.Subset(req.Tools)
		if err != nil {
			return nil, err
		}
	} else {
		defs = o.registry.List()
	}

	base := prompt.Build(req.Query, defs, req.Examples, req.History)
	logger.Debug("starting run", "query", req.Query, "tools", len(defs), "max_iterations", maxIterations)

	o.metrics.IncActiveRuns()
	defer o.metrics.DecActiveRuns()
	started := time.Now()

	output, err := o.gen.Generate(ctx, base)
	if err != nil {
		o.metrics.ObserveRun("generator_error", 0, time.Since(started))
		return nil, fmt.Errorf("generation backend: %w", err)
	}

	// transcript is every byte the model produced plus the observation
	// groups appended below. It is re-parsed from scratch each iteration:
	// the parser stays the single source of truth for run state.
	transcript := output
	turn := parser.Parse(transcript)

	iterations := 0
	for !turn.HasFinalAnswer() && iterations < maxIterations {
		pending := turn.FirstPending()
		if pending < 0 {
			break
		}

		action := turn.Actions[pending]
		logger.Debug("executing tool", "iteration", iterations+1, "tool", action.Tool)

		toolStarted := time.Now()
		observation := o.registry.Invoke(ctx, action.Tool, action.Input)
		o.metrics.ObserveToolInvocation(action.Tool, time.Since(toolStarted))
		action.Observation = &observation

		continuation := parser.RenderAction(action)
		next, err := o.gen.Generate(ctx, base+transcript+"\n"+continuation)
		if err != nil {
			o.metrics.ObserveRun("generator_error", iterations, time.Since(started))
			return nil, fmt.Errorf("generation backend: %w", err)
		}

		transcript += "\n" + continuation + next
		turn = parser.Parse(transcript)
		iterations++
	}

	status := "no_answer"
	switch {
	case turn.HasFinalAnswer():
		status = "answered"
	case iterations >= maxIterations:
		status = "budget_exhausted"
	}
	o.metrics.ObserveRun(status, iterations, time.Since(started))
	logger.Info("run finished", "status", status, "iterations", iterations, "actions", len(turn.Actions))

	return &Result{
		Query:       req.Query,
		Thinking:    turn.Thinking,
		Actions:     turn.Actions,
		FinalAnswer: turn.FinalAnswer,
		RawOutput:   turn.RawOutput,
		ModelUsed:   o.gen.Model(),
	}, nil
}
