package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reagent/internal/llm"
	"reagent/internal/orchestrator"
)

var (
	thinkingColor = color.New(color.FgYellow).SprintFunc()
	actionColor   = color.New(color.FgCyan).SprintFunc()
	obsColor      = color.New(color.FgHiBlack).SprintFunc()
	answerColor   = color.New(color.FgGreen, color.Bold).SprintFunc()
	errColor      = color.New(color.FgRed).SprintFunc()
)

func newAskCmd() *cobra.Command {
	var (
		model         string
		tools         []string
		maxIterations int
		showRaw       bool
	)

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Run one query through the agent loop and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			if model == "" {
				model = rt.cfg.LLM.Model
			}
			if maxIterations <= 0 {
				maxIterations = rt.cfg.Agent.MaxIterations
			}

			client := llm.NewClient(model, llm.Config{
				BaseURL:     rt.cfg.LLM.BaseURL,
				APIKey:      rt.cfg.LLM.APIKey,
				MaxTokens:   rt.cfg.LLM.MaxTokens,
				Temperature: rt.cfg.LLM.Temperature,
				Timeout:     rt.cfg.LLM.Timeout(),
			}, rt.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var requested []string
			if len(tools) > 0 {
				requested = tools
			}

			orch := orchestrator.New(rt.registry, client, orchestrator.WithLogger(rt.logger))
			result, err := orch.Run(ctx, orchestrator.Request{
				Query:         args[0],
				Tools:         requested,
				MaxIterations: maxIterations,
			})
			if err != nil {
				return err
			}

			printResult(result, showRaw)
			if result.FinalAnswer == nil {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model identifier (defaults to configured model)")
	cmd.Flags().StringSliceVarP(&tools, "tool", "t", nil, "restrict the run to these tools (repeatable)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "tool execution budget for the run")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "also print the raw model transcript")
	return cmd
}

func printResult(result *orchestrator.Result, showRaw bool) {
	for _, thought := range result.Thinking {
		fmt.Println(thinkingColor("thinking: " + thought))
	}
	for _, action := range result.Actions {
		fmt.Println(actionColor(fmt.Sprintf("action: %s", action.Tool)))
		if action.Observation != nil {
			fmt.Println(obsColor(indent(*action.Observation, "  ")))
		}
	}
	if showRaw {
		fmt.Println(obsColor("--- transcript ---"))
		fmt.Println(obsColor(result.RawOutput))
		fmt.Println(obsColor("------------------"))
	}

	if result.FinalAnswer != nil {
		fmt.Println(answerColor(*result.FinalAnswer))
	} else {
		fmt.Println(errColor("no final answer (iteration budget exhausted or model stalled)"))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
