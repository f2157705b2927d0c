package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}

			name := color.New(color.Bold).SprintFunc()
			param := color.New(color.FgCyan).SprintFunc()
			dim := color.New(color.FgHiBlack).SprintFunc()

			for _, def := range rt.registry.List() {
				fmt.Printf("%s  %s\n", name(def.Name), def.Description)

				keys := make([]string, 0, len(def.Parameters))
				for k := range def.Parameters {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					p := def.Parameters[k]
					fmt.Printf("    %s %s  %s\n", param(k), dim("("+p.Type+")"), p.Description)
				}
				if def.Output != "" {
					fmt.Printf("    %s %s\n", dim("returns:"), dim(def.Output))
				}
				fmt.Println()
			}
			return nil
		},
	}
}
