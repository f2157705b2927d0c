package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"reagent/internal/toolregistry"
)

type webSearch struct{}

// NewWebSearch returns the web_search tool. The implementation is an
// offline placeholder that produces deterministic results; wiring a real
// search API means swapping this single tool.
func NewWebSearch() toolregistry.Tool {
	return &webSearch{}
}

func (t *webSearch) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "web_search",
		Description: "Search the web for information.",
		Parameters: map[string]toolregistry.Parameter{
			"query":       {Type: "string", Description: "The search query."},
			"num_results": {Type: "integer", Description: "Number of results to return (default: 5)."},
		},
		Output: "Search results with titles, snippets, and URLs.",
	}
}

func (t *webSearch) Execute(_ context.Context, input map[string]any) (string, error) {
	query, err := stringArg(input, "query")
	if err != nil {
		return "", err
	}

	numResults := 5
	if n, ok, err := intArg(input, "num_results"); err != nil {
		return "", err
	} else if ok && n > 0 {
		numResults = n
	}

	escaped := url.QueryEscape(query)
	results := []struct {
		title, snippet, link string
	}{
		{
			title:   fmt.Sprintf("Mock result 1 for '%s'", query),
			snippet: fmt.Sprintf("This is a mock search result for the query '%s'.", query),
			link:    "https://example.com/result1?q=" + escaped,
		},
		{
			title:   fmt.Sprintf("Mock result 2 for '%s'", query),
			snippet: fmt.Sprintf("Another mock search result for '%s'.", query),
			link:    "https://example.com/result2?q=" + escaped,
		},
		{
			title:   fmt.Sprintf("Mock result 3 for '%s'", query),
			snippet: fmt.Sprintf("Mock search result 3 for '%s'.", query),
			link:    "https://example.com/result3?q=" + escaped,
		},
	}
	if numResults < len(results) {
		results = results[:numResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: '%s'\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   URL: %s\n\n", i+1, r.title, r.snippet, r.link)
	}
	b.WriteString("Note: These are mock results. To use real search results, integrate with a search API.")
	return b.String(), nil
}
