package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSearchDeterministic(t *testing.T) {
	tool := NewWebSearch()
	input := map[string]any{"query": "capital of France"}

	first, err := tool.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := tool.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "Search results for: 'capital of France'")
	assert.Contains(t, first, "capital%20of%20France")
}

func TestWebSearchLimitsResults(t *testing.T) {
	tool := NewWebSearch()
	out, err := tool.Execute(context.Background(), map[string]any{
		"query":       "go",
		"num_results": float64(1),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "1. Mock result 1")
	assert.NotContains(t, out, "2. Mock result 2")
}

func TestReadWebpageExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Test Page</title>
			<script>var hidden = 1;</script></head>
			<body><h1>Heading</h1><p>Some paragraph text.</p></body></html>`))
	}))
	defer srv.Close()

	tool := NewReadWebpage()
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	require.NoError(t, err)

	assert.Contains(t, out, "Title: Test Page")
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "Some paragraph text.")
	assert.NotContains(t, out, "var hidden")
}

func TestReadWebpageRejectsBadScheme(t *testing.T) {
	tool := NewReadWebpage()
	out, err := tool.Execute(context.Background(), map[string]any{"url": "ftp://example.com"})
	require.NoError(t, err)
	assert.Contains(t, out, "invalid URL")
}

func TestReadWebpageNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewReadWebpage()
	out, err := tool.Execute(context.Background(), map[string]any{"url": srv.URL})
	require.NoError(t, err)
	assert.Contains(t, out, "status 404")
}

func TestSystemInfoBasic(t *testing.T) {
	tool := NewSystemInfo()
	out, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, out, "Basic Information:")
	assert.Contains(t, out, "OS:")
	assert.NotContains(t, out, "Environment Variables:")
}

func TestSystemInfoRedactsSecrets(t *testing.T) {
	t.Setenv("MY_SUPER_SECRET", "hunter2")
	t.Setenv("SOME_API_TOKEN", "abc123")

	tool := NewSystemInfo()
	out, err := tool.Execute(context.Background(), map[string]any{"type": "env"})
	require.NoError(t, err)

	assert.Contains(t, out, "MY_SUPER_SECRET: *** (redacted)")
	assert.Contains(t, out, "SOME_API_TOKEN: *** (redacted)")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "abc123")
}
