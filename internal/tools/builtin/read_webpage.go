package builtin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reagent/internal/toolregistry"
)

const maxWebpageOutput = 100 * 1024

type readWebpage struct {
	client *http.Client
}

// NewReadWebpage returns the read_webpage tool.
func NewReadWebpage() toolregistry.Tool {
	return &readWebpage{
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

func (t *readWebpage) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "read_webpage",
		Description: "Fetch and read the content of a web page.",
		Parameters: map[string]toolregistry.Parameter{
			"url": {Type: "string", Description: "URL of the web page to read."},
		},
		Output: "The text content of the web page.",
	}
}

func (t *readWebpage) Execute(ctx context.Context, input map[string]any) (string, error) {
	pageURL, err := stringArg(input, "url")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return fmt.Sprintf("Error: invalid URL %q, must start with http:// or https://", pageURL), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Sprintf("Error fetching webpage: %v", err), nil
	}
	req.Header.Set("User-Agent", "reagent/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error fetching webpage: %v", err), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error fetching webpage: %s returned status %d", pageURL, resp.StatusCode), nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error parsing webpage: %v", err), nil
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", title)
	}
	doc.Find("h1, h2, h3, h4, p, li, pre, td").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n")
	})

	content := b.String()
	if content == "" {
		content = strings.TrimSpace(doc.Text())
	}
	if len(content) > maxWebpageOutput {
		content = content[:maxWebpageOutput] + "\n... (truncated)"
	}
	if content == "" {
		return fmt.Sprintf("No readable text content found at %s", pageURL), nil
	}
	return content, nil
}
