package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout bounds a single article fetch.
const DefaultTimeout = 10 * time.Second

func New(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return Fetcher{
		client: client,
	}
}

// Fetcher downloads an article and reduces it to plain text.
type Fetcher struct {
	client *http.Client
}

func (f Fetcher) Article(ctx context.Context, articleURL string) (text string, err error) {
	u, err := url.Parse(articleURL)
	if err != nil {
		return "", fmt.Errorf("fetch: parse URL failed: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("fetch: parse URL failed: invalid scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("fetch: create request failed: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: article fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch: article fetch failed: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "text/plain") {
		return "", fmt.Errorf("fetch: unsupported content type %q", contentType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch: parse HTML failed: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return normalize(doc.Text()), nil
	}
	return normalize(body.Text()), nil
}

// normalize collapses runs of whitespace left behind by removed markup.
func normalize(s string) string {
	var sb strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(strings.Fields(line), " "))
	}
	return sb.String()
}
