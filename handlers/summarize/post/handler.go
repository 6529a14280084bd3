package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/fetch"
	"github.com/a-h/docqa/generate"
	"github.com/a-h/docqa/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

type ResultPutter interface {
	ResultPut(ctx context.Context, r db.Result) error
}

func New(log *slog.Logger, generator generate.Generator, fetcher fetch.Fetcher, queries ResultPutter) Handler {
	return Handler{
		log:       log,
		generator: generator,
		fetcher:   fetcher,
		queries:   queries,
	}
}

type Handler struct {
	log       *slog.Logger
	generator generate.Generator
	fetcher   fetch.Fetcher
	queries   ResultPutter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	partition, ok := auth.GetPartition(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.SummarizePostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Text = strings.TrimSpace(req.Text)
	if (req.URL == "") == (req.Text == "") {
		respond.WithError(w, "exactly one of 'url' and 'text' is required", http.StatusBadRequest)
		return
	}

	input := req.URL
	text := req.Text
	if req.URL != "" {
		text, err = h.fetcher.Article(r.Context(), req.URL)
		if err != nil {
			h.log.Error("failed to fetch article", slog.String("url", req.URL), slog.Any("error", err))
			respond.WithError(w, "failed to fetch article", http.StatusInternalServerError)
			return
		}
	}

	// If this is a test API key, don't use the LLM.
	summary := TestSummary
	if partition != "test-partition-no-llm" {
		summary, err = h.generator.Summarize(r.Context(), text)
		if err != nil {
			h.log.Error("failed to generate summary", slog.Any("error", err))
			respond.WithError(w, "failed to generate summary", http.StatusInternalServerError)
			return
		}
	}

	if input == "" {
		input = truncate(text, 200)
	}
	err = h.queries.ResultPut(r.Context(), db.Result{
		ID:        uuid.NewString(),
		Partition: partition,
		Kind:      string(models.ResultKindSummarize),
		Input:     input,
		Output:    summary,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("failed to store result", slog.Any("error", err))
	}

	respond.WithJSON(w, models.SummarizePostResponse{Summary: summary}, http.StatusOK)
}

// TestSummary is returned to the test API key so that integrations can be
// verified without an LLM.
const TestSummary = "A test summary. If you can see me, your integration is working."

// truncate cuts s to at most max bytes, never splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
