package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/generate"
	"github.com/a-h/docqa/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

type ResultPutter interface {
	ResultPut(ctx context.Context, r db.Result) error
}

func New(log *slog.Logger, generator generate.Generator, queries ResultPutter) Handler {
	return Handler{
		log:       log,
		generator: generator,
		queries:   queries,
	}
}

type Handler struct {
	log       *slog.Logger
	generator generate.Generator
	queries   ResultPutter
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	partition, ok := auth.GetPartition(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.QAPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	req.Context = strings.TrimSpace(req.Context)
	if req.Question == "" || req.Context == "" {
		respond.WithError(w, "both 'question' and 'context' are required", http.StatusBadRequest)
		return
	}

	// If this is a test API key, don't use the LLM.
	answer := TestAnswer
	if partition != "test-partition-no-llm" {
		answer, err = h.generator.Answer(r.Context(), req.Question, req.Context)
		if err != nil {
			h.log.Error("failed to generate content", slog.Any("error", err))
			respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
			return
		}
	}

	err = h.queries.ResultPut(r.Context(), db.Result{
		ID:        uuid.NewString(),
		Partition: partition,
		Kind:      string(models.ResultKindQA),
		Input:     req.Question,
		Output:    answer,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("failed to store result", slog.Any("error", err))
	}

	respond.WithJSON(w, models.QAPostResponse{Answer: answer}, http.StatusOK)
}

// TestAnswer is returned to the test API key so that integrations can be
// verified without an LLM.
const TestAnswer = "Hello! I'm a test answer. If you can see me, your integration is working."
