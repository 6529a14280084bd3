package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/models"
	"github.com/a-h/respond"
)

type ResultsReader interface {
	ResultsRecent(ctx context.Context, args db.ResultsRecentArgs) ([]db.Result, error)
}

func New(log *slog.Logger, queries ResultsReader, maxResults int) Handler {
	return Handler{
		log:        log,
		queries:    queries,
		maxResults: maxResults,
	}
}

type Handler struct {
	log        *slog.Logger
	queries    ResultsReader
	maxResults int
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	partition, ok := auth.GetPartition(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	results, err := h.queries.ResultsRecent(r.Context(), db.ResultsRecentArgs{
		Partition: partition,
		Limit:     h.maxResults,
	})
	if err != nil {
		h.log.Error("failed to get recent results", slog.Any("error", err))
		respond.WithError(w, "failed to get recent results", http.StatusInternalServerError)
		return
	}

	resp := models.ResultsGetResponse{
		Results: make([]models.Result, len(results)),
	}
	for i, result := range results {
		resp.Results[i] = models.Result{
			ID:        result.ID,
			Kind:      models.ResultKind(result.Kind),
			Input:     result.Input,
			Output:    result.Output,
			CreatedAt: result.CreatedAt,
		}
	}

	respond.WithJSON(w, resp, http.StatusOK)
}
