package post

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/extract"
	"github.com/a-h/docqa/fetch"
	"github.com/a-h/docqa/generate"
	"github.com/a-h/docqa/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

// MaxUploadBytes caps the multipart form, uploaded document included.
const MaxUploadBytes = 16 << 20

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

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		h.log.Error("failed to parse multipart form", slog.Any("error", err))
		respond.WithError(w, "failed to parse form: upload too large or malformed", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	articleURL := strings.TrimSpace(r.FormValue("url"))

	file, header, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.log.Error("failed to read form file", slog.Any("error", err))
		respond.WithError(w, "failed to read file", http.StatusBadRequest)
		return
	}
	if file != nil {
		defer file.Close()
	}

	var answer, input string
	switch {
	case articleURL != "":
		input = articleURL
		text, err := h.fetcher.Article(r.Context(), articleURL)
		if err != nil {
			h.log.Error("failed to fetch article", slog.String("url", articleURL), slog.Any("error", err))
			respond.WithError(w, "failed to fetch article", http.StatusInternalServerError)
			return
		}
		if question == "" {
			answer, err = h.generator.Summarize(r.Context(), text)
		} else {
			input = question
			answer, err = h.generator.Answer(r.Context(), question, text)
		}
		if err != nil {
			h.log.Error("failed to generate content", slog.Any("error", err))
			respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
			return
		}
	case file != nil:
		if question == "" {
			respond.WithError(w, "please provide a question or an article URL", http.StatusBadRequest)
			return
		}
		input = question
		text, err := extract.Text(r.Context(), header.Filename, file, header.Size)
		if err != nil {
			if errors.Is(err, extract.ErrUnsupportedFileType) {
				respond.WithError(w, "only PDF and DOCX files are supported", http.StatusBadRequest)
				return
			}
			h.log.Error("failed to extract document text", slog.String("filename", header.Filename), slog.Any("error", err))
			respond.WithError(w, "failed to extract document text", http.StatusInternalServerError)
			return
		}
		answer, err = h.generator.Answer(r.Context(), question, text)
		if err != nil {
			h.log.Error("failed to generate content", slog.Any("error", err))
			respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
			return
		}
	default:
		respond.WithError(w, "please provide a question, an article URL, or a document", http.StatusBadRequest)
		return
	}

	// History is best effort. The caller already has their answer, so a
	// storage failure is logged rather than surfaced.
	err = h.queries.ResultPut(r.Context(), db.Result{
		ID:        uuid.NewString(),
		Partition: partition,
		Kind:      string(models.ResultKindAsk),
		Input:     input,
		Output:    answer,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("failed to store result", slog.Any("error", err))
	}

	respond.WithJSON(w, models.AskPostResponse{Answer: answer}, http.StatusOK)
}
