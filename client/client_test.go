package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/docqa/models"
	"github.com/a-h/jsonapi"
)

func TestAskPost(t *testing.T) {
	var gotQuestion, gotFilename, gotFileContents, gotAuth string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			t.Errorf("expected POST /ask, got %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
			t.Errorf("expected multipart content type, got %q", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		gotQuestion = r.FormValue("question")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := make([]byte, header.Size)
		file.Read(buf)
		gotFileContents = string(buf)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.AskPostResponse{Answer: "42"})
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	resp, err := c.AskPost(context.Background(), AskRequest{
		Question: "What is the answer?",
		File: &AskFile{
			Name:     "answers.pdf",
			Contents: strings.NewReader("file-bytes"),
		},
	})
	if err != nil {
		t.Fatalf("failed to post ask: %v", err)
	}
	if resp.Answer != "42" {
		t.Errorf("expected answer %q, got %q", "42", resp.Answer)
	}
	if gotQuestion != "What is the answer?" {
		t.Errorf("expected question field, got %q", gotQuestion)
	}
	if gotFilename != "answers.pdf" {
		t.Errorf("expected filename %q, got %q", "answers.pdf", gotFilename)
	}
	if gotFileContents != "file-bytes" {
		t.Errorf("expected file contents %q, got %q", "file-bytes", gotFileContents)
	}
	if gotAuth != "test-api-key" {
		t.Errorf("expected Authorization header, got %q", gotAuth)
	}
}

func TestAskPostNonSuccessStatus(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	_, err := c.AskPost(context.Background(), AskRequest{Question: "q", URL: "http://example.com"})
	var statusErr jsonapi.InvalidStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected InvalidStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", statusErr.Status)
	}
}

func TestSummarizePost(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/summarize" {
			t.Errorf("expected POST /summarize, got %s %s", r.Method, r.URL.Path)
		}
		var req models.SummarizePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.URL != "http://example.com" {
			t.Errorf("expected url field, got %q", req.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SummarizePostResponse{Summary: "A short summary."})
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	resp, err := c.SummarizePost(context.Background(), models.SummarizePostRequest{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("failed to post summarize: %v", err)
	}
	if resp.Summary != "A short summary." {
		t.Errorf("expected summary %q, got %q", "A short summary.", resp.Summary)
	}
}

func TestQAPost(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/qa" {
			t.Errorf("expected POST /qa, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.QAPostResponse{Answer: "42"})
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	resp, err := c.QAPost(context.Background(), models.QAPostRequest{Question: "q", Context: "c"})
	if err != nil {
		t.Fatalf("failed to post qa: %v", err)
	}
	if resp.Answer != "42" {
		t.Errorf("expected answer %q, got %q", "42", resp.Answer)
	}
}

func TestResultsGetNotFound(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	_, err := c.ResultsGet(context.Background())
	var statusErr jsonapi.InvalidStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected InvalidStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", statusErr.Status)
	}
}

func TestResultsGet(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/results" {
			t.Errorf("expected GET /results, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ResultsGetResponse{
			Results: []models.Result{{ID: "id-1", Kind: models.ResultKindQA, Input: "q", Output: "42"}},
		})
	}))
	defer s.Close()

	c := New(s.URL, "test-api-key")
	resp, err := c.ResultsGet(context.Background())
	if err != nil {
		t.Fatalf("failed to get results: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "id-1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}
