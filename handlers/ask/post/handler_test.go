package post

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/fetch"
	"github.com/a-h/docqa/generate"
	"github.com/a-h/docqa/metrics"
	"github.com/a-h/docqa/models"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	content string
	err     error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.content, f.err
}

type fakeStore struct {
	results []db.Result
	err     error
}

func (s *fakeStore) ResultPut(ctx context.Context, r db.Result) error {
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, r)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newAuthenticated(h http.Handler) http.Handler {
	return auth.New(map[string]string{"test-api-key": "test-partition"}, h)
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	contents []byte
}

func newMultipartRequest(t *testing.T, fields []formField, files []formFile) *http.Request {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			t.Fatalf("failed to write field %s: %v", f.name, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", f.filename, err)
		}
		if _, err := part.Write(f.contents); err != nil {
			t.Fatalf("failed to write file part %s: %v", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/ask", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test-api-key")
	return req
}

func newDocx(t *testing.T, text string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	document := fmt.Sprintf(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`, text)
	if _, err := w.Write([]byte(document)); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestAskWithDocument(t *testing.T) {
	store := &fakeStore{}
	g := generate.New(&fakeModel{content: "42"}, generate.DefaultPrompts(), metrics.New())
	h := newAuthenticated(New(newTestLogger(), g, fetch.New(nil), store))

	req := newMultipartRequest(t,
		[]formField{{name: "question", value: "What is the answer?"}},
		[]formFile{{field: "file", filename: "answers.docx", contents: newDocx(t, "The answer to everything is 42.")}},
	)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.AskPostResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "42" {
		t.Errorf("expected answer %q, got %q", "42", resp.Answer)
	}
	if len(store.results) != 1 {
		t.Fatalf("expected 1 stored result, got %d", len(store.results))
	}
	if store.results[0].Kind != string(models.ResultKindAsk) {
		t.Errorf("expected result kind %q, got %q", models.ResultKindAsk, store.results[0].Kind)
	}
	if store.results[0].Partition != "test-partition" {
		t.Errorf("expected result partition %q, got %q", "test-partition", store.results[0].Partition)
	}
}

func TestAskWithURL(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>A long article.</p></body></html>"))
	}))
	defer article.Close()

	tests := []struct {
		name     string
		question string
		content  string
	}{
		{
			name:     "url without a question summarizes the article",
			question: "",
			content:  "A short summary.",
		},
		{
			name:     "url with a question answers against the article",
			question: "What is it about?",
			content:  "It is about an article.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			g := generate.New(&fakeModel{content: tt.content}, generate.DefaultPrompts(), metrics.New())
			h := newAuthenticated(New(newTestLogger(), g, fetch.New(article.Client()), store))

			fields := []formField{{name: "url", value: article.URL}}
			if tt.question != "" {
				fields = append(fields, formField{name: "question", value: tt.question})
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, newMultipartRequest(t, fields, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp models.AskPostResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Answer != tt.content {
				t.Errorf("expected answer %q, got %q", tt.content, resp.Answer)
			}
		})
	}
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields []formField
		files  []formFile
	}{
		{
			name: "empty form returns 400",
		},
		{
			name:   "question without file or url returns 400",
			fields: []formField{{name: "question", value: "What is the answer?"}},
		},
		{
			name:  "file without question returns 400",
			files: []formFile{{field: "file", filename: "answers.docx", contents: []byte("irrelevant")}},
		},
		{
			name:   "unsupported file type returns 400",
			fields: []formField{{name: "question", value: "What is the answer?"}},
			files:  []formFile{{field: "file", filename: "answers.txt", contents: []byte("The answer is 42.")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			g := generate.New(&fakeModel{content: "42"}, generate.DefaultPrompts(), metrics.New())
			h := newAuthenticated(New(newTestLogger(), g, fetch.New(nil), store))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newMultipartRequest(t, tt.fields, tt.files))

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if len(store.results) != 0 {
				t.Errorf("expected no stored results, got %d", len(store.results))
			}
		})
	}
}

func TestAskLLMFailureReturns500(t *testing.T) {
	store := &fakeStore{}
	g := generate.New(&fakeModel{err: fmt.Errorf("model unavailable")}, generate.DefaultPrompts(), metrics.New())
	h := newAuthenticated(New(newTestLogger(), g, fetch.New(nil), store))

	req := newMultipartRequest(t,
		[]formField{{name: "question", value: "What is the answer?"}},
		[]formFile{{field: "file", filename: "answers.docx", contents: newDocx(t, "The answer is 42.")}},
	)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAskWithoutAuthReturns401(t *testing.T) {
	store := &fakeStore{}
	g := generate.New(&fakeModel{content: "42"}, generate.DefaultPrompts(), metrics.New())
	h := newAuthenticated(New(newTestLogger(), g, fetch.New(nil), store))

	req := newMultipartRequest(t, []formField{{name: "question", value: "q"}}, nil)
	req.Header.Del("Authorization")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestAskStoreFailureStillReturnsAnswer(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("rqlite unavailable")}
	g := generate.New(&fakeModel{content: "42"}, generate.DefaultPrompts(), metrics.New())
	h := newAuthenticated(New(newTestLogger(), g, fetch.New(nil), store))

	req := newMultipartRequest(t,
		[]formField{{name: "question", value: "What is the answer?"}},
		[]formFile{{field: "file", filename: "answers.docx", contents: newDocx(t, "The answer is 42.")}},
	)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "42") {
		t.Errorf("expected answer in body, got %s", w.Body.String())
	}
}
