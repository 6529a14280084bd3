package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/a-h/docqa/models"
	"github.com/a-h/jsonapi"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

// AskRequest is the multipart submission to /ask: a question against an
// uploaded document, or a question (or none, for a summary) against a URL.
type AskRequest struct {
	Question string
	URL      string
	File     *AskFile
}

type AskFile struct {
	Name     string
	Contents io.Reader
}

func (c Client) AskPost(ctx context.Context, req AskRequest) (resp models.AskPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("ask").String()
	if err != nil {
		return resp, err
	}

	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	if req.Question != "" {
		if err = w.WriteField("question", req.Question); err != nil {
			return resp, fmt.Errorf("failed to write question field: %w", err)
		}
	}
	if req.URL != "" {
		if err = w.WriteField("url", req.URL); err != nil {
			return resp, fmt.Errorf("failed to write url field: %w", err)
		}
	}
	if req.File != nil {
		part, err := w.CreateFormFile("file", req.File.Name)
		if err != nil {
			return resp, fmt.Errorf("failed to create file field: %w", err)
		}
		if _, err = io.Copy(part, req.File.Contents); err != nil {
			return resp, fmt.Errorf("failed to copy file contents: %w", err)
		}
	}
	if err = w.Close(); err != nil {
		return resp, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}
	// The content type must be passed as an option, since options are
	// applied after the default application/json middleware.
	res, err := jsonapi.Raw(httpReq,
		jsonapi.WithContentType(w.FormDataContentType()),
		jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return resp, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return resp, jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func (c Client) QAPost(ctx context.Context, req models.QAPostRequest) (resp models.QAPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("qa").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.QAPostRequest, models.QAPostResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

func (c Client) SummarizePost(ctx context.Context, req models.SummarizePostRequest) (resp models.SummarizePostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("summarize").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.SummarizePostRequest, models.SummarizePostResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

func (c Client) ResultsGet(ctx context.Context) (resp models.ResultsGetResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("results").String()
	if err != nil {
		return resp, err
	}
	resp, ok, err := jsonapi.Get[models.ResultsGetResponse](ctx, url, jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return resp, err
	}
	if !ok {
		return resp, jsonapi.InvalidStatusError{Status: http.StatusNotFound}
	}
	return resp, nil
}
