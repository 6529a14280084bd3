package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/models"
	"github.com/pluja/pocketbase"
	"github.com/tmc/langchaingo/documentloaders"
	"gopkg.in/yaml.v3"
)

type BatchCommand struct {
	ServerURL     string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey        string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	PocketbaseURL string `help:"The URL of the Pocketbase server." env:"POCKETBASE_URL" default:"http://localhost:8080"`
	ID            string `help:"The ID of the record to summarize if you just want a single record." env:"ID" default:""`
	Collection    string `help:"The name of the collection to summarize." env:"COLLECTION" default:"articles"`
	Files         string `help:"Comma separated list of fields that contain Pocketbase file references." env:"FILES" default:""`
	DryRun        bool   `help:"Do not actually summarize the records." env:"DRY_RUN" default:"false"`
	LogLevel      string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

type recordSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func (c BatchCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	dc := client.New(c.ServerURL, c.APIKey)
	enc := json.NewEncoder(os.Stdout)

	pbe := NewPocketbaseExporter(c.PocketbaseURL, pocketbase.NewClient(c.PocketbaseURL), c.Collection, c.Files)
	for record := range pbe.Export(ctx) {
		if c.ID != "" && record.ID != c.ID {
			continue
		}
		log.Info("summarizing record", slog.String("id", record.ID), slog.String("title", record.Title))
		if c.DryRun {
			log.Info("skipping record in dry run mode", slog.String("id", record.ID))
			continue
		}
		resp, err := dc.SummarizePost(ctx, models.SummarizePostRequest{
			Text: record.Text,
		})
		if err != nil {
			return fmt.Errorf("failed to summarize record %s: %w", record.ID, err)
		}
		if err = enc.Encode(recordSummary{
			ID:      record.ID,
			Title:   record.Title,
			Summary: resp.Summary,
		}); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return pbe.Error
}

func NewPocketbaseExporter(baseURL string, client *pocketbase.Client, collection, files string) *PocketbaseExporter {
	return &PocketbaseExporter{
		baseURL:    baseURL,
		client:     client,
		collection: collection,
		files:      strings.Split(files, ","),
		PageSize:   10,
		Error:      nil,
	}
}

type PocketbaseExporter struct {
	// baseURL for downloading files, e.g. http://localhost:8090
	baseURL    string
	client     *pocketbase.Client
	collection string
	files      []string
	PageSize   int
	Error      error
}

type ExportedRecord struct {
	ID    string
	Title string
	Text  string
}

func (p *PocketbaseExporter) Export(ctx context.Context) iter.Seq[ExportedRecord] {
	var page int
	return func(yield func(ExportedRecord) bool) {
		for {
			if ctx.Err() != nil {
				return
			}
			if p.Error != nil {
				return
			}
			page++
			response, err := p.client.List(p.collection, pocketbase.ParamsList{
				Page: page,
				Size: p.PageSize,
				Sort: "-created",
			})
			if err != nil {
				p.Error = err
				return
			}
			if len(response.Items) == 0 {
				return
			}
			for _, item := range response.Items {
				if !yield(p.createRecord(ctx, item)) {
					return
				}
			}
		}
	}
}

func useItemOrDefault(item map[string]any, keys []string, defaultValue string) string {
	for _, key := range keys {
		if value, ok := item[key].(string); ok && value != "" {
			return value
		}
	}
	return defaultValue
}

// serviceKeys are Pocketbase bookkeeping fields that carry no summarizable
// content.
var serviceKeys = []string{"id", "collectionId", "collectionName", "created", "updated", "expand"}

func (p *PocketbaseExporter) createRecord(ctx context.Context, item map[string]any) (record ExportedRecord) {
	record.ID, _ = item["id"].(string)
	record.Title = useItemOrDefault(item, []string{"title", "name"}, "Untitled")

	for _, key := range serviceKeys {
		delete(item, key)
	}

	sb := new(strings.Builder)
	_ = yaml.NewEncoder(sb).Encode(item)

	for _, fileFieldName := range p.files {
		if ctx.Err() != nil {
			return
		}
		fileNames, fileNamesFieldExists := item[fileFieldName].([]any)
		if !fileNamesFieldExists || len(fileNames) == 0 {
			continue
		}
		for _, fileName := range fileNames {
			fileName, ok := fileName.(string)
			if !ok {
				p.Error = fmt.Errorf("file name is not a string")
				continue
			}
			if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
				continue
			}
			fileText, err := p.getPDFText(ctx, p.collection, record.ID, fileName)
			if err != nil {
				p.Error = fmt.Errorf("failed to get file text: %w", err)
				continue
			}
			sb.WriteString(fileText)
		}
	}

	record.Text = sb.String()

	return
}

func (p *PocketbaseExporter) getPDFText(ctx context.Context, collection, id, filename string) (string, error) {
	downloadURL, err := createURL(p.baseURL, "api", "files", collection, id, filename)
	if err != nil {
		return "", fmt.Errorf("failed to create download URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	pdfFile, err := os.CreateTemp("", "docqa-batch-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer pdfFile.Close()
	defer os.Remove(pdfFile.Name())

	fileSize, err := io.Copy(pdfFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	pdf := documentloaders.NewPDF(pdfFile, fileSize)
	docs, err := pdf.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load PDF: %w", err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func createURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse baseURL: %w", err)
	}
	u.Path = strings.Join(pathSegments, "/")
	return u.String(), nil
}
