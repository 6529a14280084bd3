package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/console"
	"github.com/a-h/docqa/models"
)

type SummarizeCommand struct {
	ServerURL string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey    string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	URL       string `help:"The URL of an article to summarize."`
	Text      string `help:"The text to summarize."`
	TextFile  string `help:"A file to read the text from."`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c SummarizeCommand) Run(ctx context.Context) (err error) {
	text := c.Text
	if c.TextFile != "" {
		contents, err := os.ReadFile(c.TextFile)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(contents)
	}

	dc := client.New(c.ServerURL, c.APIKey)
	ctrl := console.NewSummary(console.DisplayFunc(func(text string) {
		fmt.Println(text)
	}))
	ctrl.Submit(ctx, func(ctx context.Context) (string, error) {
		resp, err := dc.SummarizePost(ctx, models.SummarizePostRequest{
			URL:  c.URL,
			Text: text,
		})
		return resp.Summary, err
	})
	return nil
}
