package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/console"
)

type AskCommand struct {
	ServerURL string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey    string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	Question  string `help:"The question to ask." short:"q"`
	URL       string `help:"The URL of an article to ask about."`
	File      string `help:"The path of a PDF or DOCX document to ask about." short:"f"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	req := client.AskRequest{
		Question: c.Question,
		URL:      c.URL,
	}
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		req.File = &client.AskFile{
			Name:     filepath.Base(c.File),
			Contents: f,
		}
	}

	dc := client.New(c.ServerURL, c.APIKey)
	ctrl := console.NewQA(console.DisplayFunc(func(text string) {
		fmt.Println(text)
	}))
	ctrl.Submit(ctx, func(ctx context.Context) (string, error) {
		resp, err := dc.AskPost(ctx, req)
		return resp.Answer, err
	})
	return nil
}
