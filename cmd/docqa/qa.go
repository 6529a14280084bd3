package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/console"
	"github.com/a-h/docqa/models"
)

type QACommand struct {
	ServerURL   string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey      string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	Question    string `help:"The question to answer." short:"q"`
	Context     string `help:"The context to answer from."`
	ContextFile string `help:"A file to read the context from."`
	LogLevel    string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c QACommand) Run(ctx context.Context) (err error) {
	contextText := c.Context
	if c.ContextFile != "" {
		contents, err := os.ReadFile(c.ContextFile)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		contextText = string(contents)
	}

	dc := client.New(c.ServerURL, c.APIKey)
	ctrl := console.NewQA(console.DisplayFunc(func(text string) {
		fmt.Println(text)
	}))
	ctrl.Submit(ctx, func(ctx context.Context) (string, error) {
		resp, err := dc.QAPost(ctx, models.QAPostRequest{
			Question: c.Question,
			Context:  contextText,
		})
		return resp.Answer, err
	})
	return nil
}
