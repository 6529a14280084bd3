package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/a-h/docqa/client"
)

type ResultsCommand struct {
	ServerURL string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey    string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ResultsCommand) Run(ctx context.Context) (err error) {
	dc := client.New(c.ServerURL, c.APIKey)
	resp, err := dc.ResultsGet(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
