package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/docqa/auth"
	"github.com/a-h/docqa/db"
	"github.com/a-h/docqa/fetch"
	"github.com/a-h/docqa/generate"
	askpost "github.com/a-h/docqa/handlers/ask/post"
	qapost "github.com/a-h/docqa/handlers/qa/post"
	resultsget "github.com/a-h/docqa/handlers/results/get"
	summarizepost "github.com/a-h/docqa/handlers/summarize/post"
	"github.com/a-h/docqa/metrics"
	"github.com/rqlite/gorqlite"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	RqliteURL   string `help:"The URL of the rqlite server." env:"RQLITE_URL" default:"http://localhost:4001"`
	OllamaURL   string `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	ChatModel   string `help:"The model to generate answers and summaries with." env:"CHAT_MODEL" default:"mistral-nemo"`
	PromptPack  string `help:"A YAML file of prompt overrides." env:"PROMPT_PACK" default:""`
	MaxResults  int    `help:"The maximum number of history results to return." env:"MAX_RESULTS" default:"20"`
	ListenAddr  string `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	TLSCertFile string `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile  string `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	APIKeysFile string `help:"The file containing a JSON map of API keys to partition names." env:"API_KEYS_FILE" default:"apikeys.json"`
	LogLevel    string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	prompts, err := generate.LoadPrompts(c.PromptPack)
	if err != nil {
		return fmt.Errorf("failed to load prompt pack: %w", err)
	}

	log.Info("connecting to database", slog.String("url", c.RqliteURL))
	databaseURL, err := db.ParseRqliteURL(c.RqliteURL)
	if err != nil {
		return fmt.Errorf("failed to parse rqlite URL: %w", err)
	}
	conn, err := gorqlite.Open(databaseURL.DataSourceName())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()
	queries := db.New(conn)

	log.Info("migrating database schema", slog.String("url", databaseURL.MigrateDatabaseURL()))
	if err = db.Migrate(databaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("creating LLM client", slog.String("model", c.ChatModel))
	httpClient := &http.Client{}
	llmc, err := ollama.New(
		ollama.WithModel(c.ChatModel),
		ollama.WithHTTPClient(httpClient),
		ollama.WithServerURL(c.OllamaURL))
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}

	m := metrics.New()
	generator := generate.New(llmc, prompts, m)
	fetcher := fetch.New(&http.Client{Timeout: fetch.DefaultTimeout})

	mux := http.NewServeMux()
	mux.Handle("POST /ask", m.Wrap("ask", askpost.New(log, generator, fetcher, queries)))
	mux.Handle("POST /qa", m.Wrap("qa", qapost.New(log, generator, queries)))
	mux.Handle("POST /summarize", m.Wrap("summarize", summarizepost.New(log, generator, fetcher, queries)))
	mux.Handle("GET /results", m.Wrap("results", resultsget.New(log, queries, c.MaxResults)))

	apiKeyToPartition, err := auth.LoadFromFile(c.APIKeysFile)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	authenticatedMux := auth.New(apiKeyToPartition, mux)
	withCORSAuthenticatedMux := cors.AllowAll().Handler(authenticatedMux)

	root := http.NewServeMux()
	root.Handle("GET /metrics", m.Handler())
	root.Handle("/", withCORSAuthenticatedMux)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: root,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}
