package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve     ServeCommand     `cmd:"serve" help:"Start the docqa server."`
	Ask       AskCommand       `cmd:"ask" help:"Ask a question about a document or article."`
	QA        QACommand        `cmd:"qa" help:"Answer a question against provided context."`
	Summarize SummarizeCommand `cmd:"summarize" help:"Summarize an article or text."`
	Results   ResultsCommand   `cmd:"results" help:"List recent results."`
	Console   ConsoleCommand   `cmd:"console" help:"Interactive ask/summarize console."`
	Batch     BatchCommand     `cmd:"batch" help:"Summarize every record in a Pocketbase collection."`
	Version   VersionCommand   `cmd:"version" help:"Print the version of docqa."`
}

func main() {
	_ = godotenv.Load()
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
