package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/docqa/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	temperature      = 0.3
	answerMaxTokens  = 500
	summaryMaxTokens = 300
)

func New(llm llms.Model, prompts Prompts, m *metrics.Metrics) Generator {
	return Generator{
		llm:           llm,
		prompts:       prompts,
		metrics:       m,
		maxChunkChars: 8000,
	}
}

// Generator produces answers and summaries from a chat model.
type Generator struct {
	llm           llms.Model
	prompts       Prompts
	metrics       *metrics.Metrics
	maxChunkChars int
}

func (g Generator) Answer(ctx context.Context, question, contextText string) (answer string, err error) {
	prompt := fmt.Sprintf(g.prompts.AnswerUser, contextText, question)
	return g.generate(ctx, "answer", g.prompts.AnswerSystem, prompt, answerMaxTokens)
}

// Summarize reduces text to a short summary. Text longer than the model can
// usefully take in one call is split into chunks, each chunk is summarized,
// and the combined chunk summaries are summarized again.
func (g Generator) Summarize(ctx context.Context, text string) (summary string, err error) {
	if len(text) <= g.maxChunkChars {
		return g.summarizeOnce(ctx, text)
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(g.maxChunkChars),
		textsplitter.WithChunkOverlap(g.maxChunkChars/40),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return "", fmt.Errorf("generate: failed to split text: %w", err)
	}
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		if parts[i], err = g.summarizeOnce(ctx, chunk); err != nil {
			return "", err
		}
	}
	return g.summarizeOnce(ctx, strings.Join(parts, "\n"))
}

func (g Generator) summarizeOnce(ctx context.Context, text string) (summary string, err error) {
	prompt := fmt.Sprintf(g.prompts.SummaryUser, text)
	return g.generate(ctx, "summarize", g.prompts.SummarySystem, prompt, summaryMaxTokens)
}

func (g Generator) generate(ctx context.Context, operation, systemPrompt, userPrompt string, maxTokens int) (text string, err error) {
	start := time.Now()
	defer g.metrics.ObserveLLM(operation, start)
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}, llms.WithTemperature(temperature), llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", fmt.Errorf("generate: failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
