package generate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const answerSystemPrompt = `You are a helpful assistant. You are provided with context and a question. You always use the context to answer the question. If you don't know the answer, you say that you don't know, and don't try to make up an answer.`

const answerUserPrompt = `Context: %s

Question: %s`

const summarySystemPrompt = `You are a helpful summarizer. You produce short, accurate summaries that respect the reader's time.`

const summaryUserPrompt = `Summarize the following text:
%s`

// Prompts is the prompt pack used for generation. The user prompts are
// fmt format strings: AnswerUser takes context then question, SummaryUser
// takes the text.
type Prompts struct {
	AnswerSystem  string `yaml:"answerSystem"`
	AnswerUser    string `yaml:"answerUser"`
	SummarySystem string `yaml:"summarySystem"`
	SummaryUser   string `yaml:"summaryUser"`
}

func DefaultPrompts() Prompts {
	return Prompts{
		AnswerSystem:  answerSystemPrompt,
		AnswerUser:    answerUserPrompt,
		SummarySystem: summarySystemPrompt,
		SummaryUser:   summaryUserPrompt,
	}
}

// LoadPrompts reads a YAML prompt pack, filling any field left empty with
// the default prompt.
func LoadPrompts(filename string) (p Prompts, err error) {
	p = DefaultPrompts()
	if filename == "" {
		return p, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return p, fmt.Errorf("generate: failed to read prompt pack %s: %w", filename, err)
	}
	var loaded Prompts
	if err = yaml.Unmarshal(contents, &loaded); err != nil {
		return p, fmt.Errorf("generate: failed to parse prompt pack %s: %w", filename, err)
	}
	if loaded.AnswerSystem != "" {
		p.AnswerSystem = loaded.AnswerSystem
	}
	if loaded.AnswerUser != "" {
		p.AnswerUser = loaded.AnswerUser
	}
	if loaded.SummarySystem != "" {
		p.SummarySystem = loaded.SummarySystem
	}
	if loaded.SummaryUser != "" {
		p.SummaryUser = loaded.SummaryUser
	}
	return p, nil
}
