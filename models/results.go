package models

import "time"

type ResultKind string

const (
	ResultKindAsk       ResultKind = "ask"
	ResultKindQA        ResultKind = "qa"
	ResultKindSummarize ResultKind = "summarize"
)

type Result struct {
	ID        string     `json:"id"`
	Kind      ResultKind `json:"kind"`
	Input     string     `json:"input"`
	Output    string     `json:"output"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ResultsGetResponse struct {
	Results []Result `json:"results"`
}
