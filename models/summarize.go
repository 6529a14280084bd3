package models

type SummarizePostRequest struct {
	// URL of an article to fetch and summarize. Mutually exclusive with Text.
	URL string `json:"url,omitempty"`

	// Text to summarize directly.
	Text string `json:"text,omitempty"`
}

type SummarizePostResponse struct {
	Summary string `json:"summary"`
}
