package models

type QAPostRequest struct {
	// Question to answer.
	Question string `json:"question"`

	// Context the answer must be drawn from.
	Context string `json:"context"`
}

type QAPostResponse struct {
	Answer string `json:"answer"`
}
