package models

type AskPostResponse struct {
	Answer string `json:"answer"`
}
