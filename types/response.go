package types

type BaseResponse struct {
	DocId     string `json:"docId,omitempty"`
	Language  string `json:"language"`
	Direction string `json:"direction"`
}

type TaggingResponse struct {
	BaseResponse
	Sentences []Sentence `json:"sentences"`
}
