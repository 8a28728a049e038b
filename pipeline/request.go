package pipeline

type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}

// Pipeline classifies one document and sends its JSON response.
type Pipeline func(request Request) <-chan string
