package gemini

// promptData is the data passed to the prompt template.
type promptData struct {
	Term       string
	Definition string
	Count      int
}

// exampleResponse is the JSON document the model is asked to return.
type exampleResponse struct {
	Examples []string `json:"examples"`
}
