package types

// SuggestRequest is the body of POST /api/gemini.
type SuggestRequest struct {
	Existing []string `json:"existing"`
	Count    int      `json:"count"`
	Mood     string   `json:"mood,omitempty"`
}

// SuggestResponse is the 200 body of POST /api/gemini.
type SuggestResponse struct {
	Items []string `json:"items"`
	Model string   `json:"model"`
}

// ErrorResponse is the JSON error body used by the /api routes.
type ErrorResponse struct {
	Error string `json:"error"`
}
