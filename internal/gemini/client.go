package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"

// Client calls the Generative Language REST API (v1 generateContent).
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return &Client{BaseURL: DefaultBaseURL, APIKey: apiKey, HTTP: &http.Client{}}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends prompt to model and returns the trimmed text of the
// first part of the first candidate. A response without text yields "".
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/models/" + url.PathEscape(model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				return "", errors.New(apiErr.Message)
			}
			return "", fmt.Errorf("HTTP %d for model %s", apiErr.Code, model)
		}
		return "", err
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response from %s: %w", model, err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	first := out.Candidates[0].Content
	if first == nil || len(first.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(first.Parts[0].Text), nil
}
