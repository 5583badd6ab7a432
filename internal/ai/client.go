package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the Gemini-style generateContent endpoint root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is used when the config does not name one.
const DefaultModel = "gemini-1.5-flash"

// Client calls a Gemini-style REST endpoint. Zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	model   string
	keys    Keyring
	http    *http.Client
}

// NewClient builds a Client. baseURL and model fall back to defaults
// when empty.
func NewClient(baseURL, model string, keys Keyring) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		keys:    keys,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends the prompt and returns the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, prompt string, task Task) (string, error) {
	key := c.keys.KeyFor(task)
	if key == "" {
		return "", fmt.Errorf("ai: no API key configured for task %q", task)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: Clip(prompt)}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ai: bad response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("ai: generate failed: %s", msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("ai: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
