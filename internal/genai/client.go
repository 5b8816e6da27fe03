// Package genai talks to the external text-generation HTTP API. Three things
// are built on top of the raw client: the rule-to-query translator
// (BuildQuery), per-customer message personalization (BuildCampaignMessage),
// and campaign template suggestion (SuggestTemplate).
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Wire types for the generation API:
// request  {contents:[{role,parts:[{text}]}]}
// response {candidates:[{content:{parts:[{text}]}}]}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// now is injectable so date-relative rewrites are testable.
	now func() time.Time
}

func NewClient(baseURL, apiKey string, timeoutMs int) *Client {
	if timeoutMs <= 0 {
		timeoutMs = 15000
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		now:     time.Now,
	}
}

var errNoContent = fmt.Errorf("generation service returned no usable content")

// generate sends one user prompt and returns the first candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("generation service status=%d body=%s", res.StatusCode, raw)
	}

	var gr generateResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", errNoContent
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errNoContent
	}

	return text, nil
}
