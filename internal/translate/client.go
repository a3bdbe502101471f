package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultURL    = "https://libretranslate.com"
	DefaultSource = "en"
	DefaultTarget = "ru"
)

// Client talks to a LibreTranslate-compatible /translate endpoint. All
// segments of a call are sent in a single request.
type Client struct {
	baseURL    string
	source     string
	target     string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	Source  string
	Target  string
	APIKey  string
}

type translateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText []string `json:"translatedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	source := cfg.Source
	if source == "" {
		source = DefaultSource
	}
	target := cfg.Target
	if target == "" {
		target = DefaultTarget
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		source:     source,
		target:     target,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Translate returns the translation of every segment, in order.
func (c *Client) Translate(ctx context.Context, segments []string) ([]string, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(translateRequest{
		Q:      segments,
		Source: c.source,
		Target: c.target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("translate returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("translate returned status %d", resp.StatusCode)
	}

	var decoded translateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode translate payload: %w", err)
	}

	return decoded.TranslatedText, nil
}
