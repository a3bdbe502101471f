package jservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultURL    = "http://jservice.io/api/random"
	defaultAmount = 5
)

var ErrMissingValue = errors.New("question value is missing")

// RawQuestion mirrors a jService clue. Value is kept raw so a malformed value
// only invalidates its own record.
type RawQuestion struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Value    json.RawMessage `json:"value"`
}

// Points decodes the clue's point value.
func (r RawQuestion) Points() (int, error) {
	raw := strings.TrimSpace(string(r.Value))
	if raw == "" || raw == "null" {
		return 0, ErrMissingValue
	}

	var value int
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return 0, fmt.Errorf("question value %s: %w", raw, err)
	}
	return value, nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// FetchQuestions requests amount random clues.
func (c *Client) FetchQuestions(ctx context.Context, amount int) ([]RawQuestion, error) {
	if amount <= 0 {
		amount = defaultAmount
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	query := reqURL.Query()
	query.Set("count", strconv.Itoa(amount))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jservice returned status %d", resp.StatusCode)
	}

	var payload []RawQuestion
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode jservice payload: %w", err)
	}

	return payload, nil
}
