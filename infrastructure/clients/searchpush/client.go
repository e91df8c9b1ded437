package searchpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result mirrors the Baidu-style URL submission response
type Result struct {
	Success     int `json:"success"`
	Remain      int `json:"remain"`
	NotSameSite int `json:"not_same_site"`
	NotValid    int `json:"not_valid"`
}

// Client submits newly published URLs to a search-engine push API
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, httpClient: &http.Client{Timeout: timeout}}
}

// Submit posts the URLs newline-joined as text/plain, the format the push API expects
func (c *Client) Submit(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return &Result{}, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(strings.Join(urls, "\n")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push API returned status %d: %s", resp.StatusCode, string(raw))
	}
	result := &Result{}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("push API returned non-JSON: %s", string(raw))
	}
	return result, nil
}
