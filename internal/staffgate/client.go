package staffgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client invokes privileged serverless function endpoints over HTTPS with a
// bearer token. It is the alternate persistence transport used when a staff
// identity context must bypass the normal agency-scoped write path.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FromEnv builds a client from STAFF_FN_URL / STAFF_FN_TOKEN, or nil when the
// staff gate is not configured.
func FromEnv() *Client {
	url := os.Getenv("STAFF_FN_URL")
	if url == "" {
		return nil
	}
	return New(url, os.Getenv("STAFF_FN_TOKEN"))
}

// Invoke POSTs a JSON payload to the named function and decodes the JSON
// response into out (when out is non-nil). Non-2xx responses are returned as
// errors with the response body included.
func (c *Client) Invoke(ctx context.Context, fn string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", fn, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+fn, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", fn, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("function %s returned %d: %s", fn, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode %s response: %w", fn, err)
		}
	}
	return nil
}
