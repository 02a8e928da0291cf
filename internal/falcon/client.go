package falcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const graphQLPath = "/identity-protection/combined/graphql/v1"

// APIError is one entry of the errors array in a Falcon or GraphQL response.
type APIError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// ResponseBody is the decoded JSON body of a GraphQL call.
type ResponseBody struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []APIError      `json:"errors,omitempty"`
}

// Response pairs the upstream status code with its body. Non-2xx statuses are
// returned as a Response, not an error, so callers can forward them.
type Response struct {
	StatusCode int
	Body       ResponseBody
}

// Client calls the Falcon Identity Protection API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Options configures NewClient.
type Options struct {
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
}

// NewClient builds a client whose HTTP transport attaches a bearer token from
// the configured credentials.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = CloudUS1.BaseURL()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	base := &http.Client{Timeout: opts.Timeout}
	ts, err := opts.Credentials.TokenSource(ctx, opts.BaseURL, base)
	if err != nil {
		return nil, err
	}
	return NewClientWithTokenSource(opts.BaseURL, ts, opts.Timeout), nil
}

// NewClientWithTokenSource builds a client over an explicit token source.
func NewClientWithTokenSource(baseURL string, ts oauth2.TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
		},
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQL posts query with variables. A transport failure, a token failure or
// an undecodable body is returned as an error.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+graphQLPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read graphql response: %w", err)
	}
	out := &Response{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out.Body); err != nil {
		return nil, fmt.Errorf("decode graphql response (status %d): %w", resp.StatusCode, err)
	}
	return out, nil
}
