package compile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("asmlens.compile")

// DefaultTimeout bounds a single compile call.
const DefaultTimeout = 30 * time.Second

// maxResponseSize guards against runaway listings.
const maxResponseSize = 64 << 20

// Service compiles requests.
type Service interface {
	Compile(ctx context.Context, req Request) (*Result, error)
}

// Client posts requests to an HTTP compile endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

var _ Service = (*Client)(nil)

// NewClient creates a client for endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// Compile sends req and decodes the result.
//
// Any failure to obtain a decoded result is reported as an error; compile
// errors in the source are part of a successful Result.
func (client *Client) Compile(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, client.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")

	log.Debugf("POST %s slot=%d compiler=%s", client.Endpoint, req.Slot, req.Compiler)
	resp, err := client.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting to %s: %w", client.Endpoint, err)
	}
	defer resp.Body.Close()

	var result Result
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Compilers fetches the compiler catalog from url.
func (client *Client) Compilers(ctx context.Context, url string) (*Catalog, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", url)
	resp, err := client.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	var catalog Catalog
	if err := decodeResponse(resp, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func decodeResponse(resp *http.Response, v any) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("compile service returned %s", resp.Status)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
