// Package httpsource fetches dataset files from an HTTP mirror.
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	output "mnist-dashboard/internal/core/ports/output"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a DatasetSource reading <baseURL>/<name>.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var _ output.DatasetSource = (*Client)(nil)

func (c *Client) Name() string {
	return c.baseURL
}

// Open issues a GET for the named file and returns the response body.
func (c *Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create dataset request: %w", err)
	}

	log.WithFields(log.Fields{
		"method": http.MethodGet,
		"url":    url,
	}).Debug("fetching dataset file")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("dataset request %s: unexpected status %d", url, resp.StatusCode)
	}

	return resp.Body, nil
}
