package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Source is a datasource.Source that downloads a URL.
type Source struct {
	client *Client
	url    string
}

// NewSource binds url to client. A nil client gets the defaults.
func NewSource(client *Client, url string) *Source {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Source{client: client, url: url}
}

// Open issues a GET and returns the body. Any non-2xx status is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.url, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}
