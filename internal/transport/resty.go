package transport

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// RestyClient implements Client on a shared resty session so that
// connections are reused across pages and jobs.
type RestyClient struct {
	client *resty.Client
}

// NewResty constructs the default API client.
func NewResty(cfg Config) *RestyClient {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeaders(defaultHeaders(cfg.UserAgent))
	return &RestyClient{client: client}
}

// Get performs one GET request. Non-2xx responses are not errors.
func (c *RestyClient) Get(ctx context.Context, url string) (Response, error) {
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Response{}, fmt.Errorf("get %s: %w", url, err)
	}
	return Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}
