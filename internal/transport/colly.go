package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyClient implements Client with a cloned colly collector per
// request. The clones share one HTTP transport, so connections are
// reused while callbacks stay per-request.
type CollyClient struct {
	base      *colly.Collector
	userAgent string
	logger    *zap.Logger
}

// NewColly constructs a colly-backed API client.
func NewColly(cfg Config, logger *zap.Logger) *CollyClient {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	// The comment endpoint is revisited with different cursors; never
	// let the collector dedupe it.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyClient{
		base:      base,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Get performs one GET request via a collector clone. HTTP error
// statuses come back as a Response, not an error, matching the Client
// contract.
func (c *CollyClient) Get(ctx context.Context, rawURL string) (Response, error) {
	collector := c.base.Clone()

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	headers := defaultHeaders(c.userAgent)
	collector.OnRequest(func(r *colly.Request) {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{resp: Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}})
	})
	collector.OnError(func(r *colly.Response, err error) {
		// Colly reports non-2xx as errors; surface them as plain
		// responses so the engine applies its own status policy.
		if r != nil && r.StatusCode != 0 {
			send(fetchResult{resp: Response{
				StatusCode: r.StatusCode,
				Body:       append([]byte{}, r.Body...),
			}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Response{}, fmt.Errorf("get %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return Response{}, fmt.Errorf("get %s: %w", rawURL, res.err)
		}
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return res.resp, nil
	default:
		return Response{}, errors.New("colly fetch produced no result")
	}
}

type fetchResult struct {
	resp Response
	err  error
}
