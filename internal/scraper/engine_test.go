package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/transport"
)

// stubClient replays a scripted sequence of responses and errors.
type stubClient struct {
	script []stubResult
	urls   []string
}

type stubResult struct {
	resp transport.Response
	err  error
}

func (s *stubClient) Get(_ context.Context, url string) (transport.Response, error) {
	s.urls = append(s.urls, url)
	if len(s.script) == 0 {
		return transport.Response{}, errors.New("unexpected extra request")
	}
	next := s.script[0]
	s.script = s.script[1:]
	return next.resp, next.err
}

func pageBody(t *testing.T, count int, hasMore bool, nextCursor int) []byte {
	t.Helper()
	comments := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		comments = append(comments, map[string]any{
			"cid":  fmt.Sprintf("c%d", i),
			"text": fmt.Sprintf("comment %d", i),
		})
	}
	body, err := json.Marshal(map[string]any{
		"comments": comments,
		"has_more": hasMore,
		"cursor":   nextCursor,
	})
	require.NoError(t, err)
	return body
}

func okPage(body []byte) stubResult {
	return stubResult{resp: transport.Response{StatusCode: 200, Body: body}}
}

func newTestEngine(client transport.Client, opts Options) (*Engine, *int) {
	engine := NewEngine(client, opts, zap.NewNop())
	sleeps := 0
	engine.sleep = func(time.Duration) {
		sleeps++
	}
	return engine, &sleeps
}

func TestFetchAllThreePagesNoTruncation(t *testing.T) {
	t.Parallel()

	client := &stubClient{script: []stubResult{
		okPage(pageBody(t, 20, true, 20)),
		okPage(pageBody(t, 20, true, 40)),
		okPage(pageBody(t, 5, false, 45)),
	}}
	engine, sleeps := newTestEngine(client, Options{MaxComments: 100})

	comments := engine.FetchAll(context.Background(), "6718335390845095173")

	assert.Len(t, comments, 45)
	require.Len(t, client.urls, 3)
	assert.Contains(t, client.urls[0], "cursor=0")
	assert.Contains(t, client.urls[1], "cursor=20")
	assert.Contains(t, client.urls[2], "cursor=40")
	// No politeness delay after the final page.
	assert.Equal(t, 2, *sleeps)
}

func TestFetchAllTruncatesToMaxComments(t *testing.T) {
	t.Parallel()

	client := &stubClient{script: []stubResult{
		okPage(pageBody(t, 20, true, 20)),
	}}
	engine, sleeps := newTestEngine(client, Options{MaxComments: 10})

	comments := engine.FetchAll(context.Background(), "123456")

	assert.Len(t, comments, 10)
	assert.Len(t, client.urls, 1)
	assert.Equal(t, 0, *sleeps)
}

func TestFetchAllReturnsPartialResultsOnTransportFailure(t *testing.T) {
	t.Parallel()

	client := &stubClient{script: []stubResult{
		okPage(pageBody(t, 20, true, 20)),
		{err: errors.New("connection reset")},
		okPage(pageBody(t, 20, false, 40)),
	}}
	engine, _ := newTestEngine(client, Options{MaxComments: 100})

	comments := engine.FetchAll(context.Background(), "123456")

	assert.Len(t, comments, 20)
	assert.Len(t, client.urls, 2)
}

func TestFetchAllStopsOnNonSuccessStatus(t *testing.T) {
	t.Parallel()

	client := &stubClient{script: []stubResult{
		{resp: transport.Response{StatusCode: 403, Body: []byte(`{}`)}},
	}}
	engine, _ := newTestEngine(client, Options{MaxComments: 100})

	comments := engine.FetchAll(context.Background(), "123456")

	assert.Empty(t, comments)
}

func TestFetchAllStopsOnUndecodableBody(t *testing.T) {
	t.Parallel()

	client := &stubClient{script: []stubResult{
		{resp: transport.Response{StatusCode: 200, Body: []byte("<html>blocked</html>")}},
	}}
	engine, _ := newTestEngine(client, Options{MaxComments: 100})

	assert.Empty(t, engine.FetchAll(context.Background(), "123456"))
}

func TestFetchAllStopsWhenContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubClient{script: []stubResult{
		okPage(pageBody(t, 20, true, 20)),
	}}
	engine, _ := newTestEngine(client, Options{MaxComments: 100})

	assert.Empty(t, engine.FetchAll(ctx, "123456"))
	assert.Empty(t, client.urls)
}

func TestParsePageNestedDataShape(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"data": {
			"comments": [{"cid": "a"}, {"cid": "b"}],
			"has_more": 1,
			"cursor": "2"
		}
	}`)

	page, err := parsePage(body)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 2, page.NextCursor)
}

func TestParsePageMissingCommentsIsEmptyPage(t *testing.T) {
	t.Parallel()

	page, err := parsePage([]byte(`{"has_more": false}`))
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.False(t, page.HasMore)
	assert.Equal(t, 0, page.NextCursor)
}

func TestParsePageRejectsNonListComments(t *testing.T) {
	t.Parallel()

	_, err := parsePage([]byte(`{"comments": {"oops": 1}}`))
	require.Error(t, err)
}

func TestParsePageNonMapRecordsDegradeToEmptyObjects(t *testing.T) {
	t.Parallel()

	page, err := parsePage([]byte(`{"comments": [{"cid": "a"}, "junk", 7]}`))
	require.NoError(t, err)
	require.Len(t, page.Records, 3)
	assert.Empty(t, page.Records[1])
	assert.Empty(t, page.Records[2])
}

func TestParsePageZeroCursorFallsThroughToNested(t *testing.T) {
	t.Parallel()

	page, err := parsePage([]byte(`{
		"comments": [],
		"cursor": 0,
		"data": {"cursor": 60}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 60, page.NextCursor)
}
