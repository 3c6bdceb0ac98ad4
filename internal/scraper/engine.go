package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/metrics"
	"github.com/bitbash-dev/tiktok-comments/internal/transport"
)

// pageSize is fixed by the upstream API contract.
const pageSize = 20

// Options control a single fetch run.
type Options struct {
	MaxComments   int
	ScrapeReplies bool
	Delay         time.Duration
}

// Engine drives the cursor-based pagination loop against the comment
// list endpoint. It never surfaces an error to the caller: any
// per-page failure ends the loop and whatever was accumulated so far
// is the result. There is no per-page retry and no backoff; a single
// failure is final for the run rather than masking upstream
// instability.
type Engine struct {
	client transport.Client
	opts   Options
	logger *zap.Logger

	// sleep is the politeness delay between pages, injectable so the
	// loop can be tested without real waits.
	sleep func(time.Duration)
}

// NewEngine constructs an Engine. Out-of-range options are clamped.
func NewEngine(client transport.Client, opts Options, logger *zap.Logger) *Engine {
	if opts.MaxComments < 1 {
		opts.MaxComments = 1
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &Engine{
		client: client,
		opts:   opts,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// FetchAll retrieves up to MaxComments normalized comments for the
// video, stopping early on any transport or payload failure. The
// result is truncated to exactly MaxComments when the final page
// overshoots.
func (e *Engine) FetchAll(ctx context.Context, videoID string) []Comment {
	comments := make([]Comment, 0, pageSize)
	cursor := 0
	hasMore := true

	e.logger.Info("fetching comments",
		zap.String("video_id", videoID),
		zap.Int("max_comments", e.opts.MaxComments),
	)

	for hasMore && len(comments) < e.opts.MaxComments {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("fetch canceled, returning partial results", zap.Error(err))
			break
		}

		page, err := e.fetchPage(ctx, videoID, cursor)
		if err != nil {
			e.logger.Error("comment page fetch failed",
				zap.String("video_id", videoID),
				zap.Int("cursor", cursor),
				zap.Error(err),
			)
			metrics.ObservePage("error")
			break
		}
		metrics.ObservePage("ok")
		metrics.AddComments(len(page.Records))

		for _, raw := range page.Records {
			if e.opts.ScrapeReplies && asBool(raw["reply_comment"]) {
				e.logger.Debug("record carries nested replies; reply expansion is not implemented",
					zap.String("video_id", videoID))
			}
			comments = append(comments, Normalize(raw, videoID))
		}

		e.logger.Debug("fetched comment page",
			zap.Int("page_records", len(page.Records)),
			zap.Int("total", len(comments)),
			zap.Bool("has_more", page.HasMore),
		)

		hasMore = page.HasMore
		cursor = page.NextCursor
		if hasMore && len(comments) < e.opts.MaxComments {
			e.sleep(e.opts.Delay)
		}
	}

	if len(comments) > e.opts.MaxComments {
		comments = comments[:e.opts.MaxComments]
	}

	e.logger.Info("finished fetching comments",
		zap.String("video_id", videoID),
		zap.Int("count", len(comments)),
	)
	return comments
}

func (e *Engine) fetchPage(ctx context.Context, videoID string, cursor int) (Page, error) {
	pageURL := CommentListURL(videoID, cursor, pageSize)

	resp, err := e.client.Get(ctx, pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("request comment page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("comment api returned status %d", resp.StatusCode)
	}
	return parsePage(resp.Body)
}

// parsePage decodes one comment list payload. The upstream nests data
// differently depending on endpoint revision, so the comment list,
// has_more flag, and cursor are each resolved top-level first, then
// under data. Numbers are decoded as json.Number so 19-digit IDs keep
// full precision.
func parsePage(body []byte) (Page, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return Page{}, fmt.Errorf("decode comment payload: %w", err)
	}

	list, present := payload["comments"]
	if !present || list == nil {
		nested, found := nestedLookup(payload, "data", "comments")
		if found {
			list = nested
		} else {
			list = []any{}
		}
	}
	rawRecords, ok := list.([]any)
	if !ok {
		return Page{}, errors.New("unexpected comment payload structure")
	}

	records := make([]map[string]any, 0, len(rawRecords))
	for _, item := range rawRecords {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		} else {
			records = append(records, map[string]any{})
		}
	}

	hasMore := asBool(payload["has_more"])
	if !hasMore {
		nested, _ := nestedLookup(payload, "data", "has_more")
		hasMore = asBool(nested)
	}

	cursor, ok := asInt(payload["cursor"])
	if !ok || cursor == 0 {
		if nested, found := nestedLookup(payload, "data", "cursor"); found {
			if n, ok := asInt(nested); ok {
				cursor = n
			}
		}
	}
	if cursor < 0 {
		cursor = 0
	}

	return Page{Records: records, HasMore: hasMore, NextCursor: int(cursor)}, nil
}

func nestedLookup(obj map[string]any, keys ...string) (any, bool) {
	var current any = obj
	for _, k := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
