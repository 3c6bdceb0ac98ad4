package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidURL marks input URLs from which no video ID can be resolved.
var ErrInvalidURL = errors.New("invalid tiktok url")

const commentListBase = "https://www.tiktok.com/api/comment/list/"

var digitRun = regexp.MustCompile(`\d{6,}`)

// Query parameters that may carry the video ID, in priority order.
// They are less reliable than path segments and only checked as a
// fallback.
var idQueryKeys = []string{"aweme_id", "video_id", "item_id"}

// ResolveVideoID extracts the numeric video ID from a TikTok URL.
//
// Path segments are scanned in reverse order for the first run of six
// or more consecutive digits; short/share-link forms place the real ID
// in the final segment, so this order matters. If the path yields
// nothing, known query parameters are checked, accepted only when the
// value is entirely digits.
func ResolveVideoID(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	segments := strings.Split(parsed.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		if match := digitRun.FindString(segments[i]); match != "" {
			return match, nil
		}
	}

	query := parsed.Query()
	for _, key := range idQueryKeys {
		candidate := query.Get(key)
		if candidate != "" && digitRun.FindString(candidate) == candidate {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, rawURL)
}

// CommentListURL builds the comment list API URL for one page. The
// shape is undocumented upstream and must be reproduced exactly.
func CommentListURL(videoID string, cursor, count int) string {
	return fmt.Sprintf("%s?aid=1988&cursor=%d&count=%d&aweme_id=%s",
		commentListBase, cursor, count, videoID)
}
