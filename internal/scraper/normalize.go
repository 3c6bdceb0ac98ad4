package scraper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize maps one raw comment object onto the stable Comment
// schema. It never fails: every field has a safe default, so malformed
// records degrade to zero values instead of aborting the batch.
//
// Fallback chains are evaluated first-match-wins; an upstream empty
// string or numeric zero counts as absent and falls through to the
// next candidate. fallbackVideoID fills aweme_id when the record omits
// it.
//
// Nested replies carried by the record are not expanded here even when
// reply scraping is requested; that is a known extension point, not a
// defect.
func Normalize(raw map[string]any, fallbackVideoID string) Comment {
	user := childObject(raw, "user", "user_info")
	share := childObject(raw, "share_info")

	var text *string
	if s, ok := raw["text"].(string); ok {
		collapsed := collapseWhitespace(s)
		text = &collapsed
	}

	postID := firstString(raw, "aweme_id")
	if postID == "" {
		postID = fallbackVideoID
	}

	return Comment{
		AuthorPinned: asBool(raw["author_pin"]),
		PostID:       postID,
		CommentID:    firstString(raw, "cid", "id"),
		Language:     optString(raw, "comment_language", "lang"),
		CreatedAt:    firstInt(raw, "create_time"),
		LikeCount:    firstInt(raw, "digg_count"),
		ReplyCount:   firstInt(raw, "reply_comment_total", "reply_count"),
		Text:         text,
		TextExtra:    listValue(raw["text_extra"]),
		Region:       firstOf(stringify(raw["region"]), stringify(user["region"]), stringify(user["country"])),
		User: Author{
			Nickname:  optString(user, "nickname", "name"),
			UniqueID:  optString(user, "unique_id", "username", "id"),
			Signature: optString(user, "signature", "bio"),
			InsID:     optString(user, "ins_id", "instagram_id"),
		},
		ShareInfo: ShareInfo{
			Desc: optString(share, "desc", "description"),
			URL:  optString(share, "url"),
		},
	}
}

// collapseWhitespace squashes internal whitespace runs to single
// spaces and strips the ends.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// stringify renders a scalar candidate as a string. Absent, empty, and
// zero values all come back as "" so they fall through fallback chains.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		if val.String() == "0" {
			return ""
		}
		return val.String()
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		if val == 0 {
			return ""
		}
		return strconv.FormatInt(val, 10)
	case int:
		if val == 0 {
			return ""
		}
		return strconv.Itoa(val)
	default:
		return ""
	}
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringify(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func optString(obj map[string]any, keys ...string) *string {
	if s := firstString(obj, keys...); s != "" {
		return &s
	}
	return nil
}

func firstOf(candidates ...string) *string {
	for _, c := range candidates {
		if c != "" {
			return &c
		}
	}
	return nil
}

// firstInt returns the first key holding a positive integer-coercible
// value. Negative and non-numeric inputs count as absent, so counters
// never go below zero.
func firstInt(obj map[string]any, keys ...string) int64 {
	for _, k := range keys {
		v, present := obj[k]
		if !present || v == nil {
			continue
		}
		if n, ok := asInt(v); ok && n > 0 {
			return n
		}
	}
	return 0
}

func asInt(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case float64:
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		trimmed := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// asBool applies upstream truthiness: false, zero, "", and empty
// containers are all false.
func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case json.Number:
		return val.String() != "" && val.String() != "0"
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return false
	}
}

// childObject resolves a nested object through a fallback chain,
// returning an empty map when no candidate is a non-empty object.
func childObject(obj map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m, ok := obj[k].(map[string]any); ok && len(m) > 0 {
			return m
		}
	}
	return map[string]any{}
}

func listValue(v any) []any {
	if list, ok := v.([]any); ok && len(list) > 0 {
		return list
	}
	return []any{}
}
