package scraper

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, payload string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestNormalizeEmptyObject(t *testing.T) {
	t.Parallel()

	c := Normalize(map[string]any{}, "123456")

	assert.False(t, c.AuthorPinned)
	assert.Equal(t, "123456", c.PostID)
	assert.Equal(t, "", c.CommentID)
	assert.Nil(t, c.Language)
	assert.Equal(t, int64(0), c.CreatedAt)
	assert.Equal(t, int64(0), c.LikeCount)
	assert.Equal(t, int64(0), c.ReplyCount)
	assert.Nil(t, c.Text)
	assert.NotNil(t, c.TextExtra)
	assert.Empty(t, c.TextExtra)
	assert.Nil(t, c.Region)
	assert.Nil(t, c.User.Nickname)
	assert.Nil(t, c.ShareInfo.Desc)
}

func TestNormalizeFallbackChains(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"author_pin": 1,
		"aweme_id": 6718335390845095173,
		"id": "7300000000000000001",
		"lang": "en",
		"create_time": 1650000000,
		"digg_count": -5,
		"reply_count": 3,
		"text": "  hello \t  world\n",
		"user_info": {
			"name": "Ada",
			"username": "ada42",
			"bio": "just here",
			"country": "US"
		},
		"share_info": {
			"description": "check this out",
			"url": "https://www.tiktok.com/share/x"
		}
	}`)

	c := Normalize(raw, "999999")

	assert.True(t, c.AuthorPinned)
	// 19-digit ID must survive numeric decoding with full precision.
	assert.Equal(t, "6718335390845095173", c.PostID)
	// cid is absent, so the id alias wins.
	assert.Equal(t, "7300000000000000001", c.CommentID)
	require.NotNil(t, c.Language)
	assert.Equal(t, "en", *c.Language)
	assert.Equal(t, int64(1650000000), c.CreatedAt)
	// Negative counters coerce to zero.
	assert.Equal(t, int64(0), c.LikeCount)
	assert.Equal(t, int64(3), c.ReplyCount)
	require.NotNil(t, c.Text)
	assert.Equal(t, "hello world", *c.Text)
	require.NotNil(t, c.Region)
	assert.Equal(t, "US", *c.Region)
	require.NotNil(t, c.User.Nickname)
	assert.Equal(t, "Ada", *c.User.Nickname)
	require.NotNil(t, c.User.UniqueID)
	assert.Equal(t, "ada42", *c.User.UniqueID)
	require.NotNil(t, c.User.Signature)
	assert.Equal(t, "just here", *c.User.Signature)
	assert.Nil(t, c.User.InsID)
	require.NotNil(t, c.ShareInfo.Desc)
	assert.Equal(t, "check this out", *c.ShareInfo.Desc)
	require.NotNil(t, c.ShareInfo.URL)
	assert.Equal(t, "https://www.tiktok.com/share/x", *c.ShareInfo.URL)
}

func TestNormalizePrimaryKeysBeatAliases(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"cid": "111",
		"id": "222",
		"comment_language": "fr",
		"lang": "en",
		"reply_comment_total": 7,
		"reply_count": 9,
		"region": "DE",
		"user": {"nickname": "Nick", "region": "FR"},
		"user_info": {"name": "ignored"}
	}`)

	c := Normalize(raw, "123456")

	assert.Equal(t, "111", c.CommentID)
	require.NotNil(t, c.Language)
	assert.Equal(t, "fr", *c.Language)
	assert.Equal(t, int64(7), c.ReplyCount)
	require.NotNil(t, c.Region)
	assert.Equal(t, "DE", *c.Region)
	require.NotNil(t, c.User.Nickname)
	assert.Equal(t, "Nick", *c.User.Nickname)
}

func TestNormalizeEmptyStringsFallThrough(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"aweme_id": "",
		"cid": "",
		"id": "333",
		"user": {},
		"user_info": {"nickname": "Backup"}
	}`)

	c := Normalize(raw, "654321")

	assert.Equal(t, "654321", c.PostID)
	assert.Equal(t, "333", c.CommentID)
	// Empty user object falls through to user_info.
	require.NotNil(t, c.User.Nickname)
	assert.Equal(t, "Backup", *c.User.Nickname)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	raw := decodeRaw(t, `{
		"cid": "42424242",
		"aweme_id": "6718335390845095173",
		"create_time": 1650000000,
		"digg_count": 12,
		"reply_comment_total": 2,
		"text": "one   two",
		"text_extra": [{"hashtag_name": "fun"}],
		"region": "US",
		"user": {"nickname": "Ada", "unique_id": "ada42"},
		"share_info": {"desc": "d", "url": "u"}
	}`)

	first := Normalize(raw, "6718335390845095173")

	payload, err := json.Marshal(first)
	require.NoError(t, err)
	second := Normalize(decodeRaw(t, string(payload)), "6718335390845095173")

	assert.Equal(t, first, second)
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", collapseWhitespace("  a \n\t b   c  "))
	assert.Equal(t, "", collapseWhitespace("   "))
}
