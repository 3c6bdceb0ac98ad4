// Package scraper implements the TikTok comment retrieval pipeline:
// video ID resolution, cursor-based pagination against the comment
// list endpoint, and normalization of the loosely structured upstream
// payloads into a stable output schema.
package scraper

// Comment is the canonical normalized comment record. The JSON field
// names follow the upstream wire schema so exported files stay
// compatible with downstream tooling; optional fields are pointers and
// serialize as null when absent.
type Comment struct {
	AuthorPinned bool      `json:"author_pin"`
	PostID       string    `json:"aweme_id"`
	CommentID    string    `json:"cid"`
	Language     *string   `json:"comment_language"`
	CreatedAt    int64     `json:"create_time"`
	LikeCount    int64     `json:"digg_count"`
	ReplyCount   int64     `json:"reply_comment_total"`
	Text         *string   `json:"text"`
	TextExtra    []any     `json:"text_extra"`
	Region       *string   `json:"region"`
	User         Author    `json:"user"`
	ShareInfo    ShareInfo `json:"share_info"`
}

// Author carries the subset of the commenter profile we keep.
type Author struct {
	Nickname  *string `json:"nickname"`
	UniqueID  *string `json:"unique_id"`
	Signature *string `json:"signature"`
	InsID     *string `json:"ins_id"`
}

// ShareInfo mirrors the share_info block of a raw comment.
type ShareInfo struct {
	Desc *string `json:"desc"`
	URL  *string `json:"url"`
}

// Page is one decoded fetch result from the comment list endpoint.
// Pages are ephemeral; only the normalized comments survive the loop.
type Page struct {
	Records    []map[string]any
	HasMore    bool
	NextCursor int
}

// Job describes one scrape request from the jobs input file. The
// pointer fields distinguish "absent" from an explicit zero so that
// per-job overrides only apply when the key is present.
type Job struct {
	VideoURL      string `json:"video_url"`
	URL           string `json:"url"`
	MaxComments   *int   `json:"max_comments"`
	ScrapeReplies *bool  `json:"scrape_replies"`
	ExportFormat  string `json:"export_format"`
	OutputFile    string `json:"output_file"`
}

// TargetURL returns the video URL, honoring the "url" alias.
func (j Job) TargetURL() string {
	if j.VideoURL != "" {
		return j.VideoURL
	}
	return j.URL
}
