package models

import "time"

// Post is a row of the posts table, without the image bytes. The imgdata
// column is only ever read through the blob projection (store/posts.GetImage)
// so list queries never drag megabytes of image data along.
type Post struct {
	ID        int64     `msgpack:"id"`
	UserID    int64     `msgpack:"user_id"`
	Mime      string    `msgpack:"mime"`
	Body      string    `msgpack:"body"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// EnrichedPost is a Post combined with its author summary, comment count and
// a bounded preview of the most recent comments. It is derived, never
// persisted; copies live only in the cache and in single-response scopes.
type EnrichedPost struct {
	Post           `msgpack:"post"`
	Author         UserSummary      `msgpack:"author"`
	CommentCount   int              `msgpack:"comment_count"`
	RecentComments []CommentPreview `msgpack:"recent_comments"`
}
