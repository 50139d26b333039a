package models

import "time"

// Comment is a row of the comments table. Created once, never mutated.
type Comment struct {
	ID        int64     `msgpack:"id"`
	PostID    int64     `msgpack:"post_id"`
	UserID    int64     `msgpack:"user_id"`
	Body      string    `msgpack:"body"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// CommentPreview is the comment projection embedded in enriched feed items,
// with the commenter's account name joined in.
type CommentPreview struct {
	ID          int64     `msgpack:"id"`
	UserID      int64     `msgpack:"user_id"`
	AccountName string    `msgpack:"account_name"`
	Body        string    `msgpack:"body"`
	CreatedAt   time.Time `msgpack:"created_at"`
}
