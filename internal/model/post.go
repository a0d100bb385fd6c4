package model

import "time"

// Post is a short message on the board.
//
// Target, Tag, and Bg are free-form display attributes chosen by the
// frontend (who the message is addressed to, a hashtag, a background image
// name). The server trims them but applies no further validation.
//
// Author is always derived server-side from the session user — never taken
// from the request body. Anonymous posts get model.AnonymousAuthor.
type Post struct {
	ID        int64     `json:"id"        db:"id"`
	Text      string    `json:"text"      db:"text"`
	Author    string    `json:"author"    db:"author"`
	Target    string    `json:"target"    db:"target"`
	Tag       string    `json:"tag"       db:"tag"`
	Bg        string    `json:"bg"        db:"bg"`
	Scope     string    `json:"scope"     db:"scope"` // "public" unless the client says otherwise
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is a reply attached to an existing Post.
// User follows the same server-side derivation rule as Post.Author.
type Comment struct {
	ID        int64     `json:"id"        db:"id"`
	PostID    int64     `json:"postId"    db:"post_id"`
	User      string    `json:"user"      db:"user"`
	Text      string    `json:"text"      db:"text"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Counts holds row totals per table, reported by the admin dbcheck endpoint.
type Counts struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
}
