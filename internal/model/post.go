package model

import "time"

// Post represents a published blog post.
//
// Slug is derived from Title at creation time and never changes afterwards,
// even if the title is edited. It is the external lookup key for every
// single-post route, and carries a UNIQUE constraint in the database.
type Post struct {
	ID        int64     `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	Slug      string    `json:"slug"       db:"slug"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
