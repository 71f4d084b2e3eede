// internal/domain/models/post.go
package models

import "time"

// Post is a forum post. Comments are embedded and append-only.
type Post struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	Image       string    `bson:"image,omitempty" json:"image"`
	AuthorEmail string    `bson:"author_email" json:"authorEmail"`
	Username    string    `bson:"username" json:"username"`
	StudentID   string    `bson:"student_id,omitempty" json:"studentId"`
	Comments    []Comment `bson:"comments" json:"comments"`

	FlaggedBy    []string `bson:"flagged_by" json:"flaggedBy"` // emails
	FlagVerified bool     `bson:"flag_verified" json:"flagVerified"`
	FlagCount    int      `bson:"flag_count" json:"flagCount"`

	Status    string    `bson:"status" json:"status"` // active | deleted
	Rev       int64     `bson:"rev" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Comment is a single reply on a post.
type Comment struct {
	Username  string    `bson:"username" json:"username"`
	StudentID string    `bson:"student_id,omitempty" json:"studentId"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// IsFlaggedBy reports whether email already flagged the post.
func (p *Post) IsFlaggedBy(email string) bool {
	for _, e := range p.FlaggedBy {
		if e == email {
			return true
		}
	}
	return false
}
