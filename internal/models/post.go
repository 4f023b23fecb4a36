package models

import (
	"strconv"
	"time"
)

// Post is a feed entry. AuthorName is a denormalized copy of the author's
// profile name taken at write time; LikeCount and CommentCount are
// maintained exclusively through the store's atomic increment.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
}

// Fields encodes the post for storage.
func (p *Post) Fields() map[string]string {
	return map[string]string{
		"authorId":     p.AuthorID,
		"authorName":   p.AuthorName,
		"content":      p.Content,
		"createdAt":    EncodeTime(p.CreatedAt),
		"likeCount":    strconv.FormatInt(p.LikeCount, 10),
		"commentCount": strconv.FormatInt(p.CommentCount, 10),
	}
}

// PostFromFields decodes a stored post document.
func PostFromFields(id string, fields map[string]string) *Post {
	likes, _ := strconv.ParseInt(fields["likeCount"], 10, 64)
	comments, _ := strconv.ParseInt(fields["commentCount"], 10, 64)
	return &Post{
		ID:           id,
		AuthorID:     fields["authorId"],
		AuthorName:   fields["authorName"],
		Content:      fields["content"],
		CreatedAt:    DecodeTime(fields["createdAt"]),
		LikeCount:    likes,
		CommentCount: comments,
	}
}
