package models

import "time"

// Comment belongs to a post. Immutable once created except for AuthorName,
// which profile updates rewrite to keep the denormalized copy current.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Fields encodes the comment for storage.
func (c *Comment) Fields() map[string]string {
	return map[string]string{
		"postId":     c.PostID,
		"authorId":   c.AuthorID,
		"authorName": c.AuthorName,
		"content":    c.Content,
		"createdAt":  EncodeTime(c.CreatedAt),
	}
}

// CommentFromFields decodes a stored comment document.
func CommentFromFields(id string, fields map[string]string) *Comment {
	return &Comment{
		ID:         id,
		PostID:     fields["postId"],
		AuthorID:   fields["authorId"],
		AuthorName: fields["authorName"],
		Content:    fields["content"],
		CreatedAt:  DecodeTime(fields["createdAt"]),
	}
}
