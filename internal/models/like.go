package models

import "time"

// Like records that a user liked a post. The document key is the
// deterministic composite LikeKey(userID, postID), so the existence of the
// document is the liked state and at most one can exist per pair. Likes are
// never updated or deleted.
type Like struct {
	Key       string    `json:"key"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeKey derives the composite document key for a (user, post) pair.
func LikeKey(userID, postID string) string {
	return userID + "_" + postID
}

// Fields encodes the like for storage.
func (l *Like) Fields() map[string]string {
	return map[string]string{
		"postId":    l.PostID,
		"userId":    l.UserID,
		"createdAt": EncodeTime(l.CreatedAt),
	}
}

// LikeFromFields decodes a stored like document.
func LikeFromFields(key string, fields map[string]string) *Like {
	return &Like{
		Key:       key,
		PostID:    fields["postId"],
		UserID:    fields["userId"],
		CreatedAt: DecodeTime(fields["createdAt"]),
	}
}
