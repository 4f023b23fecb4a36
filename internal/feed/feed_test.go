package feed

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"pulse/internal/docstore"
	"pulse/internal/models"
)

func newTestStore(t *testing.T) docstore.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return docstore.NewRedisStore(rdb, docstore.Options{})
}

func createUser(t *testing.T, store docstore.Store, id, name string) {
	t.Helper()
	u := &models.User{ID: id, Name: name, Title: "dev"}
	created, err := store.CreateAt(context.Background(), docstore.Users, id, u.Fields())
	require.NoError(t, err)
	require.True(t, created)
}

func createPost(t *testing.T, store docstore.Store, authorID, authorName, content string) *models.Post {
	t.Helper()
	post, err := NewPostService(store).CreatePost(context.Background(), CreatePostInput{
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
	})
	require.NoError(t, err)
	return post
}

func getPost(t *testing.T, store docstore.Store, id string) *models.Post {
	t.Helper()
	doc, err := store.Get(context.Background(), docstore.Posts, id)
	require.NoError(t, err)
	return models.PostFromFields(doc.ID, doc.Fields)
}
