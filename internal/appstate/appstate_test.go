package appstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/models"
)

func TestState_Profile(t *testing.T) {
	t.Parallel()
	s := New()

	assert.Nil(t, s.Profile())

	s.SetProfile(&models.User{ID: "u1", Name: "Alice"})
	require.NotNil(t, s.Profile())
	assert.Equal(t, "Alice", s.Profile().Name)

	s.SetProfile(nil) // sign-out
	assert.Nil(t, s.Profile())
}

func TestState_WatchReceivesSnapshots(t *testing.T) {
	t.Parallel()
	s := New()

	ch, cancel := s.Watch()
	defer cancel()

	s.SetPosts([]*models.Post{{ID: "p1"}})

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, "p1", snap[0].ID)
	case <-time.After(time.Second):
		t.Fatal("watcher got nothing")
	}
}

func TestState_SlowWatcherGetsLatest(t *testing.T) {
	t.Parallel()
	s := New()

	ch, cancel := s.Watch()
	defer cancel()

	// watcher not reading: intermediate snapshot replaced by the latest
	s.SetPosts([]*models.Post{{ID: "stale"}})
	s.SetPosts([]*models.Post{{ID: "fresh"}})

	snap := <-ch
	require.Len(t, snap, 1)
	assert.Equal(t, "fresh", snap[0].ID)
}

func TestState_CancelledWatcherIsRemoved(t *testing.T) {
	t.Parallel()
	s := New()

	ch, cancel := s.Watch()
	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok)

	// no panic pushing after cancel
	s.SetPosts([]*models.Post{{ID: "p1"}})
}

func TestState_MultipleWatchers(t *testing.T) {
	t.Parallel()
	s := New()

	a, cancelA := s.Watch()
	b, cancelB := s.Watch()
	defer cancelA()
	defer cancelB()

	s.SetPosts([]*models.Post{{ID: "p1"}})

	for _, ch := range []<-chan []*models.Post{a, b} {
		select {
		case snap := <-ch:
			assert.Len(t, snap, 1)
		case <-time.After(time.Second):
			t.Fatal("watcher got nothing")
		}
	}
}
