// Package appstate holds the application's shared view state: the signed-in
// profile and the current ordered feed. The feed projector writes into it
// and any number of watchers (WebSocket handlers, the HTTP feed endpoint)
// read from it or follow its updates.
package appstate

import (
	"sync"

	"pulse/internal/models"
)

// State is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	profile *models.User
	posts   []*models.Post

	nextWatch int
	watchers  map[int]chan []*models.Post
}

func New() *State {
	return &State{watchers: make(map[int]chan []*models.Post)}
}

// SetProfile replaces the signed-in profile; nil clears it (sign-out).
func (s *State) SetProfile(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = u
}

// Profile returns the signed-in profile, or nil.
func (s *State) Profile() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetPosts replaces the feed snapshot and fans it out to watchers. Slow
// watchers have their stale pending snapshot replaced by the new one.
func (s *State) SetPosts(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = posts
	for _, ch := range s.watchers {
		select {
		case ch <- posts:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- posts
		}
	}
}

// Posts returns the latest feed snapshot.
func (s *State) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts
}

// Watch registers a feed watcher. The channel receives every snapshot set
// after registration (latest-wins under backpressure). The returned cancel
// must be called to release the watcher.
func (s *State) Watch() (<-chan []*models.Post, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatch
	s.nextWatch++
	ch := make(chan []*models.Post, 1)
	s.watchers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
	}
	return ch, cancel
}
