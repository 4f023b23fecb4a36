package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"pulse/internal/middleware"
)

// FeedStream handles GET /ws/feed. Authenticated via ?token=; the
// connection receives the current feed snapshot immediately, then the full
// ordered post list again after every change, mirroring what the projector
// pushes into the shared state. The watcher is released when the client
// disconnects.
func (s *Server) FeedStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token := conn.Query("token")
		if _, err := s.auth.Parse(token); err != nil {
			_ = conn.WriteJSON(map[string]string{"error": "invalid token"})
			_ = conn.Close()
			return
		}

		ch, cancel := s.state.Watch()
		defer cancel()

		if posts := s.state.Posts(); posts != nil {
			if err := conn.WriteJSON(posts); err != nil {
				return
			}
		}

		// Reader goroutine: its only job is to notice the peer going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(snap); err != nil {
					middleware.Logger.Debug("feed stream write failed",
						slog.String("error", err.Error()))
					return
				}
			case <-closed:
				return
			}
		}
	})
}
