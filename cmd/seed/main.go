// Command seed fills the store with demo accounts, posts, likes, and
// comments for local development.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"pulse/internal/auth"
	"pulse/internal/config"
	"pulse/internal/docstore"
	"pulse/internal/feed"
	"pulse/internal/seed"
)

func main() {
	users := flag.Int("users", 5, "number of demo accounts")
	posts := flag.Int("posts", 3, "posts per account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := docstore.Connect(cfg.RedisURL, docstore.Options{
		OpTimeout: cfg.StoreTimeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer store.Close()

	authSvc, err := auth.NewService(store, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to init auth: %v", err)
	}

	seeder := &seed.Seeder{
		Auth:     authSvc,
		Profiles: feed.NewProfileService(store, logger),
		Posts:    feed.NewPostService(store),
		Comments: feed.NewCommentService(store),
		Likes:    feed.NewLikeService(store),
		Log:      logger,
	}

	if err := seeder.Run(context.Background(), *users, *posts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d accounts (%d posts each); password for all: %s", *users, *posts, seed.DemoPassword)
}
