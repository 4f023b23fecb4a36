package feed

import (
	"context"
	"log/slog"

	"pulse/internal/appstate"
	"pulse/internal/docstore"
	"pulse/internal/models"
)

// Projector keeps the shared view state's post list current. It holds a
// live query over the posts collection, ordered newest first, and pushes
// every full snapshot it receives into the state, which fans it out to
// watchers. Equal timestamps are broken by document id descending, so
// repeated deliveries of unchanged data keep a stable order.
type Projector struct {
	store docstore.Store
	log   *slog.Logger
}

func NewProjector(store docstore.Store, log *slog.Logger) *Projector {
	if log == nil {
		log = slog.Default()
	}
	return &Projector{store: store, log: log}
}

// Start opens the subscription and pumps snapshots into state until the
// returned cancel is called or ctx ends. The first snapshot is delivered
// before any further store change. The error covers subscription setup
// only; later requery failures are logged and the previous snapshot stands.
func (p *Projector) Start(ctx context.Context, state *appstate.State) (func(), error) {
	sub, err := p.store.Subscribe(ctx, docstore.Posts, nil,
		&docstore.Order{Field: "createdAt", Desc: true})
	if err != nil {
		return nil, err
	}

	go func() {
		for snap := range sub.C {
			posts := make([]*models.Post, 0, len(snap))
			for _, d := range snap {
				posts = append(posts, models.PostFromFields(d.ID, d.Fields))
			}
			state.SetPosts(posts)
		}
		p.log.Info("feed projection stopped")
	}()

	return sub.Cancel, nil
}
