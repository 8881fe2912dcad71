// Package posts stores thanks posts and answers the post list queries.
package posts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// deleteBatchSize bounds the documents deleted per transaction by DeleteAll.
const deleteBatchSize = 100

// Repository reads and writes posts.
type Repository struct {
	store  docstore.Store
	logger *slog.Logger
}

// New creates a Repository over s. A nil logger uses slog.Default.
func New(s docstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: s, logger: logger.With("component", "posts.Repository")}
}

// CreateThanks creates a chain root and returns its id.
func (r *Repository) CreateThanks(ctx context.Context, d model.Draft) (string, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return "", err
	}

	id := r.store.NewID(model.CollectionPosts)
	if err := r.store.Create(ctx, model.CollectionPosts, id, model.ThanksFields(d)); err != nil {
		return "", fmt.Errorf("create thanks: %w", err)
	}

	r.logger.Debug("thanks created", "post", id, "author", d.AuthorID)
	return id, nil
}

// Get returns the post or a PostNotFound error.
func (r *Repository) Get(ctx context.Context, id string) (model.Post, error) {
	doc, err := r.store.Get(ctx, model.CollectionPosts, id)
	if docstore.IsNotFound(err) {
		return model.Post{}, model.PostNotFound(id)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}
	return model.DecodePost(doc), nil
}

// Delete removes the post. Replies, tasks and counters that reference it are
// left as they are.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, model.CollectionPosts, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	r.logger.Info("post deleted", "post", id)
	return nil
}

// DeleteAll removes every post and returns how many were deleted.
func (r *Repository) DeleteAll(ctx context.Context) (int, error) {
	docs, err := r.store.Query(ctx, docstore.Query{Collection: model.CollectionPosts})
	if err != nil {
		return 0, fmt.Errorf("delete all posts: %w", err)
	}

	deleted := 0
	for _, batch := range lo.Chunk(docs, deleteBatchSize) {
		err := r.store.RunTransaction(ctx, func(_ context.Context, tx docstore.Tx) error {
			for _, doc := range batch {
				if err := tx.Delete(model.CollectionPosts, doc.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("delete all posts: %w", err)
		}
		deleted += len(batch)
	}

	r.logger.Info("all posts deleted", "count", deleted)
	return deleted, nil
}
