// Package tasks stores the posts users save to act on later.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// Repository reads and writes tasks.
type Repository struct {
	store  docstore.Store
	logger *slog.Logger
}

// New creates a Repository over s. A nil logger uses slog.Default.
func New(s docstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: s, logger: logger.With("component", "tasks.Repository")}
}

// Save records that userID intends to act on postID and returns the new
// pending task's id. The post must exist.
func (r *Repository) Save(ctx context.Context, userID, postID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", model.InvalidArgument("user id is required")
	}
	if postID == "" {
		return "", model.InvalidArgument("post id is required")
	}

	id := r.store.NewID(model.CollectionTasks)
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if _, err := tx.Get(ctx, model.CollectionPosts, postID); err != nil {
			if docstore.IsNotFound(err) {
				return model.PostNotFound(postID)
			}
			return err
		}
		return tx.Create(model.CollectionTasks, id, model.PendingTaskFields(userID, postID))
	})
	if err != nil {
		return "", fmt.Errorf("save task: %w", err)
	}

	r.logger.Debug("task saved", "task", id, "user", userID, "post", postID)
	return id, nil
}

// Get returns the task or a TaskNotFound error.
func (r *Repository) Get(ctx context.Context, id string) (model.Task, error) {
	doc, err := r.store.Get(ctx, model.CollectionTasks, id)
	if docstore.IsNotFound(err) {
		return model.Task{}, model.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return model.DecodeTask(doc), nil
}

// ByOwner returns userID's tasks, most recently saved first.
func (r *Repository) ByOwner(ctx context.Context, userID string) ([]model.Task, error) {
	return r.list(ctx, docstore.Query{Collection: model.CollectionTasks}.
		Where(docstore.Eq(model.FieldUserID, userID)).
		Sort(model.FieldSavedAt, docstore.Descending))
}

// ByOwnerStatus returns userID's finished or unfinished tasks, most recently
// saved first.
func (r *Repository) ByOwnerStatus(ctx context.Context, userID string, finished bool) ([]model.Task, error) {
	return r.list(ctx, docstore.Query{Collection: model.CollectionTasks}.
		Where(
			docstore.Eq(model.FieldUserID, userID),
			docstore.Eq(model.FieldIsFinished, finished),
		).
		Sort(model.FieldSavedAt, docstore.Descending))
}

func (r *Repository) list(ctx context.Context, q docstore.Query) ([]model.Task, error) {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return model.DecodeTasks(docs), nil
}
