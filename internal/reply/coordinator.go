package reply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// Coordinator runs reply transactions.
type Coordinator struct {
	store   docstore.Store
	retrier docstore.Retrier
	logger  *slog.Logger
}

// New creates a Coordinator. The retrier's zero value retries
// docstore.DefaultMaxAttempts times without backoff.
func New(s docstore.Store, retrier docstore.Retrier, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reply.Coordinator")
	if retrier.Logger == nil {
		retrier.Logger = logger
	}
	return &Coordinator{store: s, retrier: retrier, logger: logger}
}

// AddReply creates an action post answering ref and returns its id.
//
// Errors: model.ErrInvalidArgument, model.ErrTaskNotFound,
// model.ErrTaskCompleted, model.ErrParentNotFound, model.ErrRootNotFound,
// docstore.ErrUnavailable when conflicts outlast the retry budget.
func (c *Coordinator) AddReply(ctx context.Context, d model.Draft, ref ParentRef) (string, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return "", err
	}
	if err := validateRef(ref); err != nil {
		return "", err
	}

	var newID string
	err := c.retrier.Run(ctx, c.store, "add reply", func(ctx context.Context, tx docstore.Tx) error {
		id, err := c.apply(ctx, tx, d, ref)
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("add reply: %w", err)
	}

	c.logger.Debug("reply created", "post", newID, "author", d.AuthorID)
	return newID, nil
}

func validateRef(ref ParentRef) error {
	switch r := ref.(type) {
	case DirectPost:
		if r.PostID == "" {
			return model.InvalidArgument("parent post id is required")
		}
	case ViaTask:
		if r.TaskID == "" {
			return model.InvalidArgument("task id is required")
		}
	case nil:
		return model.InvalidArgument("parent is required")
	default:
		return model.InvalidArgument("unknown parent reference %T", ref)
	}
	return nil
}

// apply is one attempt. Every read happens before the first write.
func (c *Coordinator) apply(ctx context.Context, tx docstore.Tx, d model.Draft, ref ParentRef) (string, error) {
	var (
		parentID string
		taskID   string
	)
	switch r := ref.(type) {
	case DirectPost:
		parentID = r.PostID
	case ViaTask:
		task, err := readTask(ctx, tx, r.TaskID)
		if err != nil {
			return "", err
		}
		taskID = task.ID
		parentID = task.PostID
	}

	parent, err := readPost(ctx, tx, parentID, model.ParentNotFound)
	if err != nil {
		return "", err
	}

	rootID := parent.ChainRoot()
	if rootID != parent.ID {
		if _, err := readPost(ctx, tx, rootID, model.RootNotFound); err != nil {
			return "", err
		}
	}

	newID := c.store.NewID(model.CollectionPosts)

	if taskID != "" {
		if err := tx.Update(model.CollectionTasks, taskID, model.CompleteTaskUpdates(newID)...); err != nil {
			return "", err
		}
	}

	incr := docstore.Inc(docstore.P(model.FieldActionCount), 1)
	if err := tx.Update(model.CollectionPosts, parent.ID, incr); err != nil {
		return "", err
	}
	if rootID != parent.ID {
		if err := tx.Update(model.CollectionPosts, rootID, incr); err != nil {
			return "", err
		}
	}

	if err := tx.Create(model.CollectionPosts, newID, model.ActionFields(d, parent, rootID)); err != nil {
		return "", err
	}
	return newID, nil
}

func readTask(ctx context.Context, tx docstore.Tx, id string) (model.Task, error) {
	doc, err := tx.Get(ctx, model.CollectionTasks, id)
	if docstore.IsNotFound(err) {
		return model.Task{}, model.TaskNotFound(id)
	}
	if err != nil {
		return model.Task{}, err
	}
	task := model.DecodeTask(doc)
	if task.IsFinished || task.Status == model.TaskDone {
		return model.Task{}, model.TaskCompleted(id)
	}
	if task.PostID == "" {
		return model.Task{}, model.ParentNotFound("")
	}
	return task, nil
}

func readPost(ctx context.Context, tx docstore.Tx, id string, notFound func(string) *model.Error) (model.Post, error) {
	doc, err := tx.Get(ctx, model.CollectionPosts, id)
	if docstore.IsNotFound(err) {
		return model.Post{}, notFound(id)
	}
	if err != nil {
		return model.Post{}, err
	}
	return model.DecodePost(doc), nil
}
