// Package completed lists the replies a user posted through saved tasks.
package completed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// DefaultBatchSize is the number of post ids fetched per query.
const DefaultBatchSize = docstore.MaxInValues

// Assembler joins finished tasks to the posts that completed them.
type Assembler struct {
	store     docstore.Store
	batchSize int
	logger    *slog.Logger
}

// New creates an Assembler. batchSize outside 1..docstore.MaxInValues falls
// back to DefaultBatchSize.
func New(s docstore.Store, batchSize int, logger *slog.Logger) *Assembler {
	if batchSize <= 0 || batchSize > docstore.MaxInValues {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{store: s, batchSize: batchSize, logger: logger.With("component", "completed.Assembler")}
}

type completion struct {
	actionID string
	at       time.Time
}

// CompletedActions returns userID's completing replies, most recently
// completed first. Replies that no longer exist are skipped.
func (a *Assembler) CompletedActions(ctx context.Context, userID string) ([]model.Post, error) {
	docs, err := a.store.Query(ctx, docstore.Query{Collection: model.CollectionTasks}.Where(
		docstore.Eq(model.FieldUserID, userID),
		docstore.Eq(model.FieldIsFinished, true),
	))
	if err != nil {
		return nil, fmt.Errorf("completed actions: %w", err)
	}

	completions := lo.FilterMap(model.DecodeTasks(docs), func(t model.Task, _ int) (completion, bool) {
		if t.CompletedActionID == nil || *t.CompletedActionID == "" {
			return completion{}, false
		}
		c := completion{actionID: *t.CompletedActionID}
		if t.CompletedAt != nil {
			c.at = *t.CompletedAt
		}
		return c, true
	})
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].at.After(completions[j].at)
	})

	ids := lo.Map(completions, func(c completion, _ int) string { return c.actionID })
	found := make(map[string]model.Post, len(ids))
	for _, batch := range lo.Chunk(ids, a.batchSize) {
		posts, err := a.store.Query(ctx, docstore.Query{Collection: model.CollectionPosts}.Where(
			docstore.AnyOf(docstore.FieldID, batch...),
		))
		if err != nil {
			return nil, fmt.Errorf("completed actions: %w", err)
		}
		for _, p := range model.DecodePosts(posts) {
			found[p.ID] = p
		}
	}

	out := lo.FilterMap(ids, func(id string, _ int) (model.Post, bool) {
		p, ok := found[id]
		return p, ok
	})
	if missing := len(ids) - len(out); missing > 0 {
		a.logger.Debug("completed actions reference missing posts", "user", userID, "missing", missing)
	}
	return out, nil
}
