package posts

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// Stats summarizes a user's part in chains.
type Stats struct {
	// RelaysGiven counts the user's action posts.
	RelaysGiven int `json:"relaysGiven"`
	// RelaysReceived counts other users' replies to the user's posts.
	RelaysReceived int `json:"relaysReceived"`
}

func newest() docstore.Query {
	return docstore.Query{Collection: model.CollectionPosts}.
		Sort(model.FieldTimestamp, docstore.Descending)
}

func oldest() docstore.Query {
	return docstore.Query{Collection: model.CollectionPosts}.
		Sort(model.FieldTimestamp, docstore.Ascending)
}

// AuthoredThanks returns the thanks posts written by userID, newest first.
func (r *Repository) AuthoredThanks(ctx context.Context, userID string) ([]model.Post, error) {
	return r.list(ctx, "authored thanks", newest().Where(
		docstore.Eq(model.FieldAuthorID, userID),
		docstore.Eq(model.FieldType, string(model.PostThanks)),
	))
}

// RootThanks returns the chains started by userID, newest first.
func (r *Repository) RootThanks(ctx context.Context, userID string) ([]model.Post, error) {
	return r.list(ctx, "root thanks", newest().Where(
		docstore.Eq(model.FieldAuthorID, userID),
		docstore.Eq(model.FieldType, string(model.PostThanks)),
		docstore.Eq(model.FieldDepth, 0),
	))
}

// ActionsBy returns the replies written by userID, newest first.
func (r *Repository) ActionsBy(ctx context.Context, userID string) ([]model.Post, error) {
	return r.list(ctx, "actions", newest().Where(
		docstore.Eq(model.FieldAuthorID, userID),
		docstore.Eq(model.FieldType, string(model.PostAction)),
	))
}

// LikedBy returns the posts userID has liked at least once, newest first.
func (r *Repository) LikedBy(ctx context.Context, userID string) ([]model.Post, error) {
	return r.list(ctx, "liked", newest().Where(
		docstore.Contains(model.FieldLikedBy, userID),
	))
}

// RepliesReceived returns other users' replies to userID's posts, newest
// first. The author inequality is applied after the query so the store only
// sees equality filters.
func (r *Repository) RepliesReceived(ctx context.Context, userID string) ([]model.Post, error) {
	replies, err := r.list(ctx, "replies received", newest().Where(
		docstore.Eq(model.FieldParentAuthorID, userID),
		docstore.Eq(model.FieldType, string(model.PostAction)),
	))
	if err != nil {
		return nil, err
	}
	return lo.Filter(replies, func(p model.Post, _ int) bool {
		return p.AuthorID != userID
	}), nil
}

// Stats counts the relays userID has given and received.
func (r *Repository) Stats(ctx context.Context, userID string) (Stats, error) {
	given, err := r.ActionsBy(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	received, err := r.RepliesReceived(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{RelaysGiven: len(given), RelaysReceived: len(received)}, nil
}

// Chain returns every reply in the chain rooted at rootID, oldest first.
func (r *Repository) Chain(ctx context.Context, rootID string) ([]model.Post, error) {
	return r.list(ctx, "chain", oldest().Where(
		docstore.Eq(model.FieldRootPostID, rootID),
	))
}

// Children returns the direct replies to parentID, oldest first.
func (r *Repository) Children(ctx context.Context, parentID string) ([]model.Post, error) {
	return r.list(ctx, "children", oldest().Where(
		docstore.Eq(model.FieldParentPostID, parentID),
	))
}

func (r *Repository) list(ctx context.Context, op string, q docstore.Query) ([]model.Post, error) {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", op, err)
	}
	return model.DecodePosts(docs), nil
}
