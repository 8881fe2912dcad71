// Package likes counts likes with a per-user cap.
package likes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

// DefaultCap is the most likes one user can give one post.
const DefaultCap = 10

// Observer is notified of every like request that reached the post.
type Observer interface {
	ObserveLike(applied bool)
}

// Result describes the post after a like request.
type Result struct {
	// Applied is false when the user had already reached the cap.
	Applied   bool  `json:"applied"`
	UserLikes int64 `json:"userLikes"`
	LikeCount int64 `json:"likeCount"`
}

// Limiter registers likes.
//
// For every post, likeCount equals the sum of likesMap, and likedBy holds
// exactly the users with a positive likesMap entry.
type Limiter struct {
	store    docstore.Store
	retrier  docstore.Retrier
	cap      int64
	observer Observer
	logger   *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithCap overrides DefaultCap.
func WithCap(n int64) Option {
	return func(l *Limiter) { l.cap = n }
}

// WithObserver sets the like observer.
func WithObserver(o Observer) Option {
	return func(l *Limiter) { l.observer = o }
}

// New creates a Limiter.
func New(s docstore.Store, retrier docstore.Retrier, logger *slog.Logger, opts ...Option) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{
		store:   s,
		retrier: retrier,
		cap:     DefaultCap,
		logger:  logger.With("component", "likes.Limiter"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.retrier.Logger == nil {
		l.retrier.Logger = l.logger
	}
	return l
}

// Like adds one like from userID to postID unless userID is at the cap.
// Reaching the cap is not an error: the result has Applied false.
func (l *Limiter) Like(ctx context.Context, postID, userID string) (Result, error) {
	if postID == "" || userID == "" {
		return Result{}, model.InvalidArgument("post id and user id are required")
	}

	var res Result
	err := l.retrier.Run(ctx, l.store, "like", func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, model.CollectionPosts, postID)
		if docstore.IsNotFound(err) {
			return model.PostNotFound(postID)
		}
		if err != nil {
			return err
		}

		post := model.DecodePost(doc)
		prior := post.LikesMap[userID]
		if prior >= l.cap {
			res = Result{Applied: false, UserLikes: prior, LikeCount: post.LikeCount}
			return nil
		}

		updates := []docstore.Update{
			docstore.Inc(docstore.P(model.FieldLikesMap, userID), 1),
			docstore.Inc(docstore.P(model.FieldLikeCount), 1),
		}
		if prior == 0 {
			updates = append(updates, docstore.Union(docstore.P(model.FieldLikedBy), userID))
		}
		if err := tx.Update(model.CollectionPosts, postID, updates...); err != nil {
			return err
		}
		res = Result{Applied: true, UserLikes: prior + 1, LikeCount: post.LikeCount + 1}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("like: %w", err)
	}

	if l.observer != nil {
		l.observer.ObserveLike(res.Applied)
	}
	if !res.Applied {
		l.logger.Debug("like cap reached", "post", postID, "user", userID, "cap", l.cap)
	}
	return res, nil
}
