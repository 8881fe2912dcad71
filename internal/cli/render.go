package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/thankschain/internal/likes"
	"github.com/roach88/thankschain/internal/model"
	"github.com/roach88/thankschain/internal/posts"
)

const anonymous = "anonymous"

func writePost(w io.Writer, p model.Post) {
	author := p.AuthorID
	if p.IsAnonymous {
		author = anonymous
	}
	fmt.Fprintf(w, "%s  %s  by %s  %s\n", p.ID, p.Type, author, p.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "  %s\n", p.Text)
	if p.Feeling != nil {
		fmt.Fprintf(w, "  feeling: %s\n", *p.Feeling)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if p.ParentPostID != nil {
		fmt.Fprintf(w, "  reply to: %s (root %s)\n", *p.ParentPostID, p.ChainRoot())
	}
	fmt.Fprintf(w, "  likes: %d  actions: %d  depth: %d\n", p.LikeCount, p.ActionCount, p.Depth)
}

func writePosts(w io.Writer, list []model.Post) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No posts.")
		return
	}
	for i, p := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writePost(w, p)
	}
}

func writeTasks(w io.Writer, list []model.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range list {
		line := fmt.Sprintf("%s  %s  post %s  saved %s", t.ID, t.Status, t.PostID, t.SavedAt.Format(time.RFC3339))
		if t.CompletedActionID != nil {
			line += fmt.Sprintf("  completed by %s", *t.CompletedActionID)
		}
		fmt.Fprintln(w, line)
	}
}

func writeLike(w io.Writer, postID string, res likes.Result) {
	if !res.Applied {
		fmt.Fprintf(w, "Like cap reached for %s (%d likes from you, %d total)\n", postID, res.UserLikes, res.LikeCount)
		return
	}
	fmt.Fprintf(w, "Liked %s (%d likes from you, %d total)\n", postID, res.UserLikes, res.LikeCount)
}

func writeStats(w io.Writer, user string, s posts.Stats) {
	fmt.Fprintf(w, "%s\n", user)
	fmt.Fprintf(w, "  relays given:    %d\n", s.RelaysGiven)
	fmt.Fprintf(w, "  relays received: %d\n", s.RelaysReceived)
}
