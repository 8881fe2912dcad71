package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/thankschain/internal/model"
)

// ListViews are the accepted list view names.
var ListViews = []string{"mine", "roots", "actions", "liked", "received", "tasks", "completed", "chain"}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Status string // "all" | "pending" | "finished", tasks view only
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <view> [root-id]",
		Short: "List posts or tasks",
		Long: `List posts or tasks for the acting user.

Views:
  mine       thanks you posted
  roots      chains you started
  actions    actions you posted
  liked      posts you liked
  received   other users' replies to your posts
  tasks      posts you saved (--status all|pending|finished)
  completed  actions that completed your tasks, newest first
  chain      every action in the chain rooted at root-id

Examples:
  thankschain list mine -u alice
  thankschain list tasks -u bob --status pending
  thankschain list chain <root-id>`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", "all", "task status filter (all|pending|finished)")

	return cmd
}

func runList(opts *ListOptions, args []string, cmd *cobra.Command) error {
	view := args[0]
	if !slices.Contains(ListViews, view) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown view %q: must be one of %v", view, ListViews))
	}
	if (view == "chain") != (len(args) == 2) {
		return NewExitError(ExitCommandError, "the chain view takes exactly one root-id; other views take none")
	}
	if !slices.Contains([]string{"all", "pending", "finished"}, opts.Status) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid status %q", opts.Status))
	}

	var user string
	if view != "chain" {
		u, err := requireUser(opts.RootOptions)
		if err != nil {
			return err
		}
		user = u
	}

	return withApp(opts.RootOptions, cmd, func(a *app) error {
		ctx := cmd.Context()
		if view == "tasks" {
			list, err := listTasks(ctx, a, user, opts.Status)
			if err != nil {
				return a.out.Fail("failed to list tasks", err)
			}
			return a.out.Render(list, func(w io.Writer) { writeTasks(w, list) })
		}

		list, err := listPosts(ctx, a, view, user, args)
		if err != nil {
			return a.out.Fail("failed to list "+view, err)
		}
		return a.out.Render(list, func(w io.Writer) { writePosts(w, list) })
	})
}

func listPosts(ctx context.Context, a *app, view, user string, args []string) ([]model.Post, error) {
	switch view {
	case "mine":
		return a.posts.AuthoredThanks(ctx, user)
	case "roots":
		return a.posts.RootThanks(ctx, user)
	case "actions":
		return a.posts.ActionsBy(ctx, user)
	case "liked":
		return a.posts.LikedBy(ctx, user)
	case "received":
		return a.posts.RepliesReceived(ctx, user)
	case "completed":
		return a.completed.CompletedActions(ctx, user)
	case "chain":
		return a.posts.Chain(ctx, args[1])
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}

func listTasks(ctx context.Context, a *app, user, status string) ([]model.Task, error) {
	switch status {
	case "pending":
		return a.tasks.ByOwnerStatus(ctx, user, false)
	case "finished":
		return a.tasks.ByOwnerStatus(ctx, user, true)
	default:
		return a.tasks.ByOwner(ctx, user)
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show how many relays you gave and received",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(rootOpts)
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(a *app) error {
				stats, err := a.posts.Stats(cmd.Context(), user)
				if err != nil {
					return a.out.Fail("failed to compute stats", err)
				}
				return a.out.Render(stats, func(w io.Writer) { writeStats(w, user, stats) })
			})
		},
	}
}
