package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/thankschain/internal/model"
	"github.com/roach88/thankschain/internal/reply"
)

// draftFlags are the content flags shared by thanks and reply.
type draftFlags struct {
	Feeling   string
	Tags      []string
	Anonymous bool
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Feeling, "feeling", "", "how it felt")
	cmd.Flags().StringArrayVar(&f.Tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().BoolVar(&f.Anonymous, "anonymous", false, "hide the author when displayed")
}

func (f *draftFlags) draft(text, author string) model.Draft {
	d := model.Draft{Text: text, Tags: f.Tags, AuthorID: author, IsAnonymous: f.Anonymous}
	if f.Feeling != "" {
		feeling := f.Feeling
		d.Feeling = &feeling
	}
	return d
}

type createdResult struct {
	ID string `json:"id"`
}

// NewThanksCommand creates the thanks command.
func NewThanksCommand(rootOpts *RootOptions) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "thanks <text>",
		Short: "Start a chain with a thank-you",
		Long: `Post a thank-you. It becomes the root of a new chain.

Example:
  thankschain thanks -u alice "A stranger helped me carry my stroller" --feeling warm --tag station`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(rootOpts)
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(a *app) error {
				id, err := a.posts.CreateThanks(cmd.Context(), flags.draft(args[0], user))
				if err != nil {
					return a.out.Fail("failed to post thanks", err)
				}
				return a.out.Render(createdResult{ID: id}, func(w io.Writer) {
					fmt.Fprintf(w, "Posted thanks %s\n", id)
				})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// ReplyOptions holds flags for the reply command.
type ReplyOptions struct {
	*RootOptions
	draftFlags
	Parent string
	Task   string
}

// NewReplyCommand creates the reply command.
func NewReplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reply <text>",
		Short: "Pass a chain on with an action",
		Long: `Reply to a post with the action it inspired.

Name the post directly with --parent, or reply through a saved task
with --task, which also marks the task completed.

Examples:
  thankschain reply -u bob "I gave up my seat on the bus" --parent <post-id>
  thankschain reply -u bob "I finally did it" --task <task-id>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReply(opts, args[0], cmd)
		},
	}
	opts.draftFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "post to reply to")
	cmd.Flags().StringVar(&opts.Task, "task", "", "saved task to fulfil")
	cmd.MarkFlagsMutuallyExclusive("parent", "task")
	cmd.MarkFlagsOneRequired("parent", "task")

	return cmd
}

func runReply(opts *ReplyOptions, text string, cmd *cobra.Command) error {
	user, err := requireUser(opts.RootOptions)
	if err != nil {
		return err
	}

	var ref reply.ParentRef = reply.DirectPost{PostID: opts.Parent}
	if opts.Task != "" {
		ref = reply.ViaTask{TaskID: opts.Task}
	}

	return withApp(opts.RootOptions, cmd, func(a *app) error {
		id, err := a.replies.AddReply(cmd.Context(), opts.draft(text, user), ref)
		if err != nil {
			return a.out.Fail("failed to reply", err)
		}
		return a.out.Render(createdResult{ID: id}, func(w io.Writer) {
			fmt.Fprintf(w, "Posted action %s\n", id)
		})
	})
}

// NewLikeCommand creates the like command.
func NewLikeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "like <post-id>",
		Short:         "Like a post",
		Long:          "Like a post. Each user can like a post a limited number of times.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(rootOpts)
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(a *app) error {
				res, err := a.likes.Like(cmd.Context(), args[0], user)
				if err != nil {
					return a.out.Fail("failed to like", err)
				}
				return a.out.Render(res, func(w io.Writer) { writeLike(w, args[0], res) })
			})
		},
	}
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "save <post-id>",
		Short:         "Save a post to act on later",
		Long:          "Save a post as a task. Reply with --task later to complete it.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireUser(rootOpts)
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(a *app) error {
				id, err := a.tasks.Save(cmd.Context(), user, args[0])
				if err != nil {
					return a.out.Fail("failed to save", err)
				}
				return a.out.Render(createdResult{ID: id}, func(w io.Writer) {
					fmt.Fprintf(w, "Saved task %s\n", id)
				})
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <post-id>",
		Short:         "Show a post",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(a *app) error {
				p, err := a.posts.Get(cmd.Context(), args[0])
				if err != nil {
					return a.out.Fail("failed to show post", err)
				}
				return a.out.Render(p, func(w io.Writer) { writePost(w, p) })
			})
		},
	}
}

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	All bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete [post-id]",
		Short: "Delete a post, or every post with --all",
		Long: `Delete posts. Replies and tasks that reference a deleted post are kept.

Examples:
  thankschain delete <post-id>
  thankschain delete --all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All == (len(args) == 1) {
				return NewExitError(ExitCommandError, "give a post id or --all")
			}
			return withApp(rootOpts, cmd, func(a *app) error {
				if opts.All {
					n, err := a.posts.DeleteAll(cmd.Context())
					if err != nil {
						return a.out.Fail("failed to delete posts", err)
					}
					return a.out.Render(map[string]int{"deleted": n}, func(w io.Writer) {
						fmt.Fprintf(w, "Deleted %d posts\n", n)
					})
				}
				if err := a.posts.Delete(cmd.Context(), args[0]); err != nil {
					return a.out.Fail("failed to delete post", err)
				}
				return a.out.Render(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted %s\n", args[0])
				})
			})
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "delete every post")

	return cmd
}
