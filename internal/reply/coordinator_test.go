package reply

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
	"github.com/roach88/thankschain/internal/posts"
	"github.com/roach88/thankschain/internal/tasks"
	"github.com/roach88/thankschain/internal/testutil"
)

type fixture struct {
	env   *testutil.Env
	posts *posts.Repository
	tasks *tasks.Repository
	coord *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.OpenStore(t)
	logger := testutil.DiscardLogger()
	return &fixture{
		env:   env,
		posts: posts.New(env.Store, logger),
		tasks: tasks.New(env.Store, logger),
		coord: New(env.Store, docstore.Retrier{MaxAttempts: 100}, logger),
	}
}

func (f *fixture) thanks(t *testing.T, author string) model.Post {
	t.Helper()
	id, err := f.posts.CreateThanks(context.Background(), model.Draft{Text: "thank you", AuthorID: author})
	require.NoError(t, err)
	return f.get(t, id)
}

func (f *fixture) get(t *testing.T, id string) model.Post {
	t.Helper()
	p, err := f.posts.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) countPosts(t *testing.T) int {
	t.Helper()
	docs, err := f.env.Store.Query(context.Background(), docstore.Query{Collection: model.CollectionPosts})
	require.NoError(t, err)
	return len(docs)
}

func draft(author string) model.Draft {
	return model.Draft{Text: "passed it on", AuthorID: author, Tags: []string{"relay"}}
}

func TestAddReply_ToThanks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")

	id, err := f.coord.AddReply(ctx, draft("bob"), DirectPost{PostID: root.ID})
	require.NoError(t, err)

	reply := f.get(t, id)
	assert.Equal(t, model.PostAction, reply.Type)
	assert.Equal(t, int64(1), reply.Depth)
	assert.Equal(t, root.ID, *reply.ParentPostID)
	assert.Equal(t, root.ID, *reply.RootPostID)
	assert.Equal(t, "alice", *reply.ParentAuthorID)
	assert.Equal(t, []string{"relay"}, reply.Tags)
	assert.Equal(t, int64(0), reply.ActionCount)
	assert.Equal(t, int64(0), reply.LikeCount)
	assert.Empty(t, reply.LikedBy)
	assert.True(t, reply.Timestamp.After(root.Timestamp))

	assert.Equal(t, int64(1), f.get(t, root.ID).ActionCount, "parent and root coincide: one increment")
}

func TestAddReply_ToActionIncrementsParentAndRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")

	firstID, err := f.coord.AddReply(ctx, draft("bob"), DirectPost{PostID: root.ID})
	require.NoError(t, err)
	secondID, err := f.coord.AddReply(ctx, draft("carol"), DirectPost{PostID: firstID})
	require.NoError(t, err)

	second := f.get(t, secondID)
	assert.Equal(t, int64(2), second.Depth)
	assert.Equal(t, firstID, *second.ParentPostID)
	assert.Equal(t, root.ID, *second.RootPostID)
	assert.Equal(t, "bob", *second.ParentAuthorID)

	assert.Equal(t, int64(1), f.get(t, firstID).ActionCount)
	assert.Equal(t, int64(2), f.get(t, root.ID).ActionCount)
}

func TestAddReply_ViaTaskCompletesTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")

	taskID, err := f.tasks.Save(ctx, "bob", root.ID)
	require.NoError(t, err)

	id, err := f.coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
	require.NoError(t, err)

	task, err := f.tasks.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, task.Status)
	assert.True(t, task.IsFinished)
	require.NotNil(t, task.CompletedActionID)
	assert.Equal(t, id, *task.CompletedActionID)
	require.NotNil(t, task.CompletedAt)

	reply := f.get(t, id)
	assert.True(t, task.CompletedAt.Equal(reply.Timestamp), "one commit, one server time")
	assert.Equal(t, root.ID, *reply.ParentPostID)
	assert.Equal(t, int64(1), f.get(t, root.ID).ActionCount)
}

func TestAddReply_ViaCompletedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	taskID, _ := f.tasks.Save(ctx, "bob", root.ID)

	_, err := f.coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
	require.NoError(t, err)

	_, err = f.coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
	assert.ErrorIs(t, err, model.ErrTaskCompleted)
	assert.Equal(t, int64(1), f.get(t, root.ID).ActionCount)
	assert.Equal(t, 2, f.countPosts(t))
}

func TestAddReply_TaskNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.AddReply(context.Background(), draft("bob"), ViaTask{TaskID: "missing"})
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestAddReply_ParentNotFoundLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")

	_, err := f.coord.AddReply(ctx, draft("bob"), DirectPost{PostID: "missing"})
	require.ErrorIs(t, err, model.ErrParentNotFound)

	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "missing", me.ID)

	assert.Equal(t, 1, f.countPosts(t), "no orphan post")
	assert.Equal(t, int64(0), f.get(t, root.ID).ActionCount)
}

func TestAddReply_TaskWithDeletedPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	taskID, _ := f.tasks.Save(ctx, "bob", root.ID)
	require.NoError(t, f.posts.Delete(ctx, root.ID))

	_, err := f.coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
	require.ErrorIs(t, err, model.ErrParentNotFound)

	task, _ := f.tasks.Get(ctx, taskID)
	assert.Equal(t, model.TaskPending, task.Status, "task stays pending")
}

func TestAddReply_RootNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	childID, err := f.coord.AddReply(ctx, draft("bob"), DirectPost{PostID: root.ID})
	require.NoError(t, err)
	require.NoError(t, f.posts.Delete(ctx, root.ID))

	_, err = f.coord.AddReply(ctx, draft("carol"), DirectPost{PostID: childID})
	assert.ErrorIs(t, err, model.ErrRootNotFound)
	assert.Equal(t, int64(0), f.get(t, childID).ActionCount)
}

func TestAddReply_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.AddReply(ctx, draft("bob"), nil)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.coord.AddReply(ctx, draft("bob"), DirectPost{})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.coord.AddReply(ctx, draft("bob"), ViaTask{})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.coord.AddReply(ctx, model.Draft{AuthorID: "bob"}, DirectPost{PostID: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestAddReply_ConcurrentRepliesCountEveryCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	parentID, err := f.coord.AddReply(ctx, draft("bob"), DirectPost{PostID: root.ID})
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.AddReply(ctx, draft("carol"), DirectPost{PostID: parentID})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}
	assert.Equal(t, int64(writers), f.get(t, parentID).ActionCount)
	assert.Equal(t, int64(writers+1), f.get(t, root.ID).ActionCount)

	children, err := f.posts.Children(ctx, parentID)
	require.NoError(t, err)
	assert.Len(t, children, writers)
}

func TestAddReply_ConcurrentTaskRepliesCompleteOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	taskID, err := f.tasks.Save(ctx, "bob", root.ID)
	require.NoError(t, err)

	const writers = 5
	var wg sync.WaitGroup
	ids := make([]string, writers)
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = f.coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
		}(i)
	}
	wg.Wait()

	var winner string
	for i, err := range errs {
		if err == nil {
			require.Empty(t, winner, "only one reply may complete the task")
			winner = ids[i]
			continue
		}
		assert.ErrorIs(t, err, model.ErrTaskCompleted)
	}
	require.NotEmpty(t, winner)

	task, _ := f.tasks.Get(ctx, taskID)
	assert.Equal(t, winner, *task.CompletedActionID)
	assert.Equal(t, int64(1), f.get(t, root.ID).ActionCount)
}

// abortingStore runs every transaction body but never commits it.
type abortingStore struct {
	docstore.Store
	mu       sync.Mutex
	attempts int
}

func (s *abortingStore) RunTransaction(ctx context.Context, fn docstore.TxFunc) error {
	s.mu.Lock()
	s.attempts++
	s.mu.Unlock()
	return s.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return docstore.ErrConflict
	})
}

func TestAddReply_AbortedTransactionHasNoEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.thanks(t, "alice")
	taskID, _ := f.tasks.Save(ctx, "bob", root.ID)

	aborting := &abortingStore{Store: f.env.Store}
	coord := New(aborting, docstore.Retrier{MaxAttempts: 3}, testutil.DiscardLogger())

	_, err := coord.AddReply(ctx, draft("bob"), ViaTask{TaskID: taskID})
	require.ErrorIs(t, err, docstore.ErrUnavailable)
	assert.NotErrorIs(t, err, docstore.ErrConflict)
	assert.Equal(t, 3, aborting.attempts)

	task, _ := f.tasks.Get(ctx, taskID)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Nil(t, task.CompletedActionID)
	assert.Equal(t, int64(0), f.get(t, root.ID).ActionCount)
	assert.Equal(t, 1, f.countPosts(t))
}
