package model

import (
	"time"

	"github.com/roach88/thankschain/internal/docstore"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "completed"
)

// Task field names.
const (
	FieldUserID            = "userId"
	FieldPostID            = "postId"
	FieldSavedAt           = "savedAt"
	FieldStatus            = "status"
	FieldIsFinished        = "isFinished"
	FieldCompletedAt       = "completedAt"
	FieldCompletedActionID = "completedActionId"
)

// Task is a post a user saved to act on.
//
// IsFinished mirrors Status == TaskDone. CompletedAt and CompletedActionID
// are set together with the transition and never while pending.
type Task struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	PostID            string     `json:"postId"`
	SavedAt           time.Time  `json:"savedAt"`
	Status            TaskStatus `json:"status"`
	IsFinished        bool       `json:"isFinished"`
	CompletedAt       *time.Time `json:"completedAt"`
	CompletedActionID *string    `json:"completedActionId"`
}

// DecodeTask converts a stored document to a Task.
func DecodeTask(doc docstore.Document) Task {
	f := doc.Fields
	return Task{
		ID:                doc.ID,
		UserID:            f.String(FieldUserID),
		PostID:            f.String(FieldPostID),
		SavedAt:           f.Time(FieldSavedAt),
		Status:            TaskStatus(f.String(FieldStatus)),
		IsFinished:        f.Bool(FieldIsFinished),
		CompletedAt:       f.OptionalTime(FieldCompletedAt),
		CompletedActionID: f.OptionalString(FieldCompletedActionID),
	}
}

// DecodeTasks converts documents in order.
func DecodeTasks(docs []docstore.Document) []Task {
	tasks := make([]Task, len(docs))
	for i, doc := range docs {
		tasks[i] = DecodeTask(doc)
	}
	return tasks
}

// PendingTaskFields returns the content of a newly saved task.
func PendingTaskFields(userID, postID string) docstore.Fields {
	return docstore.Fields{
		FieldUserID:            userID,
		FieldPostID:            postID,
		FieldSavedAt:           docstore.ServerTimestamp,
		FieldStatus:            string(TaskPending),
		FieldIsFinished:        false,
		FieldCompletedAt:       nil,
		FieldCompletedActionID: nil,
	}
}

// CompleteTaskUpdates transitions a task to completed by actionID.
func CompleteTaskUpdates(actionID string) []docstore.Update {
	return []docstore.Update{
		docstore.Value(docstore.P(FieldStatus), string(TaskDone)),
		docstore.Value(docstore.P(FieldIsFinished), true),
		docstore.Now(docstore.P(FieldCompletedAt)),
		docstore.Value(docstore.P(FieldCompletedActionID), actionID),
	}
}
