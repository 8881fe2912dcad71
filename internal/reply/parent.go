package reply

// ParentRef names what a reply answers.
//
// This is a sealed interface: DirectPost and ViaTask are the only
// implementations.
type ParentRef interface {
	parentRef()
}

// DirectPost replies to a post by id.
type DirectPost struct {
	PostID string
}

func (DirectPost) parentRef() {}

// ViaTask replies to the post a saved task points at, and completes the task.
type ViaTask struct {
	TaskID string
}

func (ViaTask) parentRef() {}
