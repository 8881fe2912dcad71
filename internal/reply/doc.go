// Package reply creates action posts.
//
// A reply is one transaction. It reads the task (when the reply fulfils a
// saved task), the parent and the chain root, then writes:
//
//   - the task's transition to completed, naming the new post
//   - +1 on the parent's actionCount
//   - +1 on the root's actionCount when the root is not the parent
//   - the new post
//
// A concurrent commit to any document read aborts the attempt. The
// Coordinator reruns the whole transaction, re-reading everything, until it
// commits or the retry budget is spent.
package reply
