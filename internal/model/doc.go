// Package model defines the gratitude chain documents and their errors.
//
// A chain starts with a thanks post (depth 0). Replies are action posts that
// point at their parent and at the chain's root. A task records that a user
// saved a post to act on later; it becomes completed when the user's reply
// is created through it.
//
// Documents are stored as docstore.Fields. The Decode and Fields functions
// in this package are the only place field names are spelled out.
package model

// Collections.
const (
	CollectionPosts = "posts"
	CollectionTasks = "tasks"
)
