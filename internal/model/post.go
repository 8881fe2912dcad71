package model

import (
	"time"

	"github.com/roach88/thankschain/internal/docstore"
)

// PostType distinguishes chain roots from replies.
type PostType string

const (
	PostThanks PostType = "thanks"
	PostAction PostType = "action"
)

// Post field names.
const (
	FieldType           = "type"
	FieldText           = "text"
	FieldFeeling        = "feeling"
	FieldTags           = "tags"
	FieldAuthorID       = "authorId"
	FieldIsAnonymous    = "isAnonymous"
	FieldTimestamp      = "timestamp"
	FieldLikeCount      = "likeCount"
	FieldLikesMap       = "likesMap"
	FieldLikedBy        = "likedBy"
	FieldActionCount    = "actionCount"
	FieldDepth          = "depth"
	FieldParentPostID   = "parentPostId"
	FieldRootPostID     = "rootPostId"
	FieldParentAuthorID = "parentAuthorId"
)

// Post is a thanks or action document.
type Post struct {
	ID          string    `json:"id"`
	Type        PostType  `json:"type"`
	Text        string    `json:"text"`
	Feeling     *string   `json:"feeling"`
	Tags        []string  `json:"tags"`
	AuthorID    string    `json:"authorId"`
	IsAnonymous bool      `json:"isAnonymous"`
	Timestamp   time.Time `json:"timestamp"`

	LikeCount int64            `json:"likeCount"`
	LikesMap  map[string]int64 `json:"likesMap"`
	LikedBy   []string         `json:"likedBy"`

	ActionCount int64 `json:"actionCount"`
	Depth       int64 `json:"depth"`

	// Nil on thanks posts.
	ParentPostID   *string `json:"parentPostId"`
	RootPostID     *string `json:"rootPostId"`
	ParentAuthorID *string `json:"parentAuthorId"`
}

// IsRoot reports whether p starts a chain.
func (p Post) IsRoot() bool {
	return p.Type == PostThanks
}

// ChainRoot returns the id of the thanks post p belongs to.
func (p Post) ChainRoot() string {
	if p.IsRoot() || p.RootPostID == nil {
		return p.ID
	}
	return *p.RootPostID
}

// Draft is the author-supplied content of a new post.
type Draft struct {
	Text        string
	Feeling     *string
	Tags        []string
	AuthorID    string
	IsAnonymous bool
}

// DecodePost converts a stored document to a Post.
func DecodePost(doc docstore.Document) Post {
	f := doc.Fields
	return Post{
		ID:             doc.ID,
		Type:           PostType(f.String(FieldType)),
		Text:           f.String(FieldText),
		Feeling:        f.OptionalString(FieldFeeling),
		Tags:           f.Strings(FieldTags),
		AuthorID:       f.String(FieldAuthorID),
		IsAnonymous:    f.Bool(FieldIsAnonymous),
		Timestamp:      f.Time(FieldTimestamp),
		LikeCount:      f.Int(FieldLikeCount),
		LikesMap:       f.IntMap(FieldLikesMap),
		LikedBy:        f.Strings(FieldLikedBy),
		ActionCount:    f.Int(FieldActionCount),
		Depth:          f.Int(FieldDepth),
		ParentPostID:   f.OptionalString(FieldParentPostID),
		RootPostID:     f.OptionalString(FieldRootPostID),
		ParentAuthorID: f.OptionalString(FieldParentAuthorID),
	}
}

// DecodePosts converts documents in order.
func DecodePosts(docs []docstore.Document) []Post {
	posts := make([]Post, len(docs))
	for i, doc := range docs {
		posts[i] = DecodePost(doc)
	}
	return posts
}

// ThanksFields returns the initial content of a chain root.
// The timestamp is assigned by the store at commit.
func ThanksFields(d Draft) docstore.Fields {
	f := baseFields(d, PostThanks)
	f[FieldDepth] = int64(0)
	f[FieldParentPostID] = nil
	f[FieldRootPostID] = nil
	f[FieldParentAuthorID] = nil
	return f
}

// ActionFields returns the initial content of a reply to parent within the
// chain rooted at rootID.
func ActionFields(d Draft, parent Post, rootID string) docstore.Fields {
	f := baseFields(d, PostAction)
	f[FieldDepth] = parent.Depth + 1
	f[FieldParentPostID] = parent.ID
	f[FieldRootPostID] = rootID
	f[FieldParentAuthorID] = parent.AuthorID
	return f
}

func baseFields(d Draft, t PostType) docstore.Fields {
	var feeling any
	if d.Feeling != nil {
		feeling = *d.Feeling
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return docstore.Fields{
		FieldType:        string(t),
		FieldText:        d.Text,
		FieldFeeling:     feeling,
		FieldTags:        tags,
		FieldAuthorID:    d.AuthorID,
		FieldIsAnonymous: d.IsAnonymous,
		FieldTimestamp:   docstore.ServerTimestamp,
		FieldLikeCount:   int64(0),
		FieldLikesMap:    map[string]int64{},
		FieldLikedBy:     []string{},
		FieldActionCount: int64(0),
	}
}
