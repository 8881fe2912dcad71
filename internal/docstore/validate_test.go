package docstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsContractQueries(t *testing.T) {
	queries := map[string]Query{
		"equality and sort": Query{Collection: "posts"}.
			Where(Eq("authorId", "u1"), Eq("type", "thanks")).
			Sort("timestamp", Descending),
		"array contains": Query{Collection: "posts"}.Where(Contains("likedBy", "u1")),
		"id in":          Query{Collection: "posts"}.Where(AnyOf(FieldID, "a", "b")),
		"single inequality field": Query{Collection: "posts"}.
			Where(Eq("parentAuthorId", "u1"), Neq("authorId", "u1"), Neq("authorId", "u2")),
		"bool and int values": Query{Collection: "tasks"}.Where(Eq("isFinished", true), Eq("depth", 0)),
		"null equality":       Query{Collection: "posts"}.Where(Eq("parentPostId", nil)),
	}

	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(q))
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	q := Query{
		Filters: []Filter{
			Eq("bad field", "x"),
			In{Field: "id"},
			Neq("a", "x"),
			Neq("b", "y"),
			nil,
		},
		OrderBy: []Order{{Field: "$.x"}},
		Limit:   -1,
	}

	err := Validate(q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 7)
}

func TestValidate_InLimit(t *testing.T) {
	values := make([]string, MaxInValues+1)
	for i := range values {
		values[i] = "id"
	}

	err := Validate(Query{Collection: "posts"}.Where(AnyOf(FieldID, values...)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 30 values")

	err = Validate(Query{Collection: "posts"}.Where(AnyOf(FieldID, values[:MaxInValues]...)))
	assert.NoError(t, err)
}

func TestValidate_RejectsNonScalarValues(t *testing.T) {
	err := Validate(Query{Collection: "posts"}.Where(Eq("tags", []any{"a"})))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")

	err = Validate(Query{Collection: "posts"}.Where(Eq("score", 1.5)))
	require.Error(t, err)
}

func TestQueryBuilders_DoNotAlias(t *testing.T) {
	base := Query{Collection: "posts"}.Where(Eq("type", "thanks"))
	a := base.Where(Eq("authorId", "a"))
	b := base.Where(Eq("authorId", "b"))

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, Eq("authorId", "a"), a.Filters[1])
	assert.Equal(t, Eq("authorId", "b"), b.Filters[1])
}
