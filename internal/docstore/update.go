package docstore

import "strings"

// Path addresses a possibly nested field. Each element is one map key, so
// keys may contain dots: P("likesMap", "user.1") is a single map entry.
type Path []string

// P builds a Path from its segments.
func P(segments ...string) Path {
	return Path(segments)
}

// String renders the path in dotted form for logs and errors.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Update sets the field at Path to Value. Value may be a plain value or a
// Transform.
type Update struct {
	Path  Path
	Value any
}

// Transform is a field value computed by the store at commit time.
//
// This is a sealed interface: Increment, ArrayUnion and ServerTimestamp are
// the only implementations.
type Transform interface {
	transform()
}

// Increment adds By to the current integer value (missing counts as 0).
type Increment struct {
	By int64
}

func (Increment) transform() {}

// ArrayUnion appends each value not already present in the array.
// A missing field is treated as an empty array.
type ArrayUnion struct {
	Values []any
}

func (ArrayUnion) transform() {}

type serverTimestamp struct{}

func (serverTimestamp) transform() {}

// ServerTimestamp resolves to the commit time of the write. Every
// ServerTimestamp in one commit resolves to the same instant.
var ServerTimestamp Transform = serverTimestamp{}

// Inc is shorthand for an Increment update.
func Inc(path Path, by int64) Update {
	return Update{Path: path, Value: Increment{By: by}}
}

// Union is shorthand for an ArrayUnion update.
func Union(path Path, values ...any) Update {
	return Update{Path: path, Value: ArrayUnion{Values: values}}
}

// Now is shorthand for a ServerTimestamp update.
func Now(path Path) Update {
	return Update{Path: path, Value: ServerTimestamp}
}

// Value is shorthand for a plain value update.
func Value(path Path, v any) Update {
	return Update{Path: path, Value: v}
}
