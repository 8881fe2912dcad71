package model

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Normalize trims text and feeling, and drops blank and repeated tags.
// A blank feeling becomes nil.
func (d Draft) Normalize() Draft {
	out := d
	out.Text = strings.TrimSpace(d.Text)
	out.AuthorID = strings.TrimSpace(d.AuthorID)
	if d.Feeling != nil {
		if f := strings.TrimSpace(*d.Feeling); f != "" {
			out.Feeling = &f
		} else {
			out.Feeling = nil
		}
	}
	out.Tags = lo.Uniq(lo.FilterMap(d.Tags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return tag, tag != ""
	}))
	return out
}

// Validate reports missing required content and strings that are not valid
// UTF-8, which the store could not keep byte for byte.
func (d Draft) Validate() error {
	if d.AuthorID == "" {
		return InvalidArgument("author id is required")
	}
	if d.Text == "" {
		return InvalidArgument("text is required")
	}
	if !utf8.ValidString(d.AuthorID) {
		return InvalidArgument("author id is not valid UTF-8")
	}
	if !utf8.ValidString(d.Text) {
		return InvalidArgument("text is not valid UTF-8")
	}
	if d.Feeling != nil && !utf8.ValidString(*d.Feeling) {
		return InvalidArgument("feeling is not valid UTF-8")
	}
	for _, tag := range d.Tags {
		if !utf8.ValidString(tag) {
			return InvalidArgument("tag is not valid UTF-8")
		}
	}
	return nil
}
