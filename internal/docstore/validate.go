package docstore

import (
	"fmt"
	"regexp"
	"strings"
)

// fieldNamePattern restricts filterable and sortable fields to plain
// identifiers so backends may embed them in index expressions.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError lists every problem found in a query.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidQuery, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}

// Validate checks a query against the capability contract:
//   - collection is set
//   - fields are plain identifiers (or FieldID)
//   - In carries 1..MaxInValues values
//   - NotEquals targets at most one distinct field
//   - filter values are scalars (string, integer, bool, nil)
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	v := &validator{}
	v.validate(q)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	if q.Collection == "" {
		v.addProblem("collection is required")
	}

	inequalities := map[string]bool{}
	for i, f := range q.Filters {
		switch filter := f.(type) {
		case Equals:
			v.checkField(i, filter.Field)
			v.checkScalar(i, filter.Value)
		case NotEquals:
			v.checkField(i, filter.Field)
			v.checkScalar(i, filter.Value)
			inequalities[filter.Field] = true
		case In:
			v.checkField(i, filter.Field)
			if len(filter.Values) == 0 {
				v.addProblem("filter[%d]: in requires at least one value", i)
			}
			if len(filter.Values) > MaxInValues {
				v.addProblem("filter[%d]: in accepts at most %d values, got %d", i, MaxInValues, len(filter.Values))
			}
			for _, val := range filter.Values {
				v.checkScalar(i, val)
			}
		case ArrayContains:
			v.checkField(i, filter.Field)
			v.checkScalar(i, filter.Value)
		case nil:
			v.addProblem("filter[%d]: nil filter", i)
		default:
			v.addProblem("filter[%d]: unsupported filter type %T", i, f)
		}
	}
	if len(inequalities) > 1 {
		v.addProblem("not-equals filters may target only one field, got %d", len(inequalities))
	}

	for i, o := range q.OrderBy {
		if o.Field == FieldID {
			continue
		}
		if !fieldNamePattern.MatchString(o.Field) {
			v.addProblem("order[%d]: invalid field name %q", i, o.Field)
		}
	}

	if q.Limit < 0 {
		v.addProblem("limit must not be negative")
	}
}

func (v *validator) checkField(i int, field string) {
	if field == FieldID {
		return
	}
	if !fieldNamePattern.MatchString(field) {
		v.addProblem("filter[%d]: invalid field name %q", i, field)
	}
}

func (v *validator) checkScalar(i int, value any) {
	switch value.(type) {
	case nil, string, bool, int, int32, int64:
	default:
		v.addProblem("filter[%d]: unsupported value type %T", i, value)
	}
}
