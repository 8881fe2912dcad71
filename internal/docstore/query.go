package docstore

// FieldID addresses the document id in filters.
const FieldID = "__name__"

// MaxInValues is the largest value list accepted by an In filter.
const MaxInValues = 30

// Query selects documents from one collection.
//
// Semantics:
//
//	SELECT * FROM <Collection> WHERE <Filters...> ORDER BY <OrderBy...> LIMIT <Limit>
//
// Filters are combined with AND. Documents that tie on every OrderBy key are
// returned in insertion order. Limit <= 0 means no limit.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    []Order
	Limit      int
}

// Where appends filters and returns the query for chaining.
func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

// Sort appends an order key and returns the query for chaining.
func (q Query) Sort(field string, dir Direction) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Direction: dir})
	return q
}

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Order is one sort key.
type Order struct {
	Field     string
	Direction Direction
}

// Filter is a query predicate.
//
// This is a sealed interface - only types in this package implement it, so
// backends can switch over filters exhaustively.
type Filter interface {
	filterNode()
}

// Equals matches documents whose Field equals Value. A nil Value matches
// missing and null fields.
type Equals struct {
	Field string
	Value any
}

func (Equals) filterNode() {}

// NotEquals matches documents whose Field is present, non-null and differs
// from Value.
type NotEquals struct {
	Field string
	Value any
}

func (NotEquals) filterNode() {}

// In matches documents whose Field equals any of Values (at most MaxInValues).
type In struct {
	Field  string
	Values []any
}

func (In) filterNode() {}

// ArrayContains matches documents whose array Field contains Value.
type ArrayContains struct {
	Field string
	Value any
}

func (ArrayContains) filterNode() {}

// Eq is shorthand for an Equals filter.
func Eq(field string, value any) Filter { return Equals{Field: field, Value: value} }

// Neq is shorthand for a NotEquals filter.
func Neq(field string, value any) Filter { return NotEquals{Field: field, Value: value} }

// AnyOf is shorthand for an In filter over string values.
func AnyOf(field string, values ...string) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return In{Field: field, Values: vs}
}

// Contains is shorthand for an ArrayContains filter.
func Contains(field string, value any) Filter { return ArrayContains{Field: field, Value: value} }
