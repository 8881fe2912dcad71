package store

import (
	"fmt"
	"strings"

	"github.com/roach88/thankschain/internal/docstore"
)

// compileQuery converts a validated docstore.Query to parameterized SQL.
// Returns (sql, params, error).
//
// Field names are embedded as JSON path literals (they are restricted to
// identifiers by docstore.Validate) so expression indexes apply. Values are
// never interpolated.
//
// MANDATORY: Every query ends with ORDER BY rowid ASC as a stable tiebreaker.
func compileQuery(q docstore.Query) (string, []any, error) {
	where := []string{"collection = ?"}
	params := []any{q.Collection}

	for i, f := range q.Filters {
		sql, fp, err := compileFilter(f)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter[%d]: %w", i, err)
		}
		where = append(where, sql)
		params = append(params, fp...)
	}

	order := make([]string, 0, len(q.OrderBy)+1)
	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Direction == docstore.Descending {
			dir = "DESC"
		}
		order = append(order, fieldExpr(o.Field)+" "+dir)
	}
	order = append(order, "rowid ASC")

	sql := fmt.Sprintf("SELECT id, version, data FROM documents WHERE %s ORDER BY %s",
		strings.Join(where, " AND "),
		strings.Join(order, ", "))

	if q.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, q.Limit)
	}

	return sql, params, nil
}

// compileFilter compiles one filter to a WHERE fragment.
func compileFilter(f docstore.Filter) (string, []any, error) {
	switch filter := f.(type) {
	case docstore.Equals:
		expr := fieldExpr(filter.Field)
		if filter.Value == nil {
			return expr + " IS NULL", nil, nil
		}
		return expr + " = ?", []any{toParam(filter.Value)}, nil

	case docstore.NotEquals:
		expr := fieldExpr(filter.Field)
		if filter.Value == nil {
			return expr + " IS NOT NULL", nil, nil
		}
		return fmt.Sprintf("(%s IS NOT NULL AND %s != ?)", expr, expr), []any{toParam(filter.Value)}, nil

	case docstore.In:
		placeholders := make([]string, len(filter.Values))
		params := make([]any, len(filter.Values))
		for i, v := range filter.Values {
			placeholders[i] = "?"
			params[i] = toParam(v)
		}
		return fmt.Sprintf("%s IN (%s)", fieldExpr(filter.Field), strings.Join(placeholders, ", ")), params, nil

	case docstore.ArrayContains:
		sql := fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(documents.data, '$.%s') AS elem WHERE elem.value = ?)", filter.Field)
		return sql, []any{toParam(filter.Value)}, nil

	default:
		return "", nil, fmt.Errorf("unsupported filter type: %T", f)
	}
}

// fieldExpr returns the SQL expression reading a document field.
func fieldExpr(field string) string {
	if field == docstore.FieldID {
		return "id"
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

// toParam converts a filter value to a driver parameter.
// json_extract yields 1/0 for JSON booleans, so booleans bind as integers.
func toParam(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	default:
		return v
	}
}
