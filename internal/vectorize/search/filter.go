package search

import (
	"fmt"
	"strings"

	"github.com/vectorize-go/vectorize/pkg/pgutils"
)

// FilterOperator is a comparison operator accepted in a "column=op.value"
// query-string filter.
type FilterOperator string

const (
	FilterEqual              FilterOperator = "eq"
	FilterGreaterThan        FilterOperator = "gt"
	FilterGreaterThanOrEqual FilterOperator = "gte"
	FilterLessThan           FilterOperator = "lt"
	FilterLessThanOrEqual    FilterOperator = "lte"
)

// ToSQL renders the operator as its SQL comparison symbol.
func (op FilterOperator) ToSQL() (string, error) {
	switch op {
	case FilterEqual:
		return "=", nil
	case FilterGreaterThan:
		return ">", nil
	case FilterGreaterThanOrEqual:
		return ">=", nil
	case FilterLessThan:
		return "<", nil
	case FilterLessThanOrEqual:
		return "<=", nil
	default:
		return "", fmt.Errorf("unknown filter operator %q", op)
	}
}

// Filter is a single parsed column filter.
type Filter struct {
	Column   string
	Operator FilterOperator
	Value    string
}

// ParseFilterValue parses a query-string filter value in
// "operator.value" format (e.g. "gt.100"), defaulting to equality
// when no recognized "op." prefix is present — the same convention
// and default the original search endpoint's FilterValue deserializer
// uses.
func ParseFilterValue(raw string) (FilterOperator, string) {
	dot := strings.Index(raw, ".")
	if dot < 0 {
		return FilterEqual, raw
	}
	candidate := FilterOperator(raw[:dot])
	switch candidate {
	case FilterEqual, FilterGreaterThan, FilterGreaterThanOrEqual, FilterLessThan, FilterLessThanOrEqual:
		return candidate, raw[dot+1:]
	default:
		return FilterEqual, raw
	}
}

// ParseFilters builds Filter values from a query-string parameter map,
// skipping the reserved keys every search request already binds as
// named parameters. Both column names and values are validated with
// pgutils.CheckInput before being handed to BuildWhereClause, since
// values here are interpolated as literals rather than bound
// parameters (the column and operator vary per filter, so building a
// single parameterized IN-style query isn't practical; CheckInput is
// the injection defense instead).
func ParseFilters(params map[string][]string, reserved map[string]bool) ([]Filter, error) {
	var filters []Filter
	for key, values := range params {
		if reserved[key] || len(values) == 0 {
			continue
		}
		if err := pgutils.CheckInput(key); err != nil {
			return nil, fmt.Errorf("invalid filter column %q: %w", key, err)
		}
		op, value := ParseFilterValue(values[0])
		if err := pgutils.CheckInput(value); err != nil {
			return nil, fmt.Errorf("invalid filter value for column %q: %w", key, err)
		}
		filters = append(filters, Filter{Column: key, Operator: op, Value: value})
	}
	return filters, nil
}

// BuildWhereClause renders filters as a SQL "AND"-joined predicate
// list, or "" if there are none.
func BuildWhereClause(filters []Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		sym, err := f.Operator.ToSQL()
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s %s '%s'", f.Column, sym, f.Value))
	}
	return strings.Join(parts, " AND "), nil
}
