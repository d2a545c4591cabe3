package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFilterValue_DefaultsToEqual(t *testing.T) {
	op, val := ParseFilterValue("42")
	require.Equal(t, FilterEqual, op)
	require.Equal(t, "42", val)
}

func TestParseFilterValue_ParsesOperatorPrefix(t *testing.T) {
	op, val := ParseFilterValue("gt.100")
	require.Equal(t, FilterGreaterThan, op)
	require.Equal(t, "100", val)
}

func TestParseFilterValue_UnknownPrefixTreatedAsLiteral(t *testing.T) {
	op, val := ParseFilterValue("v1.2.3")
	require.Equal(t, FilterEqual, op)
	require.Equal(t, "v1.2.3", val)
}

func TestParseFilters_SkipsReservedKeys(t *testing.T) {
	filters, err := ParseFilters(map[string][]string{
		"job_name": {"docs"},
		"status":   {"gte.1"},
	}, reservedQueryParams)
	require.NoError(t, err)
	require.Len(t, filters, 1)
	require.Equal(t, "status", filters[0].Column)
	require.Equal(t, FilterGreaterThanOrEqual, filters[0].Operator)
}

func TestParseFilters_RejectsUnsafeColumn(t *testing.T) {
	_, err := ParseFilters(map[string][]string{
		"status; DROP TABLE x;--": {"eq.1"},
	}, reservedQueryParams)
	require.Error(t, err)
}

func TestBuildWhereClause_JoinsWithAnd(t *testing.T) {
	clause, err := BuildWhereClause([]Filter{
		{Column: "status", Operator: FilterEqual, Value: "active"},
		{Column: "priority", Operator: FilterGreaterThan, Value: "3"},
	})
	require.NoError(t, err)
	require.Equal(t, "status = 'active' AND priority > '3'", clause)
}

func TestRequest_ApplyDefaults(t *testing.T) {
	req := Request{}
	req.ApplyDefaults()
	require.Equal(t, 10, req.Limit)
	require.Equal(t, 50, req.WindowSize)
	require.Equal(t, 60.0, req.RRFK)
	require.Equal(t, 1.0, req.SemanticWt)
	require.Equal(t, 1.0, req.FTSWt)
}
