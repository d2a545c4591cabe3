package sqltemplate

import (
	"fmt"
	"strings"
)

// HybridSearchQuery builds a reciprocal-rank-fusion query combining a
// pgvector cosine kNN candidate set with a Postgres full-text search
// candidate set. Both candidate sets are computed to windowSize rows,
// ranked independently, fused by 1/(rrfK+rank), and truncated to
// limit. windowSize is intentionally larger than limit: RRF needs a
// wide candidate pool from each side to fuse well, the same reasoning
// the teacher's dual-candidate search.go applies to its z-score
// fusion, generalized here to rank-based fusion instead.
//
// A candidate absent from one side — present in the semantic window
// but never reaching the lexical window, or vice versa — does not
// contribute zero on that side. Its missing rank is substituted with
// windowSize+1, the worst rank a candidate could have within the
// window, so it still receives a small nonzero contribution rather
// than being penalized as if it scored "no match" there.
//
// filterClause, if non-empty, is ANDed into both candidate CTEs' WHERE
// clause. It runs against the project view, which carries every
// source column alongside the embedding, so arbitrary source-table
// filters narrow the candidate pool before fusion rather than after
// the result set has already been collapsed to (record_id, score).
//
// returnCols lists the source columns (already validated identifiers)
// to project into the returned "result" JSON object for each row,
// matching the hybrid search endpoint's contract of returning full
// row objects rather than bare (record_id, score) pairs.
//
// Bind order: $1 query embedding vector literal, $2 tsquery text, $3
// window size, $4 rrf_k, $5 semantic weight, $6 lexical weight, $7
// worst-case rank (windowSize+1), $8 result limit.
func HybridSearchQuery(jobName, primaryKey, filterClause string, returnCols []string) string {
	view := ViewName(jobName)
	tokensTable := TokensTableName(jobName)

	semanticFilter := ""
	lexicalFilter := ""
	if filterClause != "" {
		semanticFilter = "WHERE " + filterClause
		lexicalFilter = "AND " + filterClause
	}

	resultObj := make([]string, 0, len(returnCols))
	for _, col := range returnCols {
		resultObj = append(resultObj, fmt.Sprintf("'%s', v.%s", col, col))
	}
	resultExpr := "jsonb_build_object(" + strings.Join(resultObj, ", ") + ")"

	return fmt.Sprintf(`WITH semantic AS (
	SELECT %[2]s, ROW_NUMBER() OVER (ORDER BY embeddings <=> $1::vector) AS rank
	FROM %[1]s.%[3]s
	%[5]s
	ORDER BY embeddings <=> $1::vector
	LIMIT $3
),
lexical AS (
	SELECT t.%[2]s, ROW_NUMBER() OVER (ORDER BY ts_rank(tok.tokens, websearch_to_tsquery('english', $2)) DESC) AS rank
	FROM %[1]s.%[3]s t
	JOIN %[1]s.%[4]s tok ON tok.%[2]s = t.%[2]s
	WHERE tok.tokens @@ websearch_to_tsquery('english', $2)
	%[6]s
	ORDER BY ts_rank(tok.tokens, websearch_to_tsquery('english', $2)) DESC
	LIMIT $3
),
fused AS (
	SELECT
		COALESCE(s.%[2]s, l.%[2]s) AS record_id,
		$5 / ($4 + COALESCE(s.rank, $7)) + $6 / ($4 + COALESCE(l.rank, $7)) AS score
	FROM semantic s
	FULL OUTER JOIN lexical l ON s.%[2]s = l.%[2]s
)
SELECT
	fused.record_id,
	fused.score,
	%[7]s AS result
FROM fused
JOIN %[1]s.%[3]s v ON v.%[2]s = fused.record_id
ORDER BY fused.score DESC
LIMIT $8;`,
		Schema, primaryKey, view, tokensTable, semanticFilter, lexicalFilter, resultExpr,
	)
}
