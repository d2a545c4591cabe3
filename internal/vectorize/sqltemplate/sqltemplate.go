// Package sqltemplate renders every piece of DDL/DML the job manager,
// change-capture, and search components need, keeping string
// concatenation in one place and every identifier passed through
// pgutils.CheckInput before it reaches a template.
package sqltemplate

import (
	"fmt"
	"strings"

	"github.com/vectorize-go/vectorize/pkg/pgutils"
)

// Schema is the Postgres schema all vectorize objects live under.
const Schema = "vectorize"

// Ident validates name as a safe SQL identifier and returns it
// unchanged, so templates below can be read as a single fmt.Sprintf
// without a wall of separate validation calls.
func Ident(name string) (string, error) {
	if err := pgutils.CheckInput(name); err != nil {
		return "", err
	}
	return name, nil
}

// CreateSchema ensures the vectorize schema exists.
func CreateSchema() string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", Schema)
}

// EmbeddingTableName returns the sidecar embeddings table name for jobName.
func EmbeddingTableName(jobName string) string {
	return "_embeddings_" + jobName
}

// TokensTableName returns the sidecar lexical-tokens table name for jobName.
func TokensTableName(jobName string) string {
	return "_search_tokens_" + jobName
}

// ViewName returns the project view name for jobName.
func ViewName(jobName string) string {
	return jobName + "_view"
}

// CreateEmbeddingTable builds the sidecar table holding one embedding
// vector per source row, foreign-keyed to the source table so deletes
// cascade automatically.
func CreateEmbeddingTable(jobName, joinKey, joinKeyType, srcSchema, srcTable string, dim int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	%[3]s %[4]s PRIMARY KEY REFERENCES %[5]s.%[6]s (%[3]s) ON DELETE CASCADE,
	embeddings vector(%[7]d) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		Schema, EmbeddingTableName(jobName),
		joinKey, joinKeyType,
		srcSchema, srcTable,
		dim,
	)
}

// CreateSearchTokensTable builds the sidecar table holding the
// precomputed tsvector used for the lexical half of hybrid search.
func CreateSearchTokensTable(jobName, joinKey, joinKeyType, srcSchema, srcTable string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	%[3]s %[4]s PRIMARY KEY REFERENCES %[5]s.%[6]s (%[3]s) ON DELETE CASCADE,
	tokens tsvector NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		Schema, TokensTableName(jobName),
		joinKey, joinKeyType,
		srcSchema, srcTable,
	)
}

// CreateProjectView builds the convenience view joining a source table
// to its embedding sidecar. The lexical-tokens sidecar is not part of
// the view.
func CreateProjectView(jobName, srcSchema, srcTable, primaryKey string) string {
	return fmt.Sprintf(`CREATE OR REPLACE VIEW %[1]s.%[2]s AS
SELECT t0.*, e.embeddings, e.updated_at AS embeddings_updated_at
FROM %[3]s.%[4]s t0
INNER JOIN %[1]s.%[5]s e ON t0.%[6]s = e.%[6]s;`,
		Schema, ViewName(jobName),
		srcSchema, srcTable,
		EmbeddingTableName(jobName),
		primaryKey,
	)
}

// DropProjectView drops the project view for jobName, if present.
func DropProjectView(jobName string) string {
	return fmt.Sprintf("DROP VIEW IF EXISTS %s.%s;", Schema, ViewName(jobName))
}

// DropJobTables drops both sidecar tables for jobName, if present.
func DropJobTables(jobName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s.%s; DROP TABLE IF EXISTS %s.%s;",
		Schema, EmbeddingTableName(jobName),
		Schema, TokensTableName(jobName),
	)
}

// HNSWDistance is a pgvector HNSW operator class choice.
type HNSWDistance string

const (
	HNSWCosine HNSWDistance = "vector_cosine_ops"
	HNSWL2     HNSWDistance = "vector_l2_ops"
	HNSWIP     HNSWDistance = "vector_ip_ops"
)

// CreateHNSWIndex builds an HNSW index over the embeddings column
// using the given distance operator class.
func CreateHNSWIndex(jobName string, dist HNSWDistance) string {
	suffix := map[HNSWDistance]string{HNSWCosine: "cos", HNSWL2: "l2", HNSWIP: "ip"}[dist]
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_hnsw_%[2]s_idx ON %[3]s.%[4]s
USING hnsw (embeddings %[5]s);`,
		jobName, suffix, Schema, EmbeddingTableName(jobName), dist,
	)
}

// CreateFTSIndex builds a GIN index over the lexical-tokens sidecar's
// tsvector column.
func CreateFTSIndex(jobName string) string {
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_fts_idx ON %[2]s.%[3]s USING gin (tokens);`,
		jobName, Schema, TokensTableName(jobName),
	)
}

// UpsertTokensQuery refreshes the tsvector sidecar row for a single
// source row, combining srcColumns with a space separator before
// tokenizing, matching the concatenation convention the catalog's
// generate_input_concat step uses for multi-column embedding sources.
func UpsertTokensQuery(jobName, joinKey, srcSchema, srcTable string, srcColumns []string) string {
	concat := strings.Join(srcColumns, " || ' ' || ")
	return fmt.Sprintf(`INSERT INTO %[1]s.%[2]s (%[3]s, tokens, updated_at)
SELECT %[3]s, to_tsvector('english', %[4]s), now()
FROM %[5]s.%[6]s t0
WHERE t0.%[3]s = $1
ON CONFLICT (%[3]s) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = EXCLUDED.updated_at;`,
		Schema, TokensTableName(jobName), joinKey, concat, srcSchema, srcTable,
	)
}

// BulkUpsertTokensQuery is UpsertTokensQuery without the per-row
// WHERE clause, so it tokenizes every row of the source table in one
// statement. Used once at job initialization to synchronously
// backfill the tokens sidecar over rows that already existed before
// the job was created; the per-row form above is what the worker
// calls as each change-capture message is processed afterward.
func BulkUpsertTokensQuery(jobName, joinKey, srcSchema, srcTable string, srcColumns []string) string {
	concat := strings.Join(srcColumns, " || ' ' || ")
	return fmt.Sprintf(`INSERT INTO %[1]s.%[2]s (%[3]s, tokens, updated_at)
SELECT %[3]s, to_tsvector('english', %[4]s), now()
FROM %[5]s.%[6]s t0
ON CONFLICT (%[3]s) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = EXCLUDED.updated_at;`,
		Schema, TokensTableName(jobName), joinKey, concat, srcSchema, srcTable,
	)
}

// InsertEmbeddingQuery upserts a single embedding row by join key.
func InsertEmbeddingQuery(jobName, joinKey string) string {
	return fmt.Sprintf(`INSERT INTO %[1]s.%[2]s (%[3]s, embeddings, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (%[3]s) DO UPDATE SET embeddings = EXCLUDED.embeddings, updated_at = EXCLUDED.updated_at;`,
		Schema, EmbeddingTableName(jobName), joinKey,
	)
}

// CreateTriggerFunction builds the PL/pgSQL function a realtime job's
// insert/update triggers call to enqueue a change-capture message.
func CreateTriggerFunction(jobName, joinKey, queueTable string) string {
	fn := jobName + "_trigger_fn"
	return fmt.Sprintf(`CREATE OR REPLACE FUNCTION %[1]s.%[2]s() RETURNS trigger AS $$
BEGIN
	INSERT INTO %[1]s.%[3]s (message, enqueued_at, vt)
	VALUES (jsonb_build_object('job_name', %[4]s, 'record_ids', jsonb_build_array(NEW.%[5]s::text)), now(), now());
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;`,
		Schema, fn, queueTable, quoteLiteral(jobName), joinKey,
	)
}

// CreateInsertUpdateTriggers attaches the trigger function to INSERT
// and UPDATE OF srcColumns on the source table, matching the Rust
// job.rs convention of firing only when a tracked column changes.
func CreateInsertUpdateTriggers(jobName, srcSchema, srcTable string, srcColumns []string) string {
	fn := jobName + "_trigger_fn"
	insertTrig := fmt.Sprintf(`CREATE TRIGGER %[1]s_insert_trigger
AFTER INSERT ON %[2]s.%[3]s
FOR EACH ROW EXECUTE FUNCTION %[4]s.%[5]s();`,
		jobName, srcSchema, srcTable, Schema, fn,
	)
	updateTrig := fmt.Sprintf(`CREATE TRIGGER %[1]s_update_trigger
AFTER UPDATE OF %[2]s ON %[3]s.%[4]s
FOR EACH ROW EXECUTE FUNCTION %[5]s.%[6]s();`,
		jobName, strings.Join(srcColumns, ", "), srcSchema, srcTable, Schema, fn,
	)
	return insertTrig + "\n" + updateTrig
}

// DropTriggers drops both triggers and the trigger function for jobName.
func DropTriggers(jobName, srcSchema, srcTable string) string {
	fn := jobName + "_trigger_fn"
	return fmt.Sprintf(`DROP TRIGGER IF EXISTS %[1]s_insert_trigger ON %[2]s.%[3]s;
DROP TRIGGER IF EXISTS %[1]s_update_trigger ON %[2]s.%[3]s;
DROP FUNCTION IF EXISTS %[4]s.%[5]s();`,
		jobName, srcSchema, srcTable, Schema, fn,
	)
}

// quoteLiteral wraps s as a SQL string literal, doubling embedded
// single quotes. jobName is validated by CheckInput before reaching
// any template in this package so this never needs to defend against
// injection, only against a bare apostrophe breaking the literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
