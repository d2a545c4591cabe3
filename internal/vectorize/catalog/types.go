// Package catalog holds the job catalog: its persisted schema, an
// in-memory read cache kept fresh by LISTEN/NOTIFY, and the
// repository used to read and write the catalog table directly.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ScheduleRealtime marks a job as trigger-driven rather than cron-scanned.
const ScheduleRealtime = "realtime"

// Model identifies an embedding model by provider tag and name.
type Model struct {
	Source string `bun:"model_source" json:"source"`
	Name   string `bun:"model_name" json:"name"`
}

// String renders the model as "source/name" for logging.
func (m Model) String() string {
	return m.Source + "/" + m.Name
}

// Job is a catalog row: a declarative mapping from a source column to
// its embedding sidecar.
type Job struct {
	bun.BaseModel `bun:"table:vectorize.job,alias:j"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	JobName       string    `bun:"job_name,unique,notnull"`
	SrcSchema     string    `bun:"src_schema,notnull"`
	SrcTable      string    `bun:"src_table,notnull"`
	SrcColumn     string    `bun:"src_column,notnull"`
	PrimaryKey    string    `bun:"primary_key,notnull"`
	PkeyType      string    `bun:"pkey_type,notnull"`
	UpdateTimeCol string    `bun:"update_time_col"`
	ModelSource   string    `bun:"model_source,notnull"`
	ModelName     string    `bun:"model_name,notnull"`
	Dimension     int       `bun:"dimension,notnull"`
	Schedule      string    `bun:"schedule,notnull,default:'realtime'"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Model returns the structured model identifier for this job.
func (j *Job) Model() Model {
	return Model{Source: j.ModelSource, Name: j.ModelName}
}

// IsRealtime reports whether the job is trigger-driven rather than
// scanned on a cron schedule.
func (j *Job) IsRealtime() bool {
	return j.Schedule == "" || j.Schedule == ScheduleRealtime
}

// EmbeddingTableName returns the sidecar embedding table name for this job.
func (j *Job) EmbeddingTableName() string {
	return "_embeddings_" + j.JobName
}

// TokensTableName returns the sidecar lexical-tokens table name for this job.
func (j *Job) TokensTableName() string {
	return "_search_tokens_" + j.JobName
}

// ViewName returns the project view name for this job.
func (j *Job) ViewName() string {
	return j.JobName + "_view"
}

// ChangeOperation enumerates catalog change-notification payload kinds.
type ChangeOperation string

const (
	ChangeInsert ChangeOperation = "INSERT"
	ChangeUpdate ChangeOperation = "UPDATE"
	ChangeDelete ChangeOperation = "DELETE"
)

// ChangeNotification names the two fields of a catalog change. The
// job manager's notifications carry them as plain text
// "OPERATION:job_name" (for example "INSERT:docs"), not in this JSON
// shape, and Listener reloads the whole catalog without reading the
// payload.
type ChangeNotification struct {
	Operation ChangeOperation `json:"operation"`
	JobName   string          `json:"job_name"`
}
