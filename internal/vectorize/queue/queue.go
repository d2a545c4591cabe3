// Package queue implements a durable, Postgres-table-backed FIFO
// queue: one table per queue name, dequeue via SELECT ... FOR UPDATE
// SKIP LOCKED under a visibility timeout. Archive is the single
// terminal state for a message, reached either after a successful
// process or after a message exhausts its read-count budget as a
// poison message; both cases simply remove the row from the active
// table rather than retaining it in a separate archive table.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/vectorize-go/vectorize/internal/vectorize/sqltemplate"
	"github.com/vectorize-go/vectorize/pkg/pgutils"
)

// Message is a single queue entry.
type Message struct {
	ID         int64           `bun:"msg_id,pk,autoincrement"`
	ReadCount  int             `bun:"read_ct,notnull,default:0"`
	EnqueuedAt time.Time       `bun:"enqueued_at,notnull,default:current_timestamp"`
	VisibleAt  time.Time       `bun:"vt,notnull,default:current_timestamp"`
	Payload    json.RawMessage `bun:"message,type:jsonb,notnull"`
}

// Queue is a single named FIFO queue backed by its own table.
type Queue struct {
	db   bun.IDB
	name string
	table string
}

// New builds a Queue bound to name. name is validated with
// pgutils.CheckInput since it is used verbatim as a table-name suffix
// (vectorize.queue_<name>), never as a bound parameter.
func New(db bun.IDB, name string) (*Queue, error) {
	if err := pgutils.CheckInput(name); err != nil {
		return nil, fmt.Errorf("invalid queue name: %w", err)
	}
	return &Queue{db: db, name: name, table: TableName(name)}, nil
}

// TableName returns the table a queue named name is stored in.
func TableName(name string) string {
	return "queue_" + name
}

// CreateTableSQL renders the DDL that creates this queue's table and
// its supporting index on (vt) used by dequeue's SKIP LOCKED scan.
func CreateTableSQL(name string) string {
	table := TableName(name)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	msg_id BIGSERIAL PRIMARY KEY,
	read_ct INTEGER NOT NULL DEFAULT 0,
	enqueued_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	vt TIMESTAMPTZ NOT NULL DEFAULT now(),
	message JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS %[2]s_vt_idx ON %[1]s.%[2]s (vt);`,
		sqltemplate.Schema, table,
	)
}

// Send enqueues payload, immediately visible.
func (q *Queue) Send(ctx context.Context, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal queue payload: %w", err)
	}
	msg := &Message{Payload: body, VisibleAt: time.Now()}
	_, err = q.db.NewInsert().
		Model(msg).
		ModelTableExpr(q.table).
		Returning("msg_id").
		Exec(ctx, &msg.ID)
	if err != nil {
		return 0, fmt.Errorf("send to queue %q: %w", q.name, err)
	}
	return msg.ID, nil
}

// Read dequeues up to batchSize visible messages, hiding them for
// visibilityTimeout by advancing vt, and increments their read count.
// Candidates are selected oldest-first under FOR UPDATE SKIP LOCKED so
// concurrent workers never contend on the same rows.
func (q *Queue) Read(ctx context.Context, batchSize int, visibilityTimeout time.Duration) ([]*Message, error) {
	var msgs []*Message
	err := q.db.NewRaw(fmt.Sprintf(`
WITH candidates AS (
	SELECT msg_id FROM %[1]s.%[2]s
	WHERE vt <= now()
	ORDER BY msg_id
	LIMIT ?
	FOR UPDATE SKIP LOCKED
)
UPDATE %[1]s.%[2]s t
SET vt = now() + ?::interval, read_ct = t.read_ct + 1
FROM candidates
WHERE t.msg_id = candidates.msg_id
RETURNING t.msg_id, t.read_ct, t.enqueued_at, t.vt, t.message`,
		sqltemplate.Schema, q.table),
		batchSize, visibilityTimeout.String(),
	).Scan(ctx, &msgs)
	if err != nil {
		return nil, fmt.Errorf("read from queue %q: %w", q.name, err)
	}
	return msgs, nil
}

// Archive removes a message from the queue table. This is the single
// terminal state for a message; no copy of it is kept.
func (q *Queue) Archive(ctx context.Context, msgID int64) error {
	_, err := q.db.NewDelete().
		ModelTableExpr(q.table).
		Where("msg_id = ?", msgID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("archive message %d from queue %q: %w", msgID, q.name, err)
	}
	return nil
}
