package replog

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/cznic/ql/driver"
)

// qlLog is a Log backed by the embedded QL database, the teacher's
// dependency-free option for development and single-node deployments that
// don't already run MySQL (server/db_ql.go does the same job for bendo's
// item and fixity caches).
type qlLog struct {
	db *sql.DB
}

var _ Log = (*qlLog)(nil)

const qlEventsInit = `
	CREATE TABLE IF NOT EXISTS replog_events (
		replica_dir string,
		kind string,
		uuid string,
		revision_hex string,
		live_name string,
		message string,
		occurred_at time
	);
	CREATE INDEX IF NOT EXISTS replogdir ON replog_events (replica_dir);
	CREATE INDEX IF NOT EXISTS replogtime ON replog_events (occurred_at);
`

// NewQLLog opens a QL-backed replog.Log. filename "memory" keeps
// everything in-process only, matching NewQlCache's own convention.
func NewQLLog(filename string) (Log, error) {
	var db *sql.DB
	var err error
	if filename == "memory" {
		db, err = sql.Open("ql-mem", "replog.db")
	} else {
		db, err = sql.Open("ql", filename)
	}
	if err == nil {
		_, err = performExec(db, qlEventsInit)
	}
	if err != nil {
		log.Printf("replog: open ql: %s", err)
		return nil, err
	}
	return &qlLog{db: db}, nil
}

func (q *qlLog) RecordFullCopy(replicaDir, uuid string, revision []byte, when time.Time) error {
	_, err := performExec(q.db,
		`INSERT INTO replog_events (replica_dir, kind, uuid, revision_hex, occurred_at) VALUES (?1, "full_copy", ?2, ?3, ?4)`,
		replicaDir, uuid, hexString(revision), when)
	return err
}

func (q *qlLog) RecordChangeset(replicaDir string, revision []byte, when time.Time) error {
	_, err := performExec(q.db,
		`INSERT INTO replog_events (replica_dir, kind, revision_hex, occurred_at) VALUES (?1, "changeset", ?2, ?3)`,
		replicaDir, hexString(revision), when)
	return err
}

func (q *qlLog) RecordPromotion(replicaDir, liveName string, when time.Time) error {
	_, err := performExec(q.db,
		`INSERT INTO replog_events (replica_dir, kind, live_name, occurred_at) VALUES (?1, "promotion", ?2, ?3)`,
		replicaDir, liveName, when)
	return err
}

func (q *qlLog) RecordError(replicaDir, message string, when time.Time) error {
	_, err := performExec(q.db,
		`INSERT INTO replog_events (replica_dir, kind, message, occurred_at) VALUES (?1, "error", ?2, ?3)`,
		replicaDir, message, when)
	return err
}

func (q *qlLog) Close() error {
	return q.db.Close()
}

// performExec runs query inside its own transaction, the same shape
// server/db_ql.go uses for every QL write (QL requires DDL/DML to run
// inside an explicit transaction).
func performExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	result, err := tx.Exec(query, args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	err = tx.Commit()
	return result, err
}
