package replog

import (
	"database/sql"
	"log"
	"time"

	"github.com/BurntSushi/migration"
	_ "github.com/go-sql-driver/mysql"
)

// mysqlLog is a Log backed by MySQL, for production deployments that
// already run a MySQL instance for other bookkeeping.
type mysqlLog struct {
	db *sql.DB
}

var _ Log = (*mysqlLog)(nil)

var mysqlMigrations = []migration.Migrator{
	mysqlSchema1,
}

var mysqlVersioning = dbVersion{
	GetSQL:    `SELECT max(version) FROM replog_migration_version`,
	SetSQL:    `INSERT INTO replog_migration_version (version, applied) VALUES (?, now())`,
	CreateSQL: `CREATE TABLE replog_migration_version (version INTEGER, applied datetime)`,
}

func mysqlSchema1(tx migration.LimitedTx) error {
	_, err := tx.Exec(`
		CREATE TABLE replog_events (
			id INTEGER AUTO_INCREMENT PRIMARY KEY,
			replica_dir VARCHAR(1024),
			kind VARCHAR(32),
			uuid VARCHAR(64),
			revision_hex VARCHAR(64),
			live_name VARCHAR(255),
			message TEXT,
			occurred_at DATETIME
		)`)
	return err
}

// NewMySQLLog opens (creating and migrating if needed) a replog.Log backed
// by the MySQL database named by dial, in the form go-sql-driver/mysql
// expects.
func NewMySQLLog(dial string) (Log, error) {
	db, err := migration.OpenWith(
		"mysql",
		dial,
		mysqlMigrations,
		mysqlVersioning.Get,
		mysqlVersioning.Set)
	if err != nil {
		log.Printf("replog: open mysql: %s", err)
		return nil, err
	}
	return &mysqlLog{db: db}, nil
}

func (m *mysqlLog) RecordFullCopy(replicaDir, uuid string, revision []byte, when time.Time) error {
	_, err := m.db.Exec(
		`INSERT INTO replog_events (replica_dir, kind, uuid, revision_hex, occurred_at) VALUES (?, 'full_copy', ?, ?, ?)`,
		replicaDir, uuid, hexString(revision), when)
	return err
}

func (m *mysqlLog) RecordChangeset(replicaDir string, revision []byte, when time.Time) error {
	_, err := m.db.Exec(
		`INSERT INTO replog_events (replica_dir, kind, revision_hex, occurred_at) VALUES (?, 'changeset', ?, ?)`,
		replicaDir, hexString(revision), when)
	return err
}

func (m *mysqlLog) RecordPromotion(replicaDir, liveName string, when time.Time) error {
	_, err := m.db.Exec(
		`INSERT INTO replog_events (replica_dir, kind, live_name, occurred_at) VALUES (?, 'promotion', ?, ?)`,
		replicaDir, liveName, when)
	return err
}

func (m *mysqlLog) RecordError(replicaDir, message string, when time.Time) error {
	_, err := m.db.Exec(
		`INSERT INTO replog_events (replica_dir, kind, message, occurred_at) VALUES (?, 'error', ?, ?)`,
		replicaDir, message, when)
	return err
}

func (m *mysqlLog) Close() error {
	return m.db.Close()
}
