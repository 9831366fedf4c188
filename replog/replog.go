// Package replog implements the advisory replication audit log described
// in SPEC_FULL.md §4.7: a record of full copies, changesets, promotions and
// errors, backed by either MySQL (schema-versioned) or the embedded QL
// database (no version table). It has no bearing on correctness - the
// replicated database and its stub pointer remain the source of truth -
// it exists purely so an operator can answer "when did this replica last
// catch up" without reading it back out of the wire protocol.
package replog

import "time"

// Log records replication events for one or more replicas. Every method
// is best-effort: a failing write is logged by the caller and otherwise
// ignored, matching spec.md §7's "propagation policy" for non-essential
// sub-steps.
type Log interface {
	RecordFullCopy(replicaDir, uuid string, revision []byte, when time.Time) error
	RecordChangeset(replicaDir string, revision []byte, when time.Time) error
	RecordPromotion(replicaDir, liveName string, when time.Time) error
	RecordError(replicaDir, message string, when time.Time) error

	Close() error
}
