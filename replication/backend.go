package replication

import "time"

// Backend stands in for the out-of-scope storage engine collaborator: the
// only thing the replication core needs from it is the ability to open a
// subdatabase rooted at a path.
type Backend interface {
	// Open opens (or creates, if create is true) the single subdatabase
	// rooted at path.
	Open(path string, create bool) (SubDatabase, error)
}

// SubDatabase is a single opened database, on either the master or replica
// side. The replication core only ever calls these methods; it never
// inspects the on-disk layout a Backend chooses to use.
type SubDatabase interface {
	// UUID identifies this database across copies; it is preserved by a
	// full copy and compared to decide whether a start-revision token
	// requests a full copy or a catch-up.
	UUID() string

	// Revision returns the backend's current opaque revision blob.
	Revision() []byte

	// CheckRevisionAtLeast reports whether current is at or beyond needed,
	// using whatever revision ordering the backend defines.
	CheckRevisionAtLeast(current, needed []byte) bool

	// WriteChangesetsToStream is called on the master side. It emits the
	// message sequence from spec §6 on ch: either a single full copy
	// (MsgDBHeader/MsgDBFilename/MsgDBFiledata.../MsgDBFooter) when
	// needWholeDB is true, or one MsgChangeset per revision between
	// startRevision and the backend's current revision, terminated by
	// MsgEndOfChanges. info, if non-nil, is updated as changesets are sent.
	WriteChangesetsToStream(ch ServerChannel, startRevision []byte, needWholeDB bool, info *ReplicationInfo, deadline time.Time) error

	// ApplyChangesetFromStream is called on the replica side to apply one
	// already-peeked MsgChangeset frame's payload (ch.Receive has not yet
	// been called; the implementation calls it). Returns the revision the
	// database is at afterward.
	ApplyChangesetFromStream(ch ClientChannel, deadline time.Time) (newRevision []byte, err error)

	// Close releases any resources held by this SubDatabase. It is safe to
	// call Close on an already-closed SubDatabase.
	Close() error
}

// ReplicationInfo is an externally-owned counters struct the core mutates
// only when non-nil, mirroring spec.md's ReplicationInfo entity.
type ReplicationInfo struct {
	ChangesetsApplied int
	FullCopiesApplied int
	Changed           bool
}

// Reset clears the counters. Callers are expected to call this before
// starting a new write_changesets/apply_next_changeset sequence they want
// fresh counts for.
func (ri *ReplicationInfo) Reset() {
	if ri == nil {
		return
	}
	*ri = ReplicationInfo{}
}
