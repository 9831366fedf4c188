// Package memdb is a reference implementation of replication.Backend used
// by this module's tests and demo binaries. It is deliberately not a real
// search-index storage engine: revisions are a monotonic uint64 counter,
// and a changeset is a gob-encoded set of key/value edits. It exists to
// exercise every branch of the replica applier's state machine and to let
// tests verify round-trip and crash-resumption properties without a real
// backend.
package memdb

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ndlib/dbreplicate/replication"
)

// dataFileName holds the gob-encoded key/value map for a subdatabase.
const dataFileName = "data.gob"

// revisionFileName holds the subdatabase's current revision, big-endian
// uint64, matching the "opaque backend revision" spec.md treats as a blob.
const revisionFileName = "revision"

// uuidFileName holds the subdatabase's UUID as plain text.
const uuidFileName = "uuid"

// Backend is the one concrete replication.Backend this module ships.
type Backend struct{}

var _ replication.Backend = Backend{}

// New returns a memdb Backend. There is no state to hold; every Open call
// is independent.
func New() Backend { return Backend{} }

// Open opens (or creates) the subdatabase rooted at path.
func (Backend) Open(path string, create bool) (replication.SubDatabase, error) {
	if create {
		if err := os.MkdirAll(path, 0775); err != nil {
			return nil, replication.NewDatabaseOpeningError("create memdb directory", err)
		}
	}
	db := &SubDatabase{path: path}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

// SubDatabase is memdb's replication.SubDatabase. Every write to the
// in-memory map sets a new revision number and is followed by a full
// rewrite of the on-disk data and revision files, written in place (no temp
// file, rename or fsync).
type SubDatabase struct {
	mu       sync.Mutex
	path     string
	uuid     string
	revision uint64
	data     map[string][]byte
}

var _ replication.SubDatabase = (*SubDatabase)(nil)

func (db *SubDatabase) load() error {
	db.data = make(map[string][]byte)

	uuidPath := filepath.Join(db.path, uuidFileName)
	if b, err := ioutil.ReadFile(uuidPath); err == nil {
		db.uuid = string(b)
	} else if os.IsNotExist(err) {
		db.uuid = newUUID()
		if err := ioutil.WriteFile(uuidPath, []byte(db.uuid), 0644); err != nil {
			return replication.NewDatabaseOpeningError("write memdb uuid", err)
		}
	} else {
		return replication.NewDatabaseOpeningError("read memdb uuid", err)
	}

	if b, err := ioutil.ReadFile(filepath.Join(db.path, revisionFileName)); err == nil && len(b) == 8 {
		db.revision = binary.BigEndian.Uint64(b)
	}

	if b, err := ioutil.ReadFile(filepath.Join(db.path, dataFileName)); err == nil {
		dec := gob.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&db.data); err != nil {
			return replication.NewDatabaseOpeningError("decode memdb data file", err)
		}
	} else if !os.IsNotExist(err) {
		return replication.NewDatabaseOpeningError("read memdb data file", err)
	}
	return nil
}

// UUID implements replication.SubDatabase.
func (db *SubDatabase) UUID() string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.uuid
}

// Revision implements replication.SubDatabase.
func (db *SubDatabase) Revision() []byte {
	db.mu.Lock()
	defer db.mu.Unlock()
	return encodeRevision(db.revision)
}

// CheckRevisionAtLeast implements replication.SubDatabase.
func (db *SubDatabase) CheckRevisionAtLeast(current, needed []byte) bool {
	return decodeRevision(current) >= decodeRevision(needed)
}

// Close implements replication.SubDatabase. memdb holds no open file
// descriptors between calls, so Close is a no-op.
func (db *SubDatabase) Close() error { return nil }

// edit is one gob-encoded changeset: a set of key/value writes and a set of
// deleted keys, applied atomically.
type edit struct {
	Set    map[string][]byte
	Delete []string
}

// WriteChangesetsToStream implements replication.SubDatabase. If
// needWholeDB is true it emits a full copy (one file: the gob-encoded data
// map); otherwise, if startRevision is behind the current revision, it
// emits a single changeset that brings the replica to the current revision.
func (db *SubDatabase) WriteChangesetsToStream(ch replication.ServerChannel, startRevision []byte, needWholeDB bool, info *replication.ReplicationInfo, deadline time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if needWholeDB {
		return db.writeFullCopy(ch, deadline, info)
	}

	start := decodeRevision(startRevision)
	if start >= db.revision {
		return ch.Send(replication.MsgEndOfChanges, nil, deadline)
	}

	// memdb keeps only its latest state, so it cannot replay individual
	// historical changesets; it sends a single synthetic changeset that
	// brings the replica straight to the current revision. Real backends
	// would instead iterate their changeset log.
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	e := edit{Set: copyMap(db.data)}
	if err := enc.Encode(&e); err != nil {
		return replication.NewInvalidOperation("encode memdb changeset", err)
	}
	payload := append(encodeRevision(db.revision), buf.Bytes()...)
	if err := ch.Send(replication.MsgChangeset, payload, deadline); err != nil {
		return err
	}
	if info != nil {
		info.ChangesetsApplied++
		info.Changed = true
	}
	return ch.Send(replication.MsgEndOfChanges, nil, deadline)
}

// writeFullCopy sends the three files that make up memdb's on-disk
// representation (uuid, revision, data) as DB_FILENAME/DB_FILEDATA pairs, so
// a replica that lands them in its offline directory and opens them with
// Backend.Open reports the same UUID and revision as the master.
func (db *SubDatabase) writeFullCopy(ch replication.ServerChannel, deadline time.Time, info *replication.ReplicationInfo) error {
	token := replication.EncodeToken([]byte(db.uuid), encodeRevision(db.revision))
	if err := ch.Send(replication.MsgDBHeader, token, deadline); err != nil {
		return err
	}

	var dataBuf bytes.Buffer
	if err := gob.NewEncoder(&dataBuf).Encode(db.data); err != nil {
		return replication.NewInvalidOperation("encode memdb full copy", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{uuidFileName, []byte(db.uuid)},
		{revisionFileName, encodeRevision(db.revision)},
		{dataFileName, dataBuf.Bytes()},
	}
	for _, f := range files {
		if err := ch.Send(replication.MsgDBFilename, []byte(f.name), deadline); err != nil {
			return err
		}
		if err := ch.Send(replication.MsgDBFiledata, f.data, deadline); err != nil {
			return err
		}
	}

	if err := ch.Send(replication.MsgDBFooter, encodeRevision(db.revision), deadline); err != nil {
		return err
	}
	if info != nil {
		info.FullCopiesApplied++
		info.Changed = true
	}
	return ch.Send(replication.MsgEndOfChanges, nil, deadline)
}

// ApplyChangesetFromStream implements replication.SubDatabase.
func (db *SubDatabase) ApplyChangesetFromStream(ch replication.ClientChannel, deadline time.Time) ([]byte, error) {
	payload, err := ch.Receive(deadline)
	if err != nil {
		return nil, err
	}
	if len(payload) < 8 {
		return nil, replication.NewNetworkError("memdb changeset payload too short", nil)
	}
	newRevision := payload[:8]
	var e edit
	dec := gob.NewDecoder(bytes.NewReader(payload[8:]))
	if err := dec.Decode(&e); err != nil {
		return nil, replication.NewNetworkError("decode memdb changeset", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range e.Set {
		db.data[k] = v
	}
	for _, k := range e.Delete {
		delete(db.data, k)
	}
	db.revision = decodeRevision(newRevision)
	if err := db.persist(); err != nil {
		return nil, err
	}
	return encodeRevision(db.revision), nil
}

// persist rewrites the data and revision files. Caller must hold db.mu.
func (db *SubDatabase) persist() error {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(db.data); err != nil {
		return replication.NewInvalidOperation("encode memdb data for persist", err)
	}
	if err := ioutil.WriteFile(filepath.Join(db.path, dataFileName), buf.Bytes(), 0644); err != nil {
		return replication.NewDatabaseOpeningError("write memdb data file", err)
	}
	if err := ioutil.WriteFile(filepath.Join(db.path, revisionFileName), encodeRevision(db.revision), 0644); err != nil {
		return replication.NewDatabaseOpeningError("write memdb revision file", err)
	}
	return nil
}

// Put stages a key/value write and advances the revision by one. It is a
// test/demo convenience, not part of replication.SubDatabase.
func (db *SubDatabase) Put(key string, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[key] = value
	db.revision++
	return db.persist()
}

// Get returns the value stored for key, and whether it was present.
func (db *SubDatabase) Get(key string) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	v, ok := db.data[key]
	return v, ok
}

// Keys returns a sorted snapshot of the keys currently stored.
func (db *SubDatabase) Keys() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	keys := make([]string, 0, len(db.data))
	for k := range db.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func encodeRevision(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func decodeRevision(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// newUUID generates a 16-byte random UUID rendered as hex. It does not
// claim RFC 4122 version/variant bits; memdb only needs uniqueness.
func newUUID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}
