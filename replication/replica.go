package replication

import (
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	raven "github.com/getsentry/raven-go"
)

// State names the three states the Replica Applier's small state machine
// moves through, per spec.md §4.2. Building and CatchingUp are handled
// identically by ApplyNextChangeset's transition table; the Replica records
// which one it is in, but ReplicaStatus does not report it.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateCatchingUp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateCatchingUp:
		return "catching_up"
	default:
		return "unknown"
	}
}

// offlineBuild tracks the in-progress offline database, present only while
// the replica is Building or CatchingUp.
type offlineBuild struct {
	name           string
	uuid           []byte
	revision       []byte
	neededRevision []byte
}

// Replica owns a replica directory: the stub pointer, the parameter store,
// and at most one live plus one offline database. It implements the state
// machine from spec.md §4.2. A Replica is not safe for concurrent calls to
// ApplyNextChangeset; only the small status snapshot is safe to read from
// another goroutine (see Status).
type Replica struct {
	dir     string
	backend Backend
	params  *Params

	state    State
	liveName string
	live     SubDatabase
	offline  *offlineBuild

	statusMu sync.Mutex
	status   ReplicaStatus
}

// ReplicaStatus is a point-in-time snapshot safe to copy and read from
// another goroutine, used by the admin server.
type ReplicaStatus struct {
	LiveName          string
	OfflineName       string
	NeededRevision    []byte
	ChangesetsApplied int
	FullCopiesApplied int
}

// OpenReplica opens (or initializes) the replica directory at dir. A
// directory with no stub pointer yet is treated as freshly created: it has
// no live database until the first full copy is applied.
func OpenReplica(dir string, backend Backend) (*Replica, error) {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return nil, NewDatabaseOpeningError("create replica directory", err)
	}
	params, err := LoadParams(dir)
	if err != nil {
		return nil, err
	}
	r := &Replica{dir: dir, backend: backend, params: params}

	if !StubExists(dir) {
		r.refreshStatus()
		return r, nil
	}
	_, subdir, err := ReadStub(dir)
	if err != nil {
		return nil, err
	}
	r.liveName = subdir
	live, err := backend.Open(filepath.Join(dir, subdir), false)
	if err != nil {
		return nil, NewDatabaseOpeningError("open live database", err)
	}
	r.live = live
	r.refreshStatus()
	return r, nil
}

// Close releases the currently open live database, if any.
func (r *Replica) Close() error {
	if r.live == nil {
		return nil
	}
	return r.live.Close()
}

// Status returns a copy of the replica's current status snapshot.
func (r *Replica) Status() ReplicaStatus {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.status
}

// Params returns the replica's parameter store, for read-only reporting.
func (r *Replica) Params() *Params {
	return r.params
}

func (r *Replica) refreshStatus() {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LiveName = r.liveName
	if r.offline != nil {
		r.status.OfflineName = r.offline.name
		r.status.NeededRevision = r.offline.neededRevision
	} else {
		r.status.OfflineName = ""
		r.status.NeededRevision = nil
	}
}

// ApplyNextChangeset consumes zero or one logical update from ch and
// returns false only once REPL_REPLY_END_OF_CHANGES has been seen. info, if
// non-nil, has its counters updated on a successful apply.
func (r *Replica) ApplyNextChangeset(ch ClientChannel, info *ReplicationInfo, deadline time.Time) (bool, error) {
	t, err := ch.PeekType(deadline)
	if err != nil {
		return false, err
	}

	switch t {
	case MsgEndOfChanges:
		_, err := ch.Receive(deadline)
		return false, err

	case MsgDBHeader:
		if r.offline != nil {
			r.discardOffline()
		}
		if err := r.applyDBCopy(ch, deadline); err != nil {
			return false, err
		}
		promoted, err := r.possiblyMakeOfflineLive()
		if err != nil {
			return false, err
		}
		if promoted && info != nil {
			info.FullCopiesApplied++
			info.Changed = true
		}
		if promoted {
			r.statusMu.Lock()
			r.status.FullCopiesApplied++
			r.statusMu.Unlock()
		}
		return true, nil

	case MsgChangeset:
		if r.offline == nil {
			if r.live == nil {
				return false, NewInvalidOperation("changeset received with no live database", nil)
			}
			if _, err := r.live.ApplyChangesetFromStream(ch, deadline); err != nil {
				return false, err
			}
			if info != nil {
				info.ChangesetsApplied++
				info.Changed = true
			}
			r.statusMu.Lock()
			r.status.ChangesetsApplied++
			r.statusMu.Unlock()
			return true, nil
		}

		sub, err := r.backend.Open(filepath.Join(r.dir, r.offline.name), false)
		if err != nil {
			return false, NewDatabaseOpeningError("reopen offline database for changeset", err)
		}
		_, err = sub.ApplyChangesetFromStream(ch, deadline)
		closeErr := sub.Close()
		if err != nil {
			return false, err
		}
		if closeErr != nil {
			return false, NewDatabaseOpeningError("close offline database handle", closeErr)
		}
		r.state = StateCatchingUp
		if info != nil {
			info.ChangesetsApplied++
			info.Changed = true
		}
		promoted, err := r.possiblyMakeOfflineLive()
		if err != nil {
			return false, err
		}
		if promoted && info != nil {
			info.FullCopiesApplied++
		}
		r.statusMu.Lock()
		r.status.ChangesetsApplied++
		if promoted {
			r.status.FullCopiesApplied++
		}
		r.statusMu.Unlock()
		return true, nil

	case MsgFail:
		payload, _ := ch.Receive(deadline)
		return false, NewNetworkError("peer sent FAIL: "+string(payload), nil)

	default:
		return false, NewNetworkError("unexpected message type "+t.String(), nil)
	}
}

// discardOffline deletes the in-progress offline database directory,
// matching spec.md §4.2's rule that a DB_HEADER arriving mid-build discards
// whatever was there before.
func (r *Replica) discardOffline() {
	if r.offline == nil {
		return
	}
	path := filepath.Join(r.dir, r.offline.name)
	if err := os.RemoveAll(path); err != nil {
		log.Printf("replica %s: discard offline %s: %s", r.dir, path, err)
		raven.CaptureError(err, map[string]string{"dir": r.dir, "offline": path})
	}
	r.offline = nil
	r.state = StateIdle
	r.refreshStatus()
}

// applyDBCopy implements spec.md §4.2's apply_db_copy: read DB_HEADER, then
// a run of DB_FILENAME/DB_FILEDATA pairs, then DB_FOOTER.
func (r *Replica) applyDBCopy(ch ClientChannel, deadline time.Time) error {
	name := nextOfflineName(r.liveName)
	dir := filepath.Join(r.dir, name)
	if err := os.MkdirAll(dir, 0775); err != nil {
		return NewDatabaseOpeningError("create offline directory", err)
	}

	t, err := ch.PeekType(deadline)
	if err != nil {
		return err
	}
	if t != MsgDBHeader {
		return NewNetworkError("expected DB_HEADER, got "+t.String(), nil)
	}
	header, err := ch.Receive(deadline)
	if err != nil {
		return err
	}
	uuid, revision, err := DecodeToken(header)
	if err != nil {
		return err
	}

	build := &offlineBuild{name: name, uuid: uuid, revision: revision}

loop:
	for {
		t, err := ch.PeekType(deadline)
		if err != nil {
			return err
		}
		switch t {
		case MsgDBFooter:
			break loop
		case MsgFail:
			payload, _ := ch.Receive(deadline)
			return NewNetworkError("DB_FAIL during full copy: "+string(payload), nil)
		case MsgDBFilename:
			fnamePayload, err := ch.Receive(deadline)
			if err != nil {
				return err
			}
			fname := string(fnamePayload)
			if strings.Contains(fname, "..") {
				return NewInvalidOperation("full-copy filename contains '..': "+fname, nil)
			}
			ft, err := ch.PeekType(deadline)
			if err != nil {
				return err
			}
			if ft != MsgDBFiledata {
				return NewNetworkError("expected DB_FILEDATA after DB_FILENAME, got "+ft.String(), nil)
			}
			if err := ch.ReceiveFile(deadline, filepath.Join(dir, fname)); err != nil {
				return err
			}
		default:
			return NewNetworkError("unexpected message type during full copy: "+t.String(), nil)
		}
	}

	footer, err := ch.Receive(deadline)
	if err != nil {
		return err
	}
	build.neededRevision = footer

	r.offline = build
	r.state = StateBuilding
	r.refreshStatus()
	return nil
}

// possiblyMakeOfflineLive implements spec.md §4.2's
// possibly_make_offline_live: promotes the offline database to live once
// its revision is at least the needed revision recorded in its footer.
func (r *Replica) possiblyMakeOfflineLive() (bool, error) {
	if r.offline == nil {
		return false, nil
	}
	offlinePath := filepath.Join(r.dir, r.offline.name)
	sub, err := r.backend.Open(offlinePath, false)
	if err != nil {
		return false, NewDatabaseOpeningError("open offline database to check promotion", err)
	}
	defer sub.Close()

	current := sub.Revision()
	if !sub.CheckRevisionAtLeast(current, r.offline.neededRevision) {
		r.refreshStatus()
		return false, nil
	}

	newLive, err := r.backend.Open(offlinePath, false)
	if err != nil {
		return false, NewDatabaseOpeningError("reopen offline database for promotion", err)
	}

	if r.live != nil {
		if err := r.live.Close(); err != nil {
			log.Printf("replica %s: close old live database: %s", r.dir, err)
		}
	}

	if err := WriteStub(r.dir, BackendTagFlint, r.offline.name); err != nil {
		return false, err
	}
	if err := r.params.Set(ParamKeyUUID, hex.EncodeToString(r.offline.uuid)); err != nil {
		return false, err
	}

	oldLiveName := r.liveName
	r.liveName = r.offline.name
	r.live = newLive
	r.offline = nil
	r.state = StateIdle

	if oldLiveName != "" {
		oldPath := filepath.Join(r.dir, oldLiveName)
		if err := os.RemoveAll(oldPath); err != nil {
			log.Printf("replica %s: remove old live directory %s: %s", r.dir, oldPath, err)
			raven.CaptureError(err, map[string]string{"dir": r.dir, "old_live": oldPath})
		}
	}

	r.refreshStatus()
	return true, nil
}

// RevisionToken encodes the start-revision token a replica presents to a
// master: its live database's UUID and current revision, or an empty token
// if there is no live database yet.
func (r *Replica) RevisionToken() []byte {
	if r.live == nil {
		return nil
	}
	return EncodeToken([]byte(r.live.UUID()), r.live.Revision())
}

// nextOfflineName derives a new offline subdirectory name by flipping a
// trailing "_0"/"_1" suffix of liveName, or appending "_0" if liveName has
// neither suffix. With no live database at all (empty liveName) it returns
// "db_0".
func nextOfflineName(liveName string) string {
	switch {
	case liveName == "":
		return "db_0"
	case strings.HasSuffix(liveName, "_0"):
		return strings.TrimSuffix(liveName, "_0") + "_1"
	case strings.HasSuffix(liveName, "_1"):
		return strings.TrimSuffix(liveName, "_1") + "_0"
	default:
		return liveName + "_0"
	}
}
