package replication

import (
	"log"
	"time"

	raven "github.com/getsentry/raven-go"
)

// Master writes changesets (or a full copy) to a replica, given a
// start-revision token the replica supplied. It is the master side of
// spec.md's replication protocol; the master never retries and propagates
// transport errors to the caller.
type Master struct {
	backend Backend
	path    string
}

// NewMaster returns a Master serving the database at path through backend.
// It opens nothing itself: each WriteChangesets call opens the database with
// backend.Open(path, false), which yields a single SubDatabase, so no
// subdatabase count is checked.
func NewMaster(backend Backend, path string) *Master {
	return &Master{backend: backend, path: path}
}

// WriteChangesets decides, from startRevisionToken, whether the replica
// needs a full database copy or a run of changesets, then delegates to the
// backend to emit the message sequence on out. If info is non-nil it is
// reset before work starts.
//
// On an opening failure, a single MsgFail is sent and WriteChangesets
// returns nil: the caller is responsible for closing the transport
// afterward, per spec.md §4.1.
func (m *Master) WriteChangesets(out ServerChannel, startRevisionToken []byte, info *ReplicationInfo, deadline time.Time) error {
	info.Reset()

	sub, err := m.backend.Open(m.path, false)
	if err != nil {
		failErr := out.Send(MsgFail, []byte(err.Error()), deadline)
		if failErr != nil {
			return NewNetworkError("send FAIL after open failure", failErr)
		}
		return nil
	}
	defer sub.Close()

	needWholeDB, revision, err := m.decideStartPoint(sub, startRevisionToken)
	if err != nil {
		return err
	}

	err = sub.WriteChangesetsToStream(out, revision, needWholeDB, info, deadline)
	if err != nil {
		log.Printf("master write_changesets %s: %s", m.path, err)
		raven.CaptureError(err, map[string]string{"path": m.path})
	}
	return err
}

// decideStartPoint decodes the token and compares its UUID against the
// master's, per spec.md §4.1 step 3.
func (m *Master) decideStartPoint(sub SubDatabase, token []byte) (needWholeDB bool, revision []byte, err error) {
	uuid, revBlob, err := DecodeToken(token)
	if err != nil {
		return false, nil, err
	}
	if len(token) == 0 || string(uuid) != sub.UUID() {
		return true, nil, nil
	}
	return false, revBlob, nil
}
