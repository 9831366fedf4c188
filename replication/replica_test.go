package replication_test

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	. "github.com/ndlib/dbreplicate/replication"
	"github.com/ndlib/dbreplicate/replication/memdb"
)

// pipeChannels returns a connected pair of NetChannels over net.Pipe, one
// for the master side (ServerChannel) and one for the replica side
// (ClientChannel).
func pipeChannels() (server *NetChannel, client *NetChannel) {
	a, b := net.Pipe()
	return NewNetChannel(a), NewNetChannel(b)
}

func farDeadline() time.Time {
	return time.Now().Add(10 * time.Second)
}

func TestFullCopyThenPromote(t *testing.T) {
	masterDir := t.TempDir()
	backend := memdb.New()

	masterSub, err := backend.Open(filepath.Join(masterDir, "master"), true)
	if err != nil {
		t.Fatal(err)
	}
	md := masterSub.(*memdb.SubDatabase)
	if err := md.Put("greeting", []byte("hello")); err != nil {
		t.Fatal(err)
	}

	replicaDir := t.TempDir()
	replica, err := OpenReplica(replicaDir, backend)
	if err != nil {
		t.Fatal(err)
	}

	server, client := pipeChannels()
	done := make(chan error, 1)
	go func() {
		var info ReplicationInfo
		done <- md.WriteChangesetsToStream(server, nil, true, &info, farDeadline())
	}()

	var info ReplicationInfo
	more, err := replica.ApplyNextChangeset(client, &info, farDeadline())
	if err != nil {
		t.Fatal(err)
	}
	if !more {
		t.Fatal("expected ApplyNextChangeset to report more work after a full copy")
	}
	// the full copy is one logical update; the master's stream still ends
	// with END_OF_CHANGES, which the next call consumes.
	more, err = replica.ApplyNextChangeset(client, &info, farDeadline())
	if err != nil {
		t.Fatal(err)
	}
	if more {
		t.Fatal("expected end of changes immediately after a full copy with nothing else queued")
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if info.FullCopiesApplied != 1 {
		t.Errorf("FullCopiesApplied = %d, want 1", info.FullCopiesApplied)
	}
	if !StubExists(replicaDir) {
		t.Fatal("expected stub pointer to exist after promotion")
	}
	tag, subdir, err := ReadStub(replicaDir)
	if err != nil {
		t.Fatal(err)
	}
	if tag != BackendTagFlint || subdir != "db_0" {
		t.Fatalf("got tag=%q subdir=%q", tag, subdir)
	}
	if got := replica.Status().LiveName; got != "db_0" {
		t.Fatalf("status.LiveName = %q, want db_0", got)
	}

	// confirm the params file recorded the promoted UUID
	params, err := LoadParams(replicaDir)
	if err != nil {
		t.Fatal(err)
	}
	if got := params.Get(ParamKeyUUID); got == "" {
		t.Error("expected uuid parameter to be set after promotion")
	}

	// second call, using the real Master, should report end of changes
	// since the replica's token already matches the master's revision
	master := NewMaster(backend, filepath.Join(masterDir, "master"))
	server2, client2 := pipeChannels()
	go func() {
		var info2 ReplicationInfo
		_ = master.WriteChangesets(server2, replica.RevisionToken(), &info2, farDeadline())
	}()
	more, err = replica.ApplyNextChangeset(client2, nil, farDeadline())
	if err != nil {
		t.Fatal(err)
	}
	if more {
		t.Fatal("expected no more changes once replica has caught up")
	}
}

func TestApplyNextChangesetRejectsBadFilename(t *testing.T) {
	replicaDir := t.TempDir()
	backend := memdb.New()
	replica, err := OpenReplica(replicaDir, backend)
	if err != nil {
		t.Fatal(err)
	}

	server, client := pipeChannels()
	go func() {
		dl := farDeadline()
		token := EncodeToken([]byte("uuid-value-123456"), []byte{0, 0, 0, 0, 0, 0, 0, 1})
		_ = server.Send(MsgDBHeader, token, dl)
		_ = server.Send(MsgDBFilename, []byte("../evil"), dl)
	}()

	_, err = replica.ApplyNextChangeset(client, nil, farDeadline())
	if _, ok := err.(*InvalidOperation); !ok {
		t.Fatalf("got %v (%T), want *InvalidOperation", err, err)
	}
}
