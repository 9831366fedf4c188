package memdb

import (
	"path/filepath"
	"testing"
)

func TestPutPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	b := New()

	sub, err := b.Open(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	db := sub.(*SubDatabase)
	if err := db.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	wantRevision := db.Revision()

	reopened, err := b.Open(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	rdb := reopened.(*SubDatabase)
	if got, ok := rdb.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("got (%q, %v), want (\"v\", true)", got, ok)
	}
	if rdb.UUID() != db.UUID() {
		t.Errorf("uuid changed across reopen: %q != %q", rdb.UUID(), db.UUID())
	}
	if string(rdb.Revision()) != string(wantRevision) {
		t.Errorf("revision changed across reopen")
	}
}

func TestCheckRevisionAtLeast(t *testing.T) {
	b := New()
	sub, err := b.Open(filepath.Join(t.TempDir(), "sub"), true)
	if err != nil {
		t.Fatal(err)
	}
	db := sub.(*SubDatabase)

	low := encodeRevision(1)
	high := encodeRevision(5)
	if !db.CheckRevisionAtLeast(high, low) {
		t.Error("5 should be at least 1")
	}
	if db.CheckRevisionAtLeast(low, high) {
		t.Error("1 should not be at least 5")
	}
	if !db.CheckRevisionAtLeast(high, high) {
		t.Error("equal revisions should satisfy at-least")
	}
}
