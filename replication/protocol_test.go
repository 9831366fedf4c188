package replication

import (
	"bytes"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	uuid := []byte("0123456789abcdef")
	revision := []byte{0, 0, 0, 0, 0, 0, 0, 42}

	token := EncodeToken(uuid, revision)
	gotUUID, gotRev, err := DecodeToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotUUID, uuid) {
		t.Errorf("uuid = %x, want %x", gotUUID, uuid)
	}
	if !bytes.Equal(gotRev, revision) {
		t.Errorf("revision = %x, want %x", gotRev, revision)
	}
}

func TestEmptyTokenDecodesToNil(t *testing.T) {
	uuid, rev, err := DecodeToken(nil)
	if err != nil {
		t.Fatal(err)
	}
	if uuid != nil || rev != nil {
		t.Fatalf("got uuid=%v rev=%v, want both nil", uuid, rev)
	}
}

func TestMessageTypeString(t *testing.T) {
	if MsgDBHeader.String() != "DB_HEADER" {
		t.Errorf("got %q", MsgDBHeader.String())
	}
	if MessageType(99).String() != "UNKNOWN" {
		t.Errorf("got %q for out of range type", MessageType(99).String())
	}
}
