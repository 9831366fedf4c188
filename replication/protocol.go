package replication

import (
	"encoding/binary"
	"io"
)

// MessageType enumerates the closed set of framed message types exchanged
// over the replication channel. The wire values are part of the on-disk/
// on-wire contract and must not be renumbered.
type MessageType byte

const (
	// MsgEndOfChanges signals there are no more updates to send.
	MsgEndOfChanges MessageType = iota
	// MsgFail carries a human readable error and is terminal for the
	// in-flight transfer.
	MsgFail
	// MsgDBHeader begins a full-copy: payload is a length-prefixed UUID
	// followed by the opaque current revision.
	MsgDBHeader
	// MsgDBFilename names the next file in a full copy.
	MsgDBFilename
	// MsgDBFiledata carries the raw bytes of the file named by the
	// preceding MsgDBFilename.
	MsgDBFiledata
	// MsgDBFooter ends a full copy; payload is the revision the replica
	// must reach before the offline database may be promoted.
	MsgDBFooter
	// MsgChangeset carries a single opaque changeset.
	MsgChangeset
)

func (t MessageType) String() string {
	switch t {
	case MsgEndOfChanges:
		return "END_OF_CHANGES"
	case MsgFail:
		return "FAIL"
	case MsgDBHeader:
		return "DB_HEADER"
	case MsgDBFilename:
		return "DB_FILENAME"
	case MsgDBFiledata:
		return "DB_FILEDATA"
	case MsgDBFooter:
		return "DB_FOOTER"
	case MsgChangeset:
		return "CHANGESET"
	default:
		return "UNKNOWN"
	}
}

// EncodeToken builds a start-revision token: a uvarint length, the UUID
// bytes, and then the opaque backend revision blob. An empty token (a
// zero-length UUID) requests a full copy.
func EncodeToken(uuid []byte, revision []byte) []byte {
	var lenbuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenbuf[:], uint64(len(uuid)))
	out := make([]byte, 0, n+len(uuid)+len(revision))
	out = append(out, lenbuf[:n]...)
	out = append(out, uuid...)
	out = append(out, revision...)
	return out
}

// DecodeToken splits a start-revision token into its UUID and opaque
// revision blob. An empty input decodes to a nil UUID and nil revision,
// which callers must interpret as "send the whole database".
func DecodeToken(token []byte) (uuid []byte, revision []byte, err error) {
	if len(token) == 0 {
		return nil, nil, nil
	}
	length, n := binary.Uvarint(token)
	if n <= 0 {
		return nil, nil, NewNetworkError("malformed start-revision token", nil)
	}
	rest := token[n:]
	if uint64(len(rest)) < length {
		return nil, nil, NewNetworkError("start-revision token shorter than its declared UUID length", nil)
	}
	uuid = rest[:length]
	revision = rest[length:]
	return uuid, revision, nil
}

// writeFrame writes a length-prefixed message: type byte, uvarint payload
// length, payload bytes. It is the default framing used by NetChannel; a
// transport may substitute its own as long as PeekType/Receive/ReceiveFile
// agree with it.
func writeFrame(w io.Writer, t MessageType, payload []byte) error {
	var hdr [1 + binary.MaxVarintLen64]byte
	hdr[0] = byte(t)
	n := binary.PutUvarint(hdr[1:], uint64(len(payload)))
	if _, err := w.Write(hdr[:1+n]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// readFrameHeader reads the type byte and payload length of the next frame,
// without consuming the payload. Callers must read exactly length bytes
// next (or use io.CopyN to stream them to a file).
func readFrameHeader(r io.ByteReader) (MessageType, uint64, error) {
	tb, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, 0, err
	}
	return MessageType(tb), length, nil
}
