// Command dbreplica connects to a dbmaster and keeps a replica directory
// caught up with it. As with dbmaster, the byte transport is out of scope
// of the replication core, so this command supplies the same minimal
// length-prefixed start-revision handshake dbmaster expects before the
// framed message channel begins.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/ndlib/dbreplicate/replication"
	"github.com/ndlib/dbreplicate/replication/memdb"
)

var (
	master = flag.String("master", "localhost:8890", "master host:port to replicate from")
	dir    = flag.String("dir", ".", "replica directory")

	usage = `
dbreplica -master host:8890 -dir /path/to/replica/db

Connects to a dbmaster and applies changesets until end of stream.
`
)

func main() {
	flag.Parse()
	fmt.Print(usage)

	replica, err := replication.OpenReplica(*dir, memdb.New())
	if err != nil {
		log.Fatalf("open replica: %s", err)
	}
	defer replica.Close()

	conn, err := net.Dial("tcp", *master)
	if err != nil {
		log.Fatalf("dial %s: %s", *master, err)
	}
	defer conn.Close()

	if err := writeLengthPrefixed(conn, replica.RevisionToken()); err != nil {
		log.Fatalf("send start-revision token: %s", err)
	}

	ch := replication.NewNetChannel(conn)
	var info replication.ReplicationInfo

	for {
		deadline := time.Now().Add(5 * time.Minute)
		more, err := replica.ApplyNextChangeset(ch, &info, deadline)
		if err != nil {
			log.Fatalf("apply changeset: %s", err)
		}
		if !more {
			break
		}
	}

	log.Printf("caught up: %d changeset(s), %d full cop(ies), changed=%v",
		info.ChangesetsApplied, info.FullCopiesApplied, info.Changed)
}

// writeLengthPrefixed writes token as a single uvarint-length-prefixed blob,
// the counterpart to dbmaster's readLengthPrefixed.
func writeLengthPrefixed(conn net.Conn, token []byte) error {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(token)))
	if _, err := conn.Write(hdr[:n]); err != nil {
		return err
	}
	_, err := conn.Write(token)
	return err
}
