// Command dbmaster serves a master database directory to replicas over
// TCP, using the replication.Master writer. The byte transport itself is
// out of scope of the replication core (spec.md §1's "out of scope"
// list), so this command supplies the thinnest possible wire bootstrap: a
// connecting replica sends its start-revision token as a single
// uvarint-length-prefixed blob before the usual framed message sequence
// begins.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/ndlib/dbreplicate/replication"
	"github.com/ndlib/dbreplicate/replication/memdb"
	"github.com/ndlib/dbreplicate/util"
)

var (
	addr        = flag.String("addr", ":8890", "address to listen on")
	dir         = flag.String("dir", ".", "master database directory")
	maxConns    = flag.Int("maxconns", 10, "maximum number of replicas served at once")
	bytesPerSec = flag.Float64("rate", 0, "outbound byte rate limit per connection, 0 for unlimited")

	usage = `
dbmaster -addr :8890 -dir /path/to/master/db

Serves the database at -dir to any connecting dbreplica client.
`
)

func main() {
	flag.Parse()
	fmt.Print(usage)

	master := replication.NewMaster(memdb.New(), *dir)
	gate := util.NewGate(*maxConns)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen: %s", err)
	}
	log.Println("dbmaster listening on", *addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %s", err)
			continue
		}
		go serve(master, gate, conn)
	}
}

// serve handles one replica connection. gate caps how many connections run
// this body concurrently, so a burst of replicas cannot all trigger full
// database copies at once.
func serve(master *replication.Master, gate util.Gate, conn net.Conn) {
	defer conn.Close()
	gate.Enter()
	defer gate.Leave()

	token, err := readLengthPrefixed(conn)
	if err != nil {
		log.Printf("%s: read start-revision token: %s", conn.RemoteAddr(), err)
		return
	}

	wireConn := net.Conn(conn)
	if *bytesPerSec > 0 {
		wireConn = rateLimitedConn{Conn: conn, rate: util.NewRateCounter(*bytesPerSec)}
	}

	ch := replication.NewNetChannel(wireConn)
	var info replication.ReplicationInfo
	deadline := time.Now().Add(10 * time.Minute)

	if err := master.WriteChangesets(ch, token, &info, deadline); err != nil {
		log.Printf("%s: write changesets: %s", conn.RemoteAddr(), err)
		return
	}
	log.Printf("%s: sent %d changeset(s), %d full cop(ies)", conn.RemoteAddr(), info.ChangesetsApplied, info.FullCopiesApplied)
}

// rateLimitedConn throttles only the outbound side of conn, through a
// util.RateCounter, so a full database copy cannot saturate a slow link the
// replica is fetching over.
type rateLimitedConn struct {
	net.Conn
	rate *util.RateCounter
}

func (c rateLimitedConn) Write(p []byte) (int, error) {
	return c.rate.WrapWriter(c.Conn).Write(p)
}

// readLengthPrefixed reads a single uvarint-length-prefixed blob directly
// off conn, one byte at a time for the length so that no bytes belonging to
// the framed message channel that follows are buffered ahead and lost.
func readLengthPrefixed(conn net.Conn) ([]byte, error) {
	var n uint64
	var shift uint
	for {
		var b [1]byte
		if _, err := conn.Read(b[:]); err != nil {
			return nil, err
		}
		n |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	buf := make([]byte, n)
	total := 0
	for total < len(buf) {
		m, err := conn.Read(buf[total:])
		total += m
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}
