package util

import (
	"bytes"
	"crypto/md5"
	"hash"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// MD5Writer wraps an io.Writer and accumulates the MD5 hash of everything
// written through it.
type MD5Writer struct {
	io.Writer // the underlying MultiWriter
	sum       hash.Hash
}

// NewMD5Writer returns a MD5Writer wrapping w.
func NewMD5Writer(w io.Writer) *MD5Writer {
	hw := &MD5Writer{sum: md5.New()}
	hw.Writer = io.MultiWriter(w, hw.sum)
	return hw
}

// NewMD5WriterPlain returns a MD5Writer which does not wrap an output
// stream; it only computes the checksum of the data written to it.
func NewMD5WriterPlain() *MD5Writer {
	hw := &MD5Writer{sum: md5.New()}
	hw.Writer = hw.sum
	return hw
}

// Sum returns the MD5 checksum of everything written so far.
func (hw *MD5Writer) Sum() []byte {
	return hw.sum.Sum(nil)
}

// Check compares the computed MD5 against goal. An empty goal is treated as
// matching.
func (hw *MD5Writer) Check(goal []byte) bool {
	return len(goal) == 0 || bytes.Equal(goal, hw.Sum())
}

// HashFile computes the MD5 checksum of the file at path. On platforms where
// it is supported, the open uses a hint equivalent to O_NOATIME so that
// hashing a file for advisory purposes does not disturb its access time -
// mirroring the NOATIME flag the original indexer passed when loading files
// destined only for hashing or text extraction.
func HashFile(path string) ([]byte, error) {
	f, err := openNoAtime(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	hw := NewMD5WriterPlain()
	if _, err := io.Copy(hw, f); err != nil {
		return nil, err
	}
	return hw.Sum(), nil
}

// openNoAtime opens path for reading, asking the kernel not to update the
// file's access time if that is supported. It silently falls back to a plain
// open when the flag is rejected (e.g. the calling user does not own the
// file), since NOATIME is an optimization, not a correctness requirement.
func openNoAtime(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		return os.Open(path)
	}
	return f, nil
}
