// Package mimeconv implements the MIME-dispatch engine used to convert
// heterogeneous input files to plain text for indexing: an extension-based
// type resolver, a handler registry mixing external-command templates and
// built-in parsers, and the shell-quoting and sample-building helpers those
// handlers need.
package mimeconv

import "fmt"

// Status is the closed set of outcomes Convert can return. Each value maps
// to a distinct, caller-observable condition; none is overloaded.
type Status int

const (
	OK Status = iota
	UnknownType
	Ignored
	BlockedByMeta
	BadFilename
	FilterMissing
	CommandFailed
	HashFailed
	TmpdirUnavailable
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case UnknownType:
		return "UNKNOWN_TYPE"
	case Ignored:
		return "IGNORED"
	case BlockedByMeta:
		return "BLOCKED_BY_META"
	case BadFilename:
		return "BAD_FILENAME"
	case FilterMissing:
		return "FILTER_MISSING"
	case CommandFailed:
		return "COMMAND_FAILED"
	case HashFailed:
		return "HASH_FAILED"
	case TmpdirUnavailable:
		return "TMPDIR_UNAVAILABLE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Fields holds everything Convert populates for one converted document.
// Each string field is UTF-8 after normalization.
type Fields struct {
	Body     string
	Title    string
	Author   string
	Keywords string
	Sample   string
	MimeType string
	Command  string // the external command line actually executed, if any
	MD5      []byte
}

// IgnoreExclusions, when passed to Convert, suppresses the "indexing
// disallowed by meta robots" signal an HTML document may carry, matching
// spec.md's ignore_exclusions flag.
type Options struct {
	IgnoreExclusions bool

	// TmpDir overrides where temp files (e.g. the PostScript -> PDF
	// conversion) are written. An empty string means "not available",
	// which Convert reports as TmpdirUnavailable rather than falling back
	// to a hardcoded directory.
	TmpDir string
}
