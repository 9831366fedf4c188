package mimeconv

import "strings"

// Registry holds the mutable MIME -> external-command-template table used
// by the generic external-command route (spec.md §4.4.2a): MIME types a
// host registers via SetCommand that have no hardcoded built-in handler. A
// handler returning FilterMissing records an empty template under that MIME
// so future calls for the same MIME short-circuit without spawning a
// process again. This is deliberately instance state, not a package global,
// so tests (and concurrent extractors) do not interfere with each other.
type Registry struct {
	commands map[string]string
}

// NewRegistry returns an empty Registry; hosts populate it with SetCommand.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]string)}
}

// SetCommand registers or overrides the external command template for mime.
func (reg *Registry) SetCommand(mime, commandTemplate string) {
	reg.commands[mime] = commandTemplate
}

// Lookup returns the command template for mime and whether mime is
// registered at all. A registered-but-empty template means the filter was
// previously found missing.
func (reg *Registry) Lookup(mime string) (template string, registered bool) {
	template, registered = reg.commands[mime]
	return template, registered
}

// MarkFilterMissing empties the template for mime so subsequent lookups
// short-circuit without invoking the process again.
func (reg *Registry) MarkFilterMissing(mime string) {
	reg.commands[mime] = ""
}

// builtinFamily reports whether mime belongs to one of the hardcoded
// built-in extraction families (as opposed to the generic external-command
// route), and returns the lookup key to use in the builtin dispatch table:
// either the exact mime, or a family prefix for the startswith-matched
// OOXML/ODF families.
func builtinFamily(mime string) (key string, ok bool) {
	switch {
	case mime == "text/html":
		return mime, true
	case mime == "application/vnd.ms-outlook":
		return mime, true
	case mime == "text/plain" || mime == "text/csv":
		return mime, true
	case mime == "application/pdf":
		return mime, true
	case mime == "application/postscript":
		return mime, true
	case strings.HasPrefix(mime, "application/vnd.oasis.opendocument.") ||
		strings.HasPrefix(mime, "application/vnd.sun.xml."):
		return "odf", true
	case strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.wordprocessingml.") ||
		strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.spreadsheetml.") ||
		strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.presentationml."):
		return "ooxml", true
	case mime == "application/x-abiword":
		return mime, true
	case mime == "application/x-abiword-compressed":
		return mime, true
	case mime == "text/rtf":
		return mime, true
	case mime == "application/vnd.ms-xpsdocument":
		return mime, true
	case mime == "image/svg+xml":
		return mime, true
	case mime == "application/x-debian-package" || mime == "application/x-redhat-package-manager":
		return mime, true
	case mime == "text/x-perl":
		return mime, true
	case mime == "application/x-dvi":
		return mime, true
	case mime == "application/vnd.ms-excel":
		return mime, true
	default:
		return "", false
	}
}
