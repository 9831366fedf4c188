package mimeconv

import "strings"

// IgnoreSentinel is the extension-table value meaning "known type, skip
// silently" rather than "unknown type".
const IgnoreSentinel = "ignore"

// defaultExtensions is the initial extension -> MIME mapping, grounded on
// the table in the original indexer. It is copied into each new Resolver so
// callers can extend their own instance via SetMimetype without mutating
// the package default.
var defaultExtensions = map[string]string{
	"txt":  "text/plain",
	"text": "text/plain",
	"csv":  "text/csv",
	"html": "text/html",
	"htm":  "text/html",
	"shtml": "text/html",
	"php":  "text/html",
	"pdf":  "application/pdf",
	"ps":   "application/postscript",
	"eps":  "application/postscript",
	"rtf":  "text/rtf",
	"pl":   "text/x-perl",
	"pm":   "text/x-perl",
	"dvi":  "application/x-dvi",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xltx": "application/vnd.openxmlformats-officedocument.spreadsheetml.template",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"dotx": "application/vnd.openxmlformats-officedocument.wordprocessingml.template",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"potx": "application/vnd.openxmlformats-officedocument.presentationml.template",
	"xps":  "application/vnd.ms-xpsdocument",
	"msg":  "application/vnd.ms-outlook",
	"svg":  "image/svg+xml",
	"abw":  "application/x-abiword",
	"zabw": "application/x-abiword-compressed",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"odp":  "application/vnd.oasis.opendocument.presentation",
	"sxw":  "application/vnd.sun.xml.writer",
	"deb":  "application/x-debian-package",
	"rpm":  "application/x-redhat-package-manager",

	// extensions the indexer knows about but deliberately does not index
	"gif": IgnoreSentinel,
	"jpg": IgnoreSentinel,
	"jpeg": IgnoreSentinel,
	"png": IgnoreSentinel,
	"css": IgnoreSentinel,
	"js":  IgnoreSentinel,
	"ico": IgnoreSentinel,
}

// Resolver maps a lowercased, dot-free filename extension to a canonical
// MIME type, or to IgnoreSentinel for known-uninteresting extensions.
type Resolver struct {
	ext map[string]string
}

// NewResolver returns a Resolver seeded with the built-in extension table.
func NewResolver() *Resolver {
	r := &Resolver{ext: make(map[string]string, len(defaultExtensions))}
	for k, v := range defaultExtensions {
		r.ext[k] = v
	}
	return r
}

// SetMimetype registers or overrides the MIME type for ext (without a
// leading dot; case folded to lowercase).
func (r *Resolver) SetMimetype(ext, mime string) {
	r.ext[strings.ToLower(ext)] = mime
}

// Resolve returns the MIME type for ext and whether it was found.
func (r *Resolver) Resolve(ext string) (mime string, ok bool) {
	mime, ok = r.ext[strings.ToLower(ext)]
	return mime, ok
}

// ExtOf returns the filename's extension without the leading dot, and
// whether one was found at all.
func ExtOf(filename string) (ext string, ok bool) {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return "", false
	}
	return filename[idx+1:], true
}
