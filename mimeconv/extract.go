package mimeconv

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/ndlib/dbreplicate/util"
)

// Extractor orchestrates MIME resolution and text extraction: resolve
// type, select handler, run it, normalize charset to UTF-8, populate a
// Fields record. Filter-missing memoization lives on Registry, which
// callers share across Extractor instances deliberately or keep private
// to one, per spec.md §9.
type Extractor struct {
	Resolver *Resolver
	Registry *Registry
}

// NewExtractor returns an Extractor with a fresh Resolver and Registry.
func NewExtractor() *Extractor {
	return &Extractor{Resolver: NewResolver(), Registry: NewRegistry()}
}

// Convert implements convert(filepath, type_hint?, out_fields) -> Status
// from spec.md §4.4. typeHint may be empty, meaning "derive from the
// filename's extension". A non-empty typeHint beginning with '.' is an
// extension to resolve through the extension table, same as the derived
// case; a typeHint without a leading dot is already a canonical MIME type
// and is used as-is, matching mime2text.cc's `if (*type == '.')` check.
func (e *Extractor) Convert(path string, typeHint string, opts Options) (Fields, Status) {
	var fields Fields

	var mime string
	switch {
	case typeHint == "":
		ext, ok := ExtOf(path)
		if !ok {
			return fields, UnknownType
		}
		resolved, ok := e.Resolver.Resolve(strings.ToLower(ext))
		if !ok {
			return fields, UnknownType
		}
		mime = resolved

	case strings.HasPrefix(typeHint, "."):
		resolved, ok := e.Resolver.Resolve(strings.ToLower(strings.TrimPrefix(typeHint, ".")))
		if !ok {
			return fields, UnknownType
		}
		mime = resolved

	default:
		mime = typeHint
	}

	if mime == IgnoreSentinel {
		return fields, Ignored
	}
	fields.MimeType = mime

	status := e.dispatch(path, mime, opts, &fields)
	if status != OK {
		return fields, status
	}

	if fields.MD5 == nil {
		sum, err := util.HashFile(path)
		if err != nil {
			return fields, HashFailed
		}
		fields.MD5 = sum
	}
	return fields, OK
}

// dispatch implements step 2 of spec.md §4.4: the external-command route
// for MIME types registered only in Registry, or the built-in route for
// the fixed family table.
func (e *Extractor) dispatch(path, mime string, opts Options, fields *Fields) Status {
	if key, ok := builtinFamily(mime); ok {
		return e.runBuiltin(key, mime, path, opts, fields)
	}

	template, registered := e.Registry.Lookup(mime)
	if !registered {
		return UnknownType
	}
	return e.runExternalCommand(template, mime, path, fields)
}

// runExternalCommand implements the external-command route: append the
// shell-quoted filename to the template, run it, capture stdout as body.
func (e *Extractor) runExternalCommand(template, mime, path string, fields *Fields) Status {
	if template == "" {
		return FilterMissing
	}
	quoted, err := QuotePath(path)
	if err != nil {
		fields.Command = err.Error()
		return BadFilename
	}
	cmd := template + quoted
	fields.Command = cmd

	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			e.Registry.MarkFilterMissing(mime)
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = string(out)
	return OK
}

// runBuiltin dispatches to the hardcoded per-family extraction logic from
// spec.md §4.4's table.
func (e *Extractor) runBuiltin(key, mime, path string, opts Options, fields *Fields) Status {
	switch key {
	case "text/html":
		return extractHTML(path, mime, opts, fields)
	case "text/plain", "text/csv":
		return extractPlainOrCSV(path, mime, fields)
	case "application/pdf":
		return extractPDF(path, fields)
	case "application/postscript":
		return extractPostScript(path, opts, fields)
	case "odf":
		return extractODF(path, fields)
	case "ooxml":
		return extractOOXML(path, mime, fields)
	case "application/x-abiword":
		return extractAbiword(path, fields)
	case "application/x-abiword-compressed":
		return extractAbiwordCompressed(path, fields)
	case "text/rtf":
		return extractRTF(path, fields)
	case "text/x-perl":
		return extractFilterThenLatin1(path, "pod2text "+mustQuote(path), fields)
	case "application/x-dvi":
		return extractFilterThenLatin1(path, "catdvi -e2 -s "+mustQuote(path), fields)
	case "application/vnd.ms-excel":
		return extractXLS(path, fields)
	case "application/vnd.ms-xpsdocument":
		return extractXPS(path, fields)
	case "application/vnd.ms-outlook":
		return extractOutlookMsg(path, opts, fields)
	case "image/svg+xml":
		return extractSVG(path, fields)
	case "application/x-debian-package":
		return extractDebianPackage(path, fields)
	case "application/x-redhat-package-manager":
		return extractRPM(path, fields)
	default:
		return UnknownType
	}
}

// mustQuote quotes path for the current platform, falling back to the raw
// path on error; callers that need to surface BadFilename use QuotePath
// directly instead (the external-command route does).
func mustQuote(path string) string {
	q, err := QuotePath(path)
	if err != nil {
		return path
	}
	return q
}

// extractFilterThenLatin1 runs cmd, treating its stdout as ISO-8859-1 and
// converting it to UTF-8, matching the pod2text/catdvi table entries.
func extractFilterThenLatin1(path, cmd string, fields *Fields) Status {
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = latin1ToUTF8(out)
	return OK
}

func extractXLS(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("xls2csv -c' ' -q0 -dutf-8 %s", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = string(out)
	return OK
}

// extractPlainOrCSV implements the text/plain, text/csv table row: BOM
// stripping, UTF-16 conversion, and (for CSV) sample building.
func extractPlainOrCSV(path, mime string, fields *Fields) Status {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return CommandFailed
	}

	body := decodeTextBuffer(data)
	fields.Body = body

	if mime == "text/csv" {
		fields.Sample = BuildCSVSample(body, 200)
	}
	return OK
}

// decodeTextBuffer strips a UTF-8 BOM, or fully transcodes from UTF-16 if
// a UTF-16 BOM is present, per spec.md §4.4's text/plain,text/csv row.
func decodeTextBuffer(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return utf16ToUTF8(data[2:], true)
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return utf16ToUTF8(data[2:], false)
	default:
		return string(data)
	}
}

func utf16ToUTF8(data []byte, bigEndian bool) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		} else {
			units[i] = uint16(data[2*i+1])<<8 | uint16(data[2*i])
		}
	}
	return string(utf16.Decode(units))
}

// latin1ToUTF8 converts an ISO-8859-1 buffer to UTF-8: every byte is
// already its own Unicode code point, so this needs no lookup table.
func latin1ToUTF8(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// tempPDFName is the fixed temp filename the PostScript branch writes its
// intermediate PDF to - concurrent extractions against the same temp dir
// would race on this name (spec.md §9 notes this as an open, unfixed bug
// rather than something to silently "fix").
const tempPDFName = "tmp.pdf"

func tempPDFPath(tmpDir string) string {
	return filepath.Join(tmpDir, tempPDFName)
}
