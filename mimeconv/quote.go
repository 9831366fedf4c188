package mimeconv

import (
	"fmt"
	"runtime"
	"strings"
)

// BadFilenameError is raised by QuoteWindows when path contains a byte that
// cannot be safely placed on a Windows command line.
type BadFilenameError struct {
	Byte byte
	Path string
}

func (e *BadFilenameError) Error() string {
	return fmt.Sprintf("illegal byte 0x%02x in filename %q", e.Byte, e.Path)
}

// QuotePath produces a shell-safe spelling of path for the running
// platform, suitable for appending to a command template.
func QuotePath(path string) (string, error) {
	if runtime.GOOS == "windows" {
		return QuoteWindows(path)
	}
	return QuotePOSIX(path), nil
}

// QuotePOSIX escapes path for a POSIX shell: if it starts with '-', "./" is
// prepended so it cannot be mistaken for an option; every byte that is
// neither alphanumeric nor one of "/._-" gets a backslash inserted before
// it. Bytes with the high bit set (>=128) are passed through unescaped -
// preserved exactly as the original quoter behaves, a known quirk noted in
// DESIGN.md rather than silently fixed.
func QuotePOSIX(path string) string {
	var sb strings.Builder
	if strings.HasPrefix(path, "-") {
		sb.WriteString("./")
	}
	for i := 0; i < len(path); i++ {
		b := path[i]
		if b < 128 && !isPOSIXUnquotedByte(b) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

func isPOSIXUnquotedByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b == '/' || b == '.' || b == '_' || b == '-':
		return true
	default:
		return false
	}
}

// windowsRejected holds the ASCII bytes QuoteWindows refuses outright.
const windowsRejected = `<>"|*?`

// QuoteWindows produces a Windows command-line-safe spelling of path: '/'
// is translated to '\', a space sets a quoting flag (the whole result is
// wrapped in double quotes at the end), and any byte below 32 or one of
// <>"|*? is rejected with a BadFilenameError carrying the offending byte
// and the original path. A leading '-' gets ".\" prepended. Bytes with the
// high bit set pass through unescaped.
func QuoteWindows(path string) (string, error) {
	var sb strings.Builder
	if strings.HasPrefix(path, "-") {
		sb.WriteString(`.\`)
	}
	needQuote := false
	for i := 0; i < len(path); i++ {
		b := path[i]
		switch {
		case b >= 128:
			sb.WriteByte(b)
		case b < 32 || strings.IndexByte(windowsRejected, b) >= 0:
			return "", &BadFilenameError{Byte: b, Path: path}
		case b == '/':
			sb.WriteByte('\\')
		case b == ' ':
			needQuote = true
			sb.WriteByte(b)
		default:
			sb.WriteByte(b)
		}
	}
	result := sb.String()
	if needQuote {
		result = `"` + result + `"`
	}
	return result, nil
}
