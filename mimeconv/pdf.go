package mimeconv

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// extractPDF implements the application/pdf table row: pdftotext for the
// body, pdfinfo for Author/Keywords/Title. pdfinfo failures are
// non-fatal per spec.md §7's metadata-sub-step propagation policy.
func extractPDF(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("pdftotext -enc UTF-8 %s -", mustQuote(path))
	fields.Command = cmd

	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = string(out)

	getPDFMetainfo(path, fields)
	return OK
}

// getPDFMetainfo runs pdfinfo and parses Author:/Keywords:/Title: lines.
// Grounded on spec.md §9's note that the implementation's (three
// argument) signature is canonical: path, and the fields record to fill.
// Failure is swallowed; the document is still indexed without metadata.
func getPDFMetainfo(path string, fields *Fields) {
	cmd := fmt.Sprintf("pdfinfo -enc UTF-8 %s", mustQuote(path))
	out, err := runFilter(cmd)
	if err != nil {
		return
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "Author:"):
			fields.Author = strings.TrimSpace(strings.TrimPrefix(line, "Author:"))
		case strings.HasPrefix(line, "Keywords:"):
			fields.Keywords = strings.TrimSpace(strings.TrimPrefix(line, "Keywords:"))
		case strings.HasPrefix(line, "Title:"):
			fields.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		}
	}
}

// extractPostScript implements the application/postscript row: convert to
// a temp PDF via ps2pdf, run the PDF pipeline, then remove the temp file
// regardless of outcome.
func extractPostScript(path string, opts Options, fields *Fields) Status {
	if opts.TmpDir == "" {
		return TmpdirUnavailable
	}
	tmpPDF := tempPDFPath(opts.TmpDir)

	quotedTmp, err := QuotePath(tmpPDF)
	if err != nil {
		fields.Command = err.Error()
		return BadFilename
	}
	cmd := fmt.Sprintf("ps2pdf %s %s", mustQuote(path), quotedTmp)
	fields.Command = cmd

	defer os.Remove(tmpPDF)

	if _, err := runFilter(cmd); err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}

	return extractPDF(tmpPDF, fields)
}
