package mimeconv

import (
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"
)

// extractODF implements the ODF/Sun XML container-family table row:
// content.xml + styles.xml through the generic-XML parser for body,
// meta.xml through the metadata parser for title/author/keywords/sample.
// Metadata parse failures are non-fatal per spec.md §7.
func extractODF(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("unzip -p %s content.xml styles.xml", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = genericXMLText(out)

	metaCmd := fmt.Sprintf("unzip -p %s meta.xml", mustQuote(path))
	if meta, err := runFilter(metaCmd); err == nil {
		fields.Title, fields.Author, fields.Keywords, fields.Sample = metadataFields(meta)
	}
	return OK
}

// ooxmlParts maps each OOXML subtype family to the unzip argument string
// spec.md §6 records verbatim, template forms sharing the document form's
// argument list per spec.md §9's open-question resolution.
var ooxmlParts = map[string]string{
	"wordprocessingml": ` word/document.xml word/header\*.xml word/footer\*.xml 2>/dev/null||test $? = 11`,
	"spreadsheetml":     ` xl/sharedStrings.xml`,
	"presentationml":    ` ppt/slides/slide\*.xml ppt/notesSlides/notesSlide\*.xml ppt/comments/comment\*.xml 2>/dev/null||test $? = 11`,
}

// extractOOXML implements the OOXML family table row: select the part
// glob for the subtype, run it through the generic-XML parser, then read
// docProps/core.xml for metadata.
func extractOOXML(path, mime string, fields *Fields) Status {
	var args string
	switch {
	case strings.Contains(mime, "wordprocessingml"):
		args = ooxmlParts["wordprocessingml"]
	case strings.Contains(mime, "spreadsheetml"):
		args = ooxmlParts["spreadsheetml"]
	case strings.Contains(mime, "presentationml"):
		args = ooxmlParts["presentationml"]
	default:
		return UnknownType
	}

	cmd := fmt.Sprintf("unzip -p %s%s", mustQuote(path), args)
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = genericXMLText(out)

	metaCmd := fmt.Sprintf("unzip -p %s docProps/core.xml", mustQuote(path))
	if meta, err := runFilter(metaCmd); err == nil {
		fields.Title, fields.Author, fields.Keywords, fields.Sample = metadataFields(meta)
	}
	return OK
}

// extractAbiword implements the application/x-abiword row: the file is
// already plain XML, so it goes straight to the generic-XML parser.
func extractAbiword(path string, fields *Fields) Status {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return CommandFailed
	}
	fields.Body = genericXMLText(data)
	return OK
}

// extractAbiwordCompressed implements the application/x-abiword-compressed
// row: gunzip the file, then the generic-XML parser.
func extractAbiwordCompressed(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("gzip -dc %s", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Body = genericXMLText(out)
	return OK
}

// extractDebianPackage implements the application/x-debian-package row:
// dpkg-deb's Description field, first line title, remainder body.
func extractDebianPackage(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("dpkg-deb -f %s Description", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Title, fields.Body = splitFirstLine(out)
	return OK
}

// extractRPM implements the application/x-redhat-package-manager row:
// rpm's SUMMARY then DESCRIPTION, first line title, remainder body.
func extractRPM(path string, fields *Fields) Status {
	cmd := fmt.Sprintf(`rpm -q --qf '%%{SUMMARY}\n%%{DESCRIPTION}' -p %s`, mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	fields.Title, fields.Body = splitFirstLine(out)
	return OK
}

func splitFirstLine(out []byte) (first, rest string) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		first = scanner.Text()
	}
	if scanner.Scan() {
		var sb strings.Builder
		sb.WriteString(scanner.Text())
		for scanner.Scan() {
			sb.WriteByte('\n')
			sb.WriteString(scanner.Text())
		}
		rest = sb.String()
	}
	return first, rest
}
