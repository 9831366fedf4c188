package mimeconv

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractXPS implements the application/vnd.ms-xpsdocument table row:
// unzip the page parts, strip a UTF-16 BOM if present, then walk the XPS
// XML pulling text out of each Glyphs element's UnicodeString attribute.
func extractXPS(path string, fields *Fields) Status {
	cmd := fmt.Sprintf(`unzip -p %s Documents/1/Pages/*.fpage`, mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}

	text := decodeTextBuffer(out)
	fields.Body = xpsGlyphText(text)
	return OK
}

// xpsGlyphText extracts the UnicodeString attribute of every Glyphs
// element, which is where XPS pages hold their actual rendered text.
func xpsGlyphText(data string) string {
	dec := xml.NewDecoder(strings.NewReader(data))
	dec.Strict = false

	var parts []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Glyphs" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "UnicodeString" && a.Value != "" {
				parts = append(parts, a.Value)
			}
		}
	}
	return strings.Join(parts, " ")
}
