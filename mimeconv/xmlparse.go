package mimeconv

import (
	"encoding/xml"
	"io"
	"strings"
)

// genericXMLText walks an XML document and concatenates every character
// data run, separated by spaces - the "generic-XML parser -> body" step
// used by the ODF/Sun XML and AbiWord table rows.
func genericXMLText(data []byte) string {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false

	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			text := strings.TrimSpace(string(cd))
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
	}
	return sb.String()
}

// metadataFields extracts title/author/keywords/sample from a metadata
// XML document (ODF meta.xml, OOXML docProps/core.xml), matching on the
// local (namespace-stripped) element name since each format uses a
// different namespace prefix for the same Dublin Core concepts.
func metadataFields(data []byte) (title, author, keywords, sample string) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false

	var current string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch current {
			case "title":
				title = appendField(title, text)
			case "creator", "Creator":
				author = appendField(author, text)
			case "keyword", "keywords", "Keywords", "subject":
				keywords = appendField(keywords, text)
			case "description":
				sample = appendField(sample, text)
			}
		case xml.EndElement:
			current = ""
		}
	}
	return title, author, keywords, sample
}

func appendField(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + " " + add
}
