package mimeconv

import (
	"encoding/xml"
	"io"
	"io/ioutil"
	"strings"
)

// extractSVG implements the image/svg+xml table row: parse <title> and
// <desc> for title/body, and keep any free <metadata> text as keywords.
func extractSVG(path string, fields *Fields) Status {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return CommandFailed
	}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false

	var current string
	var bodyParts []string
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
				if fields.Title == "" {
					fields.Title = text
				}
				bodyParts = append(bodyParts, text)
			case "desc":
				bodyParts = append(bodyParts, text)
			case "metadata":
				fields.Keywords = appendField(fields.Keywords, text)
			}
		case xml.EndElement:
			current = ""
		}
	}
	fields.Body = strings.Join(bodyParts, " ")
	return OK
}
