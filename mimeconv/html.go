package mimeconv

import (
	"fmt"
	"io/ioutil"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// extractHTML implements the text/html (incl. .php) table row: a tolerant
// parse defaulting to iso-8859-1, re-decoded as UTF-8 if a <meta charset> or
// Content-Type override declares UTF-8 (other declared charsets keep the
// iso-8859-1 decode), honouring "indexing disallowed by meta robots" unless
// ignore_exclusions suppresses it.
func extractHTML(path, mime string, opts Options, fields *Fields) Status {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return CommandFailed
	}
	return parseHTMLInto(data, opts.IgnoreExclusions, fields)
}

// extractRTF implements the text/rtf table row: unrtf to HTML, then the
// HTML parser with meta-robots suppressed and a forced iso-8859-1 default.
func extractRTF(path string, fields *Fields) Status {
	cmd := fmt.Sprintf("unrtf --nopict --html 2>/dev/null %s", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	return parseHTMLInto(out, true, fields)
}

// extractOutlookMsg implements the application/vnd.ms-outlook row: an
// external helper renders the message to HTML, then the same
// charset-override dance as text/html.
func extractOutlookMsg(path string, opts Options, fields *Fields) Status {
	cmd := fmt.Sprintf("outlookmsg2html %s", mustQuote(path))
	fields.Command = cmd
	out, err := runFilter(cmd)
	if err != nil {
		if err == errNoSuchFilter {
			return FilterMissing
		}
		return CommandFailed
	}
	return parseHTMLInto(out, opts.IgnoreExclusions, fields)
}

// parseHTMLInto parses data as iso-8859-1 HTML, then, if the document
// declares UTF-8 as its charset, parses the raw bytes as UTF-8 instead.
// ignoreExclusions skips the meta-robots gate entirely (extractRTF always
// passes true: unrtf output has no robots directive worth honouring).
func parseHTMLInto(data []byte, ignoreExclusions bool, fields *Fields) Status {
	text := latin1ToUTF8(data)
	if override, ok := declaredCharset(text); ok && !strings.EqualFold(override, "iso-8859-1") {
		if strings.EqualFold(override, "utf-8") || strings.EqualFold(override, "utf8") {
			text = string(data)
		}
		// Other declared charsets have no conversion table wired in; the
		// iso-8859-1 decode is kept as the best-effort fallback.
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return CommandFailed
	}

	blocked := false
	walkHTML(doc, fields, &blocked)
	if blocked && !ignoreExclusions {
		return BlockedByMeta
	}
	return OK
}

// declaredCharset looks for a <meta charset="..."> or
// <meta http-equiv=Content-Type content="...charset=...">, returning the
// charset name it declares, if any.
func declaredCharset(text string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", false
	}
	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			var charset, httpEquiv, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "charset":
					charset = a.Val
				case "http-equiv":
					httpEquiv = a.Val
				case "content":
					content = a.Val
				}
			}
			if charset != "" {
				found = charset
			} else if strings.EqualFold(httpEquiv, "Content-Type") {
				if idx := strings.Index(strings.ToLower(content), "charset="); idx >= 0 {
					found = strings.TrimSpace(content[idx+len("charset="):])
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found, found != ""
}

// walkHTML collects title, a "meta author"/"meta keywords" pair, the
// meta-robots "noindex"/"none" signal, and the full visible text as body.
// It does not set Sample.
func walkHTML(n *html.Node, fields *Fields, blocked *bool) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Title:
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				fields.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case atom.Meta:
			var name, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = strings.ToLower(a.Val)
				case "content":
					content = a.Val
				}
			}
			switch name {
			case "author":
				fields.Author = content
			case "keywords":
				fields.Keywords = content
			case "robots":
				lc := strings.ToLower(content)
				if strings.Contains(lc, "noindex") || strings.Contains(lc, "none") {
					*blocked = true
				}
			}
		case atom.Script, atom.Style:
			return
		}
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if fields.Body != "" {
				fields.Body += " "
			}
			fields.Body += text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, fields, blocked)
	}
}
