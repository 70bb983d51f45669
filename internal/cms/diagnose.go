package cms

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/pressgen/internal/transport"
)

// describeBody returns a short, single-line description of a response body
// for error details. HTML pages are summarized by their title and first
// heading, since the raw markup of a challenge or error page is rarely useful.
func describeBody(body []byte) string {
	if !looksLikeHTML(body) {
		return transport.Snippet(body)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return transport.Snippet(body)
	}

	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	heading := strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
	switch {
	case title != "" && heading != "" && heading != title:
		return transport.Snippet([]byte("HTML page: " + title + " / " + heading))
	case title != "":
		return transport.Snippet([]byte("HTML page: " + title))
	case heading != "":
		return transport.Snippet([]byte("HTML page: " + heading))
	default:
		text := doc.Find("body").Text()
		return transport.Snippet([]byte("HTML page: " + text))
	}
}

// looksLikeHTML reports whether body starts like an HTML document.
func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	head := strings.ToLower(string(trimmed[:min(len(trimmed), 512)]))
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<head") ||
		strings.Contains(head, "<body") ||
		strings.Contains(head, "<script")
}
