package checks

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/rotisserie/eris"
)

// parseDocument parses raw HTML into a node tree. The x/net parser never
// fails on malformed markup, only on reader errors.
func parseDocument(rawHTML string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "checks: parse html")
	}
	return doc, nil
}

// walk visits every element node in the tree.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// findAll returns all element nodes with the given tag name.
func findAll(doc *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		// Script and style bodies are code, not page copy.
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// metaContent returns the content of <meta name=...> (or property=...).
func metaContent(doc *html.Node, name string) (string, bool) {
	for _, m := range findAll(doc, "meta") {
		if strings.EqualFold(attr(m, "name"), name) || strings.EqualFold(attr(m, "property"), name) {
			return attr(m, "content"), true
		}
	}
	return "", false
}

// pageTitle returns the <title> text, trimmed.
func pageTitle(doc *html.Node) string {
	for _, t := range findAll(doc, "title") {
		return strings.TrimSpace(textContent(t))
	}
	return ""
}

// wordCount counts whitespace-separated tokens in the visible page text.
func wordCount(doc *html.Node) int {
	body := doc
	if bodies := findAll(doc, "body"); len(bodies) > 0 {
		body = bodies[0]
	}
	return len(strings.Fields(textContent(body)))
}
