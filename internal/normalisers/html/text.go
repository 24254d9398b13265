package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hidden lists elements whose text is never visible content.
var hidden = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Nav:      true,
}

// VisibleText parses an HTML document and returns its visible text with
// whitespace collapsed. Plain text input is returned collapsed as-is.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hidden[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return Collapse(strings.Join(parts, " ")), nil
}

// Collapse replaces every run of whitespace with one space and trims.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
