// Package dom is the document adapter used by the scraper and the render
// engine. It wraps goquery for selection and golang.org/x/net/html for the
// structural edits goquery does not express directly (moving a node, parsing
// a detached element from markup).
package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoElement is returned when markup does not contain an element
var ErrNoElement = errors.New("markup contains no element")

// ParseDocument parses a full HTML page
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

// ParseDocumentString parses a full HTML page held in a string
func ParseDocumentString(markup string) (*goquery.Document, error) {
	return ParseDocument(strings.NewReader(markup))
}

// OuterHTML serializes the first node of sel including its own tag
func OuterHTML(sel *goquery.Selection) (string, error) {
	out, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize element")
	}
	return out, nil
}

// ParseElement builds a detached element from serialized markup, the way a
// browser does when markup is assigned to a div's innerHTML and its first
// element child is taken.
func ParseElement(markup string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse fragment")
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, ErrNoElement
}

// Node returns the first node of sel, or nil for an empty selection
func Node(sel *goquery.Selection) *html.Node {
	if sel == nil || len(sel.Nodes) == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// AppendChild moves n to the end of parent's children. A node that is
// already attached elsewhere is detached first.
func AppendChild(parent, n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	parent.AppendChild(n)
}

// ClearChildren removes every child of n
func ClearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Render serializes the whole document
func Render(w io.Writer, doc *goquery.Document) error {
	for _, n := range doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return errors.Wrap(err, "failed to render document")
		}
	}
	return nil
}

// RemoveStyleProperty drops one property from an inline style attribute
func RemoveStyleProperty(sel *goquery.Selection, property string) {
	style, ok := sel.Attr("style")
	if !ok {
		return
	}
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		name, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(decl) == "" || strings.EqualFold(strings.TrimSpace(name), property) {
			continue
		}
		kept = append(kept, strings.TrimSpace(decl))
	}
	if len(kept) == 0 {
		sel.RemoveAttr("style")
		return
	}
	sel.SetAttr("style", strings.Join(kept, "; "))
}
