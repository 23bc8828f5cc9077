// Package dom wraps a parsed HTML document in a small typed element tree.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Element is a single HTML element node.
type Element struct {
	node *html.Node
}

// Parse parses HTML leniently. Malformed markup is repaired the way a
// browser would; only read errors are returned.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseBytes parses an in-memory HTML body.
func ParseBytes(body []byte) (*Document, error) {
	return Parse(bytes.NewReader(body))
}

// Elements yields every element of the document in document order.
func (d *Document) Elements() iter.Seq[*Element] {
	return descendants(d.root)
}

// Select returns the elements matching a CSS selector in document order.
func (d *Document) Select(selector string) []*Element {
	return selectFrom(goquery.NewDocumentFromNode(d.root).Selection, selector)
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute and whether it is present.
// Attribute names are matched case-insensitively.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

// Descendants yields every element below e in document order.
func (e *Element) Descendants() iter.Seq[*Element] {
	return descendants(e.node)
}

// Select returns descendants of e matching a CSS selector.
func (e *Element) Select(selector string) []*Element {
	return selectFrom(goquery.NewDocumentFromNode(e.node).Selection, selector)
}

// Contains reports whether other is a strict descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other.node.Parent; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

func descendants(root *html.Node) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		var walk func(*html.Node) bool
		walk = func(n *html.Node) bool {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					if !yield(&Element{node: c}) {
						return false
					}
				}
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

func selectFrom(sel *goquery.Selection, selector string) []*Element {
	found := sel.Find(selector)
	elements := make([]*Element, 0, found.Length())
	for _, n := range found.Nodes {
		elements = append(elements, &Element{node: n})
	}
	return elements
}
