// Package headless is an in-process host.Document implementation. It parses
// an HTML document with x/net/html, computes styles through the internal CSS
// engine, and models browser measurement semantics so the sizing engine can
// run without a rendering process.
package headless

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/formfit/formfit/internal/css"
	"github.com/formfit/formfit/internal/host"
)

// Document wraps a parsed HTML tree. Element handles are memoized per node so
// repeated queries hand back the same mutable wrapper.
type Document struct {
	root     *html.Node
	styles   *css.Engine
	elements map[*html.Node]*Element
}

// Parse reads an HTML document and collects its <style> sheets into the
// cascade.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &Document{
		root:     root,
		styles:   css.NewEngine(),
		elements: make(map[*html.Node]*Element),
	}
	d.collectAuthorSheets(root)
	return d, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) collectAuthorSheets(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "style" {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		d.styles.AddAuthorSheet(css.NewParser(sb.String()).Parse())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collectAuthorSheets(c)
	}
}

// element returns the memoized wrapper for a node, creating it on first use.
func (d *Document) element(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	el.initFromNode()
	d.elements[n] = el
	return el
}

// QuerySelectorAll returns matching elements in document order.
func (d *Document) QuerySelectorAll(selector string) ([]host.Element, error) {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	var matches []host.Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, sel := range group {
				if sel.Match(n) {
					matches = append(matches, d.element(n))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return matches, nil
}

// CreateElement returns a detached element owned by this document.
func (d *Document) CreateElement(tag string) host.Element {
	n := &html.Node{Type: html.ElementNode, Data: strings.ToLower(tag)}
	return d.element(n)
}

// NodeCount reports the number of element nodes currently attached to the
// document. Probe-leak checks compare this before and after sizing.
func (d *Document) NodeCount() int {
	count := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return count
}

// Render serializes the document, flushing element state (values, inline
// styles) back into the tree first.
func (d *Document) Render(w io.Writer) error {
	for _, el := range d.elements {
		el.flush()
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}

// computedFor runs the cascade for a node, resolving ancestors recursively so
// inherited values (font sizes, custom properties) flow down.
func (d *Document) computedFor(n *html.Node, inline []css.Declaration) css.Styles {
	var parentStyles css.Styles
	if p := parentElement(n); p != nil {
		pe := d.element(p)
		parentStyles = d.computedFor(p, pe.inline)
	}
	return d.styles.Computed(n, inline, parentStyles)
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}
