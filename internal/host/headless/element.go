package headless

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/formfit/formfit/internal/css"
	"github.com/formfit/formfit/internal/host"
)

// Element is the headless handle for one element node. The form value lives
// on the wrapper, mirroring how a browser's value property detaches from the
// value attribute once scripts write to it; Render flushes it back.
type Element struct {
	doc        *Document
	node       *html.Node
	value      string
	inline     []css.Declaration
	scrollLeft float64
}

func (e *Element) initFromNode() {
	if v, ok := e.attrValue("style"); ok {
		e.inline = css.ParseInlineStyle(v)
	}
	switch e.node.Data {
	case "input":
		e.value, _ = e.attrValue("value")
	case "textarea":
		e.value = textContent(e.node)
	}
}

// -- Identity and structure --

func (e *Element) TagName() string { return e.node.Data }

func (e *Element) Attr(name string) (string, bool) { return e.attrValue(name) }

func (e *Element) SetAttr(name, value string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) Attached() bool { return e.node.Parent != nil }

func (e *Element) Owner() host.Document { return e.doc }

func (e *Element) Matches(selector string) (bool, error) {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return false, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	for _, sel := range group {
		if sel.Match(e.node) {
			return true, nil
		}
	}
	return false, nil
}

// -- Form content --

func (e *Element) Value() string { return e.value }

func (e *Element) SetValue(v string) { e.value = v }

func (e *Element) Placeholder() string {
	v, _ := e.attrValue("placeholder")
	return v
}

// SelectedIndex mirrors browser semantics: -1 for a select with no options
// or a multiple-select with nothing chosen; otherwise the first selected
// option, defaulting to index 0.
func (e *Element) SelectedIndex() int {
	if e.node.Data != "select" {
		return -1
	}
	options := e.optionNodes()
	if len(options) == 0 {
		return -1
	}
	for i, opt := range options {
		if _, ok := nodeAttr(opt, "selected"); ok {
			return i
		}
	}
	if _, multiple := e.attrValue("multiple"); multiple {
		return -1
	}
	return 0
}

func (e *Element) OptionCount() int { return len(e.optionNodes()) }

func (e *Element) OptionText(i int) string {
	options := e.optionNodes()
	if i < 0 || i >= len(options) {
		return ""
	}
	return strings.TrimSpace(textContent(options[i]))
}

func (e *Element) optionNodes() []*html.Node {
	var options []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" {
				options = append(options, c)
				continue
			}
			if c.Type == html.ElementNode && c.Data == "optgroup" {
				walk(c)
			}
		}
	}
	walk(e.node)
	return options
}

func (e *Element) SetTextContent(s string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// -- Styling --

func (e *Element) ComputedStyle() host.Style {
	return newSnapshot(e.computed())
}

func (e *Element) computed() css.Styles {
	return e.doc.computedFor(e.node, e.inline)
}

func (e *Element) SetStyleProperty(name, value string) error {
	if !validPropertyName(name) {
		return fmt.Errorf("invalid style property %q", name)
	}
	prop := css.Property(strings.ToLower(name))
	e.inline = removeDeclaration(e.inline, prop)
	e.inline = append(e.inline, css.Declaration{Property: prop, Value: css.Value(value)})
	e.syncStyleAttr()
	return nil
}

func (e *Element) RemoveStyleProperty(name string) error {
	if !validPropertyName(name) {
		return fmt.Errorf("invalid style property %q", name)
	}
	e.inline = removeDeclaration(e.inline, css.Property(strings.ToLower(name)))
	e.syncStyleAttr()
	return nil
}

func (e *Element) StyleValue(name string) string {
	prop := css.Property(strings.ToLower(name))
	for _, d := range e.inline {
		if d.Property == prop {
			return string(d.Value)
		}
	}
	return ""
}

func (e *Element) syncStyleAttr() {
	if len(e.inline) == 0 {
		e.removeAttr("style")
		return
	}
	parts := make([]string, 0, len(e.inline))
	for _, d := range e.inline {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Property, d.Value))
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

// -- Tree mutation --

func (e *Element) InsertAfter(sibling host.Element) error {
	sib, ok := sibling.(*Element)
	if !ok {
		return fmt.Errorf("sibling element belongs to a different host")
	}
	parent := e.node.Parent
	if parent == nil {
		return fmt.Errorf("cannot insert next to a detached element")
	}
	if sib.node.Parent != nil {
		return fmt.Errorf("sibling is already attached")
	}
	parent.InsertBefore(sib.node, e.node.NextSibling)
	return nil
}

func (e *Element) Remove() error {
	if e.node.Parent == nil {
		return nil
	}
	e.node.Parent.RemoveChild(e.node)
	return nil
}

// flush writes wrapper state back into the tree before serialization.
func (e *Element) flush() {
	switch e.node.Data {
	case "input":
		if e.value != "" {
			e.SetAttr("value", e.value)
		} else if _, had := e.attrValue("value"); had {
			e.SetAttr("value", "")
		}
	case "textarea":
		if textContent(e.node) != e.value {
			e.SetTextContent(e.value)
		}
	}
}

// -- Helpers --

func (e *Element) attrValue(name string) (string, bool) {
	return nodeAttr(e.node, name)
}

func (e *Element) removeAttr(name string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

func nodeAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func removeDeclaration(decls []css.Declaration, prop css.Property) []css.Declaration {
	out := decls[:0]
	for _, d := range decls {
		if d.Property != prop {
			out = append(out, d)
		}
	}
	return out
}

var (
	_ host.Element  = (*Element)(nil)
	_ host.Document = (*Document)(nil)
)

func validPropertyName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		case ch == '-':
		default:
			return false
		}
	}
	return true
}
