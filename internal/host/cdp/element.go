package cdp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/formfit/formfit/internal/host"
)

// Element is a handle onto one page node, addressed through the registry.
// Mutations report failures; metric reads degrade to zero on a dead page,
// matching how an unrenderable element measures.
type Element struct {
	doc *Document
	id  string
	tag string
}

// callResult is the envelope every element script returns.
type callResult struct {
	Gone bool            `json:"gone"`
	Err  string          `json:"err"`
	V    json.RawMessage `json:"v"`
}

// call runs body with `node` bound to this element. The body must return an
// object, using the `v` key for its value and `err` for script-level errors.
func (e *Element) call(body string) (json.RawMessage, error) {
	script := fmt.Sprintf(`
		(function(node) {
			if (!node) return { gone: true };
			%s
		})(window.__formfit && window.__formfit.els[%s])`, body, jsEncode(e.id))

	var res callResult
	if err := e.doc.eval(script, &res); err != nil {
		return nil, err
	}
	if res.Gone {
		return nil, fmt.Errorf("element %s is no longer tracked by the page", e.id)
	}
	if res.Err != "" {
		return nil, fmt.Errorf("%s", res.Err)
	}
	return res.V, nil
}

// read is call for accessors without an error path: failures are logged and
// out keeps its zero value.
func (e *Element) read(body string, out interface{}) {
	raw, err := e.call(body)
	if err != nil {
		e.doc.log.Debug("element read failed", zap.String("id", e.id), zap.Error(err))
		return
	}
	if out == nil || len(raw) == 0 || string(raw) == "null" {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		e.doc.log.Debug("element read decode failed", zap.String("id", e.id), zap.Error(err))
	}
}

func (e *Element) TagName() string { return e.tag }

func (e *Element) Attr(name string) (string, bool) {
	var v *string
	e.read(fmt.Sprintf(`return { v: node.getAttribute(%s) };`, jsEncode(name)), &v)
	if v == nil {
		return "", false
	}
	return *v, true
}

func (e *Element) SetAttr(name, value string) {
	if _, err := e.call(fmt.Sprintf(`node.setAttribute(%s, %s); return {};`,
		jsEncode(name), jsEncode(value))); err != nil {
		e.doc.log.Warn("failed to set attribute", zap.String("name", name), zap.Error(err))
	}
}

func (e *Element) Attached() bool {
	var v bool
	e.read(`return { v: node.isConnected };`, &v)
	return v
}

func (e *Element) Owner() host.Document { return e.doc }

func (e *Element) Matches(selector string) (bool, error) {
	raw, err := e.call(fmt.Sprintf(`
		try {
			return { v: node.matches(%s) };
		} catch (err) {
			return { err: 'invalid selector: ' + String(err) };
		}`, jsEncode(selector)))
	if err != nil {
		return false, err
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("decoding matches result: %w", err)
	}
	return v, nil
}

func (e *Element) Value() string {
	var v string
	e.read(`return { v: 'value' in node ? String(node.value == null ? '' : node.value) : '' };`, &v)
	return v
}

func (e *Element) SetValue(v string) {
	if _, err := e.call(fmt.Sprintf(`node.value = %s; return {};`, jsEncode(v))); err != nil {
		e.doc.log.Warn("failed to set value", zap.Error(err))
	}
}

func (e *Element) Placeholder() string {
	var v string
	e.read(`return { v: node.getAttribute('placeholder') || '' };`, &v)
	return v
}

func (e *Element) SelectedIndex() int {
	v := -1
	e.read(`return { v: node.selectedIndex === undefined ? -1 : node.selectedIndex };`, &v)
	return v
}

func (e *Element) OptionCount() int {
	var v int
	e.read(`return { v: node.options ? node.options.length : 0 };`, &v)
	return v
}

func (e *Element) OptionText(i int) string {
	var v string
	e.read(fmt.Sprintf(`
		const opt = node.options && node.options[%d];
		return { v: opt ? (opt.text || '').trim() : '' };`, i), &v)
	return v
}

func (e *Element) SetTextContent(s string) {
	if _, err := e.call(fmt.Sprintf(`node.textContent = %s; return {};`, jsEncode(s))); err != nil {
		e.doc.log.Warn("failed to set text content", zap.Error(err))
	}
}

func (e *Element) ComputedStyle() host.Style {
	var v struct {
		Props  []string          `json:"props"`
		Values map[string]string `json:"values"`
	}
	e.read(`
		const cs = window.getComputedStyle(node);
		const props = [];
		const values = {};
		for (let i = 0; i < cs.length; i++) {
			const p = cs[i];
			props.push(p);
			values[p] = cs.getPropertyValue(p);
		}
		return { v: { props: props, values: values } };`, &v)
	if v.Values == nil {
		v.Values = map[string]string{}
	}
	sort.Strings(v.Props)
	return computedSnapshot{props: v.Props, values: v.Values}
}

func (e *Element) SetStyleProperty(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid style property %q", name)
	}
	_, err := e.call(fmt.Sprintf(`node.style.setProperty(%s, %s); return {};`,
		jsEncode(name), jsEncode(value)))
	return err
}

func (e *Element) RemoveStyleProperty(name string) error {
	_, err := e.call(fmt.Sprintf(`node.style.removeProperty(%s); return {};`, jsEncode(name)))
	return err
}

func (e *Element) StyleValue(name string) string {
	var v string
	e.read(fmt.Sprintf(`return { v: node.style.getPropertyValue(%s) };`, jsEncode(name)), &v)
	return v
}

func (e *Element) metric(expr string) float64 {
	var v float64
	e.read(fmt.Sprintf(`return { v: %s };`, expr), &v)
	return v
}

func (e *Element) OffsetWidth() float64  { return e.metric("node.offsetWidth") }
func (e *Element) OffsetHeight() float64 { return e.metric("node.offsetHeight") }
func (e *Element) ClientWidth() float64  { return e.metric("node.clientWidth") }
func (e *Element) ClientHeight() float64 { return e.metric("node.clientHeight") }
func (e *Element) ScrollWidth() float64  { return e.metric("node.scrollWidth") }
func (e *Element) ScrollHeight() float64 { return e.metric("node.scrollHeight") }

func (e *Element) SetScrollLeft(px float64) {
	if _, err := e.call(fmt.Sprintf(`node.scrollLeft = %g; return {};`, px)); err != nil {
		e.doc.log.Debug("failed to set scrollLeft", zap.Error(err))
	}
}

func (e *Element) ScrollLeft() float64 { return e.metric("node.scrollLeft") }

func (e *Element) InsertAfter(sibling host.Element) error {
	sib, ok := sibling.(*Element)
	if !ok {
		return fmt.Errorf("sibling element belongs to a different host")
	}
	if sib.doc != e.doc {
		return fmt.Errorf("sibling element belongs to a different document")
	}
	_, err := e.call(fmt.Sprintf(`
		const sib = window.__formfit.els[%s];
		if (!sib) return { err: 'sibling is no longer tracked by the page' };
		if (!node.parentNode) return { err: 'cannot insert next to a detached element' };
		node.parentNode.insertBefore(sib, node.nextSibling);
		return {};`, jsEncode(sib.id)))
	return err
}

func (e *Element) Remove() error {
	_, err := e.call(`node.remove(); delete window.__formfit.els[` + jsEncode(e.id) + `]; return {};`)
	return err
}

// computedSnapshot is a frozen computed-style view from one evaluation.
type computedSnapshot struct {
	props  []string
	values map[string]string
}

func (s computedSnapshot) Properties() []string { return s.props }

func (s computedSnapshot) Get(name string) string { return s.values[name] }

var _ host.Element = (*Element)(nil)
var _ host.Document = (*Document)(nil)
