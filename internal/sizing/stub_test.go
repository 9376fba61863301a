package sizing

import (
	"fmt"
	"sort"

	"github.com/formfit/formfit/internal/host"
)

// stubDoc and stubElement form a scriptable host for engine tests: metrics
// come from fixed values or per-test hooks, and every mutation is recorded so
// tests can assert exact write sequences.

type stubDoc struct {
	elements   []*stubElement
	created    []*stubElement
	probeSetup func(*stubElement)
	queryErr   error
}

func (d *stubDoc) QuerySelectorAll(selector string) ([]host.Element, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	var out []host.Element
	for _, el := range d.elements {
		out = append(out, el)
	}
	return out, nil
}

func (d *stubDoc) CreateElement(tag string) host.Element {
	el := newStubElement(tag)
	el.doc = d
	el.attached = false
	if d.probeSetup != nil {
		d.probeSetup(el)
	}
	d.created = append(d.created, el)
	return el
}

type styleWrite struct {
	name  string
	value string
}

type stubElement struct {
	tag         string
	doc         *stubDoc
	attrs       map[string]string
	attached    bool
	value       string
	placeholder string
	text        string

	selectedIndex int
	options       []string

	computed map[string]string
	inline   map[string]string
	writes   []styleWrite
	removals []string
	writeErr error

	matchBase   bool
	matchFilter bool
	matchErr    error

	metrics map[string]float64
	// metricFn, when set, overrides the metrics map and can react to the
	// element's current inline styles.
	metricFn func(e *stubElement, name string) float64

	scrollLeft  float64
	scrollReads []float64
	scrollSets  int

	removed   bool
	removeErr error
	insertErr error
	inserted  []*stubElement
}

func newStubElement(tag string) *stubElement {
	return &stubElement{
		tag:           tag,
		attrs:         map[string]string{},
		attached:      true,
		selectedIndex: -1,
		computed:      map[string]string{},
		inline:        map[string]string{},
		matchBase:     true,
		matchFilter:   true,
		metrics:       map[string]float64{},
	}
}

func (e *stubElement) TagName() string { return e.tag }

func (e *stubElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *stubElement) SetAttr(name, value string) { e.attrs[name] = value }

func (e *stubElement) Attached() bool { return e.attached }

func (e *stubElement) Owner() host.Document { return e.doc }

func (e *stubElement) Matches(selector string) (bool, error) {
	if e.matchErr != nil {
		return false, e.matchErr
	}
	if selector == DefaultFilterSelector {
		return e.matchFilter, nil
	}
	return e.matchBase, nil
}

func (e *stubElement) Value() string       { return e.value }
func (e *stubElement) SetValue(v string)   { e.value = v }
func (e *stubElement) Placeholder() string { return e.placeholder }

func (e *stubElement) SelectedIndex() int { return e.selectedIndex }
func (e *stubElement) OptionCount() int   { return len(e.options) }

func (e *stubElement) OptionText(i int) string {
	if i < 0 || i >= len(e.options) {
		return ""
	}
	return e.options[i]
}

func (e *stubElement) SetTextContent(s string) { e.text = s }

func (e *stubElement) ComputedStyle() host.Style {
	return stubStyle(e.computed)
}

func (e *stubElement) SetStyleProperty(name, value string) error {
	if e.writeErr != nil {
		return e.writeErr
	}
	e.inline[name] = value
	e.writes = append(e.writes, styleWrite{name: name, value: value})
	return nil
}

func (e *stubElement) RemoveStyleProperty(name string) error {
	delete(e.inline, name)
	e.removals = append(e.removals, name)
	return nil
}

func (e *stubElement) StyleValue(name string) string { return e.inline[name] }

func (e *stubElement) metric(name string) float64 {
	if e.metricFn != nil {
		return e.metricFn(e, name)
	}
	return e.metrics[name]
}

func (e *stubElement) OffsetWidth() float64  { return e.metric("offsetWidth") }
func (e *stubElement) OffsetHeight() float64 { return e.metric("offsetHeight") }
func (e *stubElement) ClientWidth() float64  { return e.metric("clientWidth") }
func (e *stubElement) ClientHeight() float64 { return e.metric("clientHeight") }
func (e *stubElement) ScrollWidth() float64  { return e.metric("scrollWidth") }
func (e *stubElement) ScrollHeight() float64 { return e.metric("scrollHeight") }

func (e *stubElement) SetScrollLeft(px float64) {
	e.scrollSets++
	if len(e.scrollReads) > 0 {
		e.scrollLeft = e.scrollReads[0]
		e.scrollReads = e.scrollReads[1:]
	} else {
		e.scrollLeft = 0
	}
}

func (e *stubElement) ScrollLeft() float64 { return e.scrollLeft }

func (e *stubElement) InsertAfter(sibling host.Element) error {
	if e.insertErr != nil {
		return e.insertErr
	}
	sib, ok := sibling.(*stubElement)
	if !ok {
		return fmt.Errorf("foreign sibling")
	}
	sib.attached = true
	e.inserted = append(e.inserted, sib)
	return nil
}

func (e *stubElement) Remove() error {
	if e.removeErr != nil {
		return e.removeErr
	}
	e.removed = true
	e.attached = false
	return nil
}

type stubStyle map[string]string

func (s stubStyle) Properties() []string {
	props := make([]string, 0, len(s))
	for p := range s {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}

func (s stubStyle) Get(name string) string { return s[name] }
