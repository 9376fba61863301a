// Package host defines the document abstraction the sizing engine runs
// against. A host exposes the indirect measurement primitives of a rendering
// engine (offset, client, and scroll metrics plus computed styles) without
// committing to where they come from: the headless implementation computes
// them in process, the cdp implementation round-trips to a live browser.
//
// The sizing algorithm deliberately alternates style writes with metric
// reads; implementations must answer every read from the style state as of
// the writes that preceded it.
package host

// Style is a read-only computed-style snapshot. Properties returns the
// host's enumeration of property names; Get returns a plain string value for
// one of them (empty when absent).
type Style interface {
	Properties() []string
	Get(name string) string
}

// Element is a live element handle. Metric reads never fail; mutations that
// the host can reject return errors.
type Element interface {
	// Identity and structure.
	TagName() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	Attached() bool
	Owner() Document

	// Selector matching against the element's current state. Never cached;
	// the engine re-evaluates eligibility on every call.
	Matches(selector string) (bool, error)

	// Form content.
	Value() string
	SetValue(v string)
	Placeholder() string
	SelectedIndex() int
	OptionCount() int
	OptionText(i int) string
	SetTextContent(s string)

	// Styling.
	ComputedStyle() Style
	SetStyleProperty(name, value string) error
	RemoveStyleProperty(name string) error
	// StyleValue reports the element's current inline value for a property,
	// as last written. Used for reporting, never by the sizing algorithm.
	StyleValue(name string) string

	// Measurement. All values are CSS pixels; zero means "not rendered".
	OffsetWidth() float64
	OffsetHeight() float64
	ClientWidth() float64
	ClientHeight() float64
	ScrollWidth() float64
	ScrollHeight() float64

	// SetScrollLeft asks the host to scroll; the host clamps to what the
	// content allows and ScrollLeft reads the clamped result back.
	SetScrollLeft(px float64)
	ScrollLeft() float64

	// Tree mutation.
	InsertAfter(sibling Element) error
	Remove() error
}

// Document resolves selectors and creates elements.
type Document interface {
	// QuerySelectorAll returns matches in document order.
	QuerySelectorAll(selector string) ([]Element, error)
	// CreateElement returns a detached element owned by this document.
	CreateElement(tag string) Element
}
