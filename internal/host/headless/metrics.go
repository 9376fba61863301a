package headless

import (
	"math"
	"sort"
	"strings"

	"github.com/formfit/formfit/internal/css"
)

// snapshot is a frozen computed-style view handed to callers. Enumeration
// order is stable (sorted) so copy loops are deterministic.
type snapshot struct {
	props  []string
	styles css.Styles
}

func newSnapshot(styles css.Styles) *snapshot {
	props := make([]string, 0, len(styles))
	for p := range styles {
		props = append(props, string(p))
	}
	sort.Strings(props)
	return &snapshot{props: props, styles: styles}
}

func (s *snapshot) Properties() []string { return s.props }

func (s *snapshot) Get(name string) string {
	return s.styles.Get(name, "")
}

// box holds the resolved geometry of one element at the moment of a metric
// read. Every metric accessor recomputes it so reads always see the styles
// written immediately before them.
type box struct {
	rendered   bool
	padding    css.Edges
	border     css.Edges
	contentW   float64
	contentH   float64
	intrinsicW float64
	intrinsicH float64
}

func (b box) borderBoxWidth() float64 {
	return b.contentW + b.padding.Horizontal() + b.border.Horizontal()
}

func (b box) borderBoxHeight() float64 {
	return b.contentH + b.padding.Vertical() + b.border.Vertical()
}

// -- host.Element measurement methods --

func (e *Element) OffsetWidth() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return b.borderBoxWidth()
}

func (e *Element) OffsetHeight() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return b.borderBoxHeight()
}

func (e *Element) ClientWidth() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return b.contentW + b.padding.Horizontal()
}

func (e *Element) ClientHeight() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return b.contentH + b.padding.Vertical()
}

func (e *Element) ScrollWidth() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return math.Max(b.contentW+b.padding.Horizontal(), b.intrinsicW+b.padding.Horizontal())
}

func (e *Element) ScrollHeight() float64 {
	b := e.layout()
	if !b.rendered {
		return 0
	}
	return math.Max(b.contentH+b.padding.Vertical(), b.intrinsicH+b.padding.Vertical())
}

func (e *Element) SetScrollLeft(px float64) {
	maxScroll := e.ScrollWidth() - e.ClientWidth()
	if maxScroll < 0 {
		maxScroll = 0
	}
	e.scrollLeft = math.Min(math.Max(px, 0), maxScroll)
}

func (e *Element) ScrollLeft() float64 { return e.scrollLeft }

// layout resolves the element's used geometry from its computed styles.
func (e *Element) layout() box {
	st := e.computed()
	b := box{
		rendered: e.renderable(),
		padding:  st.PaddingEdges(),
		border:   st.BorderEdges(),
	}

	fontSize := st.FontSize()
	lineHeight := css.ParseAbsoluteLength(st.Get("line-height", ""))
	if lineHeight <= 0 {
		lineHeight = fontSize * css.DefaultLineHeight
	}
	charW := fontSize * css.CharWidthFactor

	text := e.measuredText()
	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	b.intrinsicW = float64(longest) * charW

	// Width.
	widthVal := st.Get("width", "auto")
	sizing := css.ParseBoxSizing(st.Get("box-sizing", "content-box"))
	var borderBoxW float64
	if widthVal == "auto" || widthVal == "" {
		// Shrink to fit.
		borderBoxW = b.intrinsicW + b.padding.Horizontal() + b.border.Horizontal()
	} else {
		borderBoxW = e.outerFromSpecified(e.resolveLength(widthVal, st), sizing, b.padding.Horizontal(), b.border.Horizontal())
	}
	if minW := e.resolveLength(st.Get("min-width", ""), st); minW > 0 {
		borderBoxW = math.Max(borderBoxW, e.outerFromSpecified(minW, sizing, b.padding.Horizontal(), b.border.Horizontal()))
	}
	b.contentW = math.Max(0, borderBoxW-b.padding.Horizontal()-b.border.Horizontal())

	// Wrapped text height.
	wrapW := math.Max(b.contentW, charW)
	totalLines := 0.0
	for _, line := range lines {
		w := float64(len([]rune(line))) * charW
		totalLines += math.Max(1, math.Ceil(w/wrapW))
	}
	b.intrinsicH = totalLines * lineHeight

	// Height.
	heightVal := st.Get("height", "auto")
	var borderBoxH float64
	if heightVal == "auto" || heightVal == "" {
		borderBoxH = b.intrinsicH + b.padding.Vertical() + b.border.Vertical()
	} else {
		borderBoxH = e.outerFromSpecified(e.resolveLength(heightVal, st), sizing, b.padding.Vertical(), b.border.Vertical())
	}
	if minH := e.resolveLength(st.Get("min-height", ""), st); minH > 0 {
		borderBoxH = math.Max(borderBoxH, e.outerFromSpecified(minH, sizing, b.padding.Vertical(), b.border.Vertical()))
	}
	b.contentH = math.Max(0, borderBoxH-b.padding.Vertical()-b.border.Vertical())

	return b
}

// outerFromSpecified converts a specified dimension to the border-box
// dimension for the given box-sizing mode. An unrecognized mode measures
// like content-box, matching how browsers treat invalid values.
func (e *Element) outerFromSpecified(specified float64, sizing css.BoxSizing, paddingSum, borderSum float64) float64 {
	switch sizing {
	case css.BorderBox:
		return math.Max(specified, paddingSum+borderSum)
	case css.PaddingBox:
		return math.Max(specified, paddingSum) + borderSum
	default:
		return specified + paddingSum + borderSum
	}
}

// measuredText is the text whose advance width drives intrinsic sizing:
// the live value for value-bearing controls, the text content otherwise.
func (e *Element) measuredText() string {
	switch e.node.Data {
	case "input", "textarea":
		return e.value
	default:
		return textContent(e.node)
	}
}

// renderable reports whether the element generates a box: it must be part of
// the tree (or a measured probe) with no display:none on itself or any
// ancestor.
func (e *Element) renderable() bool {
	if e.computed().Get("display", "inline") == "none" {
		return false
	}
	for p := parentElement(e.node); p != nil; p = parentElement(p) {
		pe := e.doc.element(p)
		if pe.computed().Get("display", "inline") == "none" {
			return false
		}
	}
	return true
}

// resolveLength resolves a width/height value, including the calc()/var()
// forms the sizing engine emits for dropdown arrow compensation. Custom
// properties resolve from the element's computed styles; the var() fallback
// applies when the property is unset.
func (e *Element) resolveLength(value string, st css.Styles) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if inner, ok := innerCall(value, "calc"); ok {
		total := 0.0
		for _, term := range splitTopLevel(inner, '+') {
			total += e.resolveLength(term, st)
		}
		return total
	}
	if inner, ok := innerCall(value, "var"); ok {
		parts := splitTopLevel(inner, ',')
		if len(parts) == 0 {
			return 0
		}
		name := strings.TrimSpace(parts[0])
		if custom := st.Get(name, ""); custom != "" {
			return e.resolveLength(custom, st)
		}
		if len(parts) > 1 {
			return e.resolveLength(parts[1], st)
		}
		return 0
	}
	return css.ParseLength(value, st.FontSize(), css.BaseFontSize, 0)
}

// innerCall unwraps "name(inner)" when value is exactly one call.
func innerCall(value, name string) (string, bool) {
	prefix := name + "("
	if !strings.HasPrefix(value, prefix) || !strings.HasSuffix(value, ")") {
		return "", false
	}
	inner := value[len(prefix) : len(value)-1]
	// Reject trailing ")" belonging to a different opener.
	depth := 0
	for _, ch := range inner {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", false
			}
		}
	}
	return inner, depth == 0
}

// splitTopLevel splits on sep outside any parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
