package css

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Styles is a computed property map for one element.
type Styles map[Property]Value

// Get returns the computed value for property, or fallback when absent.
func (s Styles) Get(property, fallback string) string {
	if v, ok := s[Property(property)]; ok {
		return string(v)
	}
	return fallback
}

// FontSize returns the element's resolved font size in pixels.
func (s Styles) FontSize() float64 {
	v := s.Get("font-size", "")
	if v == "" {
		return BaseFontSize
	}
	return ParseAbsoluteLength(v)
}

// Origin identifies where a declaration came from, for cascade priority.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
	OriginInline
)

type compiledRule struct {
	selectors []cascadia.Sel
	decls     []Declaration
}

// Engine computes styles for elements by running the cascade over the user
// agent sheet, author sheets, and inline declarations. Selector matching and
// specificity are delegated to cascadia.
type Engine struct {
	userAgent []compiledRule
	author    []compiledRule
}

// NewEngine returns an engine preloaded with the default user agent sheet.
func NewEngine() *Engine {
	e := &Engine{}
	e.userAgent = compileSheet(NewParser(DefaultUserAgentCSS).Parse())
	return e
}

// AddAuthorSheet appends a parsed author stylesheet. Rules with selectors
// cascadia cannot compile are dropped.
func (e *Engine) AddAuthorSheet(sheet StyleSheet) {
	e.author = append(e.author, compileSheet(sheet)...)
}

func compileSheet(sheet StyleSheet) []compiledRule {
	rules := make([]compiledRule, 0, len(sheet.Rules))
	for _, r := range sheet.Rules {
		group, err := cascadia.ParseGroup(r.SelectorText)
		if err != nil {
			continue
		}
		sels := make([]cascadia.Sel, 0, len(group))
		for _, sel := range group {
			sels = append(sels, sel)
		}
		rules = append(rules, compiledRule{selectors: sels, decls: r.Declarations})
	}
	return rules
}

type weightedDecl struct {
	decl        Declaration
	origin      Origin
	specificity cascadia.Specificity
	order       int
}

// inheritedProperties lists the properties that pass from parent to child
// when the child has no declaration of its own.
var inheritedProperties = map[Property]bool{
	"color":          true,
	"cursor":         true,
	"font-family":    true,
	"font-size":      true,
	"font-style":     true,
	"font-weight":    true,
	"letter-spacing": true,
	"line-height":    true,
	"text-align":     true,
	"text-transform": true,
	"visibility":     true,
	"white-space":    true,
}

// Computed runs the full cascade for one element node. inline holds the
// element's current inline declarations in source order; parent holds the
// parent element's computed styles (nil at the root). Relative font sizes and
// line heights come back resolved to pixel values.
func (e *Engine) Computed(node *html.Node, inline []Declaration, parent Styles) Styles {
	var decls []weightedDecl
	order := 0

	collect := func(rules []compiledRule, origin Origin) {
		for _, rule := range rules {
			matched := false
			var best cascadia.Specificity
			for _, sel := range rule.selectors {
				if sel.Match(node) {
					spec := sel.Specificity()
					if !matched || best.Less(spec) {
						best = spec
					}
					matched = true
				}
			}
			if !matched {
				continue
			}
			for _, d := range rule.decls {
				decls = append(decls, weightedDecl{decl: d, origin: origin, specificity: best, order: order})
				order++
			}
		}
	}

	collect(e.userAgent, OriginUserAgent)
	collect(e.author, OriginAuthor)
	for _, d := range inline {
		decls = append(decls, weightedDecl{
			decl:        d,
			origin:      OriginInline,
			specificity: cascadia.Specificity{1, 0, 0},
			order:       order,
		})
		order++
	}

	sort.SliceStable(decls, func(i, j int) bool {
		di, dj := decls[i], decls[j]
		pi, pj := cascadePriority(di), cascadePriority(dj)
		if pi != pj {
			return pi < pj
		}
		if di.specificity != dj.specificity {
			return di.specificity.Less(dj.specificity)
		}
		return di.order < dj.order
	})

	styles := make(Styles)
	for _, wd := range decls {
		styles[wd.decl.Property] = wd.decl.Value
	}

	expandShorthands(styles)
	inheritStyles(styles, parent)
	resolveRelativeValues(styles, parent)
	return styles
}

// cascadePriority orders declaration sources; later-sorted wins.
func cascadePriority(d weightedDecl) int {
	if d.decl.Important {
		switch d.origin {
		case OriginUserAgent:
			return 5
		default:
			return 4
		}
	}
	switch d.origin {
	case OriginUserAgent:
		return 1
	case OriginAuthor:
		return 2
	default:
		return 3
	}
}

func inheritStyles(styles Styles, parent Styles) {
	if parent == nil {
		return
	}
	for prop, val := range styles {
		if val == "inherit" {
			if pv, ok := parent[prop]; ok {
				styles[prop] = pv
			} else {
				delete(styles, prop)
			}
		}
	}
	for prop := range inheritedProperties {
		if _, ok := styles[prop]; ok {
			continue
		}
		if pv, ok := parent[prop]; ok {
			styles[prop] = pv
		}
	}
	// Custom properties inherit like font styles do.
	for prop, pv := range parent {
		if !strings.HasPrefix(string(prop), "--") {
			continue
		}
		if _, ok := styles[prop]; !ok {
			styles[prop] = pv
		}
	}
}

// resolveRelativeValues pins font-size and line-height to pixel values so
// later measurement never re-derives them against a moving reference.
func resolveRelativeValues(styles Styles, parent Styles) {
	parentFontSize := BaseFontSize
	if parent != nil {
		parentFontSize = parent.FontSize()
	}

	if raw, ok := styles["font-size"]; ok {
		resolved := ParseLength(string(raw), parentFontSize, BaseFontSize, parentFontSize)
		if resolved <= 0 {
			resolved = parentFontSize
		}
		styles["font-size"] = pxValue(resolved)
	} else {
		styles["font-size"] = pxValue(parentFontSize)
	}

	fontSize := styles.FontSize()
	if raw, ok := styles["line-height"]; ok {
		styles["line-height"] = pxValue(resolveLineHeight(string(raw), fontSize))
	}
}

func resolveLineHeight(value string, fontSize float64) float64 {
	value = strings.TrimSpace(value)
	if value == "normal" || value == "" {
		return fontSize * DefaultLineHeight
	}
	// A bare number is a multiplier of the font size.
	if !strings.ContainsAny(value, "pxremch%") {
		if v := ParseLength(value, fontSize, BaseFontSize, fontSize); v > 0 {
			return fontSize * v
		}
	}
	return ParseLength(value, fontSize, BaseFontSize, fontSize)
}

func pxValue(v float64) Value {
	return Value(fmt.Sprintf("%gpx", v))
}

func expandShorthands(styles Styles) {
	expand1To4(styles, "margin", "margin-top", "margin-right", "margin-bottom", "margin-left")
	expand1To4(styles, "padding", "padding-top", "padding-right", "padding-bottom", "padding-left")
	expand1To4(styles, "border-width", "border-top-width", "border-right-width", "border-bottom-width", "border-left-width")
	expandBorder(styles)
}

func expand1To4(styles Styles, shorthand, top, right, bottom, left Property) {
	val, ok := styles[shorthand]
	if !ok {
		return
	}
	delete(styles, shorthand)
	parts := strings.Fields(string(val))
	switch len(parts) {
	case 1:
		v := Value(parts[0])
		styles[top], styles[right], styles[bottom], styles[left] = v, v, v, v
	case 2:
		v1, v2 := Value(parts[0]), Value(parts[1])
		styles[top], styles[right], styles[bottom], styles[left] = v1, v2, v1, v2
	case 3:
		v1, v2, v3 := Value(parts[0]), Value(parts[1]), Value(parts[2])
		styles[top], styles[right], styles[bottom], styles[left] = v1, v2, v3, v2
	case 4:
		styles[top] = Value(parts[0])
		styles[right] = Value(parts[1])
		styles[bottom] = Value(parts[2])
		styles[left] = Value(parts[3])
	}
}

func expandBorder(styles Styles) {
	val, ok := styles["border"]
	if !ok {
		return
	}
	delete(styles, "border")
	width, borderStyle := "medium", "none"
	for _, part := range strings.Fields(string(val)) {
		switch part {
		case "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset", "none", "hidden":
			borderStyle = part
		case "thin", "medium", "thick":
			width = part
		default:
			if len(part) > 0 && (part[0] == '.' || (part[0] >= '0' && part[0] <= '9')) {
				width = part
			}
		}
	}
	for _, side := range []string{"top", "right", "bottom", "left"} {
		wProp := Property("border-" + side + "-width")
		sProp := Property("border-" + side + "-style")
		if _, ok := styles[wProp]; !ok {
			styles[wProp] = Value(width)
		}
		if _, ok := styles[sProp]; !ok {
			styles[sProp] = Value(borderStyle)
		}
	}
}

// PaddingEdges resolves the four computed padding values to pixels.
func (s Styles) PaddingEdges() Edges {
	fs := s.FontSize()
	edge := func(side string) float64 {
		return ParseLength(s.Get("padding-"+side, "0"), fs, BaseFontSize, 0)
	}
	return Edges{Top: edge("top"), Right: edge("right"), Bottom: edge("bottom"), Left: edge("left")}
}

// BorderEdges resolves the four computed border widths to pixels. A side
// with border-style none or hidden contributes zero regardless of width.
func (s Styles) BorderEdges() Edges {
	edge := func(side string) float64 {
		style := s.Get("border-"+side+"-style", "none")
		if style == "none" || style == "hidden" {
			return 0
		}
		return BorderKeywordWidth(s.Get("border-"+side+"-width", "medium"))
	}
	return Edges{Top: edge("top"), Right: edge("right"), Bottom: edge("bottom"), Left: edge("left")}
}
