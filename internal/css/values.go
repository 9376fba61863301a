package css

import (
	"strconv"
	"strings"
)

const (
	// BaseFontSize is the root font size used when nothing else is specified.
	BaseFontSize = 16.0
	// DefaultLineHeight is the multiplier applied for 'line-height: normal'.
	DefaultLineHeight = 1.2
	// CharWidthFactor approximates the advance width of one character as a
	// fraction of the font size. Shared by text measurement and the 'ch' unit.
	CharWidthFactor = 0.6
)

// BoxSizing enumerates the recognized box-sizing modes. Anything else parses
// as BoxSizingUnknown and callers fall back to a zero offset.
type BoxSizing int

const (
	ContentBox BoxSizing = iota
	PaddingBox
	BorderBox
	BoxSizingUnknown
)

// ParseBoxSizing maps a computed box-sizing value onto the closed enum.
func ParseBoxSizing(v string) BoxSizing {
	switch strings.TrimSpace(v) {
	case "content-box", "":
		return ContentBox
	case "padding-box":
		return PaddingBox
	case "border-box":
		return BorderBox
	default:
		return BoxSizingUnknown
	}
}

func (b BoxSizing) String() string {
	switch b {
	case ContentBox:
		return "content-box"
	case PaddingBox:
		return "padding-box"
	case BorderBox:
		return "border-box"
	default:
		return "unknown"
	}
}

// Edges holds the four side values of a box layer (padding or border widths),
// resolved to pixels.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns the left+right sum.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns the top+bottom sum.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// ParseLength resolves a CSS length to pixels. fontSize is the element's own
// resolved font size (for em/ch), rootFontSize the document root's (for rem),
// reference the dimension percentages resolve against. "auto", "normal",
// keywords, and anything unparsable resolve to 0.
func ParseLength(value string, fontSize, rootFontSize, reference float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "auto" || value == "normal" || value == "none" {
		return 0
	}

	parseNumeric := func(suffix string) (float64, bool) {
		numStr := strings.TrimSuffix(value, suffix)
		if v, err := strconv.ParseFloat(numStr, 64); err == nil {
			return v, true
		}
		return 0, false
	}

	switch {
	case strings.HasSuffix(value, "px"):
		if v, ok := parseNumeric("px"); ok {
			return v
		}
	case strings.HasSuffix(value, "%"):
		if v, ok := parseNumeric("%"); ok {
			return reference * v / 100.0
		}
	case strings.HasSuffix(value, "rem"):
		if v, ok := parseNumeric("rem"); ok {
			return v * rootFontSize
		}
	case strings.HasSuffix(value, "em"):
		if v, ok := parseNumeric("em"); ok {
			return v * fontSize
		}
	case strings.HasSuffix(value, "ch"):
		if v, ok := parseNumeric("ch"); ok {
			return v * fontSize * CharWidthFactor
		}
	case strings.HasSuffix(value, "pt"):
		if v, ok := parseNumeric("pt"); ok {
			return v * 96.0 / 72.0
		}
	}

	// Unitless values are treated as pixels.
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	}
	return 0
}

// ParseAbsoluteLength resolves a length that must not depend on context.
// Relative units degrade to their face value against the base font size.
func ParseAbsoluteLength(value string) float64 {
	return ParseLength(value, BaseFontSize, BaseFontSize, 0)
}

// BorderKeywordWidth resolves the thin/medium/thick border keywords; other
// inputs go through ParseAbsoluteLength.
func BorderKeywordWidth(value string) float64 {
	switch strings.TrimSpace(value) {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	default:
		return ParseAbsoluteLength(value)
	}
}
