// Package sizing implements content-fitting for form controls: given a live
// element, it computes and applies the minimal width or height that shows the
// whole value without scrollbars, using only the host's indirect measurement
// primitives (scroll, client, and offset metrics).
package sizing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formfit/formfit/internal/css"
	"github.com/formfit/formfit/internal/host"
)

const (
	// DefaultBaseSelector matches the control shapes that qualify for
	// fitting: textareas, selects without an explicit size, and text-like
	// inputs.
	DefaultBaseSelector = `textarea, select:not([size]), input:not([type]), ` +
		`input[type="text"], input[type="number"], input[type="url"], ` +
		`input[type="email"], input[type="tel"]`

	// DefaultFilterSelector narrows eligible controls; the default admits
	// everything.
	DefaultFilterSelector = "*"

	// DefaultArrowWidth is the fallback for the --arrow-width custom
	// property, reserving room for a native dropdown arrow.
	DefaultArrowWidth = "2.1em"

	// maxOverflowRounds caps the scroll-correction loop on single-line
	// inputs. The cap bounds work on hosts that never converge; it is not a
	// convergence proof.
	maxOverflowRounds = 10

	// extremeScroll is far past any real content width; the host clamps it
	// to the actual overflow.
	extremeScroll = 1e9

	probeAttr = "data-formfit-probe"
)

// Config carries the selector set and arrow width for one engine. Zero
// fields take the package defaults; there is no mutable package state.
type Config struct {
	BaseSelector   string
	FilterSelector string
	ArrowWidth     string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		BaseSelector:   DefaultBaseSelector,
		FilterSelector: DefaultFilterSelector,
		ArrowWidth:     DefaultArrowWidth,
	}
}

func (c Config) withDefaults() Config {
	if c.BaseSelector == "" {
		c.BaseSelector = DefaultBaseSelector
	}
	if c.FilterSelector == "" {
		c.FilterSelector = DefaultFilterSelector
	}
	if c.ArrowWidth == "" {
		c.ArrowWidth = DefaultArrowWidth
	}
	return c
}

// Kind is the closed set of control categories the engine distinguishes.
// Classification happens once per call and drives a single dispatch.
type Kind int

const (
	KindNone Kind = iota
	KindTextArea
	KindSingleLineText
	KindSelection
)

func (k Kind) String() string {
	switch k {
	case KindTextArea:
		return "textarea"
	case KindSingleLineText:
		return "single-line-text"
	case KindSelection:
		return "selection"
	default:
		return "none"
	}
}

// textLikeInputTypes are the input type attributes treated as single-line
// text. An absent or empty type also qualifies.
var textLikeInputTypes = map[string]bool{
	"text":   true,
	"number": true,
	"url":    true,
	"email":  true,
	"tel":    true,
}

// Classify maps an element onto its control kind.
func Classify(el host.Element) Kind {
	switch el.TagName() {
	case "textarea":
		return KindTextArea
	case "select":
		return KindSelection
	case "input":
		t, ok := el.Attr("type")
		if !ok || t == "" || textLikeInputTypes[strings.ToLower(t)] {
			return KindSingleLineText
		}
	}
	return KindNone
}

// Engine sizes form controls. It holds configuration and a logger and
// nothing else: every call is stateless with respect to prior calls, so the
// engine is safe to drive from any notification timing.
type Engine struct {
	cfg Config
	log *zap.Logger
}

// New returns an engine for the given configuration. A nil logger disables
// logging.
func New(cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{cfg: cfg.withDefaults(), log: log}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Resizes reports whether Resize would act on the element: attached,
// matching the base selector, and matching the filter selector. It reads but
// never mutates, so callers can probe freely.
func (e *Engine) Resizes(el host.Element) bool {
	ok, err := e.eligible(el)
	return err == nil && ok
}

func (e *Engine) eligible(el host.Element) (bool, error) {
	if !el.Attached() {
		return false, nil
	}
	ok, err := el.Matches(e.cfg.BaseSelector)
	if err != nil {
		return false, fmt.Errorf("base selector: %w", err)
	}
	if !ok {
		return false, nil
	}
	ok, err = el.Matches(e.cfg.FilterSelector)
	if err != nil {
		return false, fmt.Errorf("filter selector: %w", err)
	}
	return ok, nil
}

// Resize fits one control. Ineligible elements are a silent no-op; host
// failures (a rejected DOM mutation, a dead browser connection) propagate.
// Eligibility is re-evaluated on every call.
func (e *Engine) Resize(el host.Element) error {
	ok, err := e.eligible(el)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	kind := Classify(el)
	if kind == KindNone {
		return nil
	}
	e.log.Debug("resizing control", zap.String("tag", el.TagName()), zap.Stringer("kind", kind))

	// An empty control measures as nothing; borrow the placeholder text for
	// the duration of the measurement and put the empty value back after
	// the kind branch, whatever path it took.
	substituted := false
	if kind != KindSelection && el.Value() == "" && el.Placeholder() != "" {
		el.SetValue(el.Placeholder())
		substituted = true
	}
	defer func() {
		if substituted {
			el.SetValue("")
		}
	}()

	switch kind {
	case KindTextArea:
		return e.resizeTextArea(el)
	case KindSingleLineText:
		return e.resizeSingleLineText(el)
	default:
		return e.resizeSelection(el)
	}
}

// resizeTextArea fits the height to the scrollable content. The height is
// zeroed first so the previous height cannot leak into scrollHeight; the
// box-sizing mode then decides what the raw scrollHeight is missing.
func (e *Engine) resizeTextArea(el host.Element) error {
	if err := el.SetStyleProperty("height", "0"); err != nil {
		return fmt.Errorf("collapsing height: %w", err)
	}

	st := el.ComputedStyle()
	fontSize := styleFontSize(st)
	var offset float64
	switch css.ParseBoxSizing(st.Get("box-sizing")) {
	case css.BorderBox:
		// scrollHeight excludes padding and border while offsetHeight
		// includes both, so the difference minus the paddings is the border
		// contribution.
		offset = el.OffsetHeight() -
			css.ParseLength(st.Get("padding-top"), fontSize, css.BaseFontSize, 0) -
			css.ParseLength(st.Get("padding-bottom"), fontSize, css.BaseFontSize, 0)
	case css.ContentBox:
		offset = -el.ClientHeight() +
			css.ParseLength(st.Get("min-height"), fontSize, css.BaseFontSize, 0)
	}

	height := el.ScrollHeight() + offset
	if err := el.SetStyleProperty("height", pxString(height)); err != nil {
		return fmt.Errorf("applying height: %w", err)
	}
	e.log.Debug("textarea fitted", zap.Float64("height", height))
	return nil
}

// resizeSingleLineText fits the width to the value. Controls that do not
// render (zero offsetWidth even at a generous width) get a character-count
// approximation instead of a measurement.
func (e *Engine) resizeSingleLineText(el host.Element) error {
	if err := el.SetStyleProperty("width", "1000px"); err != nil {
		return fmt.Errorf("probing visibility: %w", err)
	}
	if el.OffsetWidth() == 0 {
		chars := utf8.RuneCountInString(el.Value()) + 1
		e.log.Debug("input not rendered, using character fallback", zap.Int("chars", chars))
		if err := el.SetStyleProperty("width", fmt.Sprintf("%dch", chars)); err != nil {
			return fmt.Errorf("applying fallback width: %w", err)
		}
		return nil
	}

	if err := el.SetStyleProperty("width", "0"); err != nil {
		return fmt.Errorf("collapsing width: %w", err)
	}

	st := el.ComputedStyle()
	fontSize := styleFontSize(st)
	var offset float64
	switch css.ParseBoxSizing(st.Get("box-sizing")) {
	case css.BorderBox:
		// At width:0 the offset width is exactly border plus padding.
		offset = el.OffsetWidth()
	case css.PaddingBox:
		offset = el.ClientWidth()
	case css.ContentBox:
		offset = css.ParseLength(st.Get("min-width"), fontSize, css.BaseFontSize, 0)
	}

	// The overflow at width:0 approximates the content width; the offset is
	// the floor so box decorations are never under-sized.
	width := math.Max(offset, el.ScrollWidth()-el.ClientWidth())
	if err := el.SetStyleProperty("width", pxString(width)); err != nil {
		return fmt.Errorf("applying width: %w", err)
	}

	// Some hosts clip or round scroll metrics at small widths. Scroll to the
	// end, read back what the host actually allowed, and widen by that much
	// until nothing scrolls.
	for round := 0; round < maxOverflowRounds; round++ {
		el.SetScrollLeft(extremeScroll)
		clamped := el.ScrollLeft()
		if clamped == 0 {
			break
		}
		width += clamped
		if err := el.SetStyleProperty("width", pxString(width)); err != nil {
			return fmt.Errorf("widening for overflow: %w", err)
		}
	}
	e.log.Debug("input fitted", zap.Float64("width", width))
	return nil
}

// resizeSelection fits the width to the selected option's text by measuring
// a styled probe inserted next to the control. The probe is removed on every
// exit path.
func (e *Engine) resizeSelection(el host.Element) (err error) {
	selected := el.SelectedIndex()
	if selected == -1 {
		return nil
	}
	index := 0
	if selected > 0 {
		index = selected
	}

	probe := el.Owner().CreateElement("span")
	probe.SetAttr(probeAttr, uuid.NewString())
	probe.SetTextContent(el.OptionText(index))
	if err = el.InsertAfter(probe); err != nil {
		return fmt.Errorf("inserting measurement probe: %w", err)
	}
	defer func() {
		if rerr := probe.Remove(); rerr != nil && err == nil {
			err = fmt.Errorf("removing measurement probe: %w", rerr)
		}
	}()

	// Mirror the control's rendering onto the probe, except for anything
	// that would pin its width.
	st := el.ComputedStyle()
	for _, name := range st.Properties() {
		if skipCopiedProperty(name) {
			continue
		}
		v := st.Get(name)
		if v == "" {
			continue
		}
		if perr := probe.SetStyleProperty(name, v); perr != nil {
			// Not settable on the probe; skip it.
			continue
		}
	}
	appearance, _ := appearanceValue(st)

	// The probe must shrink to its text, not inherit the control's width.
	if err = probe.RemoveStyleProperty("width"); err != nil {
		return fmt.Errorf("resetting probe width: %w", err)
	}

	if w := probe.OffsetWidth(); w > 0 {
		if err = el.SetStyleProperty("width", pxString(w)); err != nil {
			return fmt.Errorf("applying width: %w", err)
		}
		if appearance != "" && appearance != "none" {
			// A native arrow will be drawn over the text; reserve room for
			// it. The host resolves --arrow-width if the page sets it.
			expr := fmt.Sprintf("calc(%s + var(--arrow-width, %s))", pxString(w), e.cfg.ArrowWidth)
			if err = el.SetStyleProperty("width", expr); err != nil {
				return fmt.Errorf("applying arrow width: %w", err)
			}
		}
		e.log.Debug("select fitted", zap.Float64("width", w), zap.String("appearance", appearance))
	}
	return nil
}

// ResizeAll fits every control in the document matching the configured base
// selector.
func (e *Engine) ResizeAll(doc host.Document) error {
	return e.ResizeAllMatching(doc, e.cfg.BaseSelector)
}

// ResizeAllMatching resolves a selector against the document and fits each
// match. Matches are processed in document order; fitting one control never
// changes the eligibility of the next.
func (e *Engine) ResizeAllMatching(doc host.Document, selector string) error {
	els, err := doc.QuerySelectorAll(selector)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", selector, err)
	}
	return e.ResizeElements(els...)
}

// ResizeElements fits an explicit list of controls, re-checking the filter
// selector per element. Individual failures do not stop the batch; they come
// back joined.
func (e *Engine) ResizeElements(els ...host.Element) error {
	var errs []error
	for _, el := range els {
		ok, err := el.Matches(e.cfg.FilterSelector)
		if err != nil {
			errs = append(errs, fmt.Errorf("filter selector: %w", err))
			continue
		}
		if !ok {
			continue
		}
		if err := e.Resize(el); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func styleFontSize(st host.Style) float64 {
	if v := css.ParseAbsoluteLength(st.Get("font-size")); v > 0 {
		return v
	}
	return css.BaseFontSize
}

func pxString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
