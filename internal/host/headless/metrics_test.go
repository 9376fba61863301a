package headless

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The user agent defaults these expectations lean on: text inputs are
// border-box 170px wide with 1px 2px padding and a 1px border, the base font
// size is 16px (9.6px per character at the 0.6 advance factor), and normal
// line height resolves to 19.2px.

func TestInputDefaultMetrics(t *testing.T) {
	doc, err := ParseString(`<html><body><input id="a" type="text" value="hello"></body></html>`)
	require.NoError(t, err)
	el := queryOne(t, doc, "#a")

	assert.InDelta(t, 170.0, el.OffsetWidth(), 1e-9)
	assert.InDelta(t, 168.0, el.ClientWidth(), 1e-9)
	assert.InDelta(t, 168.0, el.ScrollWidth(), 1e-9, "short values do not overflow")
	assert.InDelta(t, 23.2, el.OffsetHeight(), 1e-9)
	assert.InDelta(t, 21.2, el.ClientHeight(), 1e-9)
}

func TestDisplayNoneZeroesMetrics(t *testing.T) {
	t.Run("on the element", func(t *testing.T) {
		doc, err := ParseString(`<html><body><input id="a" style="display: none"></body></html>`)
		require.NoError(t, err)
		el := queryOne(t, doc, "#a")
		assert.Zero(t, el.OffsetWidth())
		assert.Zero(t, el.ScrollHeight())
	})

	t.Run("on an ancestor", func(t *testing.T) {
		doc, err := ParseString(`<html><body><div style="display: none"><input id="a"></div></body></html>`)
		require.NoError(t, err)
		el := queryOne(t, doc, "#a")
		assert.Zero(t, el.OffsetWidth())
		assert.Zero(t, el.ClientWidth())
	})
}

func TestMetricsSeeStyleWrites(t *testing.T) {
	doc, err := ParseString(`<html><body><input id="a"></body></html>`)
	require.NoError(t, err)
	el := queryOne(t, doc, "#a")

	require.NoError(t, el.SetStyleProperty("width", "200px"))
	assert.InDelta(t, 200.0, el.OffsetWidth(), 1e-9)

	// A zero write floors at the border-box minimum of padding plus border.
	require.NoError(t, el.SetStyleProperty("width", "0"))
	assert.InDelta(t, 6.0, el.OffsetWidth(), 1e-9)
	assert.InDelta(t, 4.0, el.ClientWidth(), 1e-9)
}

func TestBoxSizingConversion(t *testing.T) {
	doc, err := ParseString(`<html><body>
		<input id="border" style="width: 100px">
		<input id="content" style="box-sizing: content-box; width: 100px">
		<input id="padding" style="box-sizing: padding-box; width: 100px">
	</body></html>`)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, queryOne(t, doc, "#border").OffsetWidth(), 1e-9)
	assert.InDelta(t, 106.0, queryOne(t, doc, "#content").OffsetWidth(), 1e-9)
	assert.InDelta(t, 102.0, queryOne(t, doc, "#padding").OffsetWidth(), 1e-9)
}

func TestMinWidthFloorsTheBox(t *testing.T) {
	doc, err := ParseString(`<html><body><input id="a" style="width: 10px; min-width: 50px"></body></html>`)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, queryOne(t, doc, "#a").OffsetWidth(), 1e-9)
}

func TestScrollOverflowAndClamping(t *testing.T) {
	value := strings.Repeat("x", 50) // 480px of text
	doc, err := ParseString(`<html><body><input id="a" style="width: 100px" value="` + value + `"></body></html>`)
	require.NoError(t, err)
	el := queryOne(t, doc, "#a")

	assert.InDelta(t, 98.0, el.ClientWidth(), 1e-9)
	assert.InDelta(t, 484.0, el.ScrollWidth(), 1e-9, "overflowing text plus horizontal padding")

	el.SetScrollLeft(1e9)
	assert.InDelta(t, 386.0, el.ScrollLeft(), 1e-9, "clamps to scrollWidth - clientWidth")

	el.SetScrollLeft(-5)
	assert.Zero(t, el.ScrollLeft())

	// Widening the element removes the overflow; the next extreme write
	// clamps to zero.
	require.NoError(t, el.SetStyleProperty("width", "500px"))
	el.SetScrollLeft(1e9)
	assert.Zero(t, el.ScrollLeft())
}

func TestTextareaWrapping(t *testing.T) {
	value := strings.Repeat("a", 40) // 384px unwrapped
	doc, err := ParseString(`<html><body><textarea id="a" style="width: 100px">`+value+`</textarea></body></html>`)
	require.NoError(t, err)
	el := queryOne(t, doc, "#a")

	// 94px of content width wraps 384px of text onto 5 lines of 19.2px.
	assert.InDelta(t, 40.0, el.ClientHeight(), 1e-9)
	assert.InDelta(t, 98.0, el.ScrollHeight(), 1e-9)
}

func TestScrollHeightTracksValueWrites(t *testing.T) {
	doc, err := ParseString(`<html><body><textarea id="a" style="width: 100px"></textarea></body></html>`)
	require.NoError(t, err)
	el := queryOne(t, doc, "#a")

	one := el.ScrollHeight()
	el.SetValue("line\nline\nline\nline")
	assert.Greater(t, el.ScrollHeight(), one)
}

func TestCalcAndVarResolution(t *testing.T) {
	t.Run("calc with a var fallback", func(t *testing.T) {
		doc, err := ParseString(`<html><body><input id="a" style="width: calc(50px + var(--pad, 25px))"></body></html>`)
		require.NoError(t, err)
		assert.InDelta(t, 75.0, queryOne(t, doc, "#a").OffsetWidth(), 1e-9)
	})

	t.Run("set custom property overrides the fallback", func(t *testing.T) {
		doc, err := ParseString(`<html><body><input id="a" style="--pad: 10px; width: calc(50px + var(--pad, 25px))"></body></html>`)
		require.NoError(t, err)
		assert.InDelta(t, 60.0, queryOne(t, doc, "#a").OffsetWidth(), 1e-9)
	})

	t.Run("inherited custom property", func(t *testing.T) {
		doc, err := ParseString(`<html><body><div style="--pad: 20px"><input id="a" style="width: calc(50px + var(--pad, 25px))"></div></body></html>`)
		require.NoError(t, err)
		assert.InDelta(t, 70.0, queryOne(t, doc, "#a").OffsetWidth(), 1e-9)
	})

	t.Run("em lengths resolve against the font size", func(t *testing.T) {
		doc, err := ParseString(`<html><body><input id="a" style="font-size: 10px; width: 10em"></body></html>`)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, queryOne(t, doc, "#a").OffsetWidth(), 1e-9)
	})
}

func TestInnerCall(t *testing.T) {
	inner, ok := innerCall("calc(1px + 2px)", "calc")
	assert.True(t, ok)
	assert.Equal(t, "1px + 2px", inner)

	_, ok = innerCall("calc(1px) + calc(2px)", "calc")
	assert.False(t, ok, "two sibling calls are not one call")

	_, ok = innerCall("min(1px)", "calc")
	assert.False(t, ok)
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("100px + var(--a, 2px)", '+')
	require.Len(t, parts, 2)
	assert.Equal(t, "100px", parts[0])
	assert.Equal(t, "var(--a, 2px)", parts[1])

	parts = splitTopLevel("--a, var(--b, 1px)", ',')
	require.Len(t, parts, 2)
	assert.Equal(t, "var(--b, 1px)", parts[1])
}
