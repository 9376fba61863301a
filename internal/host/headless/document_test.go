package headless

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndQuery(t *testing.T) {
	doc, err := ParseString(`<html><body>
		<input id="a" type="text">
		<textarea id="b"></textarea>
		<input id="c" type="checkbox">
	</body></html>`)
	require.NoError(t, err)

	t.Run("matches come back in document order", func(t *testing.T) {
		els, err := doc.QuerySelectorAll(`input, textarea`)
		require.NoError(t, err)
		require.Len(t, els, 3)
		id0, _ := els[0].Attr("id")
		id2, _ := els[2].Attr("id")
		assert.Equal(t, "a", id0)
		assert.Equal(t, "c", id2)
	})

	t.Run("attribute and pseudo-class selectors", func(t *testing.T) {
		els, err := doc.QuerySelectorAll(`input:not([type="checkbox"])`)
		require.NoError(t, err)
		require.Len(t, els, 1)
		id, _ := els[0].Attr("id")
		assert.Equal(t, "a", id)
	})

	t.Run("invalid selector errors", func(t *testing.T) {
		_, err := doc.QuerySelectorAll(`input[[`)
		assert.Error(t, err)
	})

	t.Run("handles are memoized per node", func(t *testing.T) {
		first, err := doc.QuerySelectorAll(`#a`)
		require.NoError(t, err)
		second, err := doc.QuerySelectorAll(`#a`)
		require.NoError(t, err)
		assert.Same(t, first[0], second[0])
	})
}

func TestCreateElement(t *testing.T) {
	doc, err := ParseString(`<html><body></body></html>`)
	require.NoError(t, err)

	el := doc.CreateElement("SPAN")
	assert.Equal(t, "span", el.TagName())
	assert.False(t, el.Attached())
	assert.Same(t, doc, el.Owner())
}

func TestNodeCount(t *testing.T) {
	doc, err := ParseString(`<html><body><div><input></div></body></html>`)
	require.NoError(t, err)
	before := doc.NodeCount()

	// A created but unattached element does not change the count.
	doc.CreateElement("span")
	assert.Equal(t, before, doc.NodeCount())
}

func TestAuthorSheetCollection(t *testing.T) {
	doc, err := ParseString(`<html><head><style>
		input { width: 320px; }
	</style></head><body><input id="a"></body></html>`)
	require.NoError(t, err)

	els, err := doc.QuerySelectorAll("#a")
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, "320px", els[0].ComputedStyle().Get("width"))
}

func TestRenderFlushesState(t *testing.T) {
	doc, err := ParseString(`<html><body>
		<input id="a" value="old">
		<textarea id="b">before</textarea>
	</body></html>`)
	require.NoError(t, err)

	els, err := doc.QuerySelectorAll("#a")
	require.NoError(t, err)
	els[0].SetValue("new")
	require.NoError(t, els[0].SetStyleProperty("width", "42px"))

	tas, err := doc.QuerySelectorAll("#b")
	require.NoError(t, err)
	tas[0].SetValue("after")

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `value="new"`)
	assert.Contains(t, out, "after")
	assert.NotContains(t, out, ">before<")
	assert.True(t, strings.Contains(out, "width: 42px"), "inline styles must serialize")
}
