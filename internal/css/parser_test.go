package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("basic rule", func(t *testing.T) {
		sheet := NewParser(`textarea { box-sizing: border-box; padding: 4px; }`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, "textarea", sheet.Rules[0].SelectorText)
		assert.Equal(t, []Declaration{
			{Property: "box-sizing", Value: "border-box"},
			{Property: "padding", Value: "4px"},
		}, sheet.Rules[0].Declarations)
	})

	t.Run("selector group stays uncompiled", func(t *testing.T) {
		sheet := NewParser(`input, select:not([size]) { width: auto; }`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, `input, select:not([size])`, sheet.Rules[0].SelectorText)
	})

	t.Run("important flag", func(t *testing.T) {
		sheet := NewParser(`input { width: 50px !important; }`).Parse()
		require.Len(t, sheet.Rules, 1)
		d := sheet.Rules[0].Declarations[0]
		assert.True(t, d.Important)
		assert.Equal(t, Value("50px"), d.Value)
	})

	t.Run("function values keep their parentheses", func(t *testing.T) {
		sheet := NewParser(`select { width: calc(100px + var(--arrow-width, 2.1em)); }`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, Value("calc(100px + var(--arrow-width, 2.1em))"), sheet.Rules[0].Declarations[0].Value)
	})

	t.Run("comments and at-rules are skipped", func(t *testing.T) {
		sheet := NewParser(`
			/* leading comment */
			@media screen { div { color: red; } }
			@import "other.css";
			p { /* inner */ margin: 0; }
		`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, "p", sheet.Rules[0].SelectorText)
	})

	t.Run("broken rule does not poison the rest", func(t *testing.T) {
		sheet := NewParser(`
			{ orphan: block; }
			div { margin: 4px; }
		`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, "div", sheet.Rules[0].SelectorText)
	})

	t.Run("properties are lowercased", func(t *testing.T) {
		sheet := NewParser(`div { MARGIN: 4px; }`).Parse()
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, Property("margin"), sheet.Rules[0].Declarations[0].Property)
	})
}

func TestParseInlineStyle(t *testing.T) {
	t.Run("ordered declarations", func(t *testing.T) {
		decls := ParseInlineStyle("width: 10px; height: 20px")
		assert.Equal(t, []Declaration{
			{Property: "width", Value: "10px"},
			{Property: "height", Value: "20px"},
		}, decls)
	})

	t.Run("important and empty segments", func(t *testing.T) {
		decls := ParseInlineStyle("; width: 10px !important;;")
		require.Len(t, decls, 1)
		assert.True(t, decls[0].Important)
		assert.Equal(t, Value("10px"), decls[0].Value)
	})

	t.Run("malformed segments are dropped", func(t *testing.T) {
		assert.Empty(t, ParseInlineStyle("no-colon-here"))
		assert.Empty(t, ParseInlineStyle(": missing-prop"))
	})
}
