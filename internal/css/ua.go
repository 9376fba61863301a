package css

// DefaultUserAgentCSS gives unstyled documents sane form-control defaults so
// measurement does not start from nothing. Values follow common browser UA
// sheets; the parser supports only what appears here.
const DefaultUserAgentCSS = `
html, body, div, p, form, fieldset, label, header, footer, section, article, main {
    display: block;
    margin: 0;
    padding: 0;
}

body { margin: 8px; }

input, button, textarea, select {
    display: inline-block;
    box-sizing: border-box;
    margin: 2px 0;
    padding: 1px 2px;
    border-width: 1px;
    border-style: solid;
    border-color: #767676;
    font-size: inherit;
    line-height: normal;
    appearance: auto;
}

input { width: 170px; }

textarea {
    width: 184px;
    height: 42px;
    white-space: pre-wrap;
}

select {
    width: auto;
    appearance: auto;
}

option { display: none; }
`
