package sizing

import (
	"strings"

	"github.com/formfit/formfit/internal/host"
)

// appearanceAliases covers the standard property and the vendor-prefixed
// forms hosts still report.
var appearanceAliases = []string{
	"appearance",
	"-webkit-appearance",
	"-moz-appearance",
	"-ms-appearance",
}

// appearanceValue finds the effective appearance value in a computed style,
// checking the unprefixed property first and falling back to a prefix scan of
// the enumerated properties.
func appearanceValue(st host.Style) (string, bool) {
	for _, alias := range appearanceAliases {
		if v := st.Get(alias); v != "" {
			return v, true
		}
	}
	for _, name := range st.Properties() {
		if strings.HasSuffix(name, "-appearance") {
			if v := st.Get(name); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// skipCopiedProperty reports whether a computed property must not be mirrored
// onto the measurement probe: the width itself, logical width aliases, and
// the pseudo-property some hosts expose for the style count.
func skipCopiedProperty(name string) bool {
	switch {
	case name == "width", name == "length":
		return true
	case strings.HasSuffix(name, "logical-width"):
		return true
	}
	return false
}
