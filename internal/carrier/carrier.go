// Package carrier maps tracking codes to the carrier path used by the
// tracking site and builds the page URL for a code.
package carrier

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the tracking site the scraper targets
const DefaultBaseURL = "https://www.rastreadordepacotes.com.br"

// Carrier is the path segment identifying a carrier on the tracking site
type Carrier string

const (
	Jadlog   Carrier = "jadlog"
	Correios Carrier = "correios"
)

// Default is used when no prefix table matches
const Default = Jadlog

// threeCharPrefixes is checked before twoCharPrefixes
var threeCharPrefixes = map[string]Carrier{
	"410": Jadlog,
	"411": Jadlog,
	"412": Jadlog,
	"140": Jadlog,
	"141": Jadlog,
	"160": Jadlog,
}

var twoCharPrefixes = map[string]Carrier{
	"AA": Correios,
	"AB": Correios,
	"JT": Correios,
	"LB": Correios,
	"LE": Correios,
	"LX": Correios,
	"NX": Correios,
	"OA": Correios,
	"OB": Correios,
	"ON": Correios,
	"PX": Correios,
	"QB": Correios,
	"QC": Correios,
	"SS": Correios,
	"SX": Correios,
	"TJ": Correios,
	"YA": Correios,
}

// Resolve returns the carrier for code based on its first three, then first
// two characters. Unknown prefixes resolve to Default.
func Resolve(code string) Carrier {
	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) >= 3 {
		if c, ok := threeCharPrefixes[code[:3]]; ok {
			return c
		}
	}
	if len(code) >= 2 {
		if c, ok := twoCharPrefixes[code[:2]]; ok {
			return c
		}
	}
	return Default
}

// URL builds the tracking page address for code under baseURL
func URL(baseURL string, c Carrier, code string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/rastreio/%s/%s", base, c, url.PathEscape(code))
}
