package components

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// JSON marshals v for use inside an attribute, "{}" if it cannot be encoded
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON")
		return "{}"
	}
	return string(b)
}

// JSONLD is a nonce-carrying ld+json script, nil for empty data.
func JSONLD(data map[string]any, nonce string) g.Node {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling structured data")
		return nil
	}
	// json.Marshal escapes <, > and & so the payload cannot close the tag
	return h.Script(h.Type("application/ld+json"), g.Attr("nonce", nonce), g.Raw(string(b)))
}
