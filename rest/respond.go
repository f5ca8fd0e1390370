package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cast"

	"github.com/go-barry/backbone/core"
)

const (
	TypeJSON = "*/json"
	TypeXML  = "*/xml"
)

// PreferredType picks TypeJSON or TypeXML from an Accept header, by
// q-value. JSON wins ties and an empty header. It returns "" when the
// client accepts neither.
func PreferredType(accept string) string {
	if strings.TrimSpace(accept) == "" {
		return TypeJSON
	}

	jsonQ, xmlQ := -1.0, -1.0
	for _, entry := range strings.Split(accept, ",") {
		mediaType, q := parseAcceptEntry(entry)
		if q <= 0 {
			continue
		}
		if acceptMatches(mediaType, "json") && q > jsonQ {
			jsonQ = q
		}
		if acceptMatches(mediaType, "xml") && q > xmlQ {
			xmlQ = q
		}
	}

	switch {
	case jsonQ < 0 && xmlQ < 0:
		return ""
	case jsonQ >= xmlQ:
		return TypeJSON
	default:
		return TypeXML
	}
}

func parseAcceptEntry(entry string) (string, float64) {
	parts := strings.Split(entry, ";")
	mediaType := strings.ToLower(strings.TrimSpace(parts[0]))
	q := 1.0
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && strings.EqualFold(k, "q") {
			q = cast.ToFloat64(strings.TrimSpace(v))
		}
	}
	return mediaType, q
}

func acceptMatches(mediaType, subtype string) bool {
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return mediaType == "*"
	}
	return sub == "*" || sub == subtype || strings.HasSuffix(sub, "+"+subtype)
}

// Respond writes v as JSON when the client accepts it. Any other
// preference returns core.ErrPass so another route may answer.
func Respond(w http.ResponseWriter, req *http.Request, v any) error {
	if PreferredType(req.Header.Get("Accept")) != TypeJSON {
		return core.ErrPass
	}

	body, err := ToJSON(v)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, body)
	return nil
}

var placeholderPrefixes = []string{`"#<`, `"&{`}

// ToJSON encodes v. A json.Marshaler is used verbatim unless it produced
// an opaque placeholder string; otherwise a Mapper's ToMap, or a plain
// map, is encoded.
func ToJSON(v any) ([]byte, error) {
	if m, ok := v.(json.Marshaler); ok {
		if out, err := m.MarshalJSON(); err == nil && !isPlaceholder(out) {
			return out, nil
		}
	}

	switch t := v.(type) {
	case Mapper:
		return json.Marshal(t.ToMap())
	case map[string]any:
		return json.Marshal(t)
	case map[string]string:
		return json.Marshal(t)
	case map[string][]string:
		return json.Marshal(t)
	}

	return nil, &SerializationError{Type: fmt.Sprintf("%T", v)}
}

func isPlaceholder(out []byte) bool {
	s := strings.TrimSpace(string(out))
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
