package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"

	"github.com/go-barry/backbone/core"
)

func TestPreferredType(t *testing.T) {
	cases := map[string]string{
		"":                                 TypeJSON,
		"application/json, */*":            TypeJSON,
		"*/*":                              TypeJSON,
		"application/xml":                  TypeXML,
		"text/xml, application/json;q=0.5": TypeXML,
		"application/xml;q=0.8, text/json": TypeJSON,
		"application/*":                    TypeJSON,
		"text/html":                        "",
		"application/json;q=0, text/html":  "",
		"application/hal+json;q=0.9":       TypeJSON,
	}
	for accept, want := range cases {
		if got := PreferredType(accept); got != want {
			t.Errorf("PreferredType(%q) = %q, want %q", accept, got, want)
		}
	}
}

func TestToJSON_MapperRoundTrip(t *testing.T) {
	rec := newFakeRecord()
	rec.toMap = map[string]any{"title": "T", "author": "A", "id": 7}

	out, err := ToJSON(rec)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", out, err)
	}
	want := map[string]any{"title": "T", "author": "A", "id": float64(7)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToJSON_MarshalerUsedVerbatim(t *testing.T) {
	rec := rawRecord{fakeRecord: newFakeRecord(), raw: "X"}

	out, err := ToJSON(rec)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if string(out) != "X" {
		t.Errorf("expected verbatim MarshalJSON output, got %s", out)
	}
}

func TestToJSON_PlaceholderFallsBackToMap(t *testing.T) {
	for _, raw := range []string{`"#<Album:0x1>"`, `"&{1 Tanto}"`} {
		inner := newFakeRecord()
		inner.toMap = map[string]any{"title": "Tanto Tempo"}

		out, err := ToJSON(rawRecord{fakeRecord: inner, raw: raw})
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		if string(out) != `{"title":"Tanto Tempo"}` {
			t.Errorf("placeholder %s: expected map encoding, got %s", raw, out)
		}
	}
}

func TestToJSON_Unconvertible(t *testing.T) {
	_, err := ToJSON(struct{ Name string }{"x"})

	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SerializationError, got %v", err)
	}
	if serr.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", serr.StatusCode())
	}
}

func TestRespond_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json, */*")
	rec := httptest.NewRecorder()

	if err := Respond(rec, req, map[string]any{"result": "success"}); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Body.String() != `{"result":"success"}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRespond_PassesOnXML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/xml")
	rec := httptest.NewRecorder()

	err := Respond(rec, req, map[string]any{"a": "b"})
	if !core.IsPass(err) {
		t.Errorf("expected ErrPass, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected nothing written, got %s", rec.Body.String())
	}
}
