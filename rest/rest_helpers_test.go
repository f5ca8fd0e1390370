package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-barry/backbone/core"
)

// fakeRecord records every call the controller makes.
type fakeRecord struct {
	fields    map[string]any
	required  []string
	rejects   string
	saved     int
	destroyed int
	saveErr   error
	toMap     map[string]any
}

func newFakeRecord() *fakeRecord {
	return &fakeRecord{fields: map[string]any{}}
}

func (r *fakeRecord) SetField(name string, value any) error {
	if name == r.rejects {
		return errors.New("unknown field")
	}
	r.fields[name] = value
	return nil
}

func (r *fakeRecord) IsValid() bool { return len(r.Errors()) == 0 }

func (r *fakeRecord) Errors() map[string][]string {
	errs := map[string][]string{}
	for _, f := range r.required {
		if v, _ := r.fields[f].(string); v == "" {
			errs[f] = append(errs[f], "can't be empty")
		}
	}
	return errs
}

func (r *fakeRecord) Save() error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved++
	return nil
}

func (r *fakeRecord) Destroy() error {
	r.destroyed++
	return nil
}

func (r *fakeRecord) ToMap() map[string]any {
	if r.toMap != nil {
		return r.toMap
	}
	out := map[string]any{}
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// rawRecord answers MarshalJSON verbatim.
type rawRecord struct {
	*fakeRecord
	raw string
}

func (r rawRecord) MarshalJSON() ([]byte, error) { return []byte(r.raw), nil }

func newTestAPI() (*API, *core.Router) {
	router := core.NewRouter(core.Config{}, nil)
	return New(router), router
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, */*")
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, */*")
	return req
}

func serve(t *testing.T, router *core.Router, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
