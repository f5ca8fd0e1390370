package core

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// Params holds the values captured from a route pattern, in the order the
// captures appear in the pattern.
type Params struct {
	keys   []string
	values []string
}

func newParams(keys, values []string) Params {
	return Params{keys: keys, values: values}
}

func (p Params) Get(key string) string {
	for i, k := range p.keys {
		if k == key && i < len(p.values) {
			return p.values[i]
		}
	}
	return ""
}

func (p Params) Values() []string {
	out := make([]string, len(p.values))
	copy(out, p.values)
	return out
}

func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p.keys))
	for i, k := range p.keys {
		if i < len(p.values) {
			m[k] = p.values[i]
		}
	}
	return m
}

func (p Params) Len() int {
	return len(p.values)
}

// compilePattern turns "/book/:id" (or "/book/[id]") into an anchored
// regexp. "*" matches any remainder and is captured as "splat".
func compilePattern(pattern string) (*regexp.Regexp, []string) {
	paramKeys := []string{}
	var b strings.Builder
	b.WriteString("^")

	for i, part := range strings.Split(pattern, "/") {
		if i > 0 {
			b.WriteString("/")
		}
		switch {
		case strings.HasPrefix(part, ":") && len(part) > 1:
			paramKeys = append(paramKeys, part[1:])
			b.WriteString("([^/?#]+)")
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") && len(part) > 2:
			paramKeys = append(paramKeys, part[1:len(part)-1])
			b.WriteString("([^/?#]+)")
		case part == "*":
			paramKeys = append(paramKeys, "splat")
			b.WriteString("(.*?)")
		default:
			b.WriteString(regexp.QuoteMeta(part))
		}
	}

	b.WriteString("$")
	return regexp.MustCompile(b.String()), paramKeys
}

func (r *Router) handleError(w http.ResponseWriter, req *http.Request, route Route, err error) {
	if IsNotFoundError(err) {
		r.NotFound.ServeHTTP(w, req)
		return
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode() < http.StatusInternalServerError {
		r.logger.Debugw("request rejected", "route", route.Pattern, "status", statusErr.StatusCode(), "error", err)
		http.Error(w, statusErr.Error(), statusErr.StatusCode())
		return
	}

	r.logger.Errorw("handler failed", "method", req.Method, "route", route.Pattern, "error", err)
	http.Error(w, "Server error: "+err.Error(), http.StatusInternalServerError)
}
