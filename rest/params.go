package rest

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/segmentio/encoding/json"
)

// DefaultMaxBodyBytes bounds JSON bodies read by ExtractParams.
const DefaultMaxBodyBytes int64 = 1 << 20

var errBodyTooLarge = errors.New("body too large")

// ExtractParams returns the fields sent with req:
//
//   - a JSON body when the content type is */json or +json, whatever its
//     parameters (charset etc.);
//   - the JSON object in the "model" form field, as sent by clients that
//     can only post forms;
//   - the form fields themselves otherwise.
func ExtractParams(req *http.Request) (map[string]any, error) {
	return extractParams(req, DefaultMaxBodyBytes)
}

func extractParams(req *http.Request, limit int64) (map[string]any, error) {
	if IsJSONType(req.Header.Get("Content-Type")) {
		return decodeBody(req, limit)
	}

	if err := parseForm(req, limit); err != nil {
		return nil, &ParseError{Source: "form", Err: err}
	}

	if model, ok := req.Form["model"]; ok && len(model) > 0 {
		return decodeObject("model", []byte(model[0]))
	}

	return flattenForm(req), nil
}

// IsJSONType reports whether a Content-Type header names a JSON media type.
func IsJSONType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}
	if !strings.Contains(mediaType, "/") {
		return false
	}
	return strings.HasSuffix(mediaType, "/json") || strings.HasSuffix(mediaType, "+json")
}

func decodeBody(req *http.Request, limit int64) (map[string]any, error) {
	if req.Body == nil {
		return map[string]any{}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, limit+1))
	if err != nil {
		return nil, &ParseError{Source: "body", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &ParseError{Source: "body", Err: errBodyTooLarge}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	return decodeObject("body", data)
}

func decodeObject(source string, data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if fields == nil {
		return nil, &ParseError{Source: source, Err: errors.New("expected a JSON object")}
	}
	return fields, nil
}

func parseForm(req *http.Request, limit int64) error {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err := req.ParseMultipartForm(limit)
		if errors.Is(err, http.ErrNotMultipart) {
			return req.ParseForm()
		}
		return err
	}
	return req.ParseForm()
}

// flattenForm keeps single values as strings and repeated keys as slices.
func flattenForm(req *http.Request) map[string]any {
	fields := make(map[string]any, len(req.Form))
	for k, v := range req.Form {
		switch len(v) {
		case 0:
			continue
		case 1:
			fields[k] = v[0]
		default:
			fields[k] = append([]string(nil), v...)
		}
	}
	return fields
}
