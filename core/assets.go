package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

const JavaScriptType = "application/javascript"

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc(JavaScriptType, minjs.Minify)
	return m
}

func MinifyJS(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMinifier().Minify(JavaScriptType, &buf, bytes.NewReader(src)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ValidateJS reports a syntax error in src, using the minifier's parser.
func ValidateJS(src []byte) error {
	_, err := MinifyJS(src)
	return err
}

func generateETag(data []byte) string {
	h := md5.New()
	h.Write(data)
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// Version returns a short content hash suitable for cache-busting query strings.
func Version(data []byte) string {
	return strings.Trim(generateETag(data), `"`)[:6]
}

func AcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

// gzipETag marks the compressed representation so shared caches keep the
// two encodings apart.
func gzipETag(etag string) string {
	return strings.TrimSuffix(etag, `"`) + `-gzip"`
}

// ServeAsset writes a generated asset with an ETag, answering 304 when the
// client already holds the same content and compressing when accepted.
// gzipped, when set, is sent as is instead of compressing body again.
func ServeAsset(w http.ResponseWriter, r *http.Request, contentType string, body, gzipped []byte, cacheControl string) {
	etag := generateETag(body)
	compress := AcceptsGzip(r)
	if compress {
		etag = gzipETag(etag)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if !compress {
		w.Write(body)
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	if gzipped != nil {
		w.Write(gzipped)
		return
	}
	gz := gzip.NewWriter(w)
	defer gz.Close()
	gz.Write(body)
}
