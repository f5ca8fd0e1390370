package core

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
)

func cachePath(config Config, name string) string {
	return filepath.Join(config.OutputDir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
}

func GetCachedBundle(config Config, name string) ([]byte, bool) {
	return readCached(cachePath(config, name))
}

// GetCachedGzip returns the gzip sibling written by SaveCachedBundle.
func GetCachedGzip(config Config, name string) ([]byte, bool) {
	return readCached(cachePath(config, name) + ".gz")
}

func readCached(path string) ([]byte, bool) {
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return content, true
}

// SaveCachedBundle writes the bundle and a gzip sibling under OutputDir.
// Both files are replaced by rename, so readers never see a partial write.
// The sibling goes first so a visible bundle always has a matching one.
func SaveCachedBundle(config Config, name string, body []byte) error {
	path := cachePath(config, name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(body); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if err := writeFileAtomic(path+".gz", gz.Bytes()); err != nil {
		return err
	}
	return writeFileAtomic(path, body)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ClearCachedBundle(config Config, name string) error {
	path := cachePath(config, name)
	for _, p := range []string{path, path + ".gz"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
