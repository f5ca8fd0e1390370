package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

func captureOutput(f func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func runCommand(cmd *cli.Command, args ...string) error {
	app := &cli.App{
		Commands:       []*cli.Command{cmd},
		ExitErrHandler: func(c *cli.Context, err error) {},
	}
	return app.Run(append([]string{"backbone"}, args...))
}

// writeProject creates views plus a config pointing at them and returns
// the config path and project dir.
func writeProject(t *testing.T, views map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	for name, content := range views {
		path := filepath.Join(dir, "views", filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	config := fmt.Sprintf("outputDir: %s\nviews: %s\nengines: %s\n",
		filepath.Join(dir, "cache"),
		filepath.Join(dir, "views"),
		filepath.Join(dir, "engines"),
	)
	configPath := filepath.Join(dir, "backbone.config.yml")
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath, dir
}

var starterViews = map[string]string{
	"editor/edit.jst.tpl": "Edit <%= name %>",
	"chrome.jst.tpl":      "Chrome",
}
