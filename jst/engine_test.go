package jst

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-barry/backbone/core"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileEngine_Contents(t *testing.T) {
	file := writeTemplate(t, t.TempDir(), "chrome.jst.tpl", "Chrome")

	e := Underscore("chrome", file)
	got, err := e.Contents()
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if got != "Chrome" {
		t.Errorf("expected 'Chrome', got %q", got)
	}
	if e.Name() != "chrome" || e.File() != file {
		t.Errorf("unexpected name/file: %s %s", e.Name(), e.File())
	}
}

func TestFileEngine_ContentsMissingFile(t *testing.T) {
	e := Underscore("gone", filepath.Join(t.TempDir(), "gone.jst.tpl"))

	_, err := e.Contents()
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected IOError to unwrap to fs.ErrNotExist")
	}
}

func TestFileEngine_ConstructionIsLazy(t *testing.T) {
	// Building an engine for a missing file must not fail until compiled.
	e := Jade("later", filepath.Join(t.TempDir(), "later.jst.jade"))
	if e == nil {
		t.Fatal("expected engine")
	}
	if _, err := e.Compile(); err == nil {
		t.Error("expected compile of missing file to fail")
	}
}

func TestFileEngine_CompileUnderscore(t *testing.T) {
	file := writeTemplate(t, t.TempDir(), "editor/edit.jst.tpl", "Edit <%= name %>")

	js, err := Underscore("editor/edit", file).Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	for _, want := range []string{
		`JST["editor/edit"] = function() {`,
		`if (!c["editor/edit"]) c["editor/edit"] = (_.template(`,
		`return c["editor/edit"].apply(this, arguments);`,
		`Edit <%= name %>`,
	} {
		if !strings.Contains(js, want) {
			t.Errorf("expected compiled output to contain %q, got:\n%s", want, js)
		}
	}
}

func TestBuiltinEngines_DifferOnlyInExpression(t *testing.T) {
	file := writeTemplate(t, t.TempDir(), "x.jst.any", "h1 Hi")

	cases := map[string]struct {
		ctor Constructor
		expr string
	}{
		"underscore": {Underscore, `_.template("h1 Hi")`},
		"jade":       {Jade, `require('jade').compile("h1 Hi")`},
		"haml":       {Haml, `Haml("h1 Hi")`},
		"eco":        {Eco, `eco.compile("h1 Hi")`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			js, err := tc.ctor("x", file).Compile()
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			want, _ := Wrap("x", tc.expr)
			if js != want {
				t.Errorf("unexpected output:\n got: %s\nwant: %s", js, want)
			}
		})
	}
}

func TestNewEngine_CustomExpression(t *testing.T) {
	file := writeTemplate(t, t.TempDir(), "card.jst.my", "card")

	my := NewEngine(func(src string) string { return "My.compile(" + src + ")" })
	js, err := my("card", file).Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(js, `c["card"] = (My.compile("card"));`) {
		t.Errorf("expected custom expression in wrapper, got:\n%s", js)
	}
}

func TestWrap_IsValidScript(t *testing.T) {
	js, err := Wrap("a/b", `_.template("x")`)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	script := "var c = {}; var JST = {};\n" + js
	if err := core.ValidateJS([]byte(script)); err != nil {
		t.Errorf("expected valid script, got %v\n%s", err, script)
	}
}

func TestQuote_EscapesForScripts(t *testing.T) {
	cases := map[string]string{
		"plain":       `"plain"`,
		"say \"hi\"":  `"say \"hi\""`,
		"line\nbreak": `"line\nbreak"`,
		"</script>":   `"\u003c/script\u003e"`,
		"a\u2028b":    `"a\u2028b"`,
	}
	for in, want := range cases {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q) = %s, want %s", in, got, want)
		}
	}
}
