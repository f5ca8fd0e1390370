// Package jst compiles server-side template files into one JavaScript
// bundle that fills a global JST table of render functions, keyed by
// template name.
//
// A template at views/editor/edit.jst.tpl is available in the browser as
//
//	JST['editor/edit']({name: 'Item Name'});
//
// The extension after .jst selects the engine. Engines only embed a call
// to the client-side template library; the library itself (underscore,
// jade, haml-js, eco) must be loaded by the page.
package jst

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/segmentio/encoding/json"
)

// Engine turns a single template file into a JST entry.
type Engine interface {
	Name() string
	File() string
	Contents() (string, error)
	Compile() (string, error)
}

// Constructor builds an Engine for a template name and file path.
type Constructor func(name, file string) Engine

// ExprFunc returns a JavaScript expression that evaluates to a render
// function. src is the template source as a quoted string literal.
type ExprFunc func(src string) string

type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("jst: cannot read %s: %v", e.File, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FileEngine is the Engine every built-in uses. Only the compile
// expression differs between them.
type FileEngine struct {
	name string
	file string
	expr ExprFunc
}

// NewEngine returns a Constructor for engines that compile templates with
// expr. The memoizing JST wrapper is supplied by FileEngine.
func NewEngine(expr ExprFunc) Constructor {
	return func(name, file string) Engine {
		return &FileEngine{name: name, file: file, expr: expr}
	}
}

var (
	Underscore = NewEngine(func(src string) string { return "_.template(" + src + ")" })
	Jade       = NewEngine(func(src string) string { return "require('jade').compile(" + src + ")" })
	Haml       = NewEngine(func(src string) string { return "Haml(" + src + ")" })
	Eco        = NewEngine(func(src string) string { return "eco.compile(" + src + ")" })
)

func (e *FileEngine) Name() string { return e.name }
func (e *FileEngine) File() string { return e.file }

// Contents reads the template file. It is only called from Compile, so a
// file is never read unless it is compiled.
func (e *FileEngine) Contents() (string, error) {
	data, err := os.ReadFile(e.file)
	if err != nil {
		return "", &IOError{File: e.file, Err: err}
	}
	return string(data), nil
}

func (e *FileEngine) Compile() (string, error) {
	src, err := e.Contents()
	if err != nil {
		return "", err
	}
	return Wrap(e.name, e.expr(Quote(src)))
}

var wrapTemplate = template.Must(template.New("jst").Funcs(sprig.TxtFuncMap()).Parse(
	`JST[{{ toJson .Name }}] = function() {
    if (!c[{{ toJson .Name }}]) c[{{ toJson .Name }}] = ({{ .Expr }});
    return c[{{ toJson .Name }}].apply(this, arguments);
  };`))

// Wrap assigns JST[name] a function that evaluates expr on first call,
// keeps the result in the bundle's cache c, and forwards every call to it.
func Wrap(name, expr string) (string, error) {
	var buf bytes.Buffer
	err := wrapTemplate.Execute(&buf, struct {
		Name string
		Expr string
	}{name, expr})
	if err != nil {
		return "", fmt.Errorf("jst: wrap %s: %w", name, err)
	}
	return buf.String(), nil
}

var lineTerminators = strings.NewReplacer("\u2028", `\u2028`, "\u2029", `\u2029`)

// Quote returns s as a JavaScript string literal.
func Quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return lineTerminators.Replace(string(b))
}
