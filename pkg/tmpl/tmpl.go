// Package tmpl renders the Go templates used for hook commands and compare
// URLs.
package tmpl

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/mod/semver"
)

// Functions available to every template:
//
//	shq     single-quote a value for sh
//	urlq    escape a value for a URL path segment
//	trimv   strip a leading "v"
//	major   "30" for "30.1.2"
//	minor   "30.1" for "30.1.2"
//	upper   upper-case
//	join    strings.Join
var funcs = template.FuncMap{
	"shq":   shellQuote,
	"urlq":  url.PathEscape,
	"trimv": trimV,
	"major": func(v string) string { return trimV(semver.Major(withV(v))) },
	"minor": func(v string) string { return trimV(semver.MajorMinor(withV(v))) },
	"upper": strings.ToUpper,
	"join":  strings.Join,
}

// parsed caches templates by source; the same hook renders once per step.
var parsed sync.Map // string -> *template.Template

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func trimV(s string) string { return strings.TrimPrefix(s, "v") }

func withV(s string) string { return "v" + trimV(s) }

func parse(src string) (*template.Template, error) {
	if t, ok := parsed.Load(src); ok {
		return t.(*template.Template), nil
	}

	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	parsed.Store(src, t)
	return t, nil
}

// Render executes src with data. Unknown fields and map keys are errors.
func Render(src string, data any) (string, error) {
	t, err := parse(src)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Check renders src against sample data and reports only the error.
func Check(src string, sample any) error {
	_, err := Render(src, sample)
	return err
}
