// Package urltemplate builds request URLs from patterns containing
// {name} path variables and query parameters.
//
// A pattern may embed a query string; embedded parameters are extracted
// up front and merged with explicitly supplied ones, so
//
//	urltemplate.New("https://api.example.com/posts/{id}?sort=asc").
//		Variable("id", 1).
//		Parameter("page", 2).
//		Render()
//
// yields "https://api.example.com/posts/1?sort=asc&page=2".
//
// Rendering is lenient by design: unbound placeholders pass through as
// literal text, values are stringified verbatim with no percent-encoding,
// and no input is ever an error.
package urltemplate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// queryParamPattern matches [?&]key=value fragments anywhere in the
// pattern. Keys may not contain '=', '&' or '?', values may not contain
// '&'. Fragments that don't match (a key with no value, a bare '?') are
// skipped rather than rejected.
var queryParamPattern = regexp.MustCompile(`[?&]([^=&?]+)=([^&]+)`)

// Param is a single query parameter. Parameters keep their insertion
// order so rendered URLs are stable.
type Param struct {
	Key   string
	Value string
}

// Template is a URL pattern plus its variable bindings and query
// parameters. Build one with New, configure it with the chainable
// setters, and consume it with Render or URL. A Template is not safe for
// concurrent mutation; each request should build its own.
type Template struct {
	pattern string
	vars    map[string]string
	params  []Param
}

// New creates a Template from a URL pattern. Query parameters already
// embedded in the pattern are extracted immediately and take part in the
// final merged query string. A key embedded more than once collapses to
// a single parameter, last value winning, at the position of the first
// occurrence.
func New(pattern string) *Template {
	t := &Template{
		pattern: pattern,
		vars:    make(map[string]string),
	}
	for _, p := range ExtractQueryParams(pattern) {
		t.Parameter(p.Key, p.Value)
	}
	return t
}

// Variable binds a path variable, replacing every literal {name}
// occurrence at render time. Nil values are skipped. Binding the same
// name again overwrites the previous value.
func (t *Template) Variable(name string, value any) *Template {
	if value == nil {
		return t
	}
	t.vars[name] = fmt.Sprint(value)
	return t
}

// Variables binds multiple path variables.
func (t *Template) Variables(vars map[string]any) *Template {
	for name, value := range vars {
		t.Variable(name, value)
	}
	return t
}

// Parameter adds a query parameter. Nil values are skipped. Setting a
// key that is already present, including one extracted from the pattern,
// overwrites the value in place and keeps the original position.
func (t *Template) Parameter(key string, value any) *Template {
	if value == nil {
		return t
	}
	v := fmt.Sprint(value)
	for i := range t.params {
		if t.params[i].Key == key {
			t.params[i].Value = v
			return t
		}
	}
	t.params = append(t.params, Param{Key: key, Value: v})
	return t
}

// Parameters adds multiple query parameters.
func (t *Template) Parameters(params map[string]any) *Template {
	for key, value := range params {
		t.Parameter(key, value)
	}
	return t
}

// Render produces the final URL string: the pattern without its embedded
// query string, with path variables substituted, followed by the merged
// query parameter set when non-empty. Variables are substituted into
// parameter keys and values too, so a placeholder anywhere in the
// pattern is replaced everywhere it appears.
func (t *Template) Render() string {
	base := t.pattern
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = substituteVariables(base, t.vars)
	if len(t.params) == 0 {
		return base
	}
	params := make([]Param, len(t.params))
	for i, p := range t.params {
		params[i] = Param{
			Key:   substituteVariables(p.Key, t.vars),
			Value: substituteVariables(p.Value, t.vars),
		}
	}
	return appendQuery(base, params)
}

// URL renders the template and parses the result. Unlike Render it can
// fail, since substituted values may produce a string net/url rejects.
func (t *Template) URL() (*url.URL, error) {
	return url.Parse(t.Render())
}

// ExtractQueryParams scans a pattern for [?&]key=value fragments and
// returns them in order of appearance. Extraction is best effort, not
// strict URI parsing: matches are collected from anywhere in the string
// and malformed fragments are ignored.
func ExtractQueryParams(pattern string) []Param {
	matches := queryParamPattern.FindAllStringSubmatch(pattern, -1)
	if len(matches) == 0 {
		return nil
	}
	params := make([]Param, 0, len(matches))
	for _, m := range matches {
		params = append(params, Param{Key: m[1], Value: m[2]})
	}
	return params
}

// substituteVariables replaces every literal {name} occurrence with the
// bound value. Names without a binding stay in the output untouched.
// Replacement order across variables is unspecified; values must not
// contain other variables' placeholder tokens.
func substituteVariables(s string, vars map[string]string) string {
	for name, value := range vars {
		s = strings.ReplaceAll(s, "{"+name+"}", value)
	}
	return s
}

// appendQuery joins params as key=value pairs with '&' and appends them
// to u after a '?'. An empty set returns u unchanged.
func appendQuery(u string, params []Param) string {
	if len(params) == 0 {
		return u
	}
	var b strings.Builder
	b.WriteString(u)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
