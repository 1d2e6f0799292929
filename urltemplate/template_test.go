package urltemplate

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		vars    map[string]any
		params  map[string]any
		want    string
	}{
		{
			name:    "plain url passes through",
			pattern: "https://example.com/items",
			want:    "https://example.com/items",
		},
		{
			name:    "single variable",
			pattern: "https://example.com/articles/{articleId}",
			vars:    map[string]any{"articleId": 1},
			want:    "https://example.com/articles/1",
		},
		{
			name:    "variable with embedded query",
			pattern: "https://example.com/articles/{articleId}/comments?sort=asc",
			vars:    map[string]any{"articleId": 1},
			want:    "https://example.com/articles/1/comments?sort=asc",
		},
		{
			name:    "unbound placeholder stays literal",
			pattern: "https://example.com/articles/{articleId}/comments/{commentId}",
			vars:    map[string]any{"articleId": 7},
			want:    "https://example.com/articles/7/comments/{commentId}",
		},
		{
			name:    "variable used twice",
			pattern: "https://example.com/{v}/copy/{v}",
			vars:    map[string]any{"v": "x"},
			want:    "https://example.com/x/copy/x",
		},
		{
			name:    "explicit parameter appended after embedded",
			pattern: "https://example.com/items?sort=asc",
			params:  map[string]any{"page": 2},
			want:    "https://example.com/items?sort=asc&page=2",
		},
		{
			name:    "explicit parameter overrides embedded in place",
			pattern: "https://example.com/items?sort=asc&page=1",
			params:  map[string]any{"page": 9},
			want:    "https://example.com/items?sort=asc&page=9",
		},
		{
			name:    "variable inside embedded query value",
			pattern: "https://example.com/items?sort={order}",
			vars:    map[string]any{"order": "asc"},
			want:    "https://example.com/items?sort=asc",
		},
		{
			name:    "variable inside embedded query key",
			pattern: "https://example.com/items?{field}=1",
			vars:    map[string]any{"field": "page"},
			want:    "https://example.com/items?page=1",
		},
		{
			name:    "variable in path and embedded query",
			pattern: "https://example.com/{v}/items?copy={v}",
			vars:    map[string]any{"v": "x"},
			want:    "https://example.com/x/items?copy=x",
		},
		{
			name:    "unbound placeholder in embedded query stays literal",
			pattern: "https://example.com/items?sort={order}",
			want:    "https://example.com/items?sort={order}",
		},
		{
			name:    "duplicate embedded key collapses to last value",
			pattern: "https://example.com/items?a=1&a=2&b=3",
			want:    "https://example.com/items?a=2&b=3",
		},
		{
			name:    "explicit parameter replaces all embedded duplicates",
			pattern: "https://example.com/items?a=1&a=2",
			params:  map[string]any{"a": 9},
			want:    "https://example.com/items?a=9",
		},
		{
			name:    "nil parameter skipped",
			pattern: "https://example.com/items",
			params:  map[string]any{"q": nil},
			want:    "https://example.com/items",
		},
		{
			name:    "nil variable leaves placeholder",
			pattern: "https://example.com/items/{id}",
			vars:    map[string]any{"id": nil},
			want:    "https://example.com/items/{id}",
		},
		{
			name:    "empty everything",
			pattern: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.pattern).Variables(tt.vars).Parameters(tt.params).Render()
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderParameterOrder(t *testing.T) {
	// Maps don't guarantee order, so insertion order is exercised through
	// individual Parameter calls.
	got := New("https://example.com/items").
		Parameter("q", "shoes").
		Parameter("page", 2).
		Parameter("limit", 50).
		Render()
	want := "https://example.com/items?q=shoes&page=2&limit=50"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderLastWriteWins(t *testing.T) {
	got := New("https://example.com/items").
		Parameter("page", 1).
		Parameter("page", 3).
		Variable("id", 1).
		Variable("id", 2).
		Render()
	if got != "https://example.com/items?page=3" {
		t.Errorf("Render() = %q", got)
	}

	got = New("https://example.com/items/{id}").
		Variable("id", 1).
		Variable("id", 2).
		Render()
	if got != "https://example.com/items/2" {
		t.Errorf("Render() = %q", got)
	}
}

func TestExtractQueryParams(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []Param
	}{
		{
			name:    "no query",
			pattern: "https://example.com/items",
			want:    nil,
		},
		{
			name:    "single pair round trip",
			pattern: "https://example.com/items?k=v",
			want:    []Param{{Key: "k", Value: "v"}},
		},
		{
			name:    "multiple pairs in order",
			pattern: "https://example.com/items?sort=asc&page=2&limit=10",
			want: []Param{
				{Key: "sort", Value: "asc"},
				{Key: "page", Value: "2"},
				{Key: "limit", Value: "10"},
			},
		},
		{
			name:    "key without value is skipped",
			pattern: "https://example.com/items?flag&sort=asc",
			want:    []Param{{Key: "sort", Value: "asc"}},
		},
		{
			name:    "trailing equals is skipped",
			pattern: "https://example.com/items?empty=&sort=asc",
			want:    []Param{{Key: "sort", Value: "asc"}},
		},
		{
			name:    "matches are found anywhere, not just a suffix",
			pattern: "https://example.com/redirect&next=/home?sort=asc",
			want: []Param{
				{Key: "next", Value: "/home?sort=asc"},
			},
		},
		{
			name:    "value may contain a question mark",
			pattern: "https://example.com/items?a=1?b",
			want:    []Param{{Key: "a", Value: "1?b"}},
		},
		{
			name:    "bare question mark",
			pattern: "https://example.com/items?",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractQueryParams(tt.pattern)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractQueryParams(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestURL(t *testing.T) {
	u, err := New("https://example.com/articles/{id}?sort=asc").
		Variable("id", 42).
		URL()
	if err != nil {
		t.Fatalf("URL() error: %v", err)
	}
	if u.Path != "/articles/42" {
		t.Errorf("path = %q", u.Path)
	}
	if u.RawQuery != "sort=asc" {
		t.Errorf("query = %q", u.RawQuery)
	}
}
