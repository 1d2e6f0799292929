package fluent

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/thewaterfall/fluent-go/urltemplate"
)

// methods are the HTTP methods a builder will dispatch.
var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodTrace,
}

// Methods returns the HTTP methods accepted by Execute.
func Methods() []string {
	out := make([]string, len(methods))
	copy(out, methods)
	return out
}

// ValidMethod reports whether m (case-insensitive) is a dispatchable
// HTTP method.
func ValidMethod(m string) bool {
	m = strings.ToUpper(strings.TrimSpace(m))
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

type headerPair struct {
	name  string
	value string
}

// Builder accumulates request configuration and dispatches it. Setters
// return the builder for chaining. A builder is meant for a single
// request from a single goroutine; concurrent dispatches should each
// build their own.
type Builder[T any] struct {
	cfg Config

	url     string
	headers []headerPair
	vars    map[string]any
	params  []urltemplate.Param

	body        any
	rawBody     []byte
	contentType string
	hasRawBody  bool

	// buildErr is a configuration failure recorded by a sub-builder,
	// surfaced at dispatch time before any network activity.
	buildErr error
}

// Header sets a header. Setting a name again overwrites the previous
// value and keeps the position of the first write, so header order stays
// stable.
func (b *Builder[T]) Header(name, value string) *Builder[T] {
	for i := range b.headers {
		if strings.EqualFold(b.headers[i].name, name) {
			b.headers[i].value = value
			return b
		}
	}
	b.headers = append(b.headers, headerPair{name: name, value: value})
	return b
}

// Headers sets multiple headers.
func (b *Builder[T]) Headers(headers map[string]string) *Builder[T] {
	for name, value := range headers {
		b.Header(name, value)
	}
	return b
}

// Bearer sets the Authorization header for bearer token authentication.
func (b *Builder[T]) Bearer(token string) *Builder[T] {
	return b.Header("Authorization", "Bearer "+token)
}

// Basic sets the Authorization header for basic authentication.
func (b *Builder[T]) Basic(username, password string) *Builder[T] {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return b.Header("Authorization", "Basic "+credentials)
}

// Variable binds a URL path variable, e.g. {id} in ../articles/{id}.
// Nil values are skipped.
func (b *Builder[T]) Variable(name string, value any) *Builder[T] {
	if value != nil {
		b.vars[name] = value
	}
	return b
}

// Variables binds multiple URL path variables.
func (b *Builder[T]) Variables(vars map[string]any) *Builder[T] {
	for name, value := range vars {
		b.Variable(name, value)
	}
	return b
}

// Parameter adds a query parameter. Nil values are skipped; setting a
// key again overwrites the previous value.
func (b *Builder[T]) Parameter(name string, value any) *Builder[T] {
	if value == nil {
		return b
	}
	v := fmt.Sprint(value)
	for i := range b.params {
		if b.params[i].Key == name {
			b.params[i].Value = v
			return b
		}
	}
	b.params = append(b.params, urltemplate.Param{Key: name, Value: v})
	return b
}

// Parameters adds multiple query parameters.
func (b *Builder[T]) Parameters(params map[string]any) *Builder[T] {
	for name, value := range params {
		b.Parameter(name, value)
	}
	return b
}

// Body sets the request body. It is encoded through the structured-data
// collaborator at dispatch time and sent as application/json unless a
// Content-Type header was set explicitly.
func (b *Builder[T]) Body(body any) *Builder[T] {
	b.body = body
	b.hasRawBody = false
	b.rawBody = nil
	return b
}

// RawBody sets the request body to exact bytes with the given content
// type, bypassing the structured-data collaborator.
func (b *Builder[T]) RawBody(contentType string, body []byte) *Builder[T] {
	b.rawBody = body
	b.contentType = contentType
	b.hasRawBody = true
	b.body = nil
	return b
}

// Form starts a form-urlencoded body sub-builder.
func (b *Builder[T]) Form() *FormBody[T] {
	return &FormBody[T]{request: b}
}

// Multipart starts a multipart form data body sub-builder.
func (b *Builder[T]) Multipart() *MultipartBody[T] {
	return &MultipartBody[T]{request: b}
}

// URL renders the final request URL from the configured pattern,
// variables and parameters without dispatching.
func (b *Builder[T]) URL() string {
	tpl := urltemplate.New(b.url).Variables(b.vars)
	for _, p := range b.params {
		tpl.Parameter(p.Key, p.Value)
	}
	return tpl.Render()
}

// Execute sends the request with the given method and decodes the
// response. Unknown methods fail before any network activity.
func (b *Builder[T]) Execute(ctx context.Context, method string) (*Response[T], error) {
	req, err := b.buildRequest(ctx, method)
	if err != nil {
		return nil, err
	}

	resp, err := b.cfg.client().Do(req)
	if err != nil {
		return nil, &IOError{Err: err}
	}

	payload, hasBody, err := drainBody(resp)
	if err != nil {
		return nil, &IOError{Err: err}
	}

	data, decoded, err := decodePayload[T](b.cfg.unmarshal(), payload, hasBody)
	if err != nil {
		return nil, err
	}
	return newResponse(resp, payload, data, decoded), nil
}

// Get sends a GET request.
func (b *Builder[T]) Get(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodGet)
}

// Head sends a HEAD request.
func (b *Builder[T]) Head(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodHead)
}

// Post sends a POST request.
func (b *Builder[T]) Post(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodPost)
}

// Put sends a PUT request.
func (b *Builder[T]) Put(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodPut)
}

// Patch sends a PATCH request.
func (b *Builder[T]) Patch(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodPatch)
}

// Delete sends a DELETE request.
func (b *Builder[T]) Delete(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodDelete)
}

// Options sends an OPTIONS request.
func (b *Builder[T]) Options(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodOptions)
}

// Trace sends a TRACE request.
func (b *Builder[T]) Trace(ctx context.Context) (*Response[T], error) {
	return b.Execute(ctx, http.MethodTrace)
}

func (b *Builder[T]) buildRequest(ctx context.Context, method string) (*http.Request, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if !ValidMethod(method) {
		return nil, fmt.Errorf("fluent: invalid http method %q", method)
	}

	bodyReader, contentType, err := b.encodeBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, b.URL(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("fluent: build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, h := range b.headers {
		req.Header.Set(h.name, h.value)
	}
	return req, nil
}

// encodeBody prepares the request body reader and its content type.
// Explicit Content-Type headers win over the computed one because
// headers are applied after it in buildRequest.
func (b *Builder[T]) encodeBody() (io.Reader, string, error) {
	switch {
	case b.hasRawBody:
		return bytes.NewReader(b.rawBody), b.contentType, nil
	case b.body != nil:
		data, err := b.cfg.marshal()(b.body)
		if err != nil {
			return nil, "", &MappingError{Err: err}
		}
		return bytes.NewReader(data), "application/json", nil
	default:
		return nil, "", nil
	}
}

// drainBody reads the full response payload and closes the transport
// stream on every path. hasBody=false reports that the transport
// returned no payload at all (nil or http.NoBody), which callers treat
// differently from a zero-length payload.
func drainBody(resp *http.Response) (payload []byte, hasBody bool, err error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, false, nil
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}
	return payload, true, nil
}
