package fluent

import "net/url"

// FormBody builds a form-urlencoded request body:
//
//	fluent.New("https://api.example.com/login").
//		Form().
//		Add("user", "alice").
//		Add("pass", "secret").
//		Build().
//		Post(ctx)
type FormBody[T any] struct {
	request *Builder[T]
	values  url.Values
}

// Add adds a form field. Repeated keys accumulate values, matching form
// encoding semantics.
func (f *FormBody[T]) Add(key, value string) *FormBody[T] {
	if f.values == nil {
		f.values = make(url.Values)
	}
	f.values.Add(key, value)
	return f
}

// AddAll adds multiple form fields.
func (f *FormBody[T]) AddAll(values map[string]string) *FormBody[T] {
	for key, value := range values {
		f.Add(key, value)
	}
	return f
}

// Build encodes the accumulated fields, sets them as the request body,
// and hands back the originating builder.
func (f *FormBody[T]) Build() *Builder[T] {
	return f.request.RawBody("application/x-www-form-urlencoded", []byte(f.values.Encode()))
}
