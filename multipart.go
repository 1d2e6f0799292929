package fluent

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

type filePart struct {
	field    string
	filename string
	content  []byte
}

// MultipartBody builds a multipart form data request body:
//
//	fluent.New("https://api.example.com/upload").
//		Multipart().
//		Add("caption", "holiday").
//		AddFile("photo", "beach.jpg", data).
//		Build().
//		Post(ctx)
type MultipartBody[T any] struct {
	request *Builder[T]
	fields  []headerPair
	files   []filePart
}

// Add adds a plain form field.
func (m *MultipartBody[T]) Add(key, value string) *MultipartBody[T] {
	m.fields = append(m.fields, headerPair{name: key, value: value})
	return m
}

// AddAll adds multiple plain form fields.
func (m *MultipartBody[T]) AddAll(values map[string]string) *MultipartBody[T] {
	for key, value := range values {
		m.Add(key, value)
	}
	return m
}

// AddFile adds a file part sent as application/octet-stream.
func (m *MultipartBody[T]) AddFile(field, filename string, content []byte) *MultipartBody[T] {
	m.files = append(m.files, filePart{field: field, filename: filename, content: content})
	return m
}

// Build assembles the multipart body, sets it on the request with the
// boundary-bearing content type, and hands back the originating builder.
// Assembly failures surface as a *MappingError from the eventual
// dispatch.
func (m *MultipartBody[T]) Build() *Builder[T] {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return m.fail(fmt.Errorf("write field %s: %w", f.name, err))
		}
	}
	for _, f := range m.files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			return m.fail(fmt.Errorf("create file part %s: %w", f.field, err))
		}
		if _, err := part.Write(f.content); err != nil {
			return m.fail(fmt.Errorf("write file part %s: %w", f.field, err))
		}
	}
	if err := writer.Close(); err != nil {
		return m.fail(fmt.Errorf("close multipart writer: %w", err))
	}

	return m.request.RawBody(writer.FormDataContentType(), buf.Bytes())
}

func (m *MultipartBody[T]) fail(err error) *Builder[T] {
	m.request.buildErr = &MappingError{Err: err}
	return m.request
}
