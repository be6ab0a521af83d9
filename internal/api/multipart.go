package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/mesh-intelligence/mytree/internal/upload"
)

// Multipart is an ordered multipart/form-data body. Repeated field names
// are kept in insertion order.
type Multipart struct {
	parts []part
}

type part struct {
	field string
	value string
	file  *upload.File
}

// NewMultipart returns an empty body.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Set appends a text field.
func (m *Multipart) Set(field, value string) {
	m.parts = append(m.parts, part{field: field, value: value})
}

// AddFile appends a file part under field.
func (m *Multipart) AddFile(field string, f upload.File) {
	fc := f
	m.parts = append(m.parts, part{field: field, file: &fc})
}

// Values returns every text value recorded for field, in order.
func (m *Multipart) Values(field string) []string {
	var out []string
	for _, p := range m.parts {
		if p.field == field && p.file == nil {
			out = append(out, p.value)
		}
	}
	return out
}

// Value returns the first text value for field and whether it exists.
func (m *Multipart) Value(field string) (string, bool) {
	for _, p := range m.parts {
		if p.field == field && p.file == nil {
			return p.value, true
		}
	}
	return "", false
}

// Files returns the files recorded for field, in order.
func (m *Multipart) Files(field string) []upload.File {
	var out []upload.File
	for _, p := range m.parts {
		if p.field == field && p.file != nil {
			out = append(out, *p.file)
		}
	}
	return out
}

// Fields lists the distinct field names in first-seen order.
func (m *Multipart) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range m.parts {
		if !seen[p.field] {
			seen[p.field] = true
			out = append(out, p.field)
		}
	}
	return out
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode renders the body and returns its content type.
func (m *Multipart) Encode() (string, io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range m.parts {
		if p.file == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return "", nil, fmt.Errorf("write field %s: %w", p.field, err)
			}
			continue
		}
		if err := writeFile(w, p.field, *p.file); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return w.FormDataContentType(), &buf, nil
}

func writeFile(w *multipart.Writer, field string, f upload.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	dst, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s into %s: %w", f.Name, field, err)
	}
	return nil
}
