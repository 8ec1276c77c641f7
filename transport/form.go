package transport

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/Abraxas-365/wacloud/errx"
)

// Form is a multipart/form-data body. Fields and files are written in insertion order.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{}
}

// AddField adds a plain form field
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile adds a file part with an explicit content type
func (f *Form) AddFile(field, filename, contentType string, data []byte) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, contentType: contentType, data: data})
	return f
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", errx.Validation(field.name, "cannot write form field", errx.WithCause(err))
		}
	}

	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
		contentType := file.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errx.Validation(file.field, "cannot create file part", errx.WithCause(err))
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", errx.Validation(file.field, "cannot write file part", errx.WithCause(err))
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errx.Validation("form", "cannot finish multipart body", errx.WithCause(err))
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
