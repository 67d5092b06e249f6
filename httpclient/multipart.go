package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartBody is sent as multipart/form-data. Fields are written in key
// order, then Files in slice order.
type MultipartBody struct {
	Fields map[string]string
	Files  []FileField
}

// FileField is one file part. Data wins over Reader; only Data survives a
// retry because a Reader is drained by the first attempt.
type FileField struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Data        []byte
	Reader      io.Reader
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (f FileField) header() textproto.MIMEHeader {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.FieldName), quoteEscaper.Replace(f.FileName)))
	h.Set("Content-Type", ct)
	return h
}

func (f FileField) writeTo(w *multipart.Writer) error {
	part, err := w.CreatePart(f.header())
	if err != nil {
		return err
	}
	switch {
	case f.Data != nil:
		_, err = part.Write(f.Data)
	case f.Reader != nil:
		_, err = io.Copy(part, f.Reader)
	}
	return err
}

// encode buffers the whole body and returns it with its Content-Type.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, key := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := w.WriteField(key, m.Fields[key]); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", key, err)
		}
	}
	for _, f := range m.Files {
		if err := f.writeTo(w); err != nil {
			return nil, "", fmt.Errorf("multipart file %s: %w", f.FieldName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
