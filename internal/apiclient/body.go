package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// Body is the payload of a backend request. Exactly one of JSON, Raw or
// *Multipart is chosen by the caller.
type Body interface {
	encode() (io.Reader, string, error)
}

// JSON is serialized with encoding/json.
type JSON struct {
	Value interface{}
}

func (b JSON) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.Value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}

// Raw is an already serialized body, sent as is.
type Raw string

func (b Raw) encode() (io.Reader, string, error) {
	return strings.NewReader(string(b)), contentTypeJSON, nil
}

type part struct {
	name     string
	value    string
	filename string
	data     []byte
}

// Multipart is a form-data payload. Its Content-Type, boundary included, is
// produced by the encoder and never set by the caller.
type Multipart struct {
	parts []part
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field appends a text field. Repeated names produce repeated parts.
func (m *Multipart) Field(name, value string) *Multipart {
	m.parts = append(m.parts, part{name: name, value: value})
	return m
}

// File appends a file part.
func (m *Multipart) File(name, filename string, data []byte) *Multipart {
	m.parts = append(m.parts, part{name: name, filename: filename, data: data})
	return m
}

// Len returns the number of parts.
func (m *Multipart) Len() int { return len(m.parts) }

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range m.parts {
		if p.filename == "" && p.data == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", p.name, err)
			}
			continue
		}
		fw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %s: %w", p.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
