// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// File is a binary part within a request payload. Its presence switches the
// whole payload to multipart encoding.
type File struct {
	// Field is the form field name the backend expects (e.g. "image").
	Field string
	// Name is the original filename sent in the part header.
	Name string
	// ContentType is the MIME type of the content (e.g. "image/jpeg").
	ContentType string
	// Content is the file body. Read exactly once during encoding.
	Content io.Reader
}

// Payload is an outgoing request body with automatic encoding negotiation:
// JSON when it holds only fields, multipart/form-data the moment it carries
// at least one [File]. Callers never pick the encoding.
type Payload struct {
	fields map[string]any
	order  []string
	files  []File
}

// NewPayload creates an empty payload.
func NewPayload() *Payload {
	return &Payload{fields: make(map[string]any)}
}

// Set adds or replaces a field value. Insertion order is preserved for
// multipart encoding so request signatures stay stable.
func (p *Payload) Set(key string, value any) *Payload {
	if _, exists := p.fields[key]; !exists {
		p.order = append(p.order, key)
	}
	p.fields[key] = value
	return p
}

// AddFile attaches a binary part, switching the payload to multipart.
func (p *Payload) AddFile(file File) *Payload {
	p.files = append(p.files, file)
	return p
}

// hasFiles reports whether multipart encoding is required.
func (p *Payload) hasFiles() bool {
	return p != nil && len(p.files) > 0
}

// encode renders the payload into a request body and its Content-Type.
// A nil payload encodes to an empty body.
func (p *Payload) encode() (io.Reader, string, error) {
	if p == nil {
		return nil, "", nil
	}

	if p.hasFiles() {
		return p.encodeMultipart()
	}
	return p.encodeJSON()
}

// encodeJSON renders the fields as a JSON object.
func (p *Payload) encodeJSON() (io.Reader, string, error) {
	buffer := &bytes.Buffer{}
	if err := json.NewEncoder(buffer).Encode(p.fields); err != nil {
		return nil, "", fmt.Errorf("payload_json_encode_failed: %w", err)
	}
	return buffer, "application/json", nil
}

// encodeMultipart renders fields and files as multipart/form-data.
//
// Scalar fields are written as plain form values; structured values are
// JSON-encoded so the backend's form parser sees one string per field.
func (p *Payload) encodeMultipart() (io.Reader, string, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)

	for _, key := range p.order {
		rendered, err := renderFormValue(p.fields[key])
		if err != nil {
			return nil, "", err
		}
		if err := writer.WriteField(key, rendered); err != nil {
			return nil, "", fmt.Errorf("payload_multipart_field_failed: %w", err)
		}
	}

	for _, file := range p.files {
		part, err := writer.CreatePart(filePartHeader(file))
		if err != nil {
			return nil, "", fmt.Errorf("payload_multipart_part_failed: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("payload_multipart_copy_failed: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("payload_multipart_close_failed: %w", err)
	}

	return buffer, writer.FormDataContentType(), nil
}

// renderFormValue flattens a field value to its form-data string form.
func renderFormValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", nil
	case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	default:
		// Structured values (slices, maps, structs) travel as JSON strings.
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("payload_form_value_failed: %w", err)
		}
		return string(encoded), nil
	}
}

// filePartHeader builds the MIME header for a file part, preserving the
// caller-supplied content type.
func filePartHeader(file File) textproto.MIMEHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="%s"; filename="%s"`,
		escapeQuotes(file.Field), escapeQuotes(file.Name),
	))

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	return header
}

// escapeQuotes mirrors the escaping mime/multipart applies internally.
func escapeQuotes(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
	return replacer.Replace(s)
}
