// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package httpapi

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
)

// envelope mirrors the backend's response wrapper.
//
// Success bodies carry the useful payload under "data"; error bodies carry a
// generic "message" and optionally structured per-field "errors".
type envelope struct {
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// decodeSuccess unwraps a 2xx body into out.
//
// The envelope is stripped before the caller sees anything: when "data" is
// present it is the payload; a body with no envelope at all (legacy
// endpoints) is decoded as-is.
func decodeSuccess(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	wrapper := envelope{}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Data) > 0 && !bytes.Equal(wrapper.Data, []byte("null")) {
		if err := json.Unmarshal(wrapper.Data, out); err != nil {
			return apperr.Transport(err)
		}
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Transport(err)
	}
	return nil
}

// normalizeError converts a non-2xx body into one [apperr.AppError].
//
// Structured field errors are always preferred over the generic message:
// they are flattened into a single human-readable string, with the per-field
// detail preserved for callers that want to highlight inputs.
func normalizeError(status int, raw []byte) error {
	wrapper := envelope{}
	// A body that is not even JSON still yields a usable status-based error.
	_ = json.Unmarshal(raw, &wrapper)

	if len(wrapper.Errors) > 0 {
		details := fieldDetails(wrapper.Errors)
		return apperr.RemoteValidation(status, apperr.FlattenFields(details), details...)
	}

	if status == 404 {
		resource := wrapper.Message
		if resource == "" {
			resource = "Resource"
		}
		return apperr.NotFound(resource)
	}

	return apperr.Remote(status, wrapper.Message)
}

// fieldDetails converts the backend's errors map into ordered field errors.
// Field names are sorted so the flattened message is deterministic — JSON
// object iteration order is not.
func fieldDetails(remote map[string][]string) []apperr.FieldError {
	fields := make([]string, 0, len(remote))
	for field := range remote {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]apperr.FieldError, 0, len(remote))
	for _, field := range fields {
		for _, message := range remote[field] {
			details = append(details, apperr.FieldError{Field: field, Message: message})
		}
	}
	return details
}

// UnmarshalCollection decodes a server collection that may arrive as a bare
// array or as an object wrapping the array under one of several legacy keys
// (e.g. "items", "wishlist").
//
// This is the single normalization boundary for the backend's historical
// shape drift: ambiguity is resolved here, once, and every consumer sees one
// canonical slice.
func UnmarshalCollection(raw json.RawMessage, out any, legacyKeys ...string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	// Canonical shape: a bare JSON array.
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return apperr.Transport(err)
		}
		return nil
	}

	// Legacy shape: an object with the array under a known key.
	var object map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return apperr.Transport(err)
	}

	for _, key := range legacyKeys {
		nested, ok := object[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(nested, out); err != nil {
			return apperr.Transport(err)
		}
		return nil
	}

	return apperr.Contract("Collection response carried none of the expected keys")
}
