// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/sec"
	"github.com/voltora-energy/storefront/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestSessions(t *testing.T) *session.Store {
	t.Helper()

	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewStore(session.NewMemoryBackend(), sealer, logger)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*httpapi.Client, *session.Store, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := newTestSessions(t)
	client := httpapi.NewClient(session.DomainCustomer, server.URL, sessions)
	return client, sessions, server
}

/*
TestClient_AttachesBearerWhenSessionExists verifies auth injection: token
present means Authorization header, absent means anonymous request.
*/
func TestClient_AttachesBearerWhenSessionExists(t *testing.T) {
	var gotAuth string
	client, sessions, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {}}`))
	})
	ctx := context.Background()

	// 1. Anonymous when no session exists.
	require.NoError(t, client.Get(ctx, "/products", nil, &map[string]any{}))
	assert.Empty(t, gotAuth)

	// 2. Bearer attached once a session is stored.
	require.NoError(t, sessions.Set(ctx, session.DomainCustomer, "tok-123", nil, nil))
	require.NoError(t, client.Get(ctx, "/products", nil, &map[string]any{}))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

/*
TestClient_UnauthorizedTearsSessionDown verifies the 401 contract: local
session cleared exactly once, SESSION_EXPIRED surfaced, no credential retry.
*/
func TestClient_UnauthorizedTearsSessionDown(t *testing.T) {
	var calls int
	client, sessions, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})
	ctx := context.Background()

	require.NoError(t, sessions.Set(ctx, session.DomainCustomer, "stale-token", nil, nil))

	err := client.Get(ctx, "/cart", nil, &map[string]any{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSessionExpired, apperr.CodeOf(err))

	// The request went out exactly once — no retry of the same credential.
	assert.Equal(t, 1, calls)

	// Subsequent authentication checks are answered locally.
	assert.False(t, sessions.IsAuthenticated(ctx, session.DomainCustomer))
}

/*
TestClient_MultipartNegotiation verifies the encoding switch: a payload with
a file part goes out as multipart/form-data without the caller choosing.
*/
func TestClient_MultipartNegotiation(t *testing.T) {
	var gotContentType, gotName, gotFile string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")

		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		content, _ := io.ReadAll(file)
		gotFile = string(content)

		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	payload := httpapi.NewPayload().
		Set("name", "Mono 450W Panel").
		AddFile(httpapi.File{
			Field:       "image",
			Name:        "panel.jpg",
			ContentType: "image/jpeg",
			Content:     strings.NewReader("jpeg-bytes"),
		})

	require.NoError(t, client.Post(context.Background(), "/admin/products", payload, nil))
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "Mono 450W Panel", gotName)
	assert.Equal(t, "jpeg-bytes", gotFile)
}

/*
TestClient_JSONByDefault verifies a file-less payload goes out as JSON.
*/
func TestClient_JSONByDefault(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	payload := httpapi.NewPayload().Set("quantity", 2)
	require.NoError(t, client.Post(context.Background(), "/cart/add", payload, nil))

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, float64(2), gotBody["quantity"])
}

/*
TestClient_PatchEmulation verifies PATCH goes out as POST carrying the
method-override marker.
*/
func TestClient_PatchEmulation(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	payload := httpapi.NewPayload().Set("status", "shipped")
	require.NoError(t, client.Patch(context.Background(), "/admin/orders/9", payload, nil))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "PATCH", gotBody["_method"])
	assert.Equal(t, "shipped", gotBody["status"])
}

/*
TestClient_EnvelopeUnwrap verifies 2xx bodies are stripped to their payload.
*/
func TestClient_EnvelopeUnwrap(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"id": "p-1", "name": "Inverter"}}`))
	})

	var product struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, client.Get(context.Background(), "/products/p-1", nil, &product))
	assert.Equal(t, "p-1", product.ID)
	assert.Equal(t, "Inverter", product.Name)
}

/*
TestClient_PrefersFieldErrorsOverMessage verifies the error normalization
policy: structured field errors win over the generic message, flattened
deterministically.
*/
func TestClient_PrefersFieldErrorsOverMessage(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{
			"message": "The given data was invalid.",
			"errors": {
				"email": ["Email is already taken"],
				"phone": ["Phone number is invalid"]
			}
		}`))
	})

	err := client.Post(context.Background(), "/register", httpapi.NewPayload(), nil)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeRemoteValidation, appError.Code)
	assert.Equal(t, "email: Email is already taken; phone: Phone number is invalid", appError.Message)
	assert.Len(t, appError.Details, 2)
}

/*
TestClient_TransportFailure verifies an unreachable host surfaces as a
TRANSPORT_ERROR.
*/
func TestClient_TransportFailure(t *testing.T) {
	sessions := newTestSessions(t)
	client := httpapi.NewClient(session.DomainCustomer, "http://127.0.0.1:0", sessions)

	err := client.Get(context.Background(), "/products", nil, &map[string]any{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeTransport, apperr.CodeOf(err))
}

/*
TestUnmarshalCollection verifies the single normalization boundary handles
every historical backend shape.
*/
func TestUnmarshalCollection(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	testCases := []struct {
		name string
		raw  string
		want int
	}{
		{"bare_array", `[{"id":"a"},{"id":"b"}]`, 2},
		{"items_key", `{"items":[{"id":"a"}]}`, 1},
		{"wishlist_key", `{"wishlist":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, 3},
		{"null_body", `null`, 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var out []item
			err := httpapi.UnmarshalCollection(json.RawMessage(testCase.raw), &out, "items", "wishlist")
			require.NoError(t, err)
			assert.Len(t, out, testCase.want)
		})
	}

	// An object with none of the expected keys is a contract violation.
	var out []item
	err := httpapi.UnmarshalCollection(json.RawMessage(`{"unexpected":[]}`), &out, "items")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeContract, apperr.CodeOf(err))
}
