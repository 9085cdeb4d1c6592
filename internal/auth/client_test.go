// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/auth"
	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/sec"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newFixture(t *testing.T, handler http.HandlerFunc) (*auth.Client, *session.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewStore(session.NewMemoryBackend(), sealer, logger)
	api := httpapi.NewClient(session.DomainCustomer, server.URL, sessions)

	return auth.NewClient(api, querycache.New(), logger), sessions
}

/*
TestLogin_StoresTokenAndProfileTogether verifies a successful login writes
both halves of the session atomically.
*/
func TestLogin_StoresTokenAndProfileTogether(t *testing.T) {
	client, sessions := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "ana@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"token":"tok-login","user":{"id":"u-1","name":"Ana","email":"ana@example.com"}}}`))
	})
	ctx := context.Background()

	profile, err := client.Login(ctx, auth.Credentials{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)

	token, ok := sessions.Token(ctx, session.DomainCustomer)
	require.True(t, ok)
	assert.Equal(t, "tok-login", token)

	stored, ok := sessions.Profile(ctx, session.DomainCustomer)
	require.True(t, ok)
	assert.Equal(t, "u-1", stored.ID)
}

/*
TestLogin_ValidatesBeforeDispatch verifies malformed credentials never
reach the network.
*/
func TestLogin_ValidatesBeforeDispatch(t *testing.T) {
	var calls int
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	ctx := context.Background()

	_, err := client.Login(ctx, auth.Credentials{Email: "not-an-email", Password: "x"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	_, err = client.Login(ctx, auth.Credentials{Email: "ana@example.com", Password: ""})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	assert.Equal(t, 0, calls)
}

/*
TestVerifyCode_MissingTokenIsContractViolation verifies step two of
registration fails cleanly when the server confirms the code but returns no
token: distinguished error, zero session writes.
*/
func TestVerifyCode_MissingTokenIsContractViolation(t *testing.T) {
	client, sessions := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u-9","name":"Ben"}},"message":"Verified"}`))
	})
	ctx := context.Background()

	_, err := client.VerifyCode(ctx, "ben@example.com", "482913")

	assert.Equal(t, apperr.CodeContract, apperr.CodeOf(err))
	assert.False(t, sessions.IsAuthenticated(ctx, session.DomainCustomer))
	_, hasProfile := sessions.Profile(ctx, session.DomainCustomer)
	assert.False(t, hasProfile, "no partial session write")
}

/*
TestVerifyCode_CompletesRegistration verifies the happy path of the
two-step flow.
*/
func TestVerifyCode_CompletesRegistration(t *testing.T) {
	client, sessions := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-code", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"token":"tok-fresh","user":{"id":"u-2","name":"Ben","email":"ben@example.com"}}}`))
	})
	ctx := context.Background()

	profile, err := client.VerifyCode(ctx, "ben@example.com", "482913")
	require.NoError(t, err)
	assert.Equal(t, "u-2", profile.ID)
	assert.True(t, sessions.IsAuthenticated(ctx, session.DomainCustomer))
}

/*
TestLogout_TearsDownLocallyEvenWhenBackendFails verifies a dead backend
cannot keep a customer logged in.
*/
func TestLogout_TearsDownLocallyEvenWhenBackendFails(t *testing.T) {
	client, sessions := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	require.NoError(t, sessions.Set(ctx, session.DomainCustomer, "tok-old", nil, nil))
	require.NoError(t, client.Logout(ctx))

	assert.False(t, sessions.IsAuthenticated(ctx, session.DomainCustomer))
}

/*
TestRegister_SubmitsProfileWithoutSession verifies step one dispatches the
form and leaves the session store untouched.
*/
func TestRegister_SubmitsProfileWithoutSession(t *testing.T) {
	client, sessions := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Verification code sent"}`))
	})
	ctx := context.Background()

	err := client.Register(ctx, auth.Registration{
		Name:     "Ben",
		Email:    "ben@example.com",
		Phone:    "+2348012345678",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)
	assert.False(t, sessions.IsAuthenticated(ctx, session.DomainCustomer))
}
