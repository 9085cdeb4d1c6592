// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package imageproxy_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/imageproxy"
)

func newRelay(t *testing.T, upstream *httptest.Server) *httptest.Server {
	t.Helper()

	upstreamURL, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	router := chi.NewRouter()
	imageproxy.NewHandler([]string{upstreamURL.Hostname()}).RegisterRoutes(router)

	relay := httptest.NewServer(router)
	t.Cleanup(relay.Close)
	return relay
}

/*
TestRelay_StreamsWithUpstreamContentType verifies bytes and content type
pass through unchanged.
*/
func TestRelay_StreamsWithUpstreamContentType(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(imageBytes)
	}))
	t.Cleanup(upstream.Close)

	relay := newRelay(t, upstream)
	response, err := http.Get(relay.URL + "/?url=" + url.QueryEscape(upstream.URL+"/panel.png"))
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "image/png", response.Header.Get("Content-Type"))
	assert.Equal(t, imageBytes, body)
}

/*
TestRelay_ForwardsCookies verifies the upstream sees the caller's cookies.
*/
func TestRelay_ForwardsCookies(t *testing.T) {
	var gotCookie string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("cdn_auth"); err == nil {
			gotCookie = cookie.Value
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	t.Cleanup(upstream.Close)

	relay := newRelay(t, upstream)
	request, err := http.NewRequest(http.MethodGet, relay.URL+"/?url="+url.QueryEscape(upstream.URL+"/a.jpg"), nil)
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: "cdn_auth", Value: "secret-cdn-token"})

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	_ = response.Body.Close()

	assert.Equal(t, "secret-cdn-token", gotCookie)
}

/*
TestRelay_RejectsUnlistedHosts verifies the allow list is enforced before
any upstream connection: this endpoint must not be an open proxy.
*/
func TestRelay_RejectsUnlistedHosts(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must never be contacted")
	}))
	t.Cleanup(upstream.Close)

	router := chi.NewRouter()
	imageproxy.NewHandler([]string{"cdn.voltora.energy"}).RegisterRoutes(router)
	relay := httptest.NewServer(router)
	t.Cleanup(relay.Close)

	response, err := http.Get(relay.URL + "/?url=" + url.QueryEscape(upstream.URL+"/a.png"))
	require.NoError(t, err)
	_ = response.Body.Close()

	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

/*
TestRelay_RejectsNonImagePayloads verifies an allow-listed upstream cannot
smuggle an HTML error page or JSON body through the relay.
*/
func TestRelay_RejectsNonImagePayloads(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login required</html>"))
	}))
	t.Cleanup(upstream.Close)

	relay := newRelay(t, upstream)
	response, err := http.Get(relay.URL + "/?url=" + url.QueryEscape(upstream.URL+"/a.png"))
	require.NoError(t, err)
	_ = response.Body.Close()

	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

/*
TestRelay_RejectsMalformedTargets verifies relative and schemeless URLs are
refused.
*/
func TestRelay_RejectsMalformedTargets(t *testing.T) {
	router := chi.NewRouter()
	imageproxy.NewHandler([]string{"cdn.voltora.energy"}).RegisterRoutes(router)
	relay := httptest.NewServer(router)
	t.Cleanup(relay.Close)

	for _, target := range []string{"", "/relative/path.png", "ftp://cdn.voltora.energy/x.png"} {
		response, err := http.Get(relay.URL + "/?url=" + url.QueryEscape(target))
		require.NoError(t, err)
		_ = response.Body.Close()
		assert.Equal(t, http.StatusBadRequest, response.StatusCode, "target: %q", target)
	}
}
