// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

/*
Package imageproxy implements the same-origin image relay.

Product imagery lives on upstream hosts that reject hot-linking or require
request cookies. The storefront therefore loads images through this relay:
the gateway fetches from an allow-listed upstream, forwards the inbound
cookies, and streams the bytes back with the upstream's content type.

Only hosts on the configured allow list are relayed. Anything else is
rejected before a connection is attempted — this endpoint must not become
an open proxy.
*/
package imageproxy

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/constants"
	"github.com/voltora-energy/storefront/internal/platform/respond"
)

type Handler struct {
	allowedHosts map[string]struct{}
	upstream     *http.Client
}

// NewHandler constructs the relay.
//
// # Parameters
//   - allowedHosts: Upstream hostnames eligible for relaying. Matching is
//     exact and case-sensitive after lowercasing at parse time.
func NewHandler(allowedHosts []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		allowed[strings.ToLower(host)] = struct{}{}
	}

	return &Handler{
		allowedHosts: allowed,
		upstream: &http.Client{
			Timeout: constants.RelayUpstreamTimeout,
		},
	}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.relay)
}

// relay streams one upstream image back to the caller.
//
// Query: url=<absolute upstream image URL>.
func (handler *Handler) relay(writer http.ResponseWriter, request *http.Request) {
	rawURL := request.URL.Query().Get("url")
	if rawURL == "" {
		respond.Error(writer, request, apperr.ValidationError("Query parameter 'url' is required"))
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme != "https" && target.Scheme != "http" || target.Host == "" {
		respond.Error(writer, request, apperr.ValidationError("Query parameter 'url' must be an absolute HTTP URL"))
		return
	}

	if _, ok := handler.allowedHosts[strings.ToLower(target.Hostname())]; !ok {
		respond.Error(writer, request, apperr.ValidationError("Upstream host is not on the relay allow list"))
		return
	}

	upstreamRequest, err := http.NewRequestWithContext(request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	// The upstream's auth model rides on cookies; pass the inbound ones
	// through unchanged.
	for _, cookie := range request.Cookies() {
		upstreamRequest.AddCookie(cookie)
	}
	if accept := request.Header.Get("Accept"); accept != "" {
		upstreamRequest.Header.Set("Accept", accept)
	}

	upstreamResponse, err := handler.upstream.Do(upstreamRequest)
	if err != nil {
		respond.Error(writer, request, apperr.Transport(err))
		return
	}
	defer func() { _ = upstreamResponse.Body.Close() }()

	if upstreamResponse.StatusCode < 200 || upstreamResponse.StatusCode > 299 {
		respond.Error(writer, request, apperr.NotFound("Upstream image"))
		return
	}

	contentType := upstreamResponse.Header.Get(constants.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		// An allow-listed host can still hand back an error page or a
		// redirect body; the relay only ever serves images.
		respond.Error(writer, request, apperr.NotFound("Upstream image"))
		return
	}
	writer.Header().Set(constants.HeaderContentType, contentType)
	if cacheControl := upstreamResponse.Header.Get("Cache-Control"); cacheControl != "" {
		writer.Header().Set("Cache-Control", cacheControl)
	}
	writer.WriteHeader(http.StatusOK)

	// Stream with a hard size cap; a misbehaving upstream cannot balloon
	// gateway memory or bandwidth.
	limited := io.LimitReader(upstreamResponse.Body, constants.MaxRelayBytes)
	if _, err := io.Copy(writer, limited); err != nil && !errors.Is(err, io.EOF) {
		// Headers are already out; nothing left to do but stop copying.
		return
	}
}
