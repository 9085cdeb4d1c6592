// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package checkout_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltora-energy/storefront/internal/checkout"
	"github.com/voltora-energy/storefront/internal/httpapi"
	"github.com/voltora-energy/storefront/internal/platform/apperr"
	"github.com/voltora-energy/storefront/internal/platform/sec"
	"github.com/voltora-energy/storefront/internal/querycache"
	"github.com/voltora-energy/storefront/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newFixture(t *testing.T, handler http.HandlerFunc) (*checkout.Client, *session.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewStore(session.NewMemoryBackend(), sealer, logger)
	require.NoError(t, sessions.Set(context.Background(), session.DomainCustomer, "tok-checkout", nil, nil))

	api := httpapi.NewClient(session.DomainCustomer, server.URL, sessions)
	return checkout.NewClient(api, querycache.New(), logger), sessions
}

func testAddress() checkout.Address {
	return checkout.Address{
		FullName: "Ada Obi",
		Line1:    "12 Marina Road",
		City:     "Lagos",
		State:    "Lagos",
		Phone:    "+2348012345678",
	}
}

/*
TestDraftTotals verifies the money arithmetic:
total = subtotal + fee + tax − discount.
*/
func TestDraftTotals(t *testing.T) {
	draft := checkout.Draft{
		TaxRate:         0.075,
		DeliveryFee:     0,
		AppliedDiscount: 500,
	}

	totals := draft.Totals(10000)

	assert.Equal(t, 750.0, totals.Tax)
	assert.Equal(t, 10250.0, totals.Total)
	assert.Equal(t, 10000.0, totals.Subtotal)
}

/*
TestDraftTotals_DiscountStaysFrozen verifies the applied discount does not
track later subtotal changes: the amount is captured at application time.
*/
func TestDraftTotals_DiscountStaysFrozen(t *testing.T) {
	draft := checkout.Draft{AppliedDiscount: 500}

	before := draft.Totals(10000)
	after := draft.Totals(4000)

	assert.Equal(t, 500.0, before.Discount)
	assert.Equal(t, 500.0, after.Discount, "cart changes never recompute the frozen amount")
	assert.Equal(t, 3500.0, after.Total)
}

/*
TestApplyCoupon_FreezesResolvedDiscount verifies the discount lands on the
draft from the backend's verification response.
*/
func TestApplyCoupon_FreezesResolvedDiscount(t *testing.T) {
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coupons/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"discount":500}}`))
	})
	ctx := context.Background()

	draft := checkout.Draft{}
	require.NoError(t, client.ApplyCoupon(ctx, &draft, "SOLAR10"))

	assert.Equal(t, "SOLAR10", draft.CouponCode)
	assert.Equal(t, 500.0, draft.AppliedDiscount)
}

/*
TestCreateOrder_RedirectOutcome verifies the provider-redirect branch.
*/
func TestCreateOrder_RedirectOutcome(t *testing.T) {
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"redirect_url":"https://pay.example.com/ref-91","reference":"ref-91"}}`))
	})

	result, err := client.CreateOrder(context.Background(), checkout.Draft{ShippingAddress: testAddress()})
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/ref-91", result.RedirectURL)
	assert.Empty(t, result.OrderID)
}

/*
TestCreateOrder_NeitherOutcomeIsContractViolation verifies a success body
with no redirect and no order id is surfaced, not swallowed.
*/
func TestCreateOrder_NeitherOutcomeIsContractViolation(t *testing.T) {
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Order queued"}`))
	})

	_, err := client.CreateOrder(context.Background(), checkout.Draft{ShippingAddress: testAddress()})

	assert.Equal(t, apperr.CodeContract, apperr.CodeOf(err))
}

/*
TestCreateOrder_ValidatesAddressBeforeDispatch verifies an incomplete
address never reaches the network.
*/
func TestCreateOrder_ValidatesAddressBeforeDispatch(t *testing.T) {
	var calls int
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	address := testAddress()
	address.City = ""
	_, err := client.CreateOrder(context.Background(), checkout.Draft{ShippingAddress: address})

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Equal(t, 0, calls)
}

/*
TestVerifyPayment_PassesReference verifies the provider reference rides the
query string and the status decodes.
*/
func TestVerifyPayment_PassesReference(t *testing.T) {
	client, _ := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ref-91", r.URL.Query().Get("reference"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"reference":"ref-91","order_id":"ord-5","status":"success","paid":true}}`))
	})

	status, err := client.VerifyPayment(context.Background(), "ref-91")
	require.NoError(t, err)

	assert.True(t, status.Paid)
	assert.Equal(t, "ord-5", status.OrderID)
}

/*
TestCriticalWrites_PropagateTransportFailures verifies checkout never
soft-fails: a dead backend surfaces a transport error.
*/
func TestCriticalWrites_PropagateTransportFailures(t *testing.T) {
	sealer, err := sec.NewSealer(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewStore(session.NewMemoryBackend(), sealer, logger)
	require.NoError(t, sessions.Set(context.Background(), session.DomainCustomer, "tok", nil, nil))

	api := httpapi.NewClient(session.DomainCustomer, "http://127.0.0.1:0", sessions)
	client := checkout.NewClient(api, querycache.New(), logger)

	_, err = client.CreateOrder(context.Background(), checkout.Draft{ShippingAddress: testAddress()})
	assert.Equal(t, apperr.CodeTransport, apperr.CodeOf(err))
}
