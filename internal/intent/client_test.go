// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

func TestSendMessageMapsReply(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/message", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"message": "I found tomato from Sunny Farms at ₹25/kg. Add to cart?",
				"intent": "order_request",
				"actions": ["Yes, add to cart", "No, show other options"],
				"availableProducts": [
					{"id": "p1", "name": "tomato", "price": 25, "unit": "kg", "availableQuantity": 100, "farmerName": "Sunny Farms"}
				],
				"orderData": {"productId": "p1", "requestedQuantity": 2, "requestedUnit": "kg"},
				"requiresConfirmation": true,
				"pendingConfirmation": {"type": "order", "productId": "p1", "quantity": 2}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	reply, err := client.SendMessage(context.Background(), Message{
		Text: "I need 2kg tomatoes",
		Role: chatdb.RoleCustomer,
		History: []chatdb.Turn{
			{Sender: chatdb.SenderUser, Text: "hello"},
		},
		Location: &chatdb.Location{Coordinates: [2]float64{77.59, 12.97}, Address: "Current Location"},
	})
	require.NoError(t, err)

	assert.Equal(t, "I need 2kg tomatoes", received["message"])
	assert.Equal(t, "customer", received["userRole"])
	assert.NotNil(t, received["conversationHistory"])

	assert.Equal(t, chatdb.SenderAssistant, reply.Turn.Sender)
	assert.True(t, reply.Turn.RequiresConfirmation)
	assert.Equal(t, "order_request", reply.Turn.Intent)
	require.Len(t, reply.Turn.CandidateProducts, 1)
	assert.Equal(t, "Sunny Farms", reply.Turn.CandidateProducts[0].FarmerName)
	require.NotNil(t, reply.Turn.OrderIntent)
	assert.Equal(t, 2.0, reply.Turn.OrderIntent.RequestedQuantity)
	assert.JSONEq(t, `{"type": "order", "productId": "p1", "quantity": 2}`, string(reply.PendingConfirmation))
	assert.Nil(t, reply.Cart)
}

func TestSendMessageCarriesConfirmationVerbatim(t *testing.T) {
	token := chatdb.PendingConfirmation(`{"type":"listing","productName":"tomato","quantity":10}`)

	var received map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"message": "Listed!",
				"intent": "listing_confirmation",
				"listingProcessed": true,
				"listingStatus": "created",
				"product": {"id": "l1", "name": "tomato", "quantity": 10, "price": 30, "unit": "kg"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	reply, err := client.SendMessage(context.Background(), Message{
		Text:                "yes",
		Role:                chatdb.RoleFarmer,
		PendingConfirmation: token,
	})
	require.NoError(t, err)

	assert.JSONEq(t, string(token), string(received["pendingConfirmation"]))
	assert.True(t, reply.Turn.ListingApplied)
	require.NotNil(t, reply.Turn.ListingResult)
	assert.Equal(t, chatdb.ListingStatusCreated, reply.Turn.ListingResult.Status)
	assert.Equal(t, 10.0, reply.Turn.ListingResult.Product.Quantity)
}

func TestSendMessageCartSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"message": "Added to your cart!",
				"intent": "order_confirmation",
				"orderProcessed": true,
				"cartTotal": 50,
				"cart": {
					"items": [
						{"product": {"_id": "p1", "name": "tomato", "price": 25, "unit": "kg", "farmer": "f1"}, "quantity": 2, "price": 25}
					]
				}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	reply, err := client.SendMessage(context.Background(), Message{Text: "yes", Role: chatdb.RoleCustomer})
	require.NoError(t, err)

	assert.True(t, reply.Turn.OrderApplied)
	require.NotNil(t, reply.Cart)
	assert.Equal(t, chatdb.ProvenanceServer, reply.Cart.Provenance)
	require.Len(t, reply.Cart.Lines, 1)
	line := reply.Cart.Lines[0]
	assert.Equal(t, "p1", line.ID)
	assert.Equal(t, 25.0, line.UnitPrice)
	assert.Equal(t, chatdb.PlaceholderImage, line.ImageRef)
	assert.Equal(t, "f1", line.FarmerID)
}

func TestSendMessageErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client := NewClient(srv.Client(), srv.URL)
			_, err := client.SendMessage(context.Background(), Message{Text: "hi", Role: chatdb.RoleCustomer})
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestSendMessageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(http.DefaultClient, srv.URL)
	_, err := client.SendMessage(context.Background(), Message{Text: "hi", Role: chatdb.RoleCustomer})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAddToCartRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "error": "Only 1kg available"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	_, err := client.AddToCart(context.Background(), "p1", 5)

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "Only 1kg available", rejection.Message)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestAddToCartSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/add-to-cart", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req["productId"])
		assert.Equal(t, 2.0, req["quantity"])
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"message": "Added 2kg tomato to your cart.",
				"cart": {"items": [{"product": {"_id": "p1", "name": "tomato", "price": 25, "unit": "kg", "image": "/tomato.jpg"}, "quantity": 2, "price": 25}]}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)
	res, err := client.AddToCart(context.Background(), "p1", 2)
	require.NoError(t, err)
	require.NotNil(t, res.Cart)
	assert.Equal(t, "/tomato.jpg", res.Cart.Lines[0].ImageRef)
	assert.Equal(t, "Added 2kg tomato to your cart.", res.Message)
}
