// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package intent is the client for the marketplace's intent and order
// processing service. Natural language understanding, product matching, and
// order commits all happen on the service side; this client only carries the
// conversation context back and forth.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// NewClient returns a Client talking to the service at baseURL.
func NewClient(hc *http.Client, baseURL string) *Client {
	return &Client{
		hc:      hc,
		baseURL: baseURL,
	}
}

// Client calls the intent/order service. Calls are never retried; a failed
// dialogue exchange surfaces to the user instead.
type Client struct {
	hc      *http.Client
	baseURL string
}

// Message is one outbound dialogue exchange.
type Message struct {
	// Text is the user's submission.
	Text string

	// Role is the marketplace role of the user.
	Role chatdb.Role

	// Language is the user's preferred language code, when known.
	Language string

	// History is the bounded trailing window of turns for context.
	History []chatdb.Turn

	// Location is the user's coarse location, when known.
	Location *chatdb.Location

	// PendingConfirmation is the outstanding confirmation token, carried
	// verbatim. Nil when none is outstanding.
	PendingConfirmation chatdb.PendingConfirmation
}

// Reply is the service's answer to one dialogue exchange.
type Reply struct {
	// Turn is the assistant turn to append. ID and CreatedAt are left for
	// the caller to stamp.
	Turn chatdb.Turn

	// PendingConfirmation is the token to attach to the next request when
	// Turn.RequiresConfirmation is set.
	PendingConfirmation chatdb.PendingConfirmation

	// Cart is the authoritative cart snapshot, when the exchange changed it.
	Cart *chatdb.CartSnapshot
}

type messageRequest struct {
	Message             string                     `json:"message"`
	UserRole            chatdb.Role                `json:"userRole"`
	Language            string                     `json:"language,omitempty"`
	ConversationHistory []chatdb.Turn              `json:"conversationHistory"`
	UserLocation        *chatdb.Location           `json:"userLocation,omitempty"`
	PendingConfirmation chatdb.PendingConfirmation `json:"pendingConfirmation,omitempty"`
}

type wireCartProduct struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image"`
	Farmer   string  `json:"farmer"`
	Category string  `json:"category"`
}

type wireCartItem struct {
	Product  wireCartProduct `json:"product"`
	Quantity float64         `json:"quantity"`
	Price    float64         `json:"price"`
}

type wireCart struct {
	Items []wireCartItem `json:"items"`
}

type wireListingProduct struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	TotalQuantity float64 `json:"totalQuantity"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
}

type messageData struct {
	Message              string                     `json:"message"`
	Intent               string                     `json:"intent"`
	Actions              []string                   `json:"actions"`
	AvailableProducts    []chatdb.Product           `json:"availableProducts"`
	OrderData            *chatdb.OrderIntent        `json:"orderData"`
	Product              *wireListingProduct        `json:"product"`
	ListingStatus        chatdb.ListingStatus       `json:"listingStatus"`
	RequiresConfirmation bool                       `json:"requiresConfirmation"`
	PendingConfirmation  chatdb.PendingConfirmation `json:"pendingConfirmation"`
	OrderProcessed       bool                       `json:"orderProcessed"`
	ListingProcessed     bool                       `json:"listingProcessed"`
	Cart                 *wireCart                  `json:"cart"`
	CartTotal            *float64                   `json:"cartTotal"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// SendMessage submits one dialogue exchange and maps the reply. Transport
// failures and 5xx responses return an error wrapping ErrUnavailable;
// explicit service declines return a RejectionError.
func (c *Client) SendMessage(ctx context.Context, msg Message) (*Reply, error) {
	history := msg.History
	if history == nil {
		history = []chatdb.Turn{}
	}
	req := messageRequest{
		Message:             msg.Text,
		UserRole:            msg.Role,
		Language:            msg.Language,
		ConversationHistory: history,
		UserLocation:        msg.Location,
		PendingConfirmation: msg.PendingConfirmation,
	}

	var data messageData
	if err := c.post(ctx, "/api/chat/message", req, &data); err != nil {
		return nil, err
	}

	reply := &Reply{
		Turn: chatdb.Turn{
			Sender:               chatdb.SenderAssistant,
			Text:                 data.Message,
			Intent:               data.Intent,
			SuggestedActions:     data.Actions,
			CandidateProducts:    data.AvailableProducts,
			OrderIntent:          data.OrderData,
			RequiresConfirmation: data.RequiresConfirmation,
			OrderApplied:         data.OrderProcessed,
			ListingApplied:       data.ListingProcessed,
			CartTotal:            data.CartTotal,
		},
		PendingConfirmation: data.PendingConfirmation,
	}
	if data.Product != nil && data.ListingStatus != "" {
		quantity := data.Product.Quantity
		if quantity == 0 {
			quantity = data.Product.TotalQuantity
		}
		reply.Turn.ListingResult = &chatdb.ListingResult{
			Product: chatdb.ListingProduct{
				ID:       data.Product.ID,
				Name:     data.Product.Name,
				Quantity: quantity,
				Price:    data.Product.Price,
				Unit:     data.Product.Unit,
			},
			Status: data.ListingStatus,
		}
	}
	if data.Cart != nil {
		reply.Cart = snapshotFromWire(data.Cart)
	}
	return reply, nil
}

type addToCartRequest struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

type addToCartData struct {
	Message string    `json:"message"`
	Cart    *wireCart `json:"cart"`
}

// CartResult is the outcome of an explicit add-to-cart call.
type CartResult struct {
	// Message is the service's user-facing confirmation text.
	Message string

	// Cart is the authoritative cart after the add.
	Cart *chatdb.CartSnapshot
}

// AddToCart adds quantity of productID to the user's cart on the service.
// Business declines such as insufficient stock return a RejectionError;
// connectivity failures return an error wrapping ErrUnavailable so the
// caller can fall back to the optimistic cart path.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity float64) (*CartResult, error) {
	req := addToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
	}

	var data addToCartData
	if err := c.post(ctx, "/api/chat/add-to-cart", req, &data); err != nil {
		return nil, err
	}

	res := &CartResult{Message: data.Message}
	if data.Cart != nil {
		res.Cart = snapshotFromWire(data.Cart)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, req any, data any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("intent: marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("intent: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpRes, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("intent: sending request: %w: %w", ErrUnavailable, err)
	}
	defer func() {
		_ = httpRes.Body.Close()
	}()

	if httpRes.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("intent: service returned status %d: %w", httpRes.StatusCode, ErrUnavailable)
	}

	var env envelope
	if err := json.NewDecoder(httpRes.Body).Decode(&env); err != nil {
		return fmt.Errorf("intent: decoding response: %w: %w", ErrUnavailable, err)
	}
	if !env.Success {
		return &RejectionError{Message: env.Error}
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return fmt.Errorf("intent: decoding response data: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func snapshotFromWire(cart *wireCart) *chatdb.CartSnapshot {
	lines := make([]chatdb.CartLine, len(cart.Items))
	for i, item := range cart.Items {
		price := item.Product.Price
		if price == 0 {
			price = item.Price
		}
		image := item.Product.Image
		if image == "" {
			image = chatdb.PlaceholderImage
		}
		lines[i] = chatdb.CartLine{
			ID:        item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: price,
			Quantity:  item.Quantity,
			Unit:      item.Product.Unit,
			ImageRef:  image,
			FarmerID:  item.Product.Farmer,
			Category:  item.Product.Category,
		}
	}
	return &chatdb.CartSnapshot{
		Lines:        lines,
		Provenance:   chatdb.ProvenanceServer,
		LastSyncedAt: time.Now(),
	}
}
