// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package chatdb

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Sender string

const (
	// SenderUser is a message authored by the user.
	SenderUser Sender = "user"
	// SenderAssistant is a message authored by the assistant.
	SenderAssistant Sender = "assistant"
)

// TurnKind distinguishes special assistant turns for rendering. The zero
// value is a plain turn.
type TurnKind string

const (
	// TurnKindWelcome is the greeting shown when a chat is opened.
	TurnKindWelcome TurnKind = "welcome"
	// TurnKindError is a locally synthesized turn reporting a failure.
	TurnKindError TurnKind = "error"
	// TurnKindWarning is a degraded-mode notice, e.g. an offline cart add.
	TurnKindWarning TurnKind = "warning"
	// TurnKindSuccess is a locally synthesized turn confirming a side effect.
	TurnKindSuccess TurnKind = "success"
)

// PendingConfirmation is the opaque token emitted by the intent service when
// a side-effecting action needs explicit user assent. It is carried back
// verbatim on the next request; only the service interprets it.
type PendingConfirmation = json.RawMessage

// OrderIntent is the quantity the service matched from an order request,
// echoed so a candidate product can be added to the cart directly.
type OrderIntent struct {
	// ProductID is the ID of the best matching product.
	ProductID string `json:"productId"`

	// RequestedQuantity is the quantity the user asked for.
	RequestedQuantity float64 `json:"requestedQuantity"`

	// RequestedUnit is the unit the user asked in, e.g. "kg".
	RequestedUnit string `json:"requestedUnit"`
}

type ListingStatus string

const (
	// ListingStatusCreated means a new product listing was created.
	ListingStatusCreated ListingStatus = "created"
	// ListingStatusUpdated means an existing listing was topped up.
	ListingStatusUpdated ListingStatus = "updated"
	// ListingStatusRejected means the service declined the listing.
	ListingStatusRejected ListingStatus = "rejected"
)

// ListingProduct is the product snapshot attached to a listing result.
type ListingProduct struct {
	// ID is the ID of the product listing.
	ID string `json:"id"`

	// Name is the name of the product.
	Name string `json:"name"`

	// Quantity is the total listed quantity.
	Quantity float64 `json:"quantity"`

	// Price is the price per unit in rupees.
	Price float64 `json:"price"`

	// Unit is the sale unit, e.g. "kg".
	Unit string `json:"unit"`
}

// ListingResult is the outcome of a farmer listing produce through the chat.
type ListingResult struct {
	// Product is a snapshot of the listed product.
	Product ListingProduct `json:"product"`

	// Status is the outcome of the listing.
	Status ListingStatus `json:"status"`
}

// Product is a candidate product suggested by the intent service.
type Product struct {
	// ID is the unique identifier of the product.
	ID string `json:"id"`

	// Name is the name of the product.
	Name string `json:"name"`

	// Price is the price per unit in rupees.
	Price float64 `json:"price"`

	// Unit is the sale unit, e.g. "kg".
	Unit string `json:"unit"`

	// AvailableQuantity is how much the farmer currently has listed.
	AvailableQuantity float64 `json:"availableQuantity"`

	// FarmerName is the display name of the selling farmer.
	FarmerName string `json:"farmerName"`

	// DistanceKm is the distance to the farm in kilometers, when the user
	// shared a location.
	DistanceKm *float64 `json:"distance,omitempty"`

	// Organic marks certified organic produce.
	Organic bool `json:"organic,omitempty"`
}

// Turn is one message in a conversation. A Turn is immutable once appended
// to a conversation log; corrections are modeled as new turns.
type Turn struct {
	// ID is the unique, time-ordered identifier of the turn.
	ID string `json:"id"`

	// Sender is the author of the turn.
	Sender Sender `json:"sender"`

	// Kind distinguishes special assistant turns. Empty for plain turns.
	Kind TurnKind `json:"kind,omitempty"`

	// Text is the message content.
	Text string `json:"text"`

	// CreatedAt is when the turn was appended.
	CreatedAt time.Time `json:"createdAt"`

	// Intent is the opaque intent tag from the service, assistant turns only.
	Intent string `json:"intent,omitempty"`

	// SuggestedActions are short strings the user can resubmit as turns.
	SuggestedActions []string `json:"suggestedActions,omitempty"`

	// CandidateProducts are products matching an order request.
	CandidateProducts []Product `json:"candidateProducts,omitempty"`

	// OrderIntent is the matched order quantity, when present.
	OrderIntent *OrderIntent `json:"orderIntent,omitempty"`

	// ListingResult is the outcome of a produce listing, when present.
	ListingResult *ListingResult `json:"listingResult,omitempty"`

	// RequiresConfirmation marks a turn that proposed a side effect and is
	// waiting for the user's assent.
	RequiresConfirmation bool `json:"requiresConfirmation,omitempty"`

	// OrderApplied marks a turn that committed an order.
	OrderApplied bool `json:"orderApplied,omitempty"`

	// ListingApplied marks a turn that committed a listing.
	ListingApplied bool `json:"listingApplied,omitempty"`

	// CartTotal is the cart total after an applied order, in rupees.
	CartTotal *float64 `json:"cartTotal,omitempty"`
}

var (
	turnEntropyMu sync.Mutex
	turnEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec
)

// NewTurnID returns a unique turn ID for t. IDs generated within a process
// are strictly increasing.
func NewTurnID(t time.Time) string {
	turnEntropyMu.Lock()
	defer turnEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), turnEntropy).String()
}
