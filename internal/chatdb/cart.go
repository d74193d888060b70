// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package chatdb

import "time"

// PlaceholderImage is the image reference used when the server never
// supplied a real one.
const PlaceholderImage = "/placeholder.jpg"

// Provenance marks which source of truth a cart snapshot came from.
type Provenance string

const (
	// ProvenanceServer means the snapshot was returned by the backend and is
	// authoritative.
	ProvenanceServer Provenance = "server"
	// ProvenanceLocal means the snapshot contains locally guessed lines
	// appended while the backend was unreachable.
	ProvenanceLocal Provenance = "local"
)

// CartLine is one product entry in the cart.
type CartLine struct {
	// ID is the product ID. Unique within a cart.
	ID string `json:"id"`

	// Name is the product name.
	Name string `json:"name"`

	// UnitPrice is the price per unit in rupees.
	UnitPrice float64 `json:"price"`

	// Quantity is the ordered quantity. Always greater than zero.
	Quantity float64 `json:"quantity"`

	// Unit is the sale unit, e.g. "kg".
	Unit string `json:"unit"`

	// ImageRef is a reference to the product image.
	ImageRef string `json:"image"`

	// FarmerID is the ID of the selling farmer, when known.
	FarmerID string `json:"farmerId,omitempty"`

	// Category is the product category, when known.
	Category string `json:"category,omitempty"`
}

// CartSnapshot is the full contents of the cart at a point in time. A
// snapshot from the server replaces the previous one wholesale; lines are
// never merged field by field.
type CartSnapshot struct {
	// Lines are the cart entries in order.
	Lines []CartLine `json:"lines"`

	// Provenance marks whether the snapshot is authoritative or a local
	// guess.
	Provenance Provenance `json:"provenance"`

	// LastSyncedAt is when the snapshot last changed.
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// Total returns the sum of line prices in rupees.
func (s CartSnapshot) Total() float64 {
	total := 0.0
	for _, l := range s.Lines {
		total += l.UnitPrice * l.Quantity
	}
	return total
}
