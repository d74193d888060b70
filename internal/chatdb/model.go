package chatdb

// Role is the marketplace role of the chatting user.
type Role string

const (
	// RoleCustomer is a buyer ordering produce.
	RoleCustomer Role = "customer"
	// RoleFarmer is a seller listing produce.
	RoleFarmer Role = "farmer"
)

// Location is a coarse user location attached to requests when known.
type Location struct {
	// Coordinates is the position as [longitude, latitude].
	Coordinates [2]float64 `json:"coordinates"`

	// Address is a human readable label for the position.
	Address string `json:"address"`
}
