package models

// CartLine is a menu item snapshot plus a quantity. Item fields are frozen
// at the moment the line is created and are never re-synced from a later
// menu fetch: cart lines are price-locked at add-time.
type CartLine struct {
	MenuItem
	Quantity int `json:"quantity"`
}
