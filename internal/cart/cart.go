// Package cart implements the in-memory cart engine and the pricing
// calculator. All functions are pure: they never mutate their input and
// return a fresh slice on every change.
package cart

import (
	"strings"

	"line_order/internal/models"
)

// Update applies a quantity delta for one item and returns the new cart.
//
// An item not yet in the cart is inserted at quantity exactly 1 when the
// delta is positive and the item is currently available in the menu
// snapshot; the delta magnitude is ignored on insertion. An existing line
// absorbs the delta and is removed entirely once its quantity drops to
// zero or below. Line fields are never re-synced from the menu.
func Update(lines []models.CartLine, menu []models.MenuItem, name string, delta int) []models.CartLine {
	index := -1
	for i, line := range lines {
		if line.Name == name {
			index = i
			break
		}
	}

	if index == -1 {
		if delta <= 0 {
			return lines
		}
		for _, item := range menu {
			if item.Name == name && item.Status == models.ItemAvailable {
				updated := make([]models.CartLine, len(lines), len(lines)+1)
				copy(updated, lines)
				return append(updated, models.CartLine{MenuItem: item, Quantity: 1})
			}
		}
		return lines
	}

	quantity := lines[index].Quantity + delta
	updated := make([]models.CartLine, len(lines))
	copy(updated, lines)

	if quantity <= 0 {
		return append(updated[:index], updated[index+1:]...)
	}

	updated[index].Quantity = quantity
	return updated
}

// Quantity returns the quantity of one item, 0 when absent.
func Quantity(lines []models.CartLine, name string) int {
	for _, line := range lines {
		if line.Name == name {
			return line.Quantity
		}
	}
	return 0
}

// Count returns the total number of units across all lines.
func Count(lines []models.CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// Clear empties the cart. Clearing is destructive, so the caller must have
// collected an explicit confirmation first; without it the cart is
// returned unchanged.
func Clear(lines []models.CartLine, confirmed bool) []models.CartLine {
	if !confirmed {
		return lines
	}
	return []models.CartLine{}
}

// Totals is the priced view of a cart.
type Totals struct {
	Subtotal    int `json:"subtotal"`
	DeliveryFee int `json:"deliveryFee"`
	Total       int `json:"totalAmount"`
}

// ComputeTotals prices the cart. The delivery fee applies if and only if
// the trimmed delivery address is non-empty.
func ComputeTotals(lines []models.CartLine, deliveryAddress string, deliveryFee int) Totals {
	subtotal := 0
	for _, line := range lines {
		subtotal += line.Price * line.Quantity
	}

	fee := 0
	if strings.TrimSpace(deliveryAddress) != "" {
		fee = deliveryFee
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}
