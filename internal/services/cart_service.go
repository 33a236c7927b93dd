package services

import (
	"time"

	"line_order/internal/cart"
	"line_order/internal/models"
)

type CartStore interface {
	GetCart(sessionID string) ([]models.CartLine, error)
	SetCart(sessionID string, lines []models.CartLine, ttl time.Duration) error
	DeleteCart(sessionID string) error
}

type CartService interface {
	Lines(sessionID string) ([]models.CartLine, error)
	// Update applies a quantity delta against the session's menu snapshot
	// and persists the resulting cart.
	Update(sessionID, itemName string, delta int, menu []models.MenuItem) ([]models.CartLine, error)
	// Clear empties the cart; the caller must have collected an explicit
	// confirmation beforehand.
	Clear(sessionID string, confirmed bool) ([]models.CartLine, error)
	Totals(lines []models.CartLine, deliveryAddress string) cart.Totals
}

type cartService struct {
	store       CartStore
	ttl         time.Duration
	deliveryFee int
}

func NewCartService(store CartStore, ttl time.Duration, deliveryFee int) CartService {
	return &cartService{store: store, ttl: ttl, deliveryFee: deliveryFee}
}

func (s *cartService) Lines(sessionID string) ([]models.CartLine, error) {
	return s.store.GetCart(sessionID)
}

func (s *cartService) Update(sessionID, itemName string, delta int, menu []models.MenuItem) ([]models.CartLine, error) {
	lines, err := s.store.GetCart(sessionID)
	if err != nil {
		return nil, err
	}

	updated := cart.Update(lines, menu, itemName, delta)
	if err := s.store.SetCart(sessionID, updated, s.ttl); err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *cartService) Clear(sessionID string, confirmed bool) ([]models.CartLine, error) {
	lines, err := s.store.GetCart(sessionID)
	if err != nil {
		return nil, err
	}

	cleared := cart.Clear(lines, confirmed)
	if err := s.store.SetCart(sessionID, cleared, s.ttl); err != nil {
		return nil, err
	}

	return cleared, nil
}

func (s *cartService) Totals(lines []models.CartLine, deliveryAddress string) cart.Totals {
	return cart.ComputeTotals(lines, deliveryAddress, s.deliveryFee)
}
