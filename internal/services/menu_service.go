package services

import (
	"log"
	"time"

	"line_order/internal/models"
	"line_order/pkg/orderapi"
)

type MenuStore interface {
	GetMenu(sessionID string) ([]models.MenuItem, error)
	SetMenu(sessionID string, items []models.MenuItem, ttl time.Duration) error
}

type MenuService interface {
	// MenuForSession returns the catalog snapshot for one session. The
	// remote menu is fetched at most once per login transition; on failure
	// the fixed default catalog is substituted and a warning is raised.
	MenuForSession(sessionID string) []models.MenuItem
}

type menuService struct {
	api      *orderapi.Client
	store    MenuStore
	notifier *Notifier
	cacheTTL time.Duration
}

func NewMenuService(api *orderapi.Client, store MenuStore, notifier *Notifier, cacheTTL time.Duration) MenuService {
	return &menuService{api: api, store: store, notifier: notifier, cacheTTL: cacheTTL}
}

func (s *menuService) MenuForSession(sessionID string) []models.MenuItem {
	if items, err := s.store.GetMenu(sessionID); err == nil {
		return items
	}

	items, err := s.api.GetMenu()
	if err != nil {
		// The store must stay orderable when the remote menu is down. One
		// attempt per session; the fallback snapshot is cached like a real one.
		s.notifier.Show(sessionID, "菜單載入失敗，將使用預設菜單", models.SeverityWarning)
		items = models.DefaultMenu()
	}

	if err := s.store.SetMenu(sessionID, items, s.cacheTTL); err != nil {
		log.Printf("failed to cache menu for session %s: %v", sessionID, err)
	}

	return items
}
