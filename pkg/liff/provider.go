package liff

import "line_order/internal/models"

// Provider is the identity capability the ordering workflow composes
// against. Nothing outside this package reaches for the LINE platform
// directly, which keeps the session gate substitutable with a fake.
type Provider interface {
	// Init must be called before any other method. It resolves whether the
	// presented credentials belong to an active LINE login.
	Init() error
	IsLoggedIn() bool
	Profile() (*models.Profile, error)
	IDToken() (string, error)
	// Login triggers the platform login flow. The actual redirect happens in
	// the embedded browser; a nil return only means the trigger was accepted.
	Login() error
	// IsInClient reports whether the user is inside the LINE app's embedded
	// browser rather than a standalone browser tab.
	IsInClient() bool
}
