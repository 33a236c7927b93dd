package services

import (
	"time"

	"github.com/google/uuid"

	"line_order/internal/models"
	"line_order/internal/redis"
	"line_order/internal/session"
	"line_order/pkg/liff"
)

type SessionStore interface {
	SetSession(sessionID string, record *redis.SessionRecord, ttl time.Duration) error
	GetSession(sessionID string) (*redis.SessionRecord, error)
	DeleteSession(sessionID string) error
}

type SessionService interface {
	// Bootstrap runs the session gate for one page load and stores the
	// resulting state under a fresh session id.
	Bootstrap(creds liff.Credentials) (string, session.State, error)
	Get(sessionID string) (*redis.SessionRecord, error)
	// Login records the manual login transition for a not-logged-in session.
	// The actual redirect is performed by the webview.
	Login(sessionID string) (*redis.SessionRecord, error)
}

type sessionService struct {
	newProvider func(liff.Credentials) liff.Provider
	store       SessionStore
	ttl         time.Duration
}

func NewSessionService(newProvider func(liff.Credentials) liff.Provider, store SessionStore, ttl time.Duration) SessionService {
	return &sessionService{newProvider: newProvider, store: store, ttl: ttl}
}

func (s *sessionService) Bootstrap(creds liff.Credentials) (string, session.State, error) {
	gate := session.NewGate(s.newProvider(creds))
	state := gate.Initialize()

	sessionID := uuid.NewString()
	now := time.Now()
	record := &redis.SessionRecord{
		Profile:     state.Profile,
		IDToken:     state.IDToken,
		LoggedIn:    state.LoggedIn,
		InClient:    creds.InClient,
		Status:      state.Status,
		StatusLevel: state.StatusLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.SetSession(sessionID, record, s.ttl); err != nil {
		return "", state, err
	}

	return sessionID, state, nil
}

func (s *sessionService) Get(sessionID string) (*redis.SessionRecord, error) {
	return s.store.GetSession(sessionID)
}

func (s *sessionService) Login(sessionID string) (*redis.SessionRecord, error) {
	record, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	// Already logged in or already redirecting: nothing to do.
	if record.LoggedIn || record.Loading {
		return record, nil
	}

	record.Loading = true
	record.Status = "🔄 正在導向 LINE 登入頁面..."
	record.StatusLevel = models.SeverityInfo
	record.UpdatedAt = time.Now()

	if err := s.store.SetSession(sessionID, record, s.ttl); err != nil {
		return nil, err
	}

	return record, nil
}
