package services

import (
	"sync"
	"time"

	"line_order/internal/models"
)

// Transient notifications stay visible this long before auto-dismissing.
const notificationTTL = 4 * time.Second

type Notification struct {
	Message string          `json:"message"`
	Type    models.Severity `json:"type"`
}

type timedNotification struct {
	Notification
	expires time.Time
}

// Notifier holds the current transient notification per session. A new
// notification replaces the visible one rather than queueing behind it.
type Notifier struct {
	mu      sync.Mutex
	now     func() time.Time
	current map[string]timedNotification
}

func NewNotifier() *Notifier {
	return &Notifier{
		now:     time.Now,
		current: make(map[string]timedNotification),
	}
}

func (n *Notifier) Show(sessionID, message string, severity models.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.current[sessionID] = timedNotification{
		Notification: Notification{Message: message, Type: severity},
		expires:      n.now().Add(notificationTTL),
	}
}

// Current returns the visible notification, if any. Expired notifications
// are dropped on read.
func (n *Notifier) Current(sessionID string) (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	entry, ok := n.current[sessionID]
	if !ok {
		return Notification{}, false
	}
	if n.now().After(entry.expires) {
		delete(n.current, sessionID)
		return Notification{}, false
	}
	return entry.Notification, true
}

func (n *Notifier) Dismiss(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.current, sessionID)
}
