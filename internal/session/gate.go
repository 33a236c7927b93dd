package session

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"line_order/internal/models"
	"line_order/pkg/liff"
)

// State is the gate's view of the login lifecycle. Everything downstream of
// the gate stays blocked until LoggedIn is true.
type State struct {
	LoggedIn    bool            `json:"loggedIn"`
	Loading     bool            `json:"loading"`
	Profile     *models.Profile `json:"profile,omitempty"`
	IDToken     string          `json:"-"`
	Status      string          `json:"status"`
	StatusLevel models.Severity `json:"statusLevel"`
	// NeedsLogin is set when the user must press the login button themselves
	// (standalone browser); inside the LINE client the redirect is automatic.
	NeedsLogin  bool `json:"needsLogin"`
	Redirecting bool `json:"redirecting"`
}

// Gate wraps the identity provider and produces the login state for one
// page load. Initialize runs exactly once; identity failures are terminal
// until the page is reloaded.
type Gate struct {
	provider liff.Provider

	mu          sync.Mutex
	initialized bool
	state       State
}

func NewGate(provider liff.Provider) *Gate {
	return &Gate{
		provider: provider,
		state: State{
			Loading:     true,
			Status:      "🔄 初始化 LINE 功能中...",
			StatusLevel: models.SeverityInfo,
		},
	}
}

// Initialize resolves the login state. Repeated calls return the state from
// the first run.
func (g *Gate) Initialize() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.initialized {
		return g.state
	}
	g.initialized = true

	if g.provider == nil {
		g.state = State{
			Status:      "⚠️ LINE SDK 載入失敗，請檢查網路連線並重新整理。",
			StatusLevel: models.SeverityError,
		}
		return g.state
	}

	if err := g.provider.Init(); err != nil {
		g.state = State{
			Status:      "⚠️ LINE 功能載入失敗，請重新整理頁面。",
			StatusLevel: models.SeverityError,
		}
		return g.state
	}

	if g.provider.IsLoggedIn() {
		g.state = g.fetchIdentity()
		return g.state
	}

	if g.provider.IsInClient() {
		// Inside the LINE client the redirect is automatic; the SDK navigates
		// away and no callback is observed.
		_ = g.provider.Login()
		g.state = State{
			Status:      "您尚未登入，將為您導向登入頁面...",
			StatusLevel: models.SeverityInfo,
			Redirecting: true,
		}
		return g.state
	}

	g.state = State{
		Status:      "請登入 LINE 以繼續訂餐。",
		StatusLevel: models.SeverityWarning,
		NeedsLogin:  true,
	}
	return g.state
}

// fetchIdentity loads the profile and id token together. Both must succeed
// for the session to be marked ready.
func (g *Gate) fetchIdentity() State {
	var (
		profile *models.Profile
		token   string
	)

	var eg errgroup.Group
	eg.Go(func() error {
		p, err := g.provider.Profile()
		profile = p
		return err
	})
	eg.Go(func() error {
		t, err := g.provider.IDToken()
		token = t
		return err
	})

	if err := eg.Wait(); err != nil {
		return State{
			Status:      "⚠️ LINE 功能載入失敗，請重新整理頁面。",
			StatusLevel: models.SeverityError,
		}
	}

	return State{
		LoggedIn:    true,
		Profile:     profile,
		IDToken:     token,
		Status:      fmt.Sprintf("👋 歡迎，%s！", profile.DisplayName),
		StatusLevel: models.SeveritySuccess,
	}
}

// Login triggers the manual login flow. It is a no-op while a transition is
// already in progress or when no provider handle is available.
func (g *Gate) Login() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.provider == nil || g.state.Loading {
		return g.state
	}

	g.state.Loading = true
	g.state.Status = "🔄 正在導向 LINE 登入頁面..."
	g.state.StatusLevel = models.SeverityInfo
	g.state.Redirecting = true

	if err := g.provider.Login(); err != nil {
		g.state.Loading = false
		g.state.Redirecting = false
		g.state.Status = "⚠️ 登入失敗，請稍後再試。"
		g.state.StatusLevel = models.SeverityError
	}

	return g.state
}

// State returns the current gate state without side effects.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
