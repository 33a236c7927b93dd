package liff

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"line_order/internal/models"
)

// Credentials are handed over by the LIFF webview when it bootstraps a
// session: the tokens the SDK issued client-side plus the client context.
type Credentials struct {
	AccessToken string `json:"accessToken"`
	IDToken     string `json:"idToken"`
	InClient    bool   `json:"inClient"`
}

// Client verifies LIFF credentials against the LINE platform and fetches
// the user profile. One Client serves one page load.
type Client struct {
	BaseURL    string
	ChannelID  string
	HTTPClient *http.Client

	creds    Credentials
	loggedIn bool
}

type verifyResponse struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

func NewClient(baseURL, channelID string, creds Credentials) *Client {
	return &Client{
		BaseURL:   baseURL,
		ChannelID: channelID,
		creds:     creds,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Init verifies the presented id token with LINE. A missing or rejected
// token leaves the client in a logged-out state without failing init; only
// a platform/transport problem is an init failure.
func (c *Client) Init() error {
	if c.creds.IDToken == "" {
		c.loggedIn = false
		return nil
	}

	form := url.Values{}
	form.Set("id_token", c.creds.IDToken)
	form.Set("client_id", c.ChannelID)

	resp, err := c.HTTPClient.Post(
		c.BaseURL+"/oauth2/v2.1/verify",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to verify id token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		// Expired or foreign token: not an init failure, just not logged in.
		c.loggedIn = false
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected verify status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read verify response: %w", err)
	}

	var verified verifyResponse
	if err := json.Unmarshal(body, &verified); err != nil {
		return fmt.Errorf("failed to parse verify response: %w", err)
	}

	c.loggedIn = verified.Sub != ""
	return nil
}

func (c *Client) IsLoggedIn() bool {
	return c.loggedIn
}

// Profile fetches the LINE profile behind the access token.
func (c *Client) Profile() (*models.Profile, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/v2/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected profile status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}

	var profile models.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	return &profile, nil
}

func (c *Client) IDToken() (string, error) {
	if !c.loggedIn {
		return "", fmt.Errorf("no active login")
	}
	return c.creds.IDToken, nil
}

// Login is carried out by the webview (the SDK navigates the browser away);
// server-side there is nothing to do beyond accepting the trigger.
func (c *Client) Login() error {
	return nil
}

func (c *Client) IsInClient() bool {
	return c.creds.InClient
}
