package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"line_order/internal/models"
)

type Client struct {
	rdb *redis.Client
}

// SessionRecord is the per-page-load session state shared by all handlers.
type SessionRecord struct {
	Profile     *models.Profile `json:"profile,omitempty"`
	IDToken     string          `json:"id_token,omitempty"`
	LoggedIn    bool            `json:"logged_in"`
	Loading     bool            `json:"loading"`
	InClient    bool            `json:"in_client"`
	Status      string          `json:"status"`
	StatusLevel models.Severity `json:"status_level"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Session management
func (c *Client) SetSession(sessionID string, record *SessionRecord, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	return c.rdb.Set(ctx, "session:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetSession(sessionID string) (*SessionRecord, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}

	return &record, nil
}

func (c *Client) DeleteSession(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "session:"+sessionID).Err()
}

// Cart state, keyed by session. A missing key is an empty cart.
func (c *Client) SetCart(sessionID string, lines []models.CartLine, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	return c.rdb.Set(ctx, "cart:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetCart(sessionID string) ([]models.CartLine, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "cart:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return []models.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(val), &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	return lines, nil
}

func (c *Client) DeleteCart(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "cart:"+sessionID).Err()
}

// Menu snapshot cache. One snapshot per session keeps the remote fetch to a
// single attempt per login transition.
func (c *Client) SetMenu(sessionID string, items []models.MenuItem, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal menu: %w", err)
	}

	return c.rdb.Set(ctx, "menu:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetMenu(sessionID string) ([]models.MenuItem, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "menu:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("menu not cached")
		}
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	var items []models.MenuItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu: %w", err)
	}

	return items, nil
}

// Confirmed-order state for the success view.
func (c *Client) SetConfirmedOrder(sessionID string, order *models.ConfirmedOrder, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmed order: %w", err)
	}

	return c.rdb.Set(ctx, "confirmed:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetConfirmedOrder(sessionID string) (*models.ConfirmedOrder, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "confirmed:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("confirmed order not found")
		}
		return nil, fmt.Errorf("failed to get confirmed order: %w", err)
	}

	var order models.ConfirmedOrder
	if err := json.Unmarshal([]byte(val), &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confirmed order: %w", err)
	}

	return &order, nil
}

func (c *Client) DeleteConfirmedOrder(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "confirmed:"+sessionID).Err()
}

// Cooperative in-flight guards (one submit / one history query at a time).
func (c *Client) AcquireLock(key string, ttl time.Duration) (bool, error) {
	ctx := context.Background()
	ok, err := c.rdb.SetNX(ctx, "lock:"+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

func (c *Client) ReleaseLock(key string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "lock:"+key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
