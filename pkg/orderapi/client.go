package orderapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"line_order/internal/models"
)

// ErrNetwork is the single message every transport-level failure collapses
// into. Callers never see the underlying HTTP status.
const ErrNetwork = "網路連線失敗，請檢查網路連線和伺服器狀態"

// Client talks to the remote order service. The service exposes a single
// endpoint; requests are shaped by the "action" field and posted as JSON
// with a plain-text content type.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type menuRequest struct {
	Action string `json:"action"`
}

// OrderPayload is the normalized order sent with a createOrder action.
type OrderPayload struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	Items           []models.OrderItem `json:"items"`
	PickupTime      string             `json:"pickupTime"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Notes           string             `json:"notes"`
}

type createOrderRequest struct {
	Action    string       `json:"action"`
	IDToken   string       `json:"idToken"`
	OrderData OrderPayload `json:"orderData"`
}

// CreateOrderResult carries the server-confirmed identifiers. Either field
// may be absent; the caller reconciles with locally computed values.
type CreateOrderResult struct {
	OrderID     string `json:"orderId"`
	TotalAmount int    `json:"totalAmount"`
}

// OrdersQuery selects past orders for one customer over a date range.
type OrdersQuery struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	IDToken       string `json:"idToken,omitempty"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

type getOrdersRequest struct {
	Action string `json:"action"`
	OrdersQuery
	// The service only supports exact-name matching for customers.
	ExactMatch bool `json:"exactMatch"`
}

func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// call posts one action payload and decodes the envelope. Any transport
// failure, non-2xx status or undecodable body is normalized to ErrNetwork.
func (c *Client) call(payload interface{}) (*apiResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequest("POST", c.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The deployment target only accepts simple requests, so the body goes
	// out as text/plain rather than application/json.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.New(ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(ErrNetwork)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(ErrNetwork)
	}

	var response apiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.New(ErrNetwork)
	}

	return &response, nil
}

// GetMenu fetches the current catalog.
func (c *Client) GetMenu() ([]models.MenuItem, error) {
	response, err := c.call(menuRequest{Action: "getMenu"})
	if err != nil {
		return nil, err
	}

	var items []models.MenuItem
	if !response.Success || response.Data == nil || json.Unmarshal(response.Data, &items) != nil {
		return nil, errors.New("獲取菜單失敗")
	}

	return items, nil
}

// CreateOrder submits a normalized order. A success:false envelope surfaces
// the service message verbatim.
func (c *Client) CreateOrder(idToken string, order OrderPayload) (*CreateOrderResult, error) {
	response, err := c.call(createOrderRequest{
		Action:    "createOrder",
		IDToken:   idToken,
		OrderData: order,
	})
	if err != nil {
		return nil, err
	}

	if !response.Success {
		message := response.Message
		if message == "" {
			message = "訂單提交失敗"
		}
		return nil, errors.New(message)
	}

	var result CreateOrderResult
	if len(response.Data) > 0 {
		// A malformed data block degrades to local reconciliation.
		_ = json.Unmarshal(response.Data, &result)
	}

	return &result, nil
}

// GetOrders queries past orders. Name matching is always exact; the client
// cannot request fuzzy matching.
func (c *Client) GetOrders(query OrdersQuery) ([]models.HistoryOrder, error) {
	query.CustomerPhone = strings.TrimSpace(query.CustomerPhone)

	response, err := c.call(getOrdersRequest{
		Action:      "getOrders",
		OrdersQuery: query,
		ExactMatch:  true,
	})
	if err != nil {
		return nil, err
	}

	if !response.Success {
		message := response.Message
		if message == "" {
			message = "查詢失敗"
		}
		return nil, errors.New(message)
	}

	var orders []models.HistoryOrder
	if len(response.Data) > 0 {
		if err := json.Unmarshal(response.Data, &orders); err != nil {
			return nil, errors.New(ErrNetwork)
		}
	}

	return orders, nil
}
