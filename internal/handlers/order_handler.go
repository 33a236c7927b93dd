package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"line_order/internal/redis"
	"line_order/internal/services"
	"line_order/internal/validation"
)

type OrderHandler struct {
	sessionService services.SessionService
	menuService    services.MenuService
	cartService    services.CartService
	orderService   services.OrderService
	notifier       *services.Notifier
}

func NewOrderHandler(
	sessionService services.SessionService,
	menuService services.MenuService,
	cartService services.CartService,
	orderService services.OrderService,
	notifier *services.Notifier,
) *OrderHandler {
	return &OrderHandler{
		sessionService: sessionService,
		menuService:    menuService,
		cartService:    cartService,
		orderService:   orderService,
		notifier:       notifier,
	}
}

// requireSession resolves an authenticated session or writes a 401. All
// ordering functionality stays gated until the user is logged in.
func (h *OrderHandler) requireSession(c *gin.Context) (string, *redis.SessionRecord, bool) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
		return "", nil, false
	}

	record, err := h.sessionService.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return "", nil, false
	}
	if !record.LoggedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": record.Status})
		return "", nil, false
	}

	return sessionID, record, true
}

func (h *OrderHandler) GetMenu(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": h.menuService.MenuForSession(sessionID),
	})
}

// GetForm returns everything the webview needs to render the order form:
// the read-only customer name plus the pickup schedule options.
func (h *OrderHandler) GetForm(c *gin.Context) {
	_, record, ok := h.requireSession(c)
	if !ok {
		return
	}

	customerName := ""
	if record.Profile != nil {
		customerName = record.Profile.DisplayName
	}

	now := time.Now()
	defaultDate, defaultTime := validation.DefaultPickup(now)
	c.JSON(http.StatusOK, gin.H{
		"customer_name": customerName,
		"pickup_date":   defaultDate,
		"pickup_time":   defaultTime,
		"date_options":  validation.DateOptions(now),
		"time_options":  validation.TimeOptions(),
	})
}

func (h *OrderHandler) GetCart(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	lines, err := h.cartService.Lines(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  lines,
		"totals": h.cartService.Totals(lines, c.Query("deliveryAddress")),
	})
}

func (h *OrderHandler) UpdateCart(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Delta int    `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	menu := h.menuService.MenuForSession(sessionID)
	lines, err := h.cartService.Update(sessionID, req.Name, req.Delta, menu)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  lines,
		"totals": h.cartService.Totals(lines, c.Query("deliveryAddress")),
	})
}

// ClearCart empties the cart. The confirmation collected by the webview's
// dialog must be echoed back explicitly.
func (h *OrderHandler) ClearCart(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if !req.Confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation required"})
		return
	}

	lines, err := h.cartService.Clear(sessionID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": lines})
}

func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	sessionID, record, ok := h.requireSession(c)
	if !ok {
		return
	}

	var form validation.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	confirmed, result, err := h.orderService.Submit(sessionID, record, form)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if !result.OK {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"validation": result})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": confirmed,
		"view":  "success",
	})
}

// GetConfirmation serves the success view after a submission.
func (h *OrderHandler) GetConfirmation(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	order, err := h.orderService.Confirmation(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No confirmed order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// NewOrder discards the confirmation state and returns to the order view.
func (h *OrderHandler) NewOrder(c *gin.Context) {
	sessionID, _, ok := h.requireSession(c)
	if !ok {
		return
	}

	if err := h.orderService.DiscardConfirmation(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": "order"})
}

func (h *OrderHandler) GetHistory(c *gin.Context) {
	sessionID, record, ok := h.requireSession(c)
	if !ok {
		return
	}

	orders, err := h.orderService.History(sessionID, record, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetNotification lets the webview poll the current transient notification.
func (h *OrderHandler) GetNotification(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
		return
	}

	notification, visible := h.notifier.Current(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"notification": notification,
		"visible":      visible,
	})
}

func (h *OrderHandler) DismissNotification(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
		return
	}

	h.notifier.Dismiss(sessionID)
	c.JSON(http.StatusOK, gin.H{"visible": false})
}
