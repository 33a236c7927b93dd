package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"line_order/internal/cart"
	"line_order/internal/models"
	"line_order/internal/redis"
	"line_order/internal/validation"
	"line_order/pkg/orderapi"
)

// In-flight guards expire on their own in case a request never returns.
const inflightTTL = 30 * time.Second

type OrderStore interface {
	GetCart(sessionID string) ([]models.CartLine, error)
	DeleteCart(sessionID string) error
	SetConfirmedOrder(sessionID string, order *models.ConfirmedOrder, ttl time.Duration) error
	GetConfirmedOrder(sessionID string) (*models.ConfirmedOrder, error)
	DeleteConfirmedOrder(sessionID string) error
	AcquireLock(key string, ttl time.Duration) (bool, error)
	ReleaseLock(key string) error
}

type OrderService interface {
	// Submit validates the form against the session cart and, when valid,
	// sends the normalized order to the order service. The returned Result
	// carries field errors when validation blocked the submission; no
	// network call is made in that case.
	Submit(sessionID string, record *redis.SessionRecord, form validation.Form) (*models.ConfirmedOrder, validation.Result, error)
	// History queries past orders for the authenticated profile, sorted
	// most recent first. Empty date bounds default to the last seven days.
	History(sessionID string, record *redis.SessionRecord, startDate, endDate string) ([]models.HistoryOrder, error)
	Confirmation(sessionID string) (*models.ConfirmedOrder, error)
	// DiscardConfirmation drops the confirmation state when the customer
	// starts a new order.
	DiscardConfirmation(sessionID string) error
}

type orderService struct {
	api         *orderapi.Client
	store       OrderStore
	notifier    *Notifier
	deliveryFee int
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewOrderService(api *orderapi.Client, store OrderStore, notifier *Notifier, deliveryFee int, sessionTTL time.Duration) OrderService {
	return &orderService{
		api:         api,
		store:       store,
		notifier:    notifier,
		deliveryFee: deliveryFee,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

func (s *orderService) Submit(sessionID string, record *redis.SessionRecord, form validation.Form) (*models.ConfirmedOrder, validation.Result, error) {
	// The customer name always comes from the LINE profile, never from the
	// submitted form.
	form.CustomerName = ""
	if record.Profile != nil {
		form.CustomerName = record.Profile.DisplayName
	}

	lines, err := s.store.GetCart(sessionID)
	if err != nil {
		return nil, validation.Result{}, err
	}

	result := validation.Validate(form, lines, s.now())
	if !result.OK {
		for _, message := range result.General {
			s.notifier.Show(sessionID, message, models.SeverityError)
		}
		return nil, result, nil
	}

	locked, err := s.store.AcquireLock("submit:"+sessionID, inflightTTL)
	if err != nil {
		return nil, result, err
	}
	if !locked {
		return nil, result, errors.New("訂單處理中，請稍候再試")
	}
	defer s.store.ReleaseLock("submit:" + sessionID)

	payload := orderapi.OrderPayload{
		CustomerName:    strings.TrimSpace(form.CustomerName),
		CustomerPhone:   strings.TrimSpace(form.CustomerPhone),
		Items:           projectItems(lines),
		PickupTime:      validation.FullPickupTime(form.PickupDate, form.PickupTime),
		DeliveryAddress: strings.TrimSpace(form.DeliveryAddress),
		Notes:           strings.TrimSpace(form.Notes),
	}

	created, err := s.api.CreateOrder(record.IDToken, payload)
	if err != nil {
		s.notifier.Show(sessionID, "訂單提交失敗："+err.Error(), models.SeverityError)
		return nil, result, err
	}

	// Prefer the server-confirmed identifiers; fall back to local values
	// when the service omits them.
	totals := cart.ComputeTotals(lines, form.DeliveryAddress, s.deliveryFee)
	orderID := created.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("TEST_%d", s.now().UnixMilli())
	}
	totalAmount := created.TotalAmount
	if totalAmount == 0 {
		totalAmount = totals.Total
	}

	confirmed := &models.ConfirmedOrder{
		OrderDraft: models.OrderDraft{
			CustomerName:    payload.CustomerName,
			CustomerPhone:   payload.CustomerPhone,
			Items:           lines,
			PickupTime:      payload.PickupTime,
			DeliveryAddress: payload.DeliveryAddress,
			Notes:           payload.Notes,
		},
		OrderID:     orderID,
		TotalAmount: totalAmount,
	}

	if err := s.store.SetConfirmedOrder(sessionID, confirmed, s.sessionTTL); err != nil {
		return nil, result, err
	}
	if err := s.store.DeleteCart(sessionID); err != nil {
		return nil, result, err
	}

	s.notifier.Show(sessionID, "訂單提交成功！", models.SeveritySuccess)
	return confirmed, result, nil
}

func (s *orderService) History(sessionID string, record *redis.SessionRecord, startDate, endDate string) ([]models.HistoryOrder, error) {
	if record.Profile == nil || record.Profile.DisplayName == "" {
		message := "無法獲取您的 LINE 資料，請稍後再試"
		s.notifier.Show(sessionID, message, models.SeverityError)
		return nil, errors.New(message)
	}

	now := s.now()
	if startDate == "" {
		startDate = now.AddDate(0, 0, -7).Format("2006-01-02")
	}
	if endDate == "" {
		endDate = now.Format("2006-01-02")
	}

	locked, err := s.store.AcquireLock("history:"+sessionID, inflightTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, errors.New("查詢處理中，請稍候再試")
	}
	defer s.store.ReleaseLock("history:" + sessionID)

	orders, err := s.api.GetOrders(orderapi.OrdersQuery{
		CustomerName: record.Profile.DisplayName,
		IDToken:      record.IDToken,
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		s.notifier.Show(sessionID, "查詢失敗："+err.Error(), models.SeverityError)
		return nil, err
	}

	// The display order is a client-side contract regardless of how the
	// service happens to return rows.
	sort.SliceStable(orders, func(i, j int) bool {
		return parseTimestamp(orders[i].CreatedAt).After(parseTimestamp(orders[j].CreatedAt))
	})

	s.notifier.Show(sessionID, fmt.Sprintf("找到 %d 筆訂單", len(orders)), models.SeveritySuccess)

	if orders == nil {
		orders = []models.HistoryOrder{}
	}
	return orders, nil
}

func (s *orderService) Confirmation(sessionID string) (*models.ConfirmedOrder, error) {
	return s.store.GetConfirmedOrder(sessionID)
}

func (s *orderService) DiscardConfirmation(sessionID string) error {
	return s.store.DeleteConfirmedOrder(sessionID)
}

func projectItems(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
		})
	}
	return items
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
