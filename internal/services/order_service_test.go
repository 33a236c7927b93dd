package services

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"line_order/internal/models"
	"line_order/internal/redis"
	"line_order/internal/validation"
	"line_order/pkg/orderapi"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.Local)

// fakeStore satisfies OrderStore, MenuStore and CartStore in memory.
type fakeStore struct {
	cart       []models.CartLine
	confirmed  *models.ConfirmedOrder
	menu       []models.MenuItem
	menuCached bool
	lockDenied bool
}

func (f *fakeStore) GetCart(sessionID string) ([]models.CartLine, error) { return f.cart, nil }

func (f *fakeStore) SetCart(sessionID string, lines []models.CartLine, ttl time.Duration) error {
	f.cart = lines
	return nil
}

func (f *fakeStore) DeleteCart(sessionID string) error {
	f.cart = nil
	return nil
}

func (f *fakeStore) SetConfirmedOrder(sessionID string, order *models.ConfirmedOrder, ttl time.Duration) error {
	f.confirmed = order
	return nil
}

func (f *fakeStore) GetConfirmedOrder(sessionID string) (*models.ConfirmedOrder, error) {
	return f.confirmed, nil
}

func (f *fakeStore) DeleteConfirmedOrder(sessionID string) error {
	f.confirmed = nil
	return nil
}

func (f *fakeStore) AcquireLock(key string, ttl time.Duration) (bool, error) {
	return !f.lockDenied, nil
}

func (f *fakeStore) ReleaseLock(key string) error { return nil }

func (f *fakeStore) GetMenu(sessionID string) ([]models.MenuItem, error) {
	if !f.menuCached {
		return nil, errors.New("menu not cached")
	}
	return f.menu, nil
}

func (f *fakeStore) SetMenu(sessionID string, items []models.MenuItem, ttl time.Duration) error {
	f.menu = items
	f.menuCached = true
	return nil
}

func loggedInRecord() *redis.SessionRecord {
	return &redis.SessionRecord{
		Profile:  &models.Profile{UserID: "U123", DisplayName: "王小明"},
		IDToken:  "token-abc",
		LoggedIn: true,
	}
}

func submittableForm() validation.Form {
	return validation.Form{
		CustomerPhone: "0912345678",
		PickupDate:    "2024-05-15",
		PickupTime:    "13:00",
	}
}

func cartWithLines() []models.CartLine {
	return []models.CartLine{
		{MenuItem: models.MenuItem{Name: "滷肉飯", Price: 35, Status: models.ItemAvailable}, Quantity: 2},
	}
}

// newTestOrderService wires an order service against a fake remote order
// endpoint and pins the clock.
func newTestOrderService(t *testing.T, store *fakeStore, handler http.HandlerFunc) (OrderService, *Notifier) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier := NewNotifier()
	service := NewOrderService(orderapi.NewClient(server.URL), store, notifier, 30, time.Hour)
	service.(*orderService).now = func() time.Time { return testNow }
	return service, notifier
}

func TestSubmitPrefersServerValues(t *testing.T) {
	store := &fakeStore{cart: cartWithLines()}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"orderId":"A1","totalAmount":100}}`))
	})

	confirmed, result, err := service.Submit("s1", loggedInRecord(), submittableForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("unexpected validation failure: %+v", result)
	}
	if confirmed.OrderID != "A1" || confirmed.TotalAmount != 100 {
		t.Errorf("expected server values, got %+v", confirmed)
	}
	if store.confirmed == nil {
		t.Error("confirmed order must be stored for the success view")
	}
	if store.cart != nil {
		t.Error("cart must be cleared after a successful submission")
	}
	if notification, visible := notifier.Current("s1"); !visible || notification.Message != "訂單提交成功！" {
		t.Errorf("expected success notification, got %+v visible=%v", notification, visible)
	}
}

func TestSubmitSynthesizesOmittedValues(t *testing.T) {
	store := &fakeStore{cart: cartWithLines()}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	})

	form := submittableForm()
	form.DeliveryAddress = "台北市中正區"
	confirmed, _, err := service.Submit("s1", loggedInRecord(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(confirmed.OrderID, "TEST_") {
		t.Errorf("expected synthesized TEST_ id, got %q", confirmed.OrderID)
	}
	// 2x35 subtotal + 30 delivery fee.
	if confirmed.TotalAmount != 100 {
		t.Errorf("expected locally computed total 100, got %d", confirmed.TotalAmount)
	}
}

func TestSubmitSurfacesServiceFailure(t *testing.T) {
	store := &fakeStore{cart: cartWithLines()}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"no stock"}`))
	})

	confirmed, _, err := service.Submit("s1", loggedInRecord(), submittableForm())
	if err == nil || err.Error() != "no stock" {
		t.Fatalf("expected service message, got %v", err)
	}
	if confirmed != nil || store.confirmed != nil {
		t.Error("failed submission must not transition to a confirmed state")
	}
	if store.cart == nil {
		t.Error("cart must survive a failed submission")
	}
	if notification, visible := notifier.Current("s1"); !visible || !strings.Contains(notification.Message, "no stock") {
		t.Errorf("expected failure notification, got %+v", notification)
	}
}

func TestSubmitValidationAbortsBeforeNetwork(t *testing.T) {
	requests := 0
	store := &fakeStore{cart: cartWithLines()}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	form := submittableForm()
	form.CustomerPhone = "12345"
	confirmed, result, err := service.Submit("s1", loggedInRecord(), form)
	if err != nil {
		t.Fatalf("validation failure is not an error: %v", err)
	}
	if result.OK || result.PhoneError == "" {
		t.Errorf("expected phone validation failure, got %+v", result)
	}
	if confirmed != nil {
		t.Error("invalid form must not produce an order")
	}
	if requests != 0 {
		t.Errorf("invalid form must not reach the network, got %d requests", requests)
	}
}

func TestSubmitEmptyCartRaisesGeneralError(t *testing.T) {
	requests := 0
	store := &fakeStore{}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, result, _ := service.Submit("s1", loggedInRecord(), submittableForm())
	if result.OK {
		t.Fatal("expected failure for empty cart")
	}
	if requests != 0 {
		t.Error("empty cart must not reach the network")
	}
	if notification, visible := notifier.Current("s1"); !visible || notification.Message != "請至少選擇一個餐點" {
		t.Errorf("expected cart notification, got %+v", notification)
	}
}

func TestSubmitTakesNameFromProfile(t *testing.T) {
	var payload struct {
		OrderData orderapi.OrderPayload `json:"orderData"`
	}
	store := &fakeStore{cart: cartWithLines()}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.Write([]byte(`{"success":true,"data":{"orderId":"A1"}}`))
	})

	form := submittableForm()
	form.CustomerName = "別人"
	form.Notes = "  不要香菜  "
	form.DeliveryAddress = " 台北市 "
	if _, _, err := service.Submit("s1", loggedInRecord(), form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.OrderData.CustomerName != "王小明" {
		t.Errorf("customer name must come from the profile, got %q", payload.OrderData.CustomerName)
	}
	if payload.OrderData.Notes != "不要香菜" || payload.OrderData.DeliveryAddress != "台北市" {
		t.Errorf("fields must be trimmed, got %+v", payload.OrderData)
	}
	if payload.OrderData.PickupTime != "2024-05-15T13:00:00" {
		t.Errorf("unexpected pickup timestamp %q", payload.OrderData.PickupTime)
	}
	if len(payload.OrderData.Items) != 1 || payload.OrderData.Items[0] != (models.OrderItem{Name: "滷肉飯", Quantity: 2, Price: 35}) {
		t.Errorf("unexpected item projection %+v", payload.OrderData.Items)
	}
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	requests := 0
	store := &fakeStore{cart: cartWithLines(), lockDenied: true}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	if _, _, err := service.Submit("s1", loggedInRecord(), submittableForm()); err == nil {
		t.Fatal("expected busy error")
	}
	if requests != 0 {
		t.Error("a second in-flight submit must not reach the network")
	}
}

func TestHistorySortsMostRecentFirst(t *testing.T) {
	store := &fakeStore{}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"orderId":"O1","createdAt":"2024-05-10T09:00:00"},
			{"orderId":"O3","createdAt":"2024-05-14T18:30:00"},
			{"orderId":"O2","createdAt":"2024-05-12T12:00:00"}
		]}`))
	})

	orders, err := service.History("s1", loggedInRecord(), "2024-05-08", "2024-05-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{orders[0].OrderID, orders[1].OrderID, orders[2].OrderID}
	want := []string{"O3", "O2", "O1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestHistoryRequiresProfile(t *testing.T) {
	requests := 0
	store := &fakeStore{}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	record := &redis.SessionRecord{LoggedIn: true}
	if _, err := service.History("s1", record, "", ""); err == nil {
		t.Fatal("expected precondition error")
	}
	if requests != 0 {
		t.Error("missing profile must not reach the network")
	}
	if _, visible := notifier.Current("s1"); !visible {
		t.Error("expected error notification")
	}
}

func TestHistoryEmptyResultIsSuccess(t *testing.T) {
	store := &fakeStore{}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	orders, err := service.History("s1", loggedInRecord(), "", "")
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Errorf("expected empty non-nil result, got %v", orders)
	}
	if notification, visible := notifier.Current("s1"); !visible || notification.Message != "找到 0 筆訂單" {
		t.Errorf("expected count notification, got %+v", notification)
	}
}

func TestHistoryDefaultsToLastSevenDays(t *testing.T) {
	var captured map[string]interface{}
	store := &fakeStore{}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	if _, err := service.History("s1", loggedInRecord(), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured["startDate"] != "2024-05-08" || captured["endDate"] != "2024-05-15" {
		t.Errorf("unexpected default range %v .. %v", captured["startDate"], captured["endDate"])
	}
}

func TestHistoryServiceErrorClearsResults(t *testing.T) {
	store := &fakeStore{}
	service, notifier := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	orders, err := service.History("s1", loggedInRecord(), "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if orders != nil {
		t.Error("error must yield no stale result list")
	}
	if notification, visible := notifier.Current("s1"); !visible || notification.Type != models.SeverityError {
		t.Errorf("expected error notification, got %+v", notification)
	}
}

func TestDiscardConfirmation(t *testing.T) {
	store := &fakeStore{confirmed: &models.ConfirmedOrder{OrderID: "A1"}}
	service, _ := newTestOrderService(t, store, func(w http.ResponseWriter, r *http.Request) {})

	if err := service.DiscardConfirmation("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.confirmed != nil {
		t.Error("confirmation must be discarded for a new order")
	}
}
