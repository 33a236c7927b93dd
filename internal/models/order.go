package models

// OrderItem is the projection of a cart line sent to the order service.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// OrderDraft is assembled per submission attempt and is not persisted
// anywhere until the remote call succeeds.
type OrderDraft struct {
	CustomerName    string     `json:"customerName"`
	CustomerPhone   string     `json:"customerPhone"`
	Items           []CartLine `json:"items"`
	PickupTime      string     `json:"pickupTime"`
	DeliveryAddress string     `json:"deliveryAddress"`
	Notes           string     `json:"notes"`
}

// ConfirmedOrder exists only after the order service acknowledged the
// submission. It is held for the confirmation view and discarded when the
// customer starts a new order.
type ConfirmedOrder struct {
	OrderDraft
	OrderID     string `json:"orderId"`
	TotalAmount int    `json:"totalAmount"`
}

type HistoryStatus string

const (
	HistoryPendingCustomer     HistoryStatus = "pending_customer"
	HistoryPendingStore        HistoryStatus = "pending_store"
	HistoryConfirmed           HistoryStatus = "confirmed"
	HistoryCompleted           HistoryStatus = "completed"
	HistoryCancelledByCustomer HistoryStatus = "cancelled_by_customer"
	HistoryCancelledByStore    HistoryStatus = "cancelled_by_store"
)

var historyStatusLabels = map[HistoryStatus]string{
	HistoryPendingCustomer:     "待顧客確認",
	HistoryPendingStore:        "待店家確認",
	HistoryConfirmed:           "已確認",
	HistoryCompleted:           "已完成",
	HistoryCancelledByCustomer: "顧客取消",
	HistoryCancelledByStore:    "店家取消",
}

// Label returns the display text for a lifecycle status. Unknown statuses
// fall back to the raw value.
func (s HistoryStatus) Label() string {
	if label, ok := historyStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// HistoryOrder is a read-only projection of a past order as returned by the
// order service. The service returns items as a pre-formatted string, not
// structured lines.
type HistoryOrder struct {
	OrderID         string        `json:"orderId"`
	TotalAmount     int           `json:"totalAmount"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CreatedAt       string        `json:"createdAt"`
	PickupTime      string        `json:"pickupTime"`
	Items           string        `json:"items"`
	Status          HistoryStatus `json:"status"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}
