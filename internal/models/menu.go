package models

type ItemStatus string

const (
	ItemAvailable ItemStatus = "供應中"
	ItemSoldOut   ItemStatus = "售完"
	ItemSeasonal  ItemStatus = "季節限定"
)

type MenuItem struct {
	Name   string     `json:"name"`
	Price  int        `json:"price"`
	Icon   string     `json:"icon"`
	Status ItemStatus `json:"status"`
	Image  string     `json:"image,omitempty"`
}

// DefaultMenu is the built-in catalog served when the remote menu is
// unreachable. The store must stay orderable without the backend.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Name: "滷肉飯", Price: 35, Icon: "🍚", Status: ItemAvailable},
		{Name: "雞肉飯", Price: 40, Icon: "🍗", Status: ItemAvailable},
		{Name: "蚵仔煎", Price: 65, Icon: "🍳", Status: ItemAvailable},
		{Name: "大腸麵線", Price: 50, Icon: "🍜", Status: ItemAvailable},
		{Name: "珍珠奶茶", Price: 45, Icon: "🥤", Status: ItemAvailable},
	}
}
