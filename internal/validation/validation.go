// Package validation holds the order-form business rules and the pickup
// schedule helpers used to pre-populate the form.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"line_order/internal/models"
)

// Taiwanese mobile numbers: exactly 10 digits starting with 09.
var phonePattern = regexp.MustCompile(`^09\d{8}$`)

// Orders need a minimum lead before pickup.
const minPickupLead = 29 * time.Minute

const pickupLayout = "2006-01-02T15:04:05"

// Form carries the customer-supplied fields of an order draft.
type Form struct {
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	PickupDate      string `json:"pickupDate"`
	PickupTime      string `json:"pickupTime"`
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

// Result carries per-field errors plus general errors not tied to one
// input. General errors are surfaced as transient notifications, field
// errors inline next to the input.
type Result struct {
	PhoneError string   `json:"phoneError,omitempty"`
	TimeError  string   `json:"timeError,omitempty"`
	General    []string `json:"general,omitempty"`
	OK         bool     `json:"ok"`
}

// Validate runs every rule; rules are not short-circuited so each field
// gets its own error state on a single pass.
func Validate(form Form, lines []models.CartLine, now time.Time) Result {
	result := Result{OK: true}

	if strings.TrimSpace(form.CustomerName) == "" {
		// The name comes from the LINE profile, so emptiness is an identity
		// problem rather than a user mistake.
		result.General = append(result.General, "無法獲取您的 LINE 用戶名稱")
		result.OK = false
	}

	if !phonePattern.MatchString(form.CustomerPhone) {
		result.PhoneError = "請輸入有效的10位手機號碼 (09開頭)"
		result.OK = false
	}

	if form.PickupDate == "" || form.PickupTime == "" {
		result.TimeError = "請選擇取餐日期和時間"
		result.OK = false
	} else {
		pickup, err := time.ParseInLocation(pickupLayout, FullPickupTime(form.PickupDate, form.PickupTime), now.Location())
		if err != nil {
			result.TimeError = "請選擇取餐日期和時間"
			result.OK = false
		} else if pickup.Before(now.Add(minPickupLead)) {
			result.TimeError = "取餐時間必須在30分鐘之後"
			result.OK = false
		}
	}

	if len(lines) == 0 {
		result.General = append(result.General, "請至少選擇一個餐點")
		result.OK = false
	}

	return result
}

// FullPickupTime combines the selected date and time into the local
// timestamp the order service expects. Empty when either part is missing.
func FullPickupTime(date, clock string) string {
	if date == "" || clock == "" {
		return ""
	}
	return date + "T" + clock + ":00"
}

// DefaultPickup suggests the earliest sensible pickup slot: 30 minutes from
// now with the minutes rounded up to the next half-hour boundary.
func DefaultPickup(now time.Time) (date, clock string) {
	t := now.Add(30 * time.Minute)
	minute := t.Minute()
	rounded := ((minute + 29) / 30) * 30
	t = t.Add(time.Duration(rounded-minute) * time.Minute)
	return now.Format("2006-01-02"), t.Format("15:04")
}

// DateOption is one selectable pickup date.
type DateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var weekdayLabels = [...]string{"週日", "週一", "週二", "週三", "週四", "週五", "週六"}

// DateOptions lists today plus the next six days.
func DateOptions(now time.Time) []DateOption {
	options := make([]DateOption, 0, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i)
		options = append(options, DateOption{
			Value: day.Format("2006-01-02"),
			Label: fmt.Sprintf("%d月%d日 %s", int(day.Month()), day.Day(), weekdayLabels[day.Weekday()]),
		})
	}
	return options
}

// TimeOptions lists every half-hour slot within posted business hours,
// 10:00 through 21:00 inclusive. The minimum-lead rule is enforced
// separately at validation time.
func TimeOptions() []string {
	options := make([]string, 0, 23)
	for hour := 10; hour <= 21; hour++ {
		for minute := 0; minute < 60; minute += 30 {
			if hour == 21 && minute > 0 {
				continue
			}
			options = append(options, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return options
}
