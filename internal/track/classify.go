package track

import (
	"fmt"
	"log/slog"
	"time"

	"cakewalk/internal/domain"
	"cakewalk/internal/schedule"
)

// State производное состояние доставки заказа на момент оценки
type State string

const (
	StateDelivered  State = "delivered"
	StateOverdue    State = "overdue"
	StateDays       State = "days"
	StateHours      State = "hours"
	StateMinutes    State = "minutes"
	StateImminent   State = "imminent"
	StateProcessing State = "processing" // нет пригодной отметки времени
)

// Urgency уровень срочности для отображения
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyElevated
	UrgencyCritical
)

// Classification результат оценки: не хранится, пересчитывается на каждом тике
type Classification struct {
	State      State   `json:"state"`
	Days       int     `json:"days,omitempty"`
	Hours      int     `json:"hours,omitempty"`
	Minutes    int     `json:"minutes,omitempty"`
	Label      string  `json:"label"`
	ExpectedAt string  `json:"expected_at,omitempty"`
	Urgency    Urgency `json:"urgency"`
}

// Tracker классифицирует заказы относительно текущего времени.
// Часовой пояс нужен для разбора строк старых заказов и границ "сегодня".
type Tracker struct {
	loc *time.Location
}

func NewTracker(loc *time.Location) *Tracker {
	return &Tracker{loc: loc}
}

// Classify чистая функция (заказ, сейчас) -> классификация.
// Порядок проверок фиксирован: Delivered перекрывает всё,
// Overdue проверяется до разбора оставшегося времени.
func (t *Tracker) Classify(o domain.Order, now time.Time) Classification {
	if o.Status == domain.OrderStatusDelivered {
		return Classification{
			State:      StateDelivered,
			Label:      "Delivered",
			ExpectedAt: "Order completed",
			Urgency:    UrgencyLow,
		}
	}

	at, ok := t.deliveryInstant(o)
	if !ok {
		return Classification{
			State:      StateProcessing,
			Label:      "Processing",
			ExpectedAt: o.DeliveryDisplay,
			Urgency:    UrgencyNormal,
		}
	}

	expected := t.expectedLabel(at)
	remaining := at.Sub(now)

	if remaining <= 0 {
		return Classification{
			State:      StateOverdue,
			Label:      "Should have arrived",
			ExpectedAt: "Expected: " + expected,
			Urgency:    UrgencyCritical,
		}
	}

	days := int(remaining / (24 * time.Hour))
	hours := int(remaining % (24 * time.Hour) / time.Hour)
	minutes := int(remaining % time.Hour / time.Minute)

	switch {
	case days > 0:
		return Classification{
			State:      StateDays,
			Days:       days,
			Label:      pluralize(days, "day"),
			ExpectedAt: expected,
			Urgency:    UrgencyLow,
		}
	case hours > 0:
		urgency := UrgencyNormal
		if hours <= 2 {
			urgency = UrgencyElevated
		}
		return Classification{
			State:      StateHours,
			Hours:      hours,
			Minutes:    minutes,
			Label:      hoursLabel(hours, minutes),
			ExpectedAt: expected,
			Urgency:    urgency,
		}
	case minutes > 0:
		return Classification{
			State:      StateMinutes,
			Minutes:    minutes,
			Label:      pluralize(minutes, "m"),
			ExpectedAt: expected,
			Urgency:    UrgencyCritical,
		}
	}

	return Classification{
		State:      StateImminent,
		Label:      "Any moment now",
		ExpectedAt: expected,
		Urgency:    UrgencyCritical,
	}
}

// deliveryInstant канонический момент, либо разбор строк старого заказа.
// Неразборчивые строки гасятся на месте: один битый заказ не должен
// ронять обход всей коллекции.
func (t *Tracker) deliveryInstant(o domain.Order) (time.Time, bool) {
	if o.DeliveryAt != nil {
		return *o.DeliveryAt, true
	}
	if o.DeliveryDate == "" || o.DeliveryTime == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(schedule.DateLayout, o.DeliveryDate, t.loc)
	if err != nil {
		slog.Warn("unparseable delivery date on legacy order", "order", o.Number, "date", o.DeliveryDate)
		return time.Time{}, false
	}
	tm, err := time.ParseInLocation(schedule.TimeLayout, o.DeliveryTime, t.loc)
	if err != nil {
		slog.Warn("unparseable delivery time on legacy order", "order", o.Number, "time", o.DeliveryTime)
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tm.Hour(), tm.Minute(), 0, 0, t.loc), true
}

func (t *Tracker) expectedLabel(at time.Time) string {
	local := at.In(t.loc)
	return local.Format("Mon") + ", " + local.Format("03:04 PM")
}

func pluralize(n int, unit string) string {
	if unit == "m" {
		if n == 1 {
			return "1m left"
		}
		return fmt.Sprintf("%dm left", n)
	}
	if n == 1 {
		return "1 " + unit + " left"
	}
	return fmt.Sprintf("%d %ss left", n, unit)
}

func hoursLabel(hours, minutes int) string {
	if hours == 1 && minutes > 0 {
		return fmt.Sprintf("1h %dm left", minutes)
	}
	if hours == 1 {
		return "1h left"
	}
	return fmt.Sprintf("%dh left", hours)
}
