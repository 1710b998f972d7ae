package schedule

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncompleteSelection дата или время не выбраны; оформление должно быть заблокировано
var ErrIncompleteSelection = errors.New("delivery date and time must be selected")

// DateLayout формат строковой даты, которой обмениваются календарь и заказ
const DateLayout = "2006-01-02"

// TimeLayout формат строкового времени слота
const TimeLayout = "15:04"

// CalendarDay ячейка месячной сетки календаря
type CalendarDay struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"is_current_month"`
	IsToday        bool   `json:"is_today"`
	IsPast         bool   `json:"is_past"`
}

// Slot получасовой слот доставки
type Slot struct {
	Value    string `json:"value"` // HH:MM
	Label    string `json:"label"` // 12-часовой вид, "9:30 AM"
	Disabled bool   `json:"disabled"`
}

// Config параметры работы пекарни
type Config struct {
	Timezone     string        // например Asia/Kolkata
	OpenHour     int           // час открытия, включительно
	CloseHour    int           // час закрытия; последний слот ровно в этот час
	SlotInterval time.Duration // шаг слотов
	Buffer       time.Duration // время на подготовку заказа
}

// Scheduler вычисляет доступные даты и слоты доставки и собирает
// канонический момент доставки. Чистые функции от входов, без состояния.
type Scheduler struct {
	loc          *time.Location
	openHour     int
	closeHour    int
	slotInterval time.Duration
	buffer       time.Duration
}

func New(cfg Config) (*Scheduler, error) {
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.OpenHour == 0 && cfg.CloseHour == 0 {
		cfg.OpenHour, cfg.CloseHour = 9, 21
	}
	if cfg.OpenHour < 0 || cfg.CloseHour > 23 || cfg.OpenHour >= cfg.CloseHour {
		return nil, fmt.Errorf("invalid working hours %d..%d", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.SlotInterval <= 0 {
		cfg.SlotInterval = 30 * time.Minute
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = time.Hour
	}
	return &Scheduler{
		loc:          loc,
		openHour:     cfg.OpenHour,
		closeHour:    cfg.CloseHour,
		slotInterval: cfg.SlotInterval,
		buffer:       cfg.Buffer,
	}, nil
}

func (s *Scheduler) Location() *time.Location { return s.loc }

// Today строковая дата "сегодня" в часовом поясе пекарни
func (s *Scheduler) Today(ref time.Time) string {
	return ref.In(s.loc).Format(DateLayout)
}

// CalendarDays месячная сетка из 42 ячеек, начиная с воскресенья
// на неделе первого числа. Даты строго по возрастанию.
func (s *Scheduler) CalendarDays(ref time.Time, year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	today := s.Today(ref)

	days := make([]CalendarDay, 0, 42)
	for i := 0; i < 42; i++ {
		cur := start.AddDate(0, 0, i)
		date := cur.Format(DateLayout)
		days = append(days, CalendarDay{
			Date:           date,
			Day:            cur.Day(),
			IsCurrentMonth: cur.Month() == month,
			IsToday:        date == today,
			// сравнение только по дате, не по моменту
			IsPast: date < today,
		})
	}
	return days
}

// TimeSlots слоты для выбранной даты. Для сегодняшней даты слот
// выключен, если его момент не позже ref + буфер подготовки.
// Для будущих дат слоты не выключаются никогда.
func (s *Scheduler) TimeSlots(selectedDate string, ref time.Time) []Slot {
	if selectedDate == "" {
		return []Slot{}
	}

	now := ref.In(s.loc)
	isToday := selectedDate == s.Today(ref)
	cutoff := now.Add(s.buffer)

	day, dayErr := time.ParseInLocation(DateLayout, selectedDate, s.loc)

	slots := make([]Slot, 0)
	step := int(s.slotInterval / time.Minute)
	for hour := s.openHour; hour <= s.closeHour; hour++ {
		for minute := 0; minute < 60; minute += step {
			if hour == s.closeHour && minute > 0 {
				break
			}
			value := fmt.Sprintf("%02d:%02d", hour, minute)

			disabled := false
			if isToday && dayErr == nil {
				slotAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.loc)
				disabled = !slotAt.After(cutoff)
			}

			slots = append(slots, Slot{
				Value:    value,
				Label:    slotLabel(hour, minute),
				Disabled: disabled,
			})
		}
	}
	return slots
}

// ResolveInstant собирает канонический момент доставки из даты и времени
// в часовом поясе пекарни. Пустые поля не подменяются значениями по умолчанию.
func (s *Scheduler) ResolveInstant(date, timeOfDay string) (time.Time, error) {
	if date == "" || timeOfDay == "" {
		return time.Time{}, ErrIncompleteSelection
	}
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t, err := time.ParseInLocation(TimeLayout, timeOfDay, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", timeOfDay, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, s.loc), nil
}

// SlotLabel 12-часовая подпись для значения слота "HH:MM"
func (s *Scheduler) SlotLabel(value string) string {
	t, err := time.ParseInLocation(TimeLayout, value, s.loc)
	if err != nil {
		return value
	}
	return slotLabel(t.Hour(), t.Minute())
}

// FormatDisplayDate человекочитаемая дата, "Friday, 10 January 2025"
func (s *Scheduler) FormatDisplayDate(date string) string {
	if date == "" {
		return ""
	}
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return date
	}
	return d.Format("Monday, 2 January 2006")
}

// FormatDisplay полная подпись выбора даты и времени для чека
func (s *Scheduler) FormatDisplay(date, timeOfDay string) string {
	switch {
	case date == "" && timeOfDay == "":
		return "Select Date & Time"
	case date == "":
		return "Select Date"
	case timeOfDay == "":
		return s.FormatDisplayDate(date) + " - Select Time"
	}
	return s.FormatDisplayDate(date) + " at " + s.SlotLabel(timeOfDay)
}

func slotLabel(hour, minute int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	h := hour
	switch {
	case hour == 0:
		h = 12
	case hour > 12:
		h = hour - 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, ampm)
}
