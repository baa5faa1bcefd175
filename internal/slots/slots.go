// Package slots derives the date/time picker state for one experience from
// its slot collection. Nothing here is stored: every view is recomputed from
// the fetched slots and the visitor's selection.
package slots

import (
	"net/url"
	"strconv"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
)

// AvailableDates returns the distinct slot dates in first-seen order.
func AvailableDates(all []bookit.Slot) []string {
	seen := make(map[string]struct{}, len(all))
	dates := make([]string, 0, len(all))
	for _, s := range all {
		if _, ok := seen[s.Date]; ok {
			continue
		}
		seen[s.Date] = struct{}{}
		dates = append(dates, s.Date)
	}
	return dates
}

// AvailableTimes returns every slot on date, sold-out ones included.
func AvailableTimes(all []bookit.Slot, date string) []bookit.Slot {
	out := make([]bookit.Slot, 0)
	for _, s := range all {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

// Selection is the visitor's current pick on the detail page.
type Selection struct {
	Date string
	Time string
	Qty  int
}

// Initial pre-selects the first slot's date; no time is pre-selected.
func Initial(all []bookit.Slot) Selection {
	sel := Selection{Qty: 1}
	if len(all) > 0 {
		sel.Date = all[0].Date
	}
	return sel
}

// SelectDate picks a date and clears the time. Dates that no slot offers are ignored.
func (s Selection) SelectDate(all []bookit.Slot, date string) Selection {
	for _, d := range AvailableDates(all) {
		if d == date {
			s.Date = date
			s.Time = ""
			return s
		}
	}
	return s
}

// SelectTime picks a time on the selected date. Sold-out or unknown times
// leave the selection unchanged.
func (s Selection) SelectTime(all []bookit.Slot, time string) Selection {
	for _, slot := range AvailableTimes(all, s.Date) {
		if slot.Time == time && !slot.SoldOut() {
			s.Time = time
			return s
		}
	}
	return s
}

// Increment raises the quantity by one. Remaining capacity is not checked.
func (s Selection) Increment() Selection {
	s.Qty++
	return s
}

// Decrement lowers the quantity, never below 1.
func (s Selection) Decrement() Selection {
	if s.Qty > 1 {
		s.Qty--
	} else {
		s.Qty = 1
	}
	return s
}

// CanConfirm reports whether both a date and a time are chosen.
func (s Selection) CanConfirm() bool {
	return s.Date != "" && s.Time != ""
}

// Restore rebuilds a selection from the detail page's query string by
// replaying the same transitions a visitor would make.
func Restore(all []bookit.Slot, q url.Values) Selection {
	sel := Initial(all)
	if d := q.Get("date"); d != "" {
		sel = sel.SelectDate(all, d)
	}
	if t := q.Get("time"); t != "" {
		sel = sel.SelectTime(all, t)
	}
	if n, err := strconv.Atoi(q.Get("qty")); err == nil && n > 0 {
		sel.Qty = n
	}
	return sel
}

// Query encodes the selection for the detail page's links.
func (s Selection) Query() url.Values {
	q := url.Values{}
	if s.Date != "" {
		q.Set("date", s.Date)
	}
	if s.Time != "" {
		q.Set("time", s.Time)
	}
	q.Set("qty", strconv.Itoa(s.Qty))
	return q
}

// URL returns base with the selection as its query string.
func (s Selection) URL(base string) string {
	return base + "?" + s.Query().Encode()
}

// DateOption is one date button.
type DateOption struct {
	Date     string
	Selected bool
	URL      string
}

// TimeOption is one time button.
type TimeOption struct {
	Time      string
	Remaining int
	SoldOut   bool
	Selected  bool
	URL       string
}

// Picker is everything the detail page needs to render the slot controls.
type Picker struct {
	Selection    Selection
	Dates        []DateOption
	Times        []TimeOption
	DecrementURL string
	IncrementURL string
	ConfirmURL   string
}

// BuildPicker derives the controls for sel. base is the detail page path.
func BuildPicker(all []bookit.Slot, sel Selection, base string) Picker {
	p := Picker{Selection: sel}
	for _, d := range AvailableDates(all) {
		p.Dates = append(p.Dates, DateOption{
			Date:     d,
			Selected: d == sel.Date,
			URL:      sel.SelectDate(all, d).URL(base),
		})
	}
	for _, slot := range AvailableTimes(all, sel.Date) {
		opt := TimeOption{
			Time:      slot.Time,
			Remaining: max(slot.Capacity-slot.Booked, 0),
			SoldOut:   slot.SoldOut(),
			Selected:  slot.Time == sel.Time && !slot.SoldOut(),
		}
		if !opt.SoldOut {
			opt.URL = sel.SelectTime(all, slot.Time).URL(base)
		}
		p.Times = append(p.Times, opt)
	}
	p.DecrementURL = sel.Decrement().URL(base)
	p.IncrementURL = sel.Increment().URL(base)
	if sel.CanConfirm() {
		p.ConfirmURL = sel.URL(base + "/confirm")
	}
	return p
}
