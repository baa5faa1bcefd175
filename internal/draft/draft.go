// Package draft carries the unconfirmed booking line between the detail page
// and the booking form. The URL query string is its only storage.
package draft

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Draft is the line being purchased. It is not re-validated against live
// slot capacity; the booking API is the authority.
type Draft struct {
	ExperienceID string
	Title        string
	Date         string
	Time         string
	Price        int
	Qty          int
}

// BookPath is the booking form route for an experience.
func BookPath(experienceID string) string {
	return "/book/" + url.PathEscape(experienceID)
}

// Path encodes the draft as a booking form URL:
// /book/{id}?title=..&price=..&date=..&time=..&qty=..
func (d Draft) Path() string {
	var b strings.Builder
	b.WriteString(BookPath(d.ExperienceID))
	b.WriteString("?title=")
	b.WriteString(escapeComponent(d.Title))
	b.WriteString("&price=")
	b.WriteString(strconv.Itoa(d.Price))
	b.WriteString("&date=")
	b.WriteString(escapeComponent(d.Date))
	b.WriteString("&time=")
	b.WriteString(escapeComponent(d.Time))
	b.WriteString("&qty=")
	b.WriteString(strconv.Itoa(d.Qty))
	return b.String()
}

// Parse rebuilds a draft from the booking form's query string. Missing or
// malformed price becomes 0; qty is used only when it is a positive integer,
// otherwise 1.
func Parse(experienceID string, q url.Values) Draft {
	return Draft{
		ExperienceID: experienceID,
		Title:        q.Get("title"),
		Date:         q.Get("date"),
		Time:         q.Get("time"),
		Price:        parsePrice(q.Get("price")),
		Qty:          parseQty(q.Get("qty")),
	}
}

func parsePrice(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

func parseQty(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// escapeComponent percent-encodes s for a query value, spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
