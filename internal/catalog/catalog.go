// Package catalog builds the experience list: search filtering and card view models.
package catalog

import (
	"net/url"
	"strings"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
)

// PlaceholderImage is shown on cards whose experience has no images.
const PlaceholderImage = "https://images.pexels.com/photos/163240/bungee-jumping-sport-activity-163240.jpeg?auto=compress&cs=tinysrgb&w=400"

// Card is the presentation model for one experience summary.
type Card struct {
	ID          string
	Title       string
	Category    string
	Description string
	Price       int
	Image       string
	DetailURL   string
}

// Filter keeps experiences whose title or description contains query,
// case-insensitively. An empty query returns exps unchanged.
func Filter(exps []bookit.Experience, query string) []bookit.Experience {
	if query == "" {
		return exps
	}
	needle := strings.ToLower(query)
	out := make([]bookit.Experience, 0, len(exps))
	for _, exp := range exps {
		if strings.Contains(strings.ToLower(exp.Title), needle) ||
			strings.Contains(strings.ToLower(exp.Description), needle) {
			out = append(out, exp)
		}
	}
	return out
}

// CoverImage returns the first image or the placeholder.
func CoverImage(exp bookit.Experience) string {
	if len(exp.Images) > 0 && strings.TrimSpace(exp.Images[0]) != "" {
		return exp.Images[0]
	}
	return PlaceholderImage
}

// DetailPath is the detail route for an experience.
func DetailPath(id string) string {
	return "/experience/" + url.PathEscape(id)
}

// NewCard builds the card for exp.
func NewCard(exp bookit.Experience) Card {
	return Card{
		ID:          exp.ID,
		Title:       exp.Title,
		Category:    exp.Category,
		Description: exp.Description,
		Price:       exp.Price,
		Image:       CoverImage(exp),
		DetailURL:   DetailPath(exp.ID),
	}
}

// Cards builds one card per experience, preserving order.
func Cards(exps []bookit.Experience) []Card {
	cards := make([]Card, 0, len(exps))
	for _, exp := range exps {
		cards = append(cards, NewCard(exp))
	}
	return cards
}

// ListPage is the rendered state of the experience list.
type ListPage struct {
	Query string
	Cards []Card
	// Total is the size of the unfiltered collection.
	Total int
}

// Empty reports whether the filtered result has nothing to show.
func (p ListPage) Empty() bool {
	return len(p.Cards) == 0
}

// BuildListPage filters exps by query and converts the result to cards.
func BuildListPage(exps []bookit.Experience, query string) ListPage {
	return ListPage{
		Query: query,
		Cards: Cards(Filter(exps, query)),
		Total: len(exps),
	}
}
