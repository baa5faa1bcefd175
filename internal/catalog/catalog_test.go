package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
)

func sampleExperiences() []bookit.Experience {
	return []bookit.Experience{
		{ID: "1", Title: "Kayaking", Description: "Paddle the backwaters", Price: 999, Images: []string{"https://img/kayak.jpg"}},
		{ID: "2", Title: "Nandi Hills Sunrise", Description: "Early morning TREK with breakfast", Price: 899},
		{ID: "3", Title: "Coffee Trail", Description: "Plantation walk", Price: 1299, Category: "Food"},
	}
}

func TestFilter(t *testing.T) {
	exps := sampleExperiences()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"1", "2", "3"}},
		{"title match case-insensitive", "KAYAK", []string{"1"}},
		{"description match case-insensitive", "trek", []string{"2"}},
		{"title or description", "trail", []string{"3"}},
		{"matches across several", "a", []string{"1", "2", "3"}},
		{"no results", "scuba", []string{}},
		{"whitespace is significant", " hills", []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(exps, tt.query)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterMatchesExactlySubstringSet(t *testing.T) {
	exps := sampleExperiences()
	for _, q := range []string{"k", "IN", "walk", "x", "Sun"} {
		got := Filter(exps, q)
		var want []bookit.Experience
		for _, e := range exps {
			lq := strings.ToLower(q)
			if strings.Contains(strings.ToLower(e.Title), lq) || strings.Contains(strings.ToLower(e.Description), lq) {
				want = append(want, e)
			}
		}
		assert.Equal(t, len(want), len(got), "query %q", q)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
		}
	}
}

func TestFilterEmptyQueryKeepsCollection(t *testing.T) {
	exps := sampleExperiences()
	got := Filter(exps, "")
	require.Len(t, got, len(exps))
	assert.Equal(t, exps, got)
}

func TestCoverImage(t *testing.T) {
	assert.Equal(t, "https://img/kayak.jpg", CoverImage(bookit.Experience{Images: []string{"https://img/kayak.jpg", "https://img/2.jpg"}}))
	assert.Equal(t, PlaceholderImage, CoverImage(bookit.Experience{}))
	assert.Equal(t, PlaceholderImage, CoverImage(bookit.Experience{Images: []string{""}}))
}

func TestNewCard(t *testing.T) {
	card := NewCard(bookit.Experience{ID: "a b", Title: "Trek", Category: "Outdoor", Price: 500})
	assert.Equal(t, "/experience/a%20b", card.DetailURL)
	assert.Equal(t, PlaceholderImage, card.Image)
	assert.Equal(t, "Outdoor", card.Category)
	assert.Equal(t, 500, card.Price)
}

func TestBuildListPage(t *testing.T) {
	page := BuildListPage(sampleExperiences(), "scuba")
	assert.True(t, page.Empty())
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "scuba", page.Query)

	page = BuildListPage(sampleExperiences(), "")
	assert.False(t, page.Empty())
	assert.Len(t, page.Cards, 3)
	assert.Equal(t, "/experience/1", page.Cards[0].DetailURL)
}
