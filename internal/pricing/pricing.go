// Package pricing computes the order summary shown on the detail and booking pages.
package pricing

import (
	"math"
	"strconv"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
)

// Tax is the fixed tax added to every order, regardless of quantity.
const Tax = 59

// Breakdown is the order summary. Total = Subtotal + Taxes - Discount.
type Breakdown struct {
	Subtotal int
	Taxes    int
	Discount int
	Total    int
}

// Quote prices qty units at price with an already-computed discount.
func Quote(price, qty, discount int) Breakdown {
	subtotal := price * qty
	return Breakdown{
		Subtotal: subtotal,
		Taxes:    Tax,
		Discount: discount,
		Total:    subtotal + Tax - discount,
	}
}

// Discount computes the amount a valid promo takes off subtotal. The second
// result is false for promo types the storefront does not understand, in
// which case the caller keeps whatever discount it had.
func Discount(promo bookit.Promo, subtotal int) (int, bool) {
	switch promo.Type {
	case bookit.PromoPercent:
		return roundHalfUp(float64(subtotal) * float64(promo.Value) / 100), true
	case bookit.PromoFlat:
		return promo.Value, true
	default:
		return 0, false
	}
}

// roundHalfUp rounds .5 toward +Inf, the way browsers round prices.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// FormatINR renders an amount in rupees, e.g. "₹1059" or "-₹100".
func FormatINR(amount int) string {
	if amount < 0 {
		return "-₹" + strconv.Itoa(-amount)
	}
	return "₹" + strconv.Itoa(amount)
}
