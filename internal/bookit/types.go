// Package bookit contains the client and wire types for the experiences,
// promo and bookings API that backs the storefront.
package bookit

// Experience is a bookable activity with its slot calendar.
type Experience struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category,omitempty"`
	Slots       []Slot   `json:"slots,omitempty"`
}

// Slot is a bookable (date, time) unit with finite capacity.
type Slot struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
	Booked   int    `json:"booked"`
}

// SoldOut reports whether no seats remain.
func (s Slot) SoldOut() bool {
	return s.Booked >= s.Capacity
}

// Promo types returned by the validation endpoint.
const (
	PromoPercent = "percent"
	PromoFlat    = "flat"
)

// Promo is a server-side discount rule.
type Promo struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// PromoValidation is the response of the promo validation endpoint.
type PromoValidation struct {
	Valid bool   `json:"valid"`
	Promo *Promo `json:"promo,omitempty"`
}

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	ExperienceID string `json:"experienceId"`
	SlotDate     string `json:"slotDate"`
	SlotTime     string `json:"slotTime"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Qty          int    `json:"qty"`
	PricePaid    int    `json:"pricePaid"`
	PromoCode    string `json:"promoCode"`
}

// BookingResponse reports whether the API accepted a booking.
type BookingResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Booking is a confirmed, server-persisted purchase record.
type Booking struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Qty       int    `json:"qty"`
	PricePaid int    `json:"pricePaid"`
	SlotDate  string `json:"slotDate"`
	SlotTime  string `json:"slotTime"`
}
