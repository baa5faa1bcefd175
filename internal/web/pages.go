package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
	"github.com/wolfman30/bookit-storefront/internal/catalog"
	"github.com/wolfman30/bookit-storefront/internal/draft"
	"github.com/wolfman30/bookit-storefront/internal/pricing"
	"github.com/wolfman30/bookit-storefront/internal/slots"
)

// List renders the experience list filtered by the q parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	exps, err := h.api.ListExperiences(r.Context())
	if err != nil {
		if abandoned(r) {
			return
		}
		h.logFor(r).Error("failed to fetch experiences", "error", err)
		h.renderError(w, r, http.StatusBadGateway, errorPage{
			Heading:  "Oops! Something went wrong",
			Message:  "Failed to fetch experiences",
			RetryURL: r.URL.RequestURI(),
		})
		return
	}
	h.render(w, r, http.StatusOK, "list", view{
		Title: "Experiences",
		Query: query,
		Data:  catalog.BuildListPage(exps, query),
	})
}

type detailPage struct {
	Experience bookit.Experience
	Picker     slots.Picker
	Quote      pricing.Breakdown
}

// Detail renders one experience with its slot picker. The picker state lives
// in the date, time and qty query parameters.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.fetchExperience(w, r)
	if !ok {
		return
	}
	sel := slots.Restore(exp.Slots, r.URL.Query())
	h.render(w, r, http.StatusOK, "detail", view{
		Title: exp.Title,
		Data: detailPage{
			Experience: *exp,
			Picker:     slots.BuildPicker(exp.Slots, sel, catalog.DetailPath(exp.ID)),
			Quote:      pricing.Quote(exp.Price, sel.Qty, 0),
		},
	})
}

// Confirm turns a complete selection into a booking draft. An incomplete
// selection goes back to the detail page unchanged.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.fetchExperience(w, r)
	if !ok {
		return
	}
	sel := slots.Restore(exp.Slots, r.URL.Query())
	if !sel.CanConfirm() {
		http.Redirect(w, r, sel.URL(catalog.DetailPath(exp.ID)), http.StatusSeeOther)
		return
	}
	d := draft.Draft{
		ExperienceID: exp.ID,
		Title:        exp.Title,
		Date:         sel.Date,
		Time:         sel.Time,
		Price:        exp.Price,
		Qty:          sel.Qty,
	}
	http.Redirect(w, r, d.Path(), http.StatusSeeOther)
}

func (h *Handler) fetchExperience(w http.ResponseWriter, r *http.Request) (*bookit.Experience, bool) {
	id := chi.URLParam(r, "id")
	exp, err := h.api.GetExperience(r.Context(), id)
	switch {
	case errors.Is(err, bookit.ErrNoData):
		h.renderError(w, r, http.StatusNotFound, errorPage{Heading: "No data found"})
		return nil, false
	case err != nil:
		if abandoned(r) {
			return nil, false
		}
		h.logFor(r).Error("failed to fetch experience", "experience_id", id, "error", err)
		h.renderError(w, r, http.StatusBadGateway, errorPage{
			Heading: "Failed to fetch experience details",
		})
		return nil, false
	}
	if exp.ID == "" {
		exp.ID = id
	}
	return exp, true
}

type resultPage struct {
	Success bool
	Booking *bookit.Booking
}

// Result shows the outcome of a booking. Only success=true with an id
// triggers a lookup; a failed lookup keeps the placeholder.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := resultPage{Success: q.Get("success") == "true"}
	if id := q.Get("id"); page.Success && id != "" {
		booking, err := h.api.GetBooking(r.Context(), id)
		switch {
		case err != nil && abandoned(r):
			return
		case bookit.IsNotFound(err):
			h.logFor(r).Info("booking not found", "booking_id", id)
		case err != nil:
			h.logFor(r).Warn("failed to fetch booking", "booking_id", id, "error", err)
		default:
			page.Booking = booking
		}
	}
	title := "Booking Failed"
	if page.Success {
		title = "Booking Confirmed"
	}
	h.render(w, r, http.StatusOK, "result", view{Title: title, Data: page})
}
