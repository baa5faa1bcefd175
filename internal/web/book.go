package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/bookit-storefront/internal/checkout"
	"github.com/wolfman30/bookit-storefront/internal/draft"
	"github.com/wolfman30/bookit-storefront/internal/pricing"
)

const (
	actionApplyPromo  = "apply_promo"
	actionConfirm     = "confirm"
	actionCheckStatus = "check_status"
)

type bookPage struct {
	Draft     draft.Draft
	Form      checkout.Form
	Quote     pricing.Breakdown
	SessionID string
	ActionURL string
	Busy      bool
}

// BookForm renders an empty booking form for the draft in the query string.
// Every visit starts a new checkout session with no discount.
func (h *Handler) BookForm(w http.ResponseWriter, r *http.Request) {
	d := draft.Parse(chi.URLParam(r, "id"), r.URL.Query())
	sess, err := h.checkout.Start(r.Context(), d.ExperienceID)
	if err != nil {
		h.checkoutUnavailable(w, r, err)
		return
	}
	h.renderBook(w, r, nil, bookPage{
		Draft:     d,
		Quote:     pricing.Quote(d.Price, d.Qty, sess.Discount),
		SessionID: sess.ID,
		ActionURL: r.URL.RequestURI(),
	})
}

// BookSubmit handles the promo Apply button, the Pay and Confirm button and
// the status check offered while a submission is in flight. The posted fields
// are echoed back so nothing is lost on failure.
func (h *Handler) BookSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	d := draft.Parse(chi.URLParam(r, "id"), r.URL.Query())
	form := checkout.FormFromValues(r.PostFormValue)

	sess, err := h.checkout.Resume(ctx, r.PostFormValue("checkout_id"), d.ExperienceID)
	if err != nil {
		h.checkoutUnavailable(w, r, err)
		return
	}

	page := bookPage{
		Draft:     d,
		Form:      form,
		SessionID: sess.ID,
		ActionURL: r.URL.RequestURI(),
	}

	var notice *checkout.Notice
	switch r.PostFormValue("action") {
	case actionApplyPromo:
		notice, err = h.checkout.ApplyPromo(ctx, sess, d, form.PromoCode)
		if err != nil && abandoned(r) {
			return
		}
	case actionConfirm:
		out, err := h.checkout.Confirm(ctx, sess, d, form)
		if err != nil {
			h.logFor(r).Error("booking confirm failed", "experience_id", d.ExperienceID, "error", err)
			notice = &checkout.Notice{Message: checkout.MsgUnexpected}
			break
		}
		if out.Redirect != "" {
			http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
			return
		}
		notice = out.Notice
		page.Busy = out.Busy
	case actionCheckStatus:
		out, err := h.checkout.Status(ctx, sess)
		if err != nil {
			h.logFor(r).Error("checkout status failed", "session_id", sess.ID, "error", err)
			notice = &checkout.Notice{Message: checkout.MsgUnexpected}
			break
		}
		if out.Redirect != "" {
			http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
			return
		}
		page.Busy = out.Busy
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	page.Quote = pricing.Quote(d.Price, d.Qty, sess.Discount)
	h.renderBook(w, r, notice, page)
}

func (h *Handler) renderBook(w http.ResponseWriter, r *http.Request, notice *checkout.Notice, page bookPage) {
	h.render(w, r, http.StatusOK, "book", view{
		Title:  "Checkout",
		Notice: notice,
		Data:   page,
	})
}

func (h *Handler) checkoutUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.logFor(r).Error("checkout session unavailable", "error", err)
	h.renderError(w, r, http.StatusServiceUnavailable, errorPage{
		Heading:  "Oops! Something went wrong",
		Message:  checkout.MsgUnexpected,
		RetryURL: r.URL.RequestURI(),
	})
}
