package web

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
)

func TestList_RendersCards(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)

	cards := byClass(doc, "card")
	require.Len(t, cards, 2)
	assert.Contains(t, text(cards[0]), "Kayaking Trip")
	assert.Contains(t, text(cards[0]), "₹1000")
	assert.Contains(t, text(cards[0]), "Water")

	links := byClass(cards[0], "view-details")
	require.Len(t, links, 1)
	href, _ := attr(links[0], "href")
	assert.Equal(t, "/experience/exp-1", href)

	imgs := findAll(cards[1], func(n *html.Node) bool { return n.Data == "img" })
	require.Len(t, imgs, 1)
	src, _ := attr(imgs[0], "src")
	assert.Contains(t, src, "images.pexels.com", "missing images fall back to the placeholder")
}

func TestList_FiltersByQuery(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	doc := parse(t, get(t, srv, "/?q=RIDGE"))
	cards := byClass(doc, "card")
	require.Len(t, cards, 1)
	assert.Contains(t, text(cards[0]), "Sunrise Trek")
	assert.Equal(t, "RIDGE", inputValue(t, doc, "q"))
}

func TestList_NoResults(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	doc := parse(t, get(t, srv, "/?q=skydiving"))
	assert.Empty(t, byClass(doc, "card"))
	assert.Contains(t, text(first(t, doc, "empty")), "No experiences found")
}

func TestList_FetchFailure(t *testing.T) {
	up := kayakUpstream()
	up.listErr = errors.New("upstream down")
	srv := newTestServer(t, up)

	rec := get(t, srv, "/?q=kayak")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	doc := parse(t, rec)
	assert.Contains(t, text(first(t, doc, "page-error")), "Failed to fetch experiences")
	href, _ := attr(first(t, doc, "retry"), "href")
	assert.Equal(t, "/?q=kayak", href)
}

func TestDetail_SoldOutSlotCannotBeSelected(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	rec := get(t, srv, "/experience/exp-1")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)

	dates := byClass(first(t, doc, "dates"), "chip")
	require.Len(t, dates, 2)
	assert.True(t, hasClass(dates[0], "selected"), "first date is pre-selected")

	times := byClass(first(t, doc, "times"), "chip")
	require.Len(t, times, 2)
	_, disabled := attr(times[0], "disabled")
	assert.True(t, disabled)
	assert.Contains(t, text(times[0]), "Sold out")

	confirm := first(t, doc, "confirm")
	assert.Equal(t, "button", confirm.Data)
	_, disabled = attr(confirm, "disabled")
	assert.True(t, disabled, "confirm disabled without a time")

	doc = parse(t, get(t, srv, "/experience/exp-1?date=2025-08-01&time=09:00&qty=1"))
	assert.Equal(t, "button", first(t, doc, "confirm").Data, "sold-out time is ignored")

	rec = get(t, srv, "/experience/exp-1/confirm?date=2025-08-01&time=09:00&qty=1")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/experience/exp-1?date=2025-08-01&qty=1", rec.Header().Get("Location"))
}

func TestDetail_SelectionAndPricing(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	doc := parse(t, get(t, srv, "/experience/exp-1?date=2025-08-01&time=11:00&qty=2"))
	assert.Equal(t, "₹2000", text(first(t, doc, "subtotal")))
	assert.Equal(t, "₹59", text(first(t, doc, "taxes")))
	assert.Equal(t, "₹2059", text(first(t, doc, "total")))
	assert.Equal(t, "2", text(first(t, doc, "qty")))
	strong := findAll(first(t, doc, "description"), func(n *html.Node) bool { return n.Data == "strong" })
	require.Len(t, strong, 1, "description is rendered as markdown")
	assert.Equal(t, "backwaters", text(strong[0]))

	confirm := first(t, doc, "confirm")
	require.Equal(t, "a", confirm.Data)
	href, _ := attr(confirm, "href")
	assert.Equal(t, "/experience/exp-1/confirm?date=2025-08-01&qty=2&time=11%3A00", href)

	dec, _ := attr(first(t, doc, "qty-dec"), "href")
	assert.Contains(t, dec, "qty=1")
	inc, _ := attr(first(t, doc, "qty-inc"), "href")
	assert.Contains(t, inc, "qty=3")
}

func TestDetail_ConfirmRedirectsToDraft(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	rec := get(t, srv, "/experience/exp-1/confirm?date=2025-08-01&time=11:00&qty=2")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t,
		"/book/exp-1?title=Kayaking%20Trip&price=1000&date=2025-08-01&time=11%3A00&qty=2",
		rec.Header().Get("Location"),
	)
}

func TestDetail_NoData(t *testing.T) {
	srv := newTestServer(t, kayakUpstream())

	rec := get(t, srv, "/experience/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := parse(t, rec)
	assert.Contains(t, text(first(t, doc, "page-error")), "No data found")
	assert.Empty(t, byClass(doc, "retry"))
}

func TestDetail_FetchFailure(t *testing.T) {
	up := kayakUpstream()
	up.getErr = errors.New("timeout")
	srv := newTestServer(t, up)

	rec := get(t, srv, "/experience/exp-1")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, text(first(t, parse(t, rec), "page-error")), "Failed to fetch experience details")
}

func TestResult_ShowsBooking(t *testing.T) {
	up := kayakUpstream()
	up.bookings["bk-1"] = &bookit.Booking{ID: "bk-1", Name: "Asha", Email: "asha@example.com", Qty: 2, PricePaid: 1859, SlotDate: "2025-08-01", SlotTime: "11:00"}
	srv := newTestServer(t, up)

	doc := parse(t, get(t, srv, "/result?success=true&id=bk-1"))
	assert.Contains(t, text(first(t, doc, "result")), "Booking Confirmed")
	body := text(first(t, doc, "booking"))
	for _, want := range []string{"Name: Asha", "Email: asha@example.com", "Date: 2025-08-01", "Time: 11:00", "Quantity: 2", "Paid: ₹1859"} {
		assert.Contains(t, body, want)
	}
}

func TestResult_FetchFailureKeepsPlaceholder(t *testing.T) {
	up := kayakUpstream()
	up.bookingErr = errors.New("boom")
	srv := newTestServer(t, up)

	rec := get(t, srv, "/result?success=true&id=bk-9")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parse(t, rec)
	assert.Contains(t, text(first(t, doc, "placeholder")), "Fetching your booking details...")
	assert.Empty(t, byClass(doc, "booking"))
}

func TestResult_SuccessWithoutIDSkipsFetch(t *testing.T) {
	up := kayakUpstream()
	srv := newTestServer(t, up)

	doc := parse(t, get(t, srv, "/result?success=true"))
	assert.NotEmpty(t, byClass(doc, "placeholder"))
	assert.Zero(t, up.bookingHits)
}

func TestResult_FailureView(t *testing.T) {
	up := kayakUpstream()
	srv := newTestServer(t, up)

	for _, target := range []string{"/result?success=false&id=xyz", "/result?success=TRUE&id=xyz", "/result"} {
		doc := parse(t, get(t, srv, target))
		result := text(first(t, doc, "result"))
		assert.Contains(t, result, "Booking Failed", target)
		assert.Contains(t, result, "Try Again", target)
	}
	assert.Zero(t, up.bookingHits, "failure view never fetches")
}

func TestDetail_SingleSoldOutSlot(t *testing.T) {
	up := kayakUpstream()
	up.experiences = append(up.experiences, bookit.Experience{
		ID:    "exp-3",
		Title: "Cave Tour",
		Price: 500,
		Slots: []bookit.Slot{{Date: "2024-06-01", Time: "10:00", Capacity: 2, Booked: 2}},
	})
	srv := newTestServer(t, up)

	doc := parse(t, get(t, srv, "/experience/exp-3?time=10:00"))
	times := byClass(first(t, doc, "times"), "chip")
	require.Len(t, times, 1)
	_, disabled := attr(times[0], "disabled")
	assert.True(t, disabled)
	assert.Empty(t, byClass(times[0], "selected"))
	assert.Equal(t, "button", first(t, doc, "confirm").Data, "no time selected")
}
