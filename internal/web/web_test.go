package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
	"github.com/wolfman30/bookit-storefront/internal/checkout"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

type fakeUpstream struct {
	mu          sync.Mutex
	experiences []bookit.Experience
	listErr     error
	getErr      error
	bookings    map[string]*bookit.Booking
	bookingErr  error
	bookingHits int
	promos      map[string]*bookit.Promo
	response    *bookit.BookingResponse
	submitted   []bookit.BookingRequest
}

func (f *fakeUpstream) ListExperiences(context.Context) ([]bookit.Experience, error) {
	return f.experiences, f.listErr
}

func (f *fakeUpstream) GetExperience(_ context.Context, id string) (*bookit.Experience, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, exp := range f.experiences {
		if exp.ID == id {
			e := exp
			return &e, nil
		}
	}
	return nil, bookit.ErrNoData
}

func (f *fakeUpstream) GetBooking(_ context.Context, id string) (*bookit.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingHits++
	if f.bookingErr != nil {
		return nil, f.bookingErr
	}
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, &bookit.APIError{Status: http.StatusNotFound}
}

func (f *fakeUpstream) ValidatePromo(_ context.Context, code string) (*bookit.PromoValidation, error) {
	if p, ok := f.promos[code]; ok {
		return &bookit.PromoValidation{Valid: true, Promo: p}, nil
	}
	return &bookit.PromoValidation{}, nil
}

func (f *fakeUpstream) CreateBooking(_ context.Context, req bookit.BookingRequest) (*bookit.BookingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.response == nil {
		return nil, errors.New("no response configured")
	}
	return f.response, nil
}

func kayakUpstream() *fakeUpstream {
	return &fakeUpstream{
		experiences: []bookit.Experience{
			{
				ID:          "exp-1",
				Title:       "Kayaking Trip",
				Description: "Paddle the **backwaters**",
				Price:       1000,
				Images:      []string{"https://img.test/kayak.jpg"},
				Category:    "Water",
				Slots: []bookit.Slot{
					{Date: "2025-08-01", Time: "09:00", Capacity: 10, Booked: 10},
					{Date: "2025-08-01", Time: "11:00", Capacity: 10, Booked: 3},
					{Date: "2025-08-02", Time: "09:00", Capacity: 8, Booked: 0},
				},
			},
			{ID: "exp-2", Title: "Sunrise Trek", Description: "Hike to the ridge", Price: 700},
		},
		bookings: map[string]*bookit.Booking{},
		promos: map[string]*bookit.Promo{
			"SAVE10": {Type: bookit.PromoPercent, Value: 10},
		},
	}
}

func newTestServer(t *testing.T, up *fakeUpstream) http.Handler {
	t.Helper()
	srv, _ := newTestServerWithStore(t, up)
	return srv
}

func newTestServerWithStore(t *testing.T, up *fakeUpstream) (http.Handler, *checkout.MemoryStore) {
	t.Helper()
	store := checkout.NewMemoryStore(time.Minute)
	svc := checkout.NewService(up, store, logging.Default(), nil)
	h, err := NewHandler(up, svc, logging.Default())
	require.NoError(t, err)
	r := chi.NewRouter()
	h.Routes(r)
	return r, store
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(t *testing.T, srv http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func byClass(root *html.Node, class string) []*html.Node {
	return findAll(root, func(n *html.Node) bool { return hasClass(n, class) })
}

func first(t *testing.T, root *html.Node, class string) *html.Node {
	t.Helper()
	nodes := byClass(root, class)
	require.NotEmpty(t, nodes, "no element with class %q", class)
	return nodes[0]
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func inputValue(t *testing.T, root *html.Node, name string) string {
	t.Helper()
	inputs := findAll(root, func(n *html.Node) bool {
		v, _ := attr(n, "name")
		return n.Data == "input" && v == name
	})
	require.NotEmpty(t, inputs, "no input %q", name)
	v, _ := attr(inputs[0], "value")
	return v
}

func dialogText(root *html.Node) string {
	dialogs := findAll(root, func(n *html.Node) bool { return n.Data == "dialog" })
	if len(dialogs) == 0 {
		return ""
	}
	return text(dialogs[0])
}
