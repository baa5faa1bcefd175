package bookit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

const (
	defaultBaseURL        = "http://localhost:5000"
	defaultListingBaseURL = "https://bookit-experiences-slots.onrender.com"
	defaultTimeout        = 15 * time.Second
	maxErrorBody          = 300
)

var tracer = otel.Tracer("bookit.internal.bookit")

// Observer receives one observation per API call.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, seconds float64)
}

// Client wraps the REST calls the storefront makes. It never retries.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	listingBaseURL string
	logger         *logging.Logger
	observer       Observer
}

// Option customises a Client.
type Option func(*Client)

// WithListingBaseURL points the experience listing at a different host.
func WithListingBaseURL(u string) Option {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.listingBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient constructs an API client. An empty baseURL falls back to the
// local development API; the listing falls back to the hosted catalog.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		listingBaseURL: defaultListingBaseURL,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListExperiences returns the full experience collection.
func (c *Client) ListExperiences(ctx context.Context) ([]Experience, error) {
	var out []Experience
	if err := c.doJSON(ctx, "list_experiences", c.listingBaseURL, http.MethodGet, "/api/experiences", nil, &out); err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	return out, nil
}

// GetExperience returns one experience with its slots. A successful response
// without a usable experience yields ErrNoData.
func (c *Client) GetExperience(ctx context.Context, id string) (*Experience, error) {
	path := "/api/experiences/" + url.PathEscape(id)
	var out *Experience
	if err := c.doJSON(ctx, "get_experience", c.baseURL, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get experience: %w", err)
	}
	if out == nil || strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("get experience %s: %w", id, ErrNoData)
	}
	return out, nil
}

// ValidatePromo asks the API whether code is a valid promo. A rejection that
// arrives with a non-2xx status but a JSON body is returned as Valid=false.
func (c *Client) ValidatePromo(ctx context.Context, code string) (*PromoValidation, error) {
	var out PromoValidation
	err := c.doJSON(ctx, "validate_promo", c.baseURL, http.MethodPost, "/api/promo/validate", map[string]string{"code": code}, &out)
	if err != nil {
		if decodeRejection(err, &out) {
			out.Valid = false
			return &out, nil
		}
		return nil, fmt.Errorf("validate promo: %w", err)
	}
	return &out, nil
}

// CreateBooking submits a booking. Business rejections come back as
// Success=false with the server's message on any non-2xx status. A 5xx only
// counts as a rejection when its body carries a message.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	var out BookingResponse
	err := c.doJSON(ctx, "create_booking", c.baseURL, http.MethodPost, "/api/bookings", req, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && decodeRejection(err, &out) &&
			(apiErr.Status < 500 || strings.TrimSpace(out.Message) != "") {
			out.Success = false
			return &out, nil
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &out, nil
}

// GetBooking reads a booking record back by id.
func (c *Client) GetBooking(ctx context.Context, id string) (*Booking, error) {
	path := "/api/bookings/" + url.PathEscape(id)
	var out *Booking
	if err := c.doJSON(ctx, "get_booking", c.baseURL, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("get booking %s: %w", id, ErrNoData)
	}
	return out, nil
}

func decodeRejection(err error, out any) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.raw) == 0 {
		return false
	}
	return json.Unmarshal(apiErr.raw, out) == nil
}

func (c *Client) doJSON(ctx context.Context, endpoint, baseURL, method, path string, body any, out any) (err error) {
	ctx, span := tracer.Start(ctx, "bookit."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("bookit.path", path),
	)

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		if c.observer != nil {
			c.observer.ObserveUpstream(endpoint, outcome, time.Since(start).Seconds())
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			outcome = "encode_error"
			return fmt.Errorf("marshal request: %w", mErr)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bodyReader)
	if err != nil {
		outcome = "encode_error"
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		if ctx.Err() != nil {
			outcome = "cancelled"
		}
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "http_error"
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		c.logger.Warn("bookit API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return &APIError{Status: resp.StatusCode, Body: msg, raw: respBody}
	}

	if len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
