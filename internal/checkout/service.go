package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/bookit-storefront/internal/bookit"
	"github.com/wolfman30/bookit-storefront/internal/draft"
	"github.com/wolfman30/bookit-storefront/internal/pricing"
	"github.com/wolfman30/bookit-storefront/pkg/logging"
)

var checkoutTracer = otel.Tracer("bookit.internal.checkout")

// Visitor-facing acknowledgments.
const (
	MsgTermsNotAccepted = "Please agree to the terms first."
	MsgMissingFields    = "Please fill all required fields."
	MsgInvalidPromo     = "❌ Invalid promo code"
	MsgUnexpected       = "Something went wrong. Please try again."
	msgPromoApplied     = "✅ Promo applied: "
	msgBookingFailed    = "Booking failed: "
)

const defaultLockTTL = 30 * time.Second

// API is the subset of the bookit client used during checkout.
type API interface {
	ValidatePromo(ctx context.Context, code string) (*bookit.PromoValidation, error)
	CreateBooking(ctx context.Context, req bookit.BookingRequest) (*bookit.BookingResponse, error)
}

// Recorder receives checkout outcome metrics.
type Recorder interface {
	ObservePromo(result string)
	ObserveBooking(result string)
}

// Notice is a blocking acknowledgment the visitor must dismiss.
type Notice struct {
	Success bool
	Message string
}

// Outcome is the result of a confirm attempt. At most one of Redirect,
// Notice or Busy is set.
type Outcome struct {
	Redirect string
	Notice   *Notice
	Busy     bool
}

// Service runs promo application and booking submission for one booking form.
type Service struct {
	api     API
	store   SessionStore
	logger  *logging.Logger
	metrics Recorder
	lockTTL time.Duration
}

// NewService constructs a checkout service.
func NewService(api API, store SessionStore, logger *logging.Logger, metrics Recorder) *Service {
	if api == nil {
		panic("checkout: api required")
	}
	if store == nil {
		panic("checkout: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{api: api, store: store, logger: logger, metrics: metrics, lockTTL: defaultLockTTL}
}

// Start opens a fresh session for a booking form view. Discount starts at 0.
func (s *Service) Start(ctx context.Context, experienceID string) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), ExperienceID: experienceID}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resume loads the session a form post refers to. An unknown, expired or
// foreign id starts over with a fresh session.
func (s *Service) Resume(ctx context.Context, id, experienceID string) (*Session, error) {
	if _, err := uuid.Parse(id); err == nil {
		sess, err := s.store.Load(ctx, id)
		switch {
		case err == nil && sess.ExperienceID == experienceID:
			return sess, nil
		case err != nil && !errors.Is(err, ErrSessionNotFound):
			return nil, err
		}
	}
	return s.Start(ctx, experienceID)
}

// ApplyPromo validates code and stores the resulting discount on sess. A
// blank code does nothing. The latest successful application wins. A
// response that arrives after ctx is done is discarded.
func (s *Service) ApplyPromo(ctx context.Context, sess *Session, d draft.Draft, code string) (*Notice, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	ctx, span := checkoutTracer.Start(ctx, "checkout.apply_promo")
	defer span.End()
	span.SetAttributes(attribute.String("bookit.experience_id", d.ExperienceID))

	res, err := s.api.ValidatePromo(ctx, code)
	if err != nil {
		span.RecordError(err)
		s.observePromo("error")
		s.logger.Error("promo validation failed", "experience_id", d.ExperienceID, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.logger.Info("discarding promo response for abandoned view", "session_id", sess.ID)
		return nil, err
	}

	if !res.Valid {
		s.observePromo("invalid")
		return &Notice{Message: MsgInvalidPromo}, nil
	}
	if res.Promo == nil {
		s.observePromo("error")
		s.logger.Error("valid promo response without promo details", "experience_id", d.ExperienceID)
		return nil, nil
	}

	subtotal := pricing.Quote(d.Price, d.Qty, 0).Subtotal
	if discount, ok := pricing.Discount(*res.Promo, subtotal); ok {
		sess.Discount = discount
	} else {
		s.logger.Warn("unknown promo type", "type", res.Promo.Type)
	}
	sess.PromoCode = code
	if err := s.store.Save(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.observePromo("applied")
	return &Notice{Success: true, Message: msgPromoApplied + strings.ToUpper(code)}, nil
}

// Confirm validates the form and submits the booking. Only one submission per
// session is in flight at a time, and a session that already holds a
// confirmed booking redirects to it instead of booking again.
func (s *Service) Confirm(ctx context.Context, sess *Session, d draft.Draft, form Form) (Outcome, error) {
	if err := form.Validate(); err != nil {
		switch {
		case errors.Is(err, ErrTermsNotAccepted):
			return Outcome{Notice: &Notice{Message: MsgTermsNotAccepted}}, nil
		case errors.Is(err, ErrMissingFields):
			return Outcome{Notice: &Notice{Message: MsgMissingFields}}, nil
		default:
			return Outcome{}, err
		}
	}

	ctx, span := checkoutTracer.Start(ctx, "checkout.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("bookit.experience_id", d.ExperienceID),
		attribute.Int("bookit.qty", d.Qty),
	)

	locked, err := s.store.TryLock(ctx, sess.ID, s.lockTTL)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to lock checkout session", "session_id", sess.ID, "error", err)
		return Outcome{Notice: &Notice{Message: MsgUnexpected}}, nil
	}
	if !locked {
		s.observeBooking("busy")
		return Outcome{Busy: true}, nil
	}
	defer func() {
		if err := s.store.Unlock(context.WithoutCancel(ctx), sess.ID); err != nil {
			s.logger.Warn("failed to release checkout lock", "session_id", sess.ID, "error", err)
		}
	}()

	done, err := s.completed(ctx, sess)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to reload checkout session", "session_id", sess.ID, "error", err)
		return Outcome{Notice: &Notice{Message: MsgUnexpected}}, nil
	}
	if done {
		s.observeBooking("duplicate")
		return Outcome{Redirect: ResultPath(true, sess.BookingID)}, nil
	}

	quote := pricing.Quote(d.Price, d.Qty, sess.Discount)
	resp, err := s.api.CreateBooking(ctx, bookit.BookingRequest{
		ExperienceID: d.ExperienceID,
		SlotDate:     d.Date,
		SlotTime:     d.Time,
		Name:         form.Name,
		Email:        form.Email,
		Qty:          d.Qty,
		PricePaid:    quote.Total,
		PromoCode:    form.PromoCode,
	})
	if err != nil {
		span.RecordError(err)
		s.observeBooking("error")
		s.logger.Error("booking submission failed", "experience_id", d.ExperienceID, "error", err)
		return Outcome{Notice: &Notice{Message: MsgUnexpected}}, nil
	}

	if !resp.Success {
		s.observeBooking("rejected")
		s.logger.Info("booking rejected", "experience_id", d.ExperienceID, "message", resp.Message)
		return Outcome{Notice: &Notice{Message: msgBookingFailed + resp.Message}}, nil
	}

	s.observeBooking("confirmed")
	s.logger.Info("booking confirmed", "experience_id", d.ExperienceID, "booking_id", resp.BookingID)
	sess.BookingID = resp.BookingID
	if err := s.store.Save(context.WithoutCancel(ctx), sess); err != nil {
		s.logger.Warn("failed to record confirmed booking", "session_id", sess.ID, "error", err)
	}
	return Outcome{Redirect: ResultPath(true, resp.BookingID)}, nil
}

// Status reports where a session stands after a submission was refused as
// busy: still in flight, already confirmed, or free to submit again. The zero
// Outcome means the form can be shown with confirm enabled.
func (s *Service) Status(ctx context.Context, sess *Session) (Outcome, error) {
	busy, err := s.store.InFlight(ctx, sess.ID)
	if err != nil {
		return Outcome{}, err
	}
	if busy {
		return Outcome{Busy: true}, nil
	}
	done, err := s.completed(ctx, sess)
	if err != nil {
		return Outcome{}, err
	}
	if done {
		return Outcome{Redirect: ResultPath(true, sess.BookingID)}, nil
	}
	return Outcome{}, nil
}

// completed refreshes sess from the store and reports whether its booking
// has already been confirmed.
func (s *Service) completed(ctx context.Context, sess *Session) (bool, error) {
	cur, err := s.store.Load(ctx, sess.ID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	*sess = *cur
	return sess.BookingID != "", nil
}

// ResultPath is the result page URL for a submission.
func ResultPath(success bool, bookingID string) string {
	q := url.Values{}
	if success {
		q.Set("success", "true")
	} else {
		q.Set("success", "false")
	}
	if bookingID != "" {
		q.Set("id", bookingID)
	}
	return "/result?" + q.Encode()
}

func (s *Service) observePromo(result string) {
	if s.metrics != nil {
		s.metrics.ObservePromo(result)
	}
}

func (s *Service) observeBooking(result string) {
	if s.metrics != nil {
		s.metrics.ObserveBooking(result)
	}
}
