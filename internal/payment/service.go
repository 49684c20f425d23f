package payment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/config"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
)

const (
	opCreate   = "create_session"
	opRetrieve = "retrieve_session"
)

type Service struct {
	gateway     Gateway
	frontendURL string
	metrics     *metrics.Metrics
}

// NewService wires a gateway to the frontend that receives the redirects.
// A nil gateway makes every call fail with ErrNotConfigured.
func NewService(gateway Gateway, frontendURL string, m *metrics.Metrics) *Service {
	frontendURL = strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	if frontendURL == "" {
		frontendURL = config.DefaultFrontendURL
	}
	return &Service{
		gateway:     gateway,
		frontendURL: frontendURL,
		metrics:     m,
	}
}

func (s *Service) CreateCheckoutSession(ctx context.Context, amountCents int64) (*Session, error) {
	if amountCents <= 0 {
		return nil, apperr.InvalidInput("Invalid amount")
	}
	if s.gateway == nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", ErrNotConfigured)
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		AmountCents: amountCents,
		SuccessURL:  s.frontendURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.frontendURL + "/cancel",
	})
	if err != nil {
		s.count(opCreate, "error")
		logging.FromContext(ctx).Error("checkout_session_failed", zap.Int64("amount", amountCents), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	s.count(opCreate, "ok")
	logging.FromContext(ctx).Info("checkout_session_created", zap.String("session_id", sess.ID))
	return sess, nil
}

// Verification reports whether a session was paid; Session is set only when it was.
type Verification struct {
	Paid    bool
	Session *Session
}

func (s *Service) VerifySession(ctx context.Context, id string) (Verification, error) {
	if strings.TrimSpace(id) == "" {
		return Verification{}, apperr.InvalidInput("Session ID is required.")
	}
	if s.gateway == nil {
		return Verification{}, apperr.Wrap(apperr.KindInternal, "", ErrNotConfigured)
	}
	sess, err := s.gateway.RetrieveSession(ctx, id)
	if err != nil {
		s.count(opRetrieve, "error")
		logging.FromContext(ctx).Error("checkout_session_verify_failed", zap.String("session_id", id), zap.Error(err))
		return Verification{}, apperr.Wrap(apperr.KindInternal, "", err)
	}
	if !sess.Paid() {
		s.count(opRetrieve, "unpaid")
		return Verification{}, nil
	}
	s.count(opRetrieve, "paid")
	return Verification{Paid: true, Session: sess}, nil
}

func (s *Service) count(op, outcome string) {
	if s.metrics != nil {
		s.metrics.GatewayRequests.WithLabelValues(op, outcome).Inc()
	}
}
