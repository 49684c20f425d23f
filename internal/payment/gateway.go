// Package payment creates hosted checkout sessions and checks whether they
// were paid. Orders are not linked to sessions.
package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no gateway credentials were supplied.
var ErrNotConfigured = errors.New("payment: gateway is not configured")

// CheckoutRequest describes a single-line checkout for a total amount.
type CheckoutRequest struct {
	// AmountCents is the total in the smallest currency unit.
	AmountCents int64
	SuccessURL  string
	CancelURL   string
}

// Session is the gateway-neutral view of a checkout session.
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency,omitempty"`
}

const PaymentStatusPaid = "paid"

func (s *Session) Paid() bool { return s.PaymentStatus == PaymentStatusPaid }

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}
