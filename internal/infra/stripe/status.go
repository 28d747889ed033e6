package stripe

import (
	"strings"

	stripeapi "github.com/stripe/stripe-go/v75"
)

// SessionPaid reports whether a completed checkout session actually moved
// money. Delayed payment methods complete the session before payment.
func SessionPaid(s *stripeapi.CheckoutSession) bool {
	if s == nil {
		return false
	}
	switch strings.TrimSpace(string(s.PaymentStatus)) {
	case string(stripeapi.CheckoutSessionPaymentStatusPaid),
		string(stripeapi.CheckoutSessionPaymentStatusNoPaymentRequired):
		return true
	default:
		return false
	}
}
