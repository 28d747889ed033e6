package stripewebhooks

import (
	"log/slog"
	"strconv"

	"auction-house/internal/domain/apperr"
	stripeinfra "auction-house/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) error {
	if !stripeinfra.SessionPaid(session) {
		slog.Info("checkout completed without payment", "session", session.ID, "payment_status", session.PaymentStatus)
		return nil
	}

	id, ok := settlementIDFromSession(session)
	if !ok {
		slog.Warn("checkout session has no settlement reference", "session", session.ID)
		return nil
	}

	err := h.billing.MarkPaid(c.Request.Context(), id, session.ID)
	if apperr.IsNotFound(err) {
		// acknowledge so Stripe stops retrying a settlement we no longer hold
		slog.Warn("checkout session for unknown settlement", "session", session.ID, "settlement_id", id)
		return nil
	}
	return err
}

// settlementIDFromSession prefers metadata.settlement_id, then ClientReferenceID.
func settlementIDFromSession(s *stripe.CheckoutSession) (uint, bool) {
	raw := ""
	if s.Metadata != nil {
		raw = s.Metadata["settlement_id"]
	}
	if raw == "" {
		raw = s.ClientReferenceID
	}
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
