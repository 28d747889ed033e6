package stripewebhooks

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxPayload = 65536

type Handler struct {
	billing *billing.Service
	secret  string
}

func NewHandler(svc *billing.Service, endpointSecret string) *Handler {
	return &Handler{billing: svc, secret: endpointSecret}
}

// POST /api/webhooks/stripe
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.secret == "" {
		respond.Fail(c, http.StatusInternalServerError, "STRIPE_WEBHOOK_SECRET not configured")
		return
	}

	payload, err := readStripeBody(c, maxPayload)
	if err != nil {
		respond.Fail(c, http.StatusServiceUnavailable, "Error reading request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		slog.Warn("stripe signature verification failed", "err", err)
		respond.Fail(c, http.StatusBadRequest, "Signature verification failed")
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			respond.Fail(c, http.StatusBadRequest, "Failed to parse session")
			return
		}
		if err := h.handleCheckoutSessionCompleted(c, &session); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "received"})

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
