package billing

import (
	"net/http"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	billing *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{billing: svc}
}

// GET /api/settlements?status=
func (h *Handler) List(c *gin.Context) {
	list, err := h.billing.List(c.Request.Context(), billing.SettlementStatus(c.Query("status")))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/settlements/:id/checkout
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	who, ok := clients.PrincipalFrom(c.Request.Context())
	if !ok {
		respond.Fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	url, err := h.billing.StartCheckout(c.Request.Context(), id, who)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
