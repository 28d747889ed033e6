package clients

import (
	"net/http"

	"auction-house/internal/api/lots"
	"auction-house/internal/api/respond"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	clients *clients.Service
	lots    *auctions.LotManager
}

func NewHandler(c *clients.Service, l *auctions.LotManager) *Handler {
	return &Handler{clients: c, lots: l}
}

// GET /api/clients/:id/lots
// Lots consigned by the client, archived ones included.
func (h *Handler) Lots(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.clients.Get(ctx, id); err != nil {
		respond.Error(c, err)
		return
	}

	active, err := h.lots.List(ctx, auctions.LotFilter{SellerID: &id})
	if err != nil {
		respond.Error(c, err)
		return
	}
	archived, err := h.lots.List(ctx, auctions.LotFilter{SellerID: &id, ArchivedOnly: true})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lots.ToLotResponses(append(active, archived...)))
}
