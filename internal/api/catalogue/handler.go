package catalogue

import (
	"net/http"
	"strings"
	"time"

	"auction-house/internal/api/lots"
	"auction-house/internal/api/respond"
	"auction-house/internal/domain/catalogue"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalogue *catalogue.Service
}

func NewHandler(svc *catalogue.Service) *Handler {
	return &Handler{catalogue: svc}
}

// GET /api/catalogue/search?q=&location=&auction_type=&category=&auction_date=
func (h *Handler) Search(c *gin.Context) {
	p := catalogue.SearchParams{
		Query:       c.Query("q"),
		Location:    c.Query("location"),
		AuctionType: c.Query("auction_type"),
		Category:    c.Query("category"),
	}
	if raw := strings.TrimSpace(c.Query("auction_date")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, "auction_date must be a date like 2025-06-30")
			return
		}
		p.AuctionDate = &day
	}

	found, err := h.catalogue.Search(c.Request.Context(), p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, lots.ToLotResponses(found))
}

// GET /api/categories
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.catalogue.Categories(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, cats)
}
