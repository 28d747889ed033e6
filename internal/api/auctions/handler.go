package auctions

import (
	"net/http"

	"auction-house/internal/api/respond"
	domain "auction-house/internal/domain/auctions"
	"auction-house/internal/domain/catalogue"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auctions *domain.AuctionManager
	pdf      *catalogue.PDFService
}

func NewHandler(auctions *domain.AuctionManager, pdf *catalogue.PDFService) *Handler {
	return &Handler{auctions: auctions, pdf: pdf}
}

// GET /api/auctions?status=&archived_only=
func (h *Handler) List(c *gin.Context) {
	archived, ok := respond.Bool(c, "archived_only")
	if !ok {
		return
	}
	list, err := h.auctions.List(c.Request.Context(), domain.AuctionFilter{
		Status:       domain.AuctionStatus(c.Query("status")),
		ArchivedOnly: archived,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]AuctionResponse, 0, len(list))
	for i := range list {
		out = append(out, toAuctionResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/auctions/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	a, err := h.auctions.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuctionResponse(a))
}

// POST /api/auctions
func (h *Handler) Create(c *gin.Context) {
	var req CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Invalid auction: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		respond.Error(c, err)
		return
	}
	a, err := h.auctions.Create(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAuctionResponse(a))
}

// PUT /api/auctions/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Invalid auction: "+err.Error())
		return
	}
	p, err := req.patch()
	if err != nil {
		respond.Error(c, err)
		return
	}
	a, err := h.auctions.Update(c.Request.Context(), id, p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuctionResponse(a))
}

// DELETE /api/auctions/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := h.auctions.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction deleted"})
}

// PUT /api/auctions/:id/archive
func (h *Handler) Archive(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := h.auctions.Archive(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction archived"})
}

// PUT /api/auctions/:id/unarchive
func (h *Handler) Unarchive(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := h.auctions.Unarchive(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction restored"})
}

// PUT /api/auctions/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	a, err := h.auctions.Complete(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuctionResponse(a))
}

// PUT /api/auctions/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	a, err := h.auctions.Cancel(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toAuctionResponse(a))
}

// POST /api/auctions/:id/generate-pdf
func (h *Handler) GeneratePDF(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	doc, err := h.pdf.Generate(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
