package lots

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/commission"
	"auction-house/internal/domain/triage"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	lots       *auctions.LotManager
	settlement *billing.Service
	commission commission.Policy
	triage     triage.Policy
}

func NewHandler(lots *auctions.LotManager, settlement *billing.Service, c commission.Policy, t triage.Policy) *Handler {
	return &Handler{lots: lots, settlement: settlement, commission: c, triage: t}
}

// GET /api/lots
func (h *Handler) List(c *gin.Context) {
	var f auctions.LotFilter
	var ok bool
	if f.AuctionID, ok = respond.OptionalUint(c, "auction_id"); !ok {
		return
	}
	if f.SellerID, ok = respond.OptionalUint(c, "seller_id"); !ok {
		return
	}
	if f.ArchivedOnly, ok = respond.Bool(c, "archived_only"); !ok {
		return
	}
	f.Status = auctions.LotStatus(c.Query("status"))
	f.Category = c.Query("category")
	f.Artist = c.Query("artist")

	lots, err := h.lots.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToLotResponses(lots))
}

// GET /api/lots/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	l, err := h.lots.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToLotResponse(l))
}

// POST /api/lots
func (h *Handler) Create(c *gin.Context) {
	var req CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Invalid lot: "+err.Error())
		return
	}
	l, err := h.lots.Create(c.Request.Context(), req.input())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToLotResponse(l))
}

// PUT /api/lots/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Invalid lot: "+err.Error())
		return
	}
	l, err := h.lots.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToLotResponse(l))
}

// DELETE /api/lots/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if err := h.lots.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lot deleted"})
}

// PUT /api/lots/:id/archive
func (h *Handler) Archive(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if _, err := h.lots.Archive(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lot archived"})
}

// PUT /api/lots/:id/unarchive
func (h *Handler) Unarchive(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	if _, err := h.lots.Unarchive(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lot restored"})
}

// GET /api/lots/suggest-triage?estimate_low=
// Never fails: an unreadable estimate gets the default channel.
func (h *Handler) SuggestTriage(c *gin.Context) {
	c.JSON(http.StatusOK, h.triage.SuggestRaw(c.Query("estimate_low")))
}

// PUT /api/lots/:id/assign-auction?auction_id=
func (h *Handler) AssignAuction(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	auctionID, ok := respond.OptionalUint(c, "auction_id")
	if !ok {
		return
	}
	if auctionID == nil {
		respond.Fail(c, http.StatusBadRequest, "auction_id is required")
		return
	}
	l, err := h.lots.AssignToAuction(c.Request.Context(), id, *auctionID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToLotResponse(l))
}

// PUT /api/lots/:id/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	w, err := h.lots.Withdraw(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        w.Message,
		"withdrawal_fee": w.WithdrawalFee,
		"lot":            ToLotResponse(w.Lot),
	})
}

// POST /api/lots/:id/complete-sale?hammer_price=&buyer_id=
func (h *Handler) CompleteSale(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	raw := strings.TrimSpace(c.Query("hammer_price"))
	if raw == "" {
		respond.Fail(c, http.StatusBadRequest, "hammer_price is required")
		return
	}
	hammer, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "hammer_price must be a number")
		return
	}
	buyerID, ok := respond.OptionalUint(c, "buyer_id")
	if !ok {
		return
	}

	sale, err := h.lots.CompleteSale(c.Request.Context(), id, hammer, buyerID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SaleResponse{
		Result:       sale.Commission,
		LotID:        sale.Lot.ID,
		Status:       string(sale.Lot.Status),
		MeetsReserve: sale.MeetsReserve,
		SettlementID: sale.Settlement.ID,
	})
}

// GET /api/lots/:id/settlement
func (h *Handler) Settlement(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	st, err := h.settlement.ForLot(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// POST /api/calculate-commission
func (h *Handler) CalculateCommission(c *gin.Context) {
	var req CommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.HammerPrice == nil {
		respond.Fail(c, http.StatusBadRequest, "hammer_price is required")
		return
	}
	res, err := h.commission.Calculate(*req.HammerPrice)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/lots/:id/images (multipart: file, is_primary)
func (h *Handler) UploadImage(c *gin.Context) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxUploadBytes {
		respond.Fail(c, http.StatusRequestEntityTooLarge, "Images must be 10 MB or smaller")
		return
	}
	isPrimary := false
	if v := c.PostForm("is_primary"); v != "" {
		if isPrimary, err = strconv.ParseBool(v); err != nil {
			respond.Fail(c, http.StatusBadRequest, "Invalid is_primary")
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Could not read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Could not read upload")
		return
	}
	if len(data) > maxUploadBytes {
		respond.Fail(c, http.StatusRequestEntityTooLarge, "Images must be 10 MB or smaller")
		return
	}

	img, created, err := h.lots.AddImage(c.Request.Context(), id, auctions.ImageUpload{
		Filename:  fh.Filename,
		Data:      data,
		IsPrimary: isPrimary,
	})
	if errors.Is(err, auctions.ErrNoStore) {
		respond.Fail(c, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}
	if err != nil {
		respond.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, UploadResponse{
		ID:           img.ID,
		URL:          img.ImageURL,
		ThumbnailURL: img.ThumbnailURL,
		IsPrimary:    img.IsPrimary,
		DisplayOrder: img.DisplayOrder,
	})
}

// DELETE /api/lots/images/:image_id
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := respond.ID(c, "image_id")
	if !ok {
		return
	}
	if err := h.lots.DeleteImage(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// PUT /api/lots/images/:image_id/primary
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	id, ok := respond.ID(c, "image_id")
	if !ok {
		return
	}
	if err := h.lots.SetPrimaryImage(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Primary image updated"})
}
