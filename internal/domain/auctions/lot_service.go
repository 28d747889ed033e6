package auctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"
	"auction-house/internal/domain/commission"
	"auction-house/internal/domain/triage"
	"auction-house/internal/infra/events"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultCategory = "Fine Art"

type LotInput struct {
	LotReference     string
	Artist           string
	Title            string
	Category         string
	Subject          string
	Dimensions       string
	FramingDetails   string
	YearOfProduction *int
	Description      string
	CommissionBids   bool
	EstimateLow      float64
	EstimateHigh     float64
	ReservePrice     float64
	TriageStatus     triage.Channel
	SellerID         *uint
}

// LotPatch is a partial update. Status and AuctionID are compared with the
// stored values and rejected when they differ: those move only through the
// lifecycle operations.
type LotPatch struct {
	LotReference     *string
	Artist           *string
	Title            *string
	Category         *string
	Subject          *string
	Dimensions       *string
	FramingDetails   *string
	YearOfProduction *int
	Description      *string
	CommissionBids   *bool
	EstimateLow      *float64
	EstimateHigh     *float64
	ReservePrice     *float64
	TriageStatus     *triage.Channel
	SellerID         *uint
	Status           *LotStatus
	AuctionID        *uint
}

type LotFilter struct {
	AuctionID    *uint
	Status       LotStatus
	Artist       string
	Category     string
	SellerID     *uint
	ArchivedOnly bool
}

// Sale is the outcome of CompleteSale.
type Sale struct {
	Lot          *Lot                `json:"lot"`
	Commission   commission.Result   `json:"commission"`
	MeetsReserve bool                `json:"meets_reserve"`
	Settlement   *billing.Settlement `json:"settlement"`
}

type Withdrawal struct {
	Lot           *Lot    `json:"lot"`
	WithdrawalFee float64 `json:"withdrawal_fee"`
	Message       string  `json:"message"`
}

type LotManager struct {
	db   *gorm.DB
	opts Options
}

func NewLotManager(db *gorm.DB, opts Options) *LotManager {
	return &LotManager{db: db, opts: opts.withDefaults()}
}

func (m *LotManager) Create(ctx context.Context, in LotInput) (*Lot, error) {
	l := Lot{
		LotReference:     strings.TrimSpace(in.LotReference),
		Artist:           strings.TrimSpace(in.Artist),
		Title:            strings.TrimSpace(in.Title),
		Category:         strings.TrimSpace(in.Category),
		Subject:          in.Subject,
		Dimensions:       in.Dimensions,
		FramingDetails:   in.FramingDetails,
		YearOfProduction: in.YearOfProduction,
		Description:      in.Description,
		CommissionBids:   in.CommissionBids,
		EstimateLow:      in.EstimateLow,
		EstimateHigh:     in.EstimateHigh,
		ReservePrice:     in.ReservePrice,
		TriageStatus:     in.TriageStatus,
		SellerID:         in.SellerID,
		Status:           Pending,
	}
	if l.Category == "" {
		l.Category = DefaultCategory
	}
	if err := m.validate(&l); err != nil {
		return nil, err
	}
	if l.TriageStatus == "" {
		l.TriageStatus = m.opts.Triage.Suggest(l.EstimateLow).Triage
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := referenceFree(tx, l.LotReference, 0); err != nil {
			return err
		}
		if err := clientExists(tx, l.SellerID, "seller_id"); err != nil {
			return err
		}
		return tx.Create(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, l.ID)
}

func (m *LotManager) validate(l *Lot) error {
	if !ValidLotReference(l.LotReference) {
		return apperr.Validation("lot_reference must be exactly 8 digits")
	}
	if l.Artist == "" {
		return apperr.Validation("artist is required")
	}
	if l.Title == "" {
		return apperr.Validation("title is required")
	}
	if !finite(l.EstimateLow, l.EstimateHigh, l.ReservePrice) {
		return apperr.Validation("estimates and reserve must be numbers")
	}
	if l.EstimateLow <= 0 {
		return apperr.Validation("estimate_low must be greater than zero")
	}
	if l.EstimateHigh < l.EstimateLow {
		return apperr.Validation("estimate_high must be greater than or equal to estimate_low")
	}
	if l.ReservePrice < 0 {
		return apperr.Validation("reserve_price cannot be negative")
	}
	if l.TriageStatus != "" && !l.TriageStatus.Valid() {
		return apperr.Validation("triage_status must be Physical or Online")
	}
	if y := l.YearOfProduction; y != nil && (*y < 1 || *y > m.opts.Clock().Year()) {
		return apperr.Validation("year_of_production %d is not a valid year", *y)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func referenceFree(tx *gorm.DB, ref string, except uint) error {
	var n int64
	q := tx.Model(&Lot{}).Where("lot_reference = ?", ref)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check lot reference: %w", err)
	}
	if n > 0 {
		return apperr.Conflict("Lot reference %s is already in use", ref)
	}
	return nil
}

func clientExists(tx *gorm.DB, id *uint, field string) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&clients.Client{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}
	if n == 0 {
		return apperr.Validation("%s %d does not match a client", field, *id)
	}
	return nil
}

func (m *LotManager) Get(ctx context.Context, id uint) (*Lot, error) {
	var l Lot
	err := WithLotRelations(m.db.WithContext(ctx)).First(&l, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Lot not found", "load lot %d", id)
	}
	return &l, nil
}

func (m *LotManager) List(ctx context.Context, f LotFilter) ([]Lot, error) {
	archived := f.ArchivedOnly
	q := WithLotRelations(m.db.WithContext(ctx)).Model(&Lot{})

	switch {
	case f.Status == Archived:
		archived = true
	case f.Status != "":
		if !f.Status.Valid() {
			return nil, apperr.Validation("unknown lot status %q", f.Status)
		}
		q = q.Where("lots.status = ?", f.Status)
	}
	q = q.Where("lots.is_archived = ?", archived)

	if f.AuctionID != nil {
		q = q.Where("lots.auction_id = ?", *f.AuctionID)
	}
	if f.SellerID != nil {
		q = q.Where("lots.seller_id = ?", *f.SellerID)
	}
	if s := strings.TrimSpace(f.Artist); s != "" {
		q = q.Where("LOWER(lots.artist) LIKE ? ESCAPE '\\'", ContainsPattern(s))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("lots.category = ?", c)
	}

	var out []Lot
	if err := q.Order("lots.created_at DESC").Order("lots.id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return out, nil
}

func (m *LotManager) Update(ctx context.Context, id uint, p LotPatch) (*Lot, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Lot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, id).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", id)
		}
		if p.Status != nil && *p.Status != l.Status {
			return apperr.Validation("status cannot be edited directly; use assign, complete-sale or withdraw")
		}
		if p.AuctionID != nil && (l.AuctionID == nil || *l.AuctionID != *p.AuctionID) {
			return apperr.Validation("auction cannot be edited directly; use assign-auction")
		}

		applyLotPatch(&l, p)
		if err := m.validate(&l); err != nil {
			return err
		}
		if p.LotReference != nil {
			if err := referenceFree(tx, l.LotReference, l.ID); err != nil {
				return err
			}
		}
		if p.SellerID != nil {
			if err := clientExists(tx, l.SellerID, "seller_id"); err != nil {
				return err
			}
		}

		return tx.Model(&Lot{}).Where("id = ?", id).Updates(map[string]interface{}{
			"lot_reference":      l.LotReference,
			"artist":             l.Artist,
			"title":              l.Title,
			"category":           l.Category,
			"subject":            l.Subject,
			"dimensions":         l.Dimensions,
			"framing_details":    l.FramingDetails,
			"year_of_production": l.YearOfProduction,
			"description":        l.Description,
			"commission_bids":    l.CommissionBids,
			"estimate_low":       l.EstimateLow,
			"estimate_high":      l.EstimateHigh,
			"reserve_price":      l.ReservePrice,
			"triage_status":      l.TriageStatus,
			"seller_id":          l.SellerID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

func applyLotPatch(l *Lot, p LotPatch) {
	if p.LotReference != nil {
		l.LotReference = strings.TrimSpace(*p.LotReference)
	}
	if p.Artist != nil {
		l.Artist = strings.TrimSpace(*p.Artist)
	}
	if p.Title != nil {
		l.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		l.Category = strings.TrimSpace(*p.Category)
		if l.Category == "" {
			l.Category = DefaultCategory
		}
	}
	if p.Subject != nil {
		l.Subject = *p.Subject
	}
	if p.Dimensions != nil {
		l.Dimensions = *p.Dimensions
	}
	if p.FramingDetails != nil {
		l.FramingDetails = *p.FramingDetails
	}
	if p.YearOfProduction != nil {
		l.YearOfProduction = p.YearOfProduction
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.CommissionBids != nil {
		l.CommissionBids = *p.CommissionBids
	}
	if p.EstimateLow != nil {
		l.EstimateLow = *p.EstimateLow
	}
	if p.EstimateHigh != nil {
		l.EstimateHigh = *p.EstimateHigh
	}
	if p.ReservePrice != nil {
		l.ReservePrice = *p.ReservePrice
	}
	if p.TriageStatus != nil {
		l.TriageStatus = *p.TriageStatus
	}
	if p.SellerID != nil {
		l.SellerID = p.SellerID
	}
}

// AssignToAuction lists a pending lot in an upcoming auction.
func (m *LotManager) AssignToAuction(ctx context.Context, lotID, auctionID uint) (*Lot, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A shared lock keeps the auction from being completed or cancelled
		// until this lot is listed in it.
		var a Auction
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&a, auctionID).Error; err != nil {
			return notFoundOr(err, "Auction not found", "load auction %d", auctionID)
		}
		if a.Status != Upcoming {
			return apperr.Conflict("Lots can only be assigned to upcoming auctions (%q is %s)", a.Title, a.Status)
		}
		if a.IsArchived {
			return apperr.Conflict("Auction %q is archived; unarchive it before assigning lots", a.Title)
		}

		var l Lot
		if err := tx.First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}
		if l.Status != Pending {
			return apperr.Conflict("Only pending lots can be assigned to an auction (lot %s is %s)", l.LotReference, l.Status)
		}

		res := tx.Model(&Lot{}).
			Where("id = ? AND status = ?", lotID, Pending).
			Updates(map[string]interface{}{"status": Listed, "auction_id": auctionID})
		return casResult(res, "lot %d", lotID)
	})
	if err != nil {
		return nil, err
	}

	l, err := m.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, events.LotListed, lotEvent(l))
	return l, nil
}

// CompleteSale sells a listed lot at the hammer price and records the
// settlement in the same transaction.
func (m *LotManager) CompleteSale(ctx context.Context, lotID uint, hammerPrice float64, buyerID *uint) (*Sale, error) {
	result, err := m.opts.Commission.Calculate(hammerPrice)
	if err != nil {
		return nil, err
	}

	var settlement billing.Settlement
	var meetsReserve bool
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Lot
		if err := tx.First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}
		if l.Status != Listed {
			return apperr.Conflict("Only listed lots can be sold (lot %s is %s)", l.LotReference, l.Status)
		}
		if err := clientExists(tx, buyerID, "buyer_id"); err != nil {
			return err
		}

		res := tx.Model(&Lot{}).
			Where("id = ? AND status = ?", lotID, Listed).
			Updates(map[string]interface{}{"status": Sold, "sold_price": result.HammerPrice})
		if err := casResult(res, "lot %d", lotID); err != nil {
			return err
		}

		meetsReserve = result.HammerPrice >= l.ReservePrice
		settlement = billing.Settlement{
			LotID:               l.ID,
			BuyerID:             buyerID,
			SellerID:            l.SellerID,
			HammerPrice:         result.HammerPrice,
			BuyersPremium:       result.BuyersPremium,
			SellersCommission:   result.SellersCommission,
			TotalBuyerPays:      result.TotalBuyerPays,
			TotalSellerReceives: result.TotalSellerReceives,
			MeetsReserve:        meetsReserve,
			Status:              billing.SettlementPending,
		}
		if err := tx.Create(&settlement).Error; err != nil {
			return fmt.Errorf("record settlement for lot %d: %w", lotID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l, err := m.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, events.LotSold, map[string]any{
		"lot":           lotEvent(l),
		"hammer_price":  result.HammerPrice,
		"meets_reserve": meetsReserve,
		"settlement_id": settlement.ID,
	})
	return &Sale{Lot: l, Commission: result, MeetsReserve: meetsReserve, Settlement: &settlement}, nil
}

// Withdraw takes a pending or listed lot out of sale. Withdrawing close to
// the auction date costs the seller a fee.
func (m *LotManager) Withdraw(ctx context.Context, lotID uint) (*Withdrawal, error) {
	var fee float64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Lot
		if err := tx.Preload("Auction").First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}
		if l.Status != Pending && l.Status != Listed {
			return apperr.Conflict("Only pending or listed lots can be withdrawn (lot %s is %s)", l.LotReference, l.Status)
		}

		now := m.opts.Clock()
		var auctionDate *time.Time
		if l.Auction != nil {
			auctionDate = &l.Auction.AuctionDate
		}
		fee = m.opts.Withdrawal.Fee(l.EstimateLow, auctionDate, now)

		res := tx.Model(&Lot{}).
			Where("id = ? AND status = ?", lotID, l.Status).
			Updates(map[string]interface{}{
				"status":         Withdrawn,
				"withdrawal_fee": fee,
				"withdrawn_at":   now.UTC(),
			})
		return casResult(res, "lot %d", lotID)
	})
	if err != nil {
		return nil, err
	}

	l, err := m.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, events.LotWithdrawn, map[string]any{"lot": lotEvent(l), "withdrawal_fee": fee})

	msg := "Lot withdrawn"
	if fee > 0 {
		msg = fmt.Sprintf("Lot withdrawn. A withdrawal fee of %s applies.", triage.Pounds(decimal.NewFromFloat(fee)))
	}
	return &Withdrawal{Lot: l, WithdrawalFee: fee, Message: msg}, nil
}

func (m *LotManager) Archive(ctx context.Context, lotID uint) (*Lot, error) {
	return m.setArchived(ctx, lotID, true, events.LotArchived)
}

func (m *LotManager) Unarchive(ctx context.Context, lotID uint) (*Lot, error) {
	return m.setArchived(ctx, lotID, false, events.LotUnarchived)
}

func (m *LotManager) setArchived(ctx context.Context, lotID uint, archived bool, subject string) (*Lot, error) {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Lot
		if err := tx.First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}
		return tx.Model(&Lot{}).Where("id = ?", lotID).Update("is_archived", archived).Error
	})
	if err != nil {
		return nil, err
	}

	l, err := m.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, subject, lotEvent(l))
	return l, nil
}

// Delete removes a lot and its images for good. Sold lots keep their
// settlement, so they can only be archived.
func (m *LotManager) Delete(ctx context.Context, lotID uint) error {
	var images []LotImage
	var ref string
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Lot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}
		ref = l.LotReference

		var n int64
		if err := tx.Model(&billing.Settlement{}).Where("lot_id = ?", lotID).Count(&n).Error; err != nil {
			return fmt.Errorf("count settlements of lot %d: %w", lotID, err)
		}
		if n > 0 {
			return apperr.Conflict("Cannot delete a lot with a recorded sale; archive it instead")
		}

		if err := tx.Where("lot_id = ?", lotID).Find(&images).Error; err != nil {
			return fmt.Errorf("load images of lot %d: %w", lotID, err)
		}
		if err := tx.Where("lot_id = ?", lotID).Delete(&LotImage{}).Error; err != nil {
			return fmt.Errorf("delete images of lot %d: %w", lotID, err)
		}
		if err := tx.Delete(&Lot{}, lotID).Error; err != nil {
			return fmt.Errorf("delete lot %d: %w", lotID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, img := range images {
		m.removeObjects(ctx, img)
	}
	publish(ctx, m.opts.Events, events.LotDeleted, map[string]any{"lot_id": lotID, "lot_reference": ref})
	return nil
}

func casResult(res *gorm.DB, what string, args ...any) error {
	if res.Error != nil {
		return fmt.Errorf("update "+what+": %w", append(args, res.Error)...)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("The lot changed while it was being updated; reload and try again")
	}
	return nil
}

type lotPayload struct {
	LotID        uint      `json:"lot_id"`
	LotReference string    `json:"lot_reference"`
	AuctionID    *uint     `json:"auction_id,omitempty"`
	Status       LotStatus `json:"status"`
	IsArchived   bool      `json:"is_archived"`
}

func lotEvent(l *Lot) lotPayload {
	return lotPayload{
		LotID:        l.ID,
		LotReference: l.LotReference,
		AuctionID:    l.AuctionID,
		Status:       l.Status,
		IsArchived:   l.IsArchived,
	}
}

func (m *LotManager) removeObjects(ctx context.Context, img LotImage) {
	if m.opts.Store == nil {
		return
	}
	keys := []string{img.StorageKey}
	if img.ThumbnailKey != nil {
		keys = append(keys, *img.ThumbnailKey)
	}
	var g errgroup.Group
	for _, k := range keys {
		g.Go(func() error {
			if err := m.opts.Store.Delete(ctx, k); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("image object delete failed", slog.String("key", k), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
