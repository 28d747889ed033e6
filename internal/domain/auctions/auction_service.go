package auctions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/commission"
	"auction-house/internal/infra/events"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuctionInput struct {
	Title       string
	Location    Location
	AuctionDate time.Time
	StartTime   StartTime
	Theme       *string
	AuctionType string
}

// AuctionPatch holds the fields present in a partial update. Status is only
// compared against the stored value: it changes through Complete and Cancel.
type AuctionPatch struct {
	Title       *string
	Location    *Location
	AuctionDate *time.Time
	StartTime   *StartTime
	Theme       *string
	AuctionType *string
	Status      *AuctionStatus
}

type AuctionFilter struct {
	Status       AuctionStatus
	ArchivedOnly bool
}

type AuctionManager struct {
	db   *gorm.DB
	opts Options
}

func NewAuctionManager(db *gorm.DB, opts Options) *AuctionManager {
	return &AuctionManager{db: db, opts: opts.withDefaults()}
}

func (m *AuctionManager) Create(ctx context.Context, in AuctionInput) (*Auction, error) {
	a := Auction{
		Title:       strings.TrimSpace(in.Title),
		Location:    in.Location,
		AuctionDate: commission.DateOf(in.AuctionDate),
		StartTime:   in.StartTime,
		Theme:       trimmedOrNil(in.Theme),
		Status:      Upcoming,
	}
	t, ok := ParseAuctionType(in.AuctionType)
	if !ok {
		return nil, apperr.Validation("auction_type must be Physical or Online")
	}
	a.AuctionType = t

	if err := m.validate(&a, true); err != nil {
		return nil, err
	}
	if err := m.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}
	return &a, nil
}

func (m *AuctionManager) validate(a *Auction, dateChanged bool) error {
	if a.Title == "" {
		return apperr.Validation("title is required")
	}
	if !a.Location.Valid() {
		return apperr.Validation("location must be London, Paris or New York")
	}
	if !a.StartTime.Valid() {
		return apperr.Validation("start_time must be 9:30am, 2:00pm or 7:00pm")
	}
	if a.AuctionDate.IsZero() {
		return apperr.Validation("auction_date is required")
	}
	if dateChanged && commission.DaysUntil(a.AuctionDate, m.opts.Clock()) < 0 {
		return apperr.Validation("auction_date cannot be in the past")
	}
	return nil
}

func (m *AuctionManager) Get(ctx context.Context, id uint) (*Auction, error) {
	var a Auction
	if err := m.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFoundOr(err, "Auction not found", "load auction %d", id)
	}
	return &a, nil
}

func (m *AuctionManager) List(ctx context.Context, f AuctionFilter) ([]Auction, error) {
	q := m.db.WithContext(ctx).Model(&Auction{}).Where("is_archived = ?", f.ArchivedOnly)
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, apperr.Validation("unknown auction status %q", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}

	var out []Auction
	if err := q.Order("auction_date DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return out, nil
}

func (m *AuctionManager) Update(ctx context.Context, id uint, p AuctionPatch) (*Auction, error) {
	var out Auction
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return notFoundOr(err, "Auction not found", "load auction %d", id)
		}
		if p.Status != nil && *p.Status != out.Status {
			return apperr.Validation("status cannot be edited directly; complete or cancel the auction instead")
		}

		dateChanged := false
		if p.Title != nil {
			out.Title = strings.TrimSpace(*p.Title)
		}
		if p.Location != nil {
			out.Location = *p.Location
		}
		if p.AuctionDate != nil {
			d := commission.DateOf(*p.AuctionDate)
			dateChanged = !d.Equal(commission.DateOf(out.AuctionDate))
			out.AuctionDate = d
		}
		if p.StartTime != nil {
			out.StartTime = *p.StartTime
		}
		if p.Theme != nil {
			out.Theme = trimmedOrNil(p.Theme)
		}
		if p.AuctionType != nil {
			t, ok := ParseAuctionType(*p.AuctionType)
			if !ok {
				return apperr.Validation("auction_type must be Physical or Online")
			}
			out.AuctionType = t
		}
		if err := m.validate(&out, dateChanged); err != nil {
			return err
		}

		return tx.Model(&Auction{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":        out.Title,
			"location":     out.Location,
			"auction_date": out.AuctionDate,
			"start_time":   out.StartTime,
			"theme":        out.Theme,
			"auction_type": out.AuctionType,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

func (m *AuctionManager) Archive(ctx context.Context, id uint) error {
	return m.setArchived(ctx, id, true)
}

func (m *AuctionManager) Unarchive(ctx context.Context, id uint) error {
	return m.setArchived(ctx, id, false)
}

func (m *AuctionManager) setArchived(ctx context.Context, id uint, archived bool) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Model(&Auction{}).Where("id = ?", id).Update("is_archived", archived).Error; err != nil {
		return fmt.Errorf("archive auction %d: %w", id, err)
	}
	return nil
}

// Complete closes an upcoming auction. Lots still listed in it did not sell.
func (m *AuctionManager) Complete(ctx context.Context, id uint) (*Auction, error) {
	var unsold int64
	err := m.transition(ctx, id, Completed, func(tx *gorm.DB) error {
		res := tx.Model(&Lot{}).
			Where("auction_id = ? AND status = ?", id, Listed).
			Update("status", Unsold)
		unsold = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, events.AuctionComplete, map[string]any{"auction_id": id, "unsold_lots": unsold})
	return m.Get(ctx, id)
}

// Cancel calls off an upcoming auction and returns its listed lots to the
// pending pool so they can be assigned elsewhere.
func (m *AuctionManager) Cancel(ctx context.Context, id uint) (*Auction, error) {
	var released int64
	err := m.transition(ctx, id, Cancelled, func(tx *gorm.DB) error {
		res := tx.Model(&Lot{}).
			Where("auction_id = ? AND status = ?", id, Listed).
			Updates(map[string]interface{}{"status": Pending, "auction_id": nil})
		released = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, m.opts.Events, events.AuctionCancel, map[string]any{"auction_id": id, "released_lots": released})
	return m.Get(ctx, id)
}

func (m *AuctionManager) transition(ctx context.Context, id uint, to AuctionStatus, lots func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Auction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			return notFoundOr(err, "Auction not found", "load auction %d", id)
		}
		if a.Status != Upcoming {
			return apperr.Conflict("Only upcoming auctions can be marked %s (this auction is %s)", to, a.Status)
		}

		res := tx.Model(&Auction{}).Where("id = ? AND status = ?", id, Upcoming).Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("update auction %d status: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Auction changed while it was being updated; reload and try again")
		}
		return lots(tx)
	})
}

// Delete removes an auction permanently. Any lot referencing it, archived or
// not, blocks the delete.
func (m *AuctionManager) Delete(ctx context.Context, id uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Auction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error; err != nil {
			return notFoundOr(err, "Auction not found", "load auction %d", id)
		}

		var n int64
		if err := tx.Model(&Lot{}).Where("auction_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("count lots of auction %d: %w", id, err)
		}
		if n > 0 {
			return apperr.Conflict("Cannot delete auctions that have lots assigned (%d lots)", n)
		}

		if err := tx.Delete(&Auction{}, id).Error; err != nil {
			return fmt.Errorf("delete auction %d: %w", id, err)
		}
		return nil
	})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
