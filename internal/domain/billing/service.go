package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/clients"
	"auction-house/internal/infra/stripe"

	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	checkout stripe.Checkout
	appURL   string
	currency string
	now      func() time.Time
}

func NewService(db *gorm.DB, checkout stripe.Checkout, appURL string) *Service {
	if appURL == "" {
		appURL = "http://localhost:3000"
	}
	return &Service{db: db, checkout: checkout, appURL: appURL, currency: "gbp", now: time.Now}
}

func (s *Service) Get(ctx context.Context, id uint) (*Settlement, error) {
	var st Settlement
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Settlement not found")
		}
		return nil, fmt.Errorf("load settlement %d: %w", id, err)
	}
	return &st, nil
}

func (s *Service) ForLot(ctx context.Context, lotID uint) (*Settlement, error) {
	var st Settlement
	if err := s.db.WithContext(ctx).Where("lot_id = ?", lotID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No sale has been recorded for this lot")
		}
		return nil, fmt.Errorf("load settlement for lot %d: %w", lotID, err)
	}
	return &st, nil
}

// StartCheckout opens a Stripe payment for the buyer's total. Only staff or
// the recorded buyer may start it.
func (s *Service) StartCheckout(ctx context.Context, id uint, who clients.Principal) (string, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !who.IsStaff && (st.BuyerID == nil || *st.BuyerID != who.ClientID) {
		return "", apperr.Forbidden("Only the buyer or staff can pay this settlement")
	}
	if st.Status == SettlementPaid {
		return "", apperr.Conflict("This settlement has already been paid")
	}

	var email string
	if st.BuyerID != nil {
		var buyer clients.Client
		if err := s.db.WithContext(ctx).First(&buyer, *st.BuyerID).Error; err == nil {
			email = buyer.Email
		}
	}

	ref := strconv.FormatUint(uint64(st.ID), 10)
	sess, err := s.checkout.CreateSession(ctx, stripe.CheckoutRequest{
		Reference:     ref,
		Description:   fmt.Sprintf("Lot %d purchase (hammer price plus buyer's premium)", st.LotID),
		AmountMinor:   int64(math.Round(st.TotalBuyerPays * 100)),
		Currency:      s.currency,
		CustomerEmail: email,
		SuccessURL:    s.appURL + "/client?paid=" + ref,
		CancelURL:     s.appURL + "/client?canceled=" + ref,
	})
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(&Settlement{}).
		Where("id = ?", st.ID).
		Update("stripe_session_id", sess.ID).Error; err != nil {
		return "", fmt.Errorf("store checkout session: %w", err)
	}
	return sess.URL, nil
}

// MarkPaid records a payment. Repeated notifications for an already paid
// settlement are accepted silently.
func (s *Service) MarkPaid(ctx context.Context, id uint, sessionID string) error {
	now := s.now()
	res := s.db.WithContext(ctx).Model(&Settlement{}).
		Where("id = ? AND status = ?", id, SettlementPending).
		Updates(map[string]interface{}{
			"status":            SettlementPaid,
			"paid_at":           now,
			"stripe_session_id": sessionID,
		})
	if res.Error != nil {
		return fmt.Errorf("mark settlement %d paid: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// List returns settlements newest first, optionally only those in status.
func (s *Service) List(ctx context.Context, status SettlementStatus) ([]Settlement, error) {
	q := s.db.WithContext(ctx).Model(&Settlement{})
	if status != "" {
		if status != SettlementPending && status != SettlementPaid {
			return nil, apperr.Validation("status must be Pending or Paid")
		}
		q = q.Where("status = ?", status)
	}
	var out []Settlement
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	return out, nil
}
