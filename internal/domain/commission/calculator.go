package commission

import (
	"math"
	"time"

	"auction-house/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

// Amounts are rounded to whole pence.
const moneyPlaces = 2

type Policy struct {
	BuyersPremiumRate     decimal.Decimal
	SellersCommissionRate decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		BuyersPremiumRate:     decimal.RequireFromString("0.10"),
		SellersCommissionRate: decimal.RequireFromString("0.10"),
	}
}

type Result struct {
	HammerPrice         float64 `json:"hammer_price"`
	BuyersPremium       float64 `json:"buyers_premium"`
	TotalBuyerPays      float64 `json:"total_buyer_pays"`
	SellersCommission   float64 `json:"sellers_commission"`
	TotalSellerReceives float64 `json:"total_seller_receives"`
}

// Calculate splits a hammer price into what the buyer pays and what the
// seller receives. It has no side effects.
func (p Policy) Calculate(hammerPrice float64) (Result, error) {
	if math.IsNaN(hammerPrice) || math.IsInf(hammerPrice, 0) {
		return Result{}, apperr.Validation("hammer price must be a number")
	}

	hammer := decimal.NewFromFloat(hammerPrice).Round(moneyPlaces)
	if !hammer.IsPositive() {
		return Result{}, apperr.Validation("hammer price must be greater than zero")
	}

	premium := hammer.Mul(p.BuyersPremiumRate).Round(moneyPlaces)
	commission := hammer.Mul(p.SellersCommissionRate).Round(moneyPlaces)

	return Result{
		HammerPrice:         hammer.InexactFloat64(),
		BuyersPremium:       premium.InexactFloat64(),
		TotalBuyerPays:      hammer.Add(premium).InexactFloat64(),
		SellersCommission:   commission.InexactFloat64(),
		TotalSellerReceives: hammer.Sub(commission).InexactFloat64(),
	}, nil
}

type WithdrawalPolicy struct {
	Rate       decimal.Decimal
	WindowDays int
}

func DefaultWithdrawalPolicy() WithdrawalPolicy {
	return WithdrawalPolicy{Rate: decimal.RequireFromString("0.05"), WindowDays: 14}
}

// Fee charges Rate × estimateLow when the auction is fewer than WindowDays
// whole days away. A lot with no auction date is never charged.
func (p WithdrawalPolicy) Fee(estimateLow float64, auctionDate *time.Time, now time.Time) float64 {
	if auctionDate == nil || estimateLow <= 0 {
		return 0
	}
	if DaysUntil(*auctionDate, now) >= p.WindowDays {
		return 0
	}
	return decimal.NewFromFloat(estimateLow).Mul(p.Rate).Round(moneyPlaces).InexactFloat64()
}

// DaysUntil counts calendar days from now's date to day, both taken in UTC.
// Past dates give negative values.
func DaysUntil(day, now time.Time) int {
	return int(DateOf(day).Sub(DateOf(now)).Hours() / 24)
}

func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
