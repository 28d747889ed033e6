package billing

import "time"

type SettlementStatus string

const (
	SettlementPending SettlementStatus = "Pending"
	SettlementPaid    SettlementStatus = "Paid"
)

// Settlement is the audit record of a completed sale: what the buyer owes
// and what the seller is due.
type Settlement struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	LotID    uint  `gorm:"not null;uniqueIndex" json:"lot_id"`
	BuyerID  *uint `gorm:"index" json:"buyer_id,omitempty"`
	SellerID *uint `gorm:"index" json:"seller_id,omitempty"`

	HammerPrice         float64 `gorm:"type:numeric(14,2);not null" json:"hammer_price"`
	BuyersPremium       float64 `gorm:"type:numeric(14,2);not null" json:"buyers_premium"`
	SellersCommission   float64 `gorm:"type:numeric(14,2);not null" json:"sellers_commission"`
	TotalBuyerPays      float64 `gorm:"type:numeric(14,2);not null" json:"total_buyer_pays"`
	TotalSellerReceives float64 `gorm:"type:numeric(14,2);not null" json:"total_seller_receives"`
	MeetsReserve        bool    `gorm:"not null" json:"meets_reserve"`

	Status          SettlementStatus `gorm:"type:varchar(10);not null;default:'Pending'" json:"status"`
	StripeSessionID *string          `gorm:"index" json:"-"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
