package auctions

import (
	"regexp"
	"time"

	"auction-house/internal/domain/clients"
	"auction-house/internal/domain/triage"
)

type LotStatus string

const (
	Pending   LotStatus = "Pending"
	Listed    LotStatus = "Listed"
	Sold      LotStatus = "Sold"
	Unsold    LotStatus = "Unsold"
	Withdrawn LotStatus = "Withdrawn"

	// Archived is never stored. Lots are archived with the IsArchived flag so
	// the status they had stays visible; list filters accept it as an alias.
	Archived LotStatus = "Archived"
)

func (s LotStatus) Valid() bool {
	switch s {
	case Pending, Listed, Sold, Unsold, Withdrawn:
		return true
	}
	return false
}

var lotReferencePattern = regexp.MustCompile(`^[0-9]{8}$`)

func ValidLotReference(ref string) bool { return lotReferencePattern.MatchString(ref) }

type Lot struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	LotReference string   `gorm:"type:varchar(8);not null;uniqueIndex" json:"lot_reference"`
	AuctionID    *uint    `gorm:"index" json:"auction_id,omitempty"`
	Auction      *Auction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Artist           string   `gorm:"not null;index" json:"artist"`
	Title            string   `gorm:"not null" json:"title"`
	Category         string   `gorm:"not null;default:'Fine Art';index" json:"category"`
	Subject          string   `json:"subject,omitempty"`
	Dimensions       string   `json:"dimensions,omitempty"`
	FramingDetails   string   `json:"framing_details,omitempty"`
	YearOfProduction *int     `json:"year_of_production,omitempty"`
	Description      string   `json:"description,omitempty"`
	CommissionBids   bool     `gorm:"not null;default:false" json:"commission_bids"`
	EstimateLow      float64  `gorm:"type:numeric(14,2);not null" json:"estimate_low"`
	EstimateHigh     float64  `gorm:"type:numeric(14,2);not null" json:"estimate_high"`
	ReservePrice     float64  `gorm:"type:numeric(14,2);not null" json:"reserve_price"`
	SoldPrice        *float64 `gorm:"type:numeric(14,2)" json:"sold_price,omitempty"`

	TriageStatus  triage.Channel `gorm:"type:varchar(10);not null" json:"triage_status"`
	Status        LotStatus      `gorm:"type:varchar(10);not null;default:'Pending';index" json:"status"`
	WithdrawalFee float64        `gorm:"type:numeric(14,2);not null;default:0" json:"withdrawal_fee"`
	WithdrawnAt   *time.Time     `json:"withdrawn_at,omitempty"`
	IsArchived    bool           `gorm:"not null;default:false;index" json:"is_archived"`

	SellerID *uint           `gorm:"index" json:"seller_id,omitempty"`
	Seller   *clients.Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Images []LotImage `gorm:"constraint:OnDelete:CASCADE;" json:"images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LotImage struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	LotID        uint    `gorm:"not null;index;uniqueIndex:idx_lot_images_checksum,priority:1" json:"lot_id"`
	Checksum     string  `gorm:"type:varchar(64);not null;uniqueIndex:idx_lot_images_checksum,priority:2" json:"-"`
	ImageURL     string  `gorm:"not null" json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
	StorageKey   string  `gorm:"not null" json:"-"`
	ThumbnailKey *string `json:"-"`
	IsPrimary    bool    `gorm:"not null;default:false" json:"is_primary"`
	DisplayOrder int     `gorm:"not null;default:0" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
}
