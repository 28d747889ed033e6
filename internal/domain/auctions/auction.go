package auctions

import "time"

type Location string

const (
	London  Location = "London"
	Paris   Location = "Paris"
	NewYork Location = "New York"
)

type StartTime string

const (
	Morning   StartTime = "9:30am"
	Afternoon StartTime = "2:00pm"
	Evening   StartTime = "7:00pm"
)

type AuctionType string

const (
	TypePhysical AuctionType = "Physical"
	TypeOnline   AuctionType = "Online"
)

type AuctionStatus string

const (
	Upcoming  AuctionStatus = "Upcoming"
	Completed AuctionStatus = "Completed"
	Cancelled AuctionStatus = "Cancelled"
)

func (l Location) Valid() bool { return l == London || l == Paris || l == NewYork }

func (s StartTime) Valid() bool { return s == Morning || s == Afternoon || s == Evening }

func (s AuctionStatus) Valid() bool { return s == Upcoming || s == Completed || s == Cancelled }

// ParseAuctionType accepts the legacy "Live" label for saleroom auctions.
func ParseAuctionType(s string) (AuctionType, bool) {
	switch s {
	case "", string(TypePhysical), "Live":
		return TypePhysical, true
	case string(TypeOnline):
		return TypeOnline, true
	}
	return "", false
}

type Auction struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Location    Location      `gorm:"type:varchar(20);not null;index" json:"location"`
	AuctionDate time.Time     `gorm:"type:date;not null;index" json:"auction_date"`
	StartTime   StartTime     `gorm:"type:varchar(10);not null" json:"start_time"`
	Theme       *string       `json:"theme,omitempty"`
	AuctionType AuctionType   `gorm:"type:varchar(10);not null;default:'Physical'" json:"auction_type"`
	Status      AuctionStatus `gorm:"type:varchar(10);not null;default:'Upcoming';index" json:"status"`
	IsArchived  bool          `gorm:"not null;default:false;index" json:"is_archived"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
