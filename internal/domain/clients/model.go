package clients

import "time"

type ClientType string

const (
	Buyer  ClientType = "Buyer"
	Seller ClientType = "Seller"
	Joint  ClientType = "Joint"
)

func (t ClientType) Valid() bool {
	switch t {
	case Buyer, Seller, Joint:
		return true
	}
	return false
}

type Client struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"not null;uniqueIndex:idx_clients_email" json:"email"`
	Password     *string    `json:"-"`
	AuthProvider string     `gorm:"type:varchar(20);not null;default:'local'" json:"-"`
	GoogleSub    *string    `gorm:"uniqueIndex:idx_clients_google_sub" json:"-"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	ClientType   ClientType `gorm:"type:varchar(10);not null;default:'Buyer'" json:"client_type"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
