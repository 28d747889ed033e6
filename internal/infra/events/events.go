// Package events publishes lifecycle notifications for lots and auctions.
package events

import (
	"context"
	"time"
)

const (
	LotListed       = "lots.listed"
	LotSold         = "lots.sold"
	LotWithdrawn    = "lots.withdrawn"
	LotArchived     = "lots.archived"
	LotUnarchived   = "lots.unarchived"
	LotDeleted      = "lots.deleted"
	AuctionComplete = "auctions.completed"
	AuctionCancel   = "auctions.cancelled"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Envelope wraps every payload with the subject and emission time.
type Envelope struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
