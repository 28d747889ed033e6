package auctions

import (
	"strings"
	"time"

	"auction-house/internal/domain/apperr"
	domain "auction-house/internal/domain/auctions"
)

const dateLayout = "2006-01-02"

// ---------- requests

type CreateAuctionRequest struct {
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	AuctionDate string  `json:"auction_date"`
	StartTime   string  `json:"start_time"`
	Theme       *string `json:"theme"`
	AuctionType string  `json:"auction_type"`
}

func (r CreateAuctionRequest) input() (domain.AuctionInput, error) {
	day, err := parseDate(r.AuctionDate)
	if err != nil {
		return domain.AuctionInput{}, err
	}
	return domain.AuctionInput{
		Title:       r.Title,
		Location:    domain.Location(r.Location),
		AuctionDate: day,
		StartTime:   domain.StartTime(r.StartTime),
		Theme:       r.Theme,
		AuctionType: r.AuctionType,
	}, nil
}

type UpdateAuctionRequest struct {
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	AuctionDate *string `json:"auction_date"`
	StartTime   *string `json:"start_time"`
	Theme       *string `json:"theme"`
	AuctionType *string `json:"auction_type"`
	Status      *string `json:"status"`
}

func (r UpdateAuctionRequest) patch() (domain.AuctionPatch, error) {
	p := domain.AuctionPatch{Title: r.Title, Theme: r.Theme, AuctionType: r.AuctionType}
	if r.Location != nil {
		loc := domain.Location(*r.Location)
		p.Location = &loc
	}
	if r.AuctionDate != nil {
		day, err := parseDate(*r.AuctionDate)
		if err != nil {
			return p, err
		}
		p.AuctionDate = &day
	}
	if r.StartTime != nil {
		st := domain.StartTime(*r.StartTime)
		p.StartTime = &st
	}
	if r.Status != nil {
		st := domain.AuctionStatus(*r.Status)
		p.Status = &st
	}
	return p, nil
}

// parseDate accepts a plain date or a full RFC 3339 timestamp. A timestamp
// keeps the calendar date of its own offset.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("auction_date is required")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation("auction_date must be a date like 2025-06-30")
}

// ---------- responses

type AuctionResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	AuctionDate string    `json:"auction_date"`
	StartTime   string    `json:"start_time"`
	Theme       *string   `json:"theme"`
	AuctionType string    `json:"auction_type"`
	Status      string    `json:"status"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAuctionResponse(a *domain.Auction) AuctionResponse {
	return AuctionResponse{
		ID:          a.ID,
		Title:       a.Title,
		Location:    string(a.Location),
		AuctionDate: a.AuctionDate.Format(dateLayout),
		StartTime:   string(a.StartTime),
		Theme:       a.Theme,
		AuctionType: string(a.AuctionType),
		Status:      string(a.Status),
		IsArchived:  a.IsArchived,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
