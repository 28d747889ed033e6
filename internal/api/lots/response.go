package lots

import (
	"time"

	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/commission"
)

const dateLayout = "2006-01-02"

type ImageResponse struct {
	ID           uint    `json:"id"`
	ImageURL     string  `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	IsPrimary    bool    `json:"is_primary"`
	DisplayOrder int     `json:"display_order"`
}

// LotResponse is a lot as the UI shows it, with the fields of its auction
// flattened in.
type LotResponse struct {
	ID               uint     `json:"id"`
	LotReference     string   `json:"lot_reference"`
	AuctionID        *uint    `json:"auction_id"`
	Artist           string   `json:"artist"`
	Title            string   `json:"title"`
	Category         string   `json:"category"`
	Subject          string   `json:"subject"`
	Dimensions       string   `json:"dimensions"`
	FramingDetails   string   `json:"framing_details"`
	YearOfProduction *int     `json:"year_of_production"`
	Description      string   `json:"description"`
	CommissionBids   bool     `json:"commission_bids"`
	EstimateLow      float64  `json:"estimate_low"`
	EstimateHigh     float64  `json:"estimate_high"`
	ReservePrice     float64  `json:"reserve_price"`
	SoldPrice        *float64 `json:"sold_price"`
	TriageStatus     string   `json:"triage_status"`
	Status           string   `json:"status"`
	WithdrawalFee    float64  `json:"withdrawal_fee"`
	WithdrawnAt      *string  `json:"withdrawn_at"`
	IsArchived       bool     `json:"is_archived"`
	SellerID         *uint    `json:"seller_id"`

	AuctionTitle *string `json:"auction_title"`
	AuctionType  *string `json:"auction_type"`
	Location     *string `json:"location"`
	AuctionDate  *string `json:"auction_date"`
	StartTime    *string `json:"start_time"`

	PrimaryImageURL *string         `json:"primary_image_url"`
	Images          []ImageResponse `json:"images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func strPtr(s string) *string { return &s }

func ToLotResponse(l *auctions.Lot) LotResponse {
	out := LotResponse{
		ID:               l.ID,
		LotReference:     l.LotReference,
		AuctionID:        l.AuctionID,
		Artist:           l.Artist,
		Title:            l.Title,
		Category:         l.Category,
		Subject:          l.Subject,
		Dimensions:       l.Dimensions,
		FramingDetails:   l.FramingDetails,
		YearOfProduction: l.YearOfProduction,
		Description:      l.Description,
		CommissionBids:   l.CommissionBids,
		EstimateLow:      l.EstimateLow,
		EstimateHigh:     l.EstimateHigh,
		ReservePrice:     l.ReservePrice,
		SoldPrice:        l.SoldPrice,
		TriageStatus:     string(l.TriageStatus),
		Status:           string(l.Status),
		WithdrawalFee:    l.WithdrawalFee,
		IsArchived:       l.IsArchived,
		SellerID:         l.SellerID,
		Images:           make([]ImageResponse, 0, len(l.Images)),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if l.WithdrawnAt != nil {
		out.WithdrawnAt = strPtr(l.WithdrawnAt.UTC().Format(dateLayout))
	}
	if a := l.Auction; a != nil {
		out.AuctionTitle = strPtr(a.Title)
		out.AuctionType = strPtr(string(a.AuctionType))
		out.Location = strPtr(string(a.Location))
		out.AuctionDate = strPtr(a.AuctionDate.Format(dateLayout))
		out.StartTime = strPtr(string(a.StartTime))
	}
	for _, img := range l.Images {
		out.Images = append(out.Images, toImageResponse(img))
		if img.IsPrimary {
			out.PrimaryImageURL = strPtr(img.ImageURL)
		}
	}
	return out
}

func ToLotResponses(lots []auctions.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, ToLotResponse(&lots[i]))
	}
	return out
}

func toImageResponse(img auctions.LotImage) ImageResponse {
	return ImageResponse{
		ID:           img.ID,
		ImageURL:     img.ImageURL,
		ThumbnailURL: img.ThumbnailURL,
		IsPrimary:    img.IsPrimary,
		DisplayOrder: img.DisplayOrder,
	}
}

type SaleResponse struct {
	commission.Result
	LotID        uint   `json:"lot_id"`
	Status       string `json:"status"`
	MeetsReserve bool   `json:"meets_reserve"`
	SettlementID uint   `json:"settlement_id"`
}

type UploadResponse struct {
	ID           uint    `json:"id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	IsPrimary    bool    `json:"is_primary"`
	DisplayOrder int     `json:"display_order"`
}
