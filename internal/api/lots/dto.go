package lots

import (
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/triage"
)

// ---------- requests

type CreateLotRequest struct {
	LotReference     string  `json:"lot_reference"`
	Artist           string  `json:"artist"`
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	Subject          string  `json:"subject"`
	Dimensions       string  `json:"dimensions"`
	FramingDetails   string  `json:"framing_details"`
	YearOfProduction *int    `json:"year_of_production"`
	Description      string  `json:"description"`
	CommissionBids   bool    `json:"commission_bids"`
	EstimateLow      float64 `json:"estimate_low"`
	EstimateHigh     float64 `json:"estimate_high"`
	ReservePrice     float64 `json:"reserve_price"`
	TriageStatus     string  `json:"triage_status"`
	SellerID         *uint   `json:"seller_id"`
}

func (r CreateLotRequest) input() auctions.LotInput {
	return auctions.LotInput{
		LotReference:     r.LotReference,
		Artist:           r.Artist,
		Title:            r.Title,
		Category:         r.Category,
		Subject:          r.Subject,
		Dimensions:       r.Dimensions,
		FramingDetails:   r.FramingDetails,
		YearOfProduction: r.YearOfProduction,
		Description:      r.Description,
		CommissionBids:   r.CommissionBids,
		EstimateLow:      r.EstimateLow,
		EstimateHigh:     r.EstimateHigh,
		ReservePrice:     r.ReservePrice,
		TriageStatus:     triage.Channel(r.TriageStatus),
		SellerID:         r.SellerID,
	}
}

type UpdateLotRequest struct {
	LotReference     *string  `json:"lot_reference"`
	Artist           *string  `json:"artist"`
	Title            *string  `json:"title"`
	Category         *string  `json:"category"`
	Subject          *string  `json:"subject"`
	Dimensions       *string  `json:"dimensions"`
	FramingDetails   *string  `json:"framing_details"`
	YearOfProduction *int     `json:"year_of_production"`
	Description      *string  `json:"description"`
	CommissionBids   *bool    `json:"commission_bids"`
	EstimateLow      *float64 `json:"estimate_low"`
	EstimateHigh     *float64 `json:"estimate_high"`
	ReservePrice     *float64 `json:"reserve_price"`
	TriageStatus     *string  `json:"triage_status"`
	SellerID         *uint    `json:"seller_id"`
	Status           *string  `json:"status"`
	AuctionID        *uint    `json:"auction_id"`
}

func (r UpdateLotRequest) patch() auctions.LotPatch {
	p := auctions.LotPatch{
		LotReference:     r.LotReference,
		Artist:           r.Artist,
		Title:            r.Title,
		Category:         r.Category,
		Subject:          r.Subject,
		Dimensions:       r.Dimensions,
		FramingDetails:   r.FramingDetails,
		YearOfProduction: r.YearOfProduction,
		Description:      r.Description,
		CommissionBids:   r.CommissionBids,
		EstimateLow:      r.EstimateLow,
		EstimateHigh:     r.EstimateHigh,
		ReservePrice:     r.ReservePrice,
		SellerID:         r.SellerID,
		AuctionID:        r.AuctionID,
	}
	if r.TriageStatus != nil {
		ch := triage.Channel(*r.TriageStatus)
		p.TriageStatus = &ch
	}
	if r.Status != nil {
		st := auctions.LotStatus(*r.Status)
		p.Status = &st
	}
	return p
}

type CommissionRequest struct {
	HammerPrice *float64 `json:"hammer_price"`
}
