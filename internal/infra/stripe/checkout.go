package stripe

import (
	"context"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type CheckoutRequest struct {
	Reference     string // stored in metadata and client_reference_id
	Description   string
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type Checkout interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

type Client struct {
	secretKey string
}

func NewClient(secretKey string) *Client {
	return &Client{secretKey: secretKey}
}

func (c *Client) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if c == nil || c.secretKey == "" {
		return nil, ErrNotConfigured
	}
	stripeapi.Key = c.secretKey

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(req.SuccessURL),
		CancelURL:         stripeapi.String(req.CancelURL),
		ClientReferenceID: stripeapi.String(req.Reference),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Quantity: stripeapi.Int64(1),
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripeapi.String(req.Currency),
					UnitAmount: stripeapi.Int64(req.AmountMinor),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(req.Description),
					},
				},
			},
		},
		PaymentIntentData: &stripeapi.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"settlement_id": req.Reference},
		},
	}
	params.Context = ctx
	params.AddMetadata("settlement_id", req.Reference)
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(req.CustomerEmail)
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}
