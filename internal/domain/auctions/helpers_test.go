package auctions

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"
	"auction-house/internal/infra/events"
	"auction-house/internal/infra/storage"
	"auction-house/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	auctions *AuctionManager
	lots     *LotManager
	events   *events.Recorder
	store    *storage.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, &clients.Client{}, &Auction{}, &Lot{}, &LotImage{}, &billing.Settlement{})
	f := &fixture{db: db, events: &events.Recorder{}, store: storage.NewMemory()}
	opts := Options{
		Events: f.events,
		Store:  f.store,
		Clock:  func() time.Time { return fixedNow },
	}
	f.auctions = NewAuctionManager(db, opts)
	f.lots = NewLotManager(db, opts)
	return f
}

func (f *fixture) auction(t *testing.T, daysOut int) *Auction {
	t.Helper()
	a, err := f.auctions.Create(context.Background(), AuctionInput{
		Title:       "Impressionist & Modern Art",
		Location:    London,
		AuctionDate: fixedNow.AddDate(0, 0, daysOut),
		StartTime:   Evening,
		AuctionType: "Physical",
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) lot(t *testing.T, ref string, estimateLow float64) *Lot {
	t.Helper()
	l, err := f.lots.Create(context.Background(), LotInput{
		LotReference: ref,
		Artist:       "Winifred Nicholson",
		Title:        "Flowers on a Windowsill",
		EstimateLow:  estimateLow,
		EstimateHigh: estimateLow * 1.5,
		ReservePrice: estimateLow * 0.8,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) listed(t *testing.T, ref string, estimateLow float64, auctionID uint) *Lot {
	t.Helper()
	l := f.lot(t, ref, estimateLow)
	l, err := f.lots.AssignToAuction(context.Background(), l.ID, auctionID)
	require.NoError(t, err)
	return l
}

func (f *fixture) client(t *testing.T, email string) *clients.Client {
	t.Helper()
	c := clients.Client{Name: "Client " + email, Email: email, ClientType: clients.Joint}
	require.NoError(t, f.db.Create(&c).Error)
	return &c
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
