package auctions

import (
	"context"
	"sync"
	"testing"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/triage"
	"auction-house/internal/infra/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLotDefaults(t *testing.T) {
	f := newFixture(t)

	cheap := f.lot(t, "00000500", 500)
	assert.Equal(t, Pending, cheap.Status)
	assert.Nil(t, cheap.AuctionID)
	assert.Equal(t, DefaultCategory, cheap.Category)
	assert.Equal(t, triage.Online, cheap.TriageStatus)

	dear := f.lot(t, "00050000", 50000)
	assert.Equal(t, triage.Physical, dear.TriageStatus)
}

func TestCreateLotKeepsTriageOverride(t *testing.T) {
	f := newFixture(t)
	l, err := f.lots.Create(context.Background(), LotInput{
		LotReference: "12345678",
		Artist:       "A",
		Title:        "T",
		EstimateLow:  500,
		EstimateHigh: 700,
		TriageStatus: triage.Physical,
	})
	require.NoError(t, err)
	assert.Equal(t, triage.Physical, l.TriageStatus)
}

func TestCreateLotValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ok := LotInput{LotReference: "12345678", Artist: "A", Title: "T", EstimateLow: 100, EstimateHigh: 200}
	year := 3000
	missing := uint(404)

	cases := map[string]func(in *LotInput){
		"short reference":   func(in *LotInput) { in.LotReference = "1234567" },
		"letters in ref":    func(in *LotInput) { in.LotReference = "1234567A" },
		"no artist":         func(in *LotInput) { in.Artist = "" },
		"no title":          func(in *LotInput) { in.Title = "  " },
		"zero estimate":     func(in *LotInput) { in.EstimateLow = 0 },
		"high below low":    func(in *LotInput) { in.EstimateHigh = 99 },
		"negative reserve":  func(in *LotInput) { in.ReservePrice = -1 },
		"bad triage":        func(in *LotInput) { in.TriageStatus = "Hybrid" },
		"future year":       func(in *LotInput) { in.YearOfProduction = &year },
		"unknown seller id": func(in *LotInput) { in.SellerID = &missing },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := ok
			mutate(&in)
			_, err := f.lots.Create(ctx, in)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateLotDuplicateReference(t *testing.T) {
	f := newFixture(t)
	f.lot(t, "11111111", 100)

	_, err := f.lots.Create(context.Background(), LotInput{
		LotReference: "11111111", Artist: "B", Title: "T", EstimateLow: 1, EstimateHigh: 2,
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestAssignToAuction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	l := f.lot(t, "40000001", 1000)

	got, err := f.lots.AssignToAuction(ctx, l.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Listed, got.Status)
	require.NotNil(t, got.AuctionID)
	assert.Equal(t, a.ID, *got.AuctionID)
	require.NotNil(t, got.Auction)
	assert.Equal(t, a.Title, got.Auction.Title)
	assert.Equal(t, []string{events.LotListed}, f.events.Subjects())

	// Already listed.
	_, err = f.lots.AssignToAuction(ctx, l.ID, a.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestAssignToAuctionRequiresUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.auction(t, 10)
	_, err := f.auctions.Complete(ctx, done.ID)
	require.NoError(t, err)
	called := f.auction(t, 10)
	_, err = f.auctions.Cancel(ctx, called.ID)
	require.NoError(t, err)

	l := f.lot(t, "40000002", 1000)
	for _, id := range []uint{done.ID, called.ID} {
		_, err = f.lots.AssignToAuction(ctx, l.ID, id)
		assert.True(t, apperr.IsConflict(err), "got %v", err)
	}

	got, err := f.lots.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, Pending, got.Status)
	assert.Nil(t, got.AuctionID)

	_, err = f.lots.AssignToAuction(ctx, l.ID, 999)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.lots.AssignToAuction(ctx, 999, f.auction(t, 10).ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCompleteSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	buyer := f.client(t, "buyer@example.com")
	l := f.listed(t, "50000001", 8000, a.ID)

	sale, err := f.lots.CompleteSale(ctx, l.ID, 10000, &buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sale.Commission.BuyersPremium)
	assert.Equal(t, 11000.0, sale.Commission.TotalBuyerPays)
	assert.Equal(t, 1000.0, sale.Commission.SellersCommission)
	assert.Equal(t, 9000.0, sale.Commission.TotalSellerReceives)
	assert.True(t, sale.MeetsReserve)
	assert.Equal(t, Sold, sale.Lot.Status)
	require.NotNil(t, sale.Lot.SoldPrice)
	assert.Equal(t, 10000.0, *sale.Lot.SoldPrice)

	var s billing.Settlement
	require.NoError(t, f.db.Where("lot_id = ?", l.ID).First(&s).Error)
	assert.Equal(t, billing.SettlementPending, s.Status)
	assert.Equal(t, 11000.0, s.TotalBuyerPays)
	require.NotNil(t, s.BuyerID)
	assert.Equal(t, buyer.ID, *s.BuyerID)

	_, err = f.lots.CompleteSale(ctx, l.ID, 10000, nil)
	assert.True(t, apperr.IsConflict(err))
}

func TestCompleteSaleGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.lot(t, "50000002", 1000)

	_, err := f.lots.CompleteSale(ctx, pending.ID, 1000, nil)
	assert.True(t, apperr.IsConflict(err))

	a := f.auction(t, 10)
	listed := f.listed(t, "50000003", 1000, a.ID)
	for _, bad := range []float64{0, -5, 0.004} {
		_, err = f.lots.CompleteSale(ctx, listed.ID, bad, nil)
		assert.True(t, apperr.IsValidation(err), "hammer %v", bad)
	}
	still, err := f.lots.Get(ctx, listed.ID)
	require.NoError(t, err)
	assert.Equal(t, Listed, still.Status)
	assert.Nil(t, still.SoldPrice)

	missing := uint(404)
	_, err = f.lots.CompleteSale(ctx, listed.ID, 500, &missing)
	assert.True(t, apperr.IsValidation(err))

	sale, err := f.lots.CompleteSale(ctx, listed.ID, 500, nil)
	require.NoError(t, err)
	assert.False(t, sale.MeetsReserve)
}

func TestCompleteSaleConcurrentLoserConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	l := f.listed(t, "50000004", 1000, a.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lots.CompleteSale(ctx, l.ID, float64(2000+i), nil)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.IsConflict(err):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	var n int64
	require.NoError(t, f.db.Model(&billing.Settlement{}).Where("lot_id = ?", l.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestWithdrawFeeWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	near := f.auction(t, 10)
	l := f.listed(t, "60000001", 4000, near.ID)
	w, err := f.lots.Withdraw(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, w.WithdrawalFee)
	assert.Equal(t, Withdrawn, w.Lot.Status)
	assert.Equal(t, 200.0, w.Lot.WithdrawalFee)
	assert.NotNil(t, w.Lot.WithdrawnAt)
	assert.Contains(t, w.Message, "£200")

	far := f.auction(t, 20)
	l = f.listed(t, "60000002", 4000, far.ID)
	w, err = f.lots.Withdraw(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, w.WithdrawalFee)
	assert.Equal(t, "Lot withdrawn", w.Message)

	unassigned := f.lot(t, "60000003", 4000)
	w, err = f.lots.Withdraw(ctx, unassigned.ID)
	require.NoError(t, err)
	assert.Zero(t, w.WithdrawalFee)

	_, err = f.lots.Withdraw(ctx, unassigned.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestArchiveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	l := f.listed(t, "70000001", 1000, a.ID)

	_, err := f.lots.Archive(ctx, l.ID)
	require.NoError(t, err)

	active, err := f.lots.List(ctx, LotFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := f.lots.List(ctx, LotFilter{Status: Archived})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, Listed, archived[0].Status)

	got, err := f.lots.Unarchive(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, Listed, got.Status)
	assert.False(t, got.IsArchived)

	active, err = f.lots.List(ctx, LotFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, l.ID, active[0].ID)
	assert.Equal(t, []string{events.LotListed, events.LotArchived, events.LotUnarchived}, f.events.Subjects())
}

func TestListLotFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	seller := f.client(t, "seller@example.com")

	f.listed(t, "80000001", 1000, a.ID)
	_, err := f.lots.Create(ctx, LotInput{
		LotReference: "80000002", Artist: "Barbara Hepworth", Title: "Oval Form",
		Category: "Sculpture", EstimateLow: 100, EstimateHigh: 200, SellerID: &seller.ID,
	})
	require.NoError(t, err)

	byAuction, err := f.lots.List(ctx, LotFilter{AuctionID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, byAuction, 1)

	byStatus, err := f.lots.List(ctx, LotFilter{Status: Pending})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "80000002", byStatus[0].LotReference)

	byArtist, err := f.lots.List(ctx, LotFilter{Artist: "hepworth"})
	require.NoError(t, err)
	assert.Len(t, byArtist, 1)

	byCategory, err := f.lots.List(ctx, LotFilter{Category: "Sculpture"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	bySeller, err := f.lots.List(ctx, LotFilter{SellerID: &seller.ID})
	require.NoError(t, err)
	assert.Len(t, bySeller, 1)

	pct, err := f.lots.List(ctx, LotFilter{Artist: "%"})
	require.NoError(t, err)
	assert.Empty(t, pct)

	_, err = f.lots.List(ctx, LotFilter{Status: "Lost"})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "90000001", 1000)
	f.lot(t, "90000002", 1000)

	high := 5000.0
	title := "Renamed"
	got, err := f.lots.Update(ctx, l.ID, LotPatch{EstimateHigh: &high, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got.EstimateHigh)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Winifred Nicholson", got.Artist)

	low := 6000.0
	_, err = f.lots.Update(ctx, l.ID, LotPatch{EstimateLow: &low})
	assert.True(t, apperr.IsValidation(err))

	sold := Sold
	_, err = f.lots.Update(ctx, l.ID, LotPatch{Status: &sold})
	assert.True(t, apperr.IsValidation(err))

	auctionID := f.auction(t, 10).ID
	_, err = f.lots.Update(ctx, l.ID, LotPatch{AuctionID: &auctionID})
	assert.True(t, apperr.IsValidation(err))

	taken := "90000002"
	_, err = f.lots.Update(ctx, l.ID, LotPatch{LotReference: &taken})
	assert.True(t, apperr.IsConflict(err))

	_, err = f.lots.Update(ctx, 999, LotPatch{Title: &title})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "91000001", 1000)
	img, _, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "a.png", Data: pngBytes(t, 40, 40)})
	require.NoError(t, err)
	require.True(t, f.store.Has(img.StorageKey))

	require.NoError(t, f.lots.Delete(ctx, l.ID))
	_, err = f.lots.Get(ctx, l.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.False(t, f.store.Has(img.StorageKey))
	assert.Empty(t, f.store.Objects)

	var n int64
	require.NoError(t, f.db.Model(&LotImage{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestDeleteSoldLotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.auction(t, 10)
	l := f.listed(t, "91000002", 1000, a.ID)
	_, err := f.lots.CompleteSale(ctx, l.ID, 1200, nil)
	require.NoError(t, err)

	assert.True(t, apperr.IsConflict(f.lots.Delete(ctx, l.ID)))
}
