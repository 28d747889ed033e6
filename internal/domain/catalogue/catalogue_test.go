package catalogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"
	"auction-house/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	auctions *auctions.AuctionManager
	lots     *auctions.LotManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t, &clients.Client{}, &auctions.Auction{}, &auctions.Lot{}, &auctions.LotImage{}, &billing.Settlement{})
	return &fixture{
		db:       db,
		auctions: auctions.NewAuctionManager(db, auctions.Options{}),
		lots:     auctions.NewLotManager(db, auctions.Options{}),
	}
}

func (f *fixture) auction(t *testing.T, loc auctions.Location, typ string, daysOut int) *auctions.Auction {
	t.Helper()
	a, err := f.auctions.Create(context.Background(), auctions.AuctionInput{
		Title:       string(loc) + " " + typ + " sale",
		Location:    loc,
		AuctionDate: time.Now().AddDate(0, 0, daysOut),
		StartTime:   auctions.Afternoon,
		AuctionType: typ,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) lot(t *testing.T, ref, artist, title, category, desc string, auctionID uint) *auctions.Lot {
	t.Helper()
	ctx := context.Background()
	l, err := f.lots.Create(ctx, auctions.LotInput{
		LotReference: ref,
		Artist:       artist,
		Title:        title,
		Category:     category,
		Description:  desc,
		EstimateLow:  1000,
		EstimateHigh: 1500,
	})
	require.NoError(t, err)
	if auctionID != 0 {
		l, err = f.lots.AssignToAuction(ctx, l.ID, auctionID)
		require.NoError(t, err)
	}
	return l
}

func refs(lots []auctions.Lot) []string {
	out := make([]string, 0, len(lots))
	for _, l := range lots {
		out = append(out, l.LotReference)
	}
	return out
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.db)
	ctx := context.Background()

	london := f.auction(t, auctions.London, "Physical", 10)
	paris := f.auction(t, auctions.Paris, "Online", 20)
	f.lot(t, "00000001", "John Piper", "Seaton Delaval", "Fine Art", "Gouache on paper", london.ID)
	f.lot(t, "00000002", "Lucie Rie", "Footed Bowl", "Ceramics", "Stoneware with a manganese glaze", paris.ID)
	f.lot(t, "00000003", "John Nash", "The Cornfield Study", "Fine Art", "", paris.ID)
	f.lot(t, "00000004", "Unlisted Artist", "Pending", "Fine Art", "", 0)

	all, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"00000001", "00000002", "00000003"}, refs(all))

	got, err := svc.Search(ctx, SearchParams{Location: "Paris"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"00000002", "00000003"}, refs(got))

	got, err = svc.Search(ctx, SearchParams{AuctionType: "Live"})
	require.NoError(t, err)
	assert.Equal(t, []string{"00000001"}, refs(got))

	got, err = svc.Search(ctx, SearchParams{Category: "Fine Art", Location: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{"00000003"}, refs(got))

	got, err = svc.Search(ctx, SearchParams{Query: "MANGANESE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"00000002"}, refs(got))

	day := paris.AuctionDate
	got, err = svc.Search(ctx, SearchParams{AuctionDate: &day, Query: "john", Category: "Fine Art", AuctionType: "Online", Location: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{"00000003"}, refs(got))

	got, err = svc.Search(ctx, SearchParams{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.Search(ctx, SearchParams{Location: "Berlin"})
	assert.True(t, apperr.IsValidation(err))
}

func TestSearchExcludesArchived(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.db)
	ctx := context.Background()

	a := f.auction(t, auctions.London, "Physical", 10)
	b := f.auction(t, auctions.London, "Physical", 12)
	l := f.lot(t, "00000011", "Eric Ravilious", "Train Landscape", "Fine Art", "", a.ID)
	f.lot(t, "00000012", "Eric Ravilious", "Wet Afternoon", "Fine Art", "", b.ID)

	_, err := f.lots.Archive(ctx, l.ID)
	require.NoError(t, err)
	require.NoError(t, f.auctions.Archive(ctx, b.ID))

	got, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchRanksCloserMatchesFirst(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.db)
	a := f.auction(t, auctions.London, "Physical", 10)

	f.lot(t, "00000021", "Ben Nicholson", "Still life", "Fine Art", "after a painting by moore", a.ID)
	f.lot(t, "00000022", "Henry Moore", "Reclining Figure", "Sculpture", "", a.ID)

	got, err := svc.Search(context.Background(), SearchParams{Query: "moore"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "00000022", got[0].LotReference)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.db)
	f.lot(t, "00000031", "A", "T", "Sculpture", "", 0)
	f.lot(t, "00000032", "A", "T", "Ceramics", "", 0)
	f.lot(t, "00000033", "A", "T", "Ceramics", "", 0)

	got, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ceramics", "Sculpture"}, got)
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	html  string
	err   error
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestGeneratePDF(t *testing.T) {
	f := newFixture(t)
	r := &fakeRenderer{}
	svc := NewPDFService(f.db, r, 4, "https://house.example")
	ctx := context.Background()

	a := f.auction(t, auctions.London, "Physical", 10)
	f.lot(t, "00000042", "Second", "Later Work <b>", "Fine Art", "", a.ID)
	first := f.lot(t, "00000041", "First", "Early Work", "Fine Art", "", a.ID)
	f.lot(t, "00000043", "Pending Artist", "Not in sale", "Fine Art", "", 0)
	pdf, err := svc.Generate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Catalogue_%d.pdf", a.ID), pdf.Filename)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf.Data))

	html := r.html
	assert.Less(t, strings.Index(html, "00000041"), strings.Index(html, "00000042"))
	assert.NotContains(t, html, "Pending Artist")
	assert.Contains(t, html, "Later Work &lt;b&gt;")
	assert.Contains(t, html, "£1,000 - £1,500")
	assert.Contains(t, html, a.AuctionDate.Format("02 January 2006"))

	_, err = svc.Generate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.calls)

	title := "Retitled"
	_, err = f.lots.Update(ctx, first.ID, auctions.LotPatch{Title: &title})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
	assert.Contains(t, r.html, "Retitled")
}

func TestGeneratePDFErrors(t *testing.T) {
	f := newFixture(t)
	r := &fakeRenderer{err: errors.New("chrome went away")}
	svc := NewPDFService(f.db, r, 0, "")
	ctx := context.Background()

	_, err := svc.Generate(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))

	a := f.auction(t, auctions.Paris, "Online", 5)
	_, err = svc.Generate(ctx, a.ID)
	assert.ErrorContains(t, err, "chrome went away")
	assert.Contains(t, r.html, "No lots are listed")
}
