package catalogue

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"hash/fnv"
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/triage"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:embed templates/catalogue.html
var templateFS embed.FS

var catalogueTmpl = template.Must(template.ParseFS(templateFS, "templates/catalogue.html"))

const DefaultPDFCacheSize = 32

// Renderer prints an HTML document to PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

type PDF struct {
	Filename string
	Data     []byte
}

type PDFService struct {
	db        *gorm.DB
	renderer  Renderer
	cache     *lru.Cache
	assetBase string
}

// NewPDFService renders catalogues with r. assetBase is prefixed to image
// URLs that are relative to this server, since the renderer loads the page
// outside any origin.
func NewPDFService(db *gorm.DB, r Renderer, cacheSize int, assetBase string) *PDFService {
	if cacheSize <= 0 {
		cacheSize = DefaultPDFCacheSize
	}
	cache, _ := lru.New(cacheSize)
	return &PDFService{db: db, renderer: r, cache: cache, assetBase: strings.TrimRight(assetBase, "/")}
}

type pageView struct {
	Title     string
	Location  string
	Date      string
	StartTime string
	Theme     string
	Lots      []lotView
}

type lotView struct {
	Reference   string
	Artist      string
	Title       string
	Year        string
	Description string
	Estimate    string
	Thumbnail   string
}

// Generate prints the catalogue of an auction: every listed lot in lot
// reference order. Output is cached until the auction, its lots or their
// images change.
func (s *PDFService) Generate(ctx context.Context, auctionID uint) (*PDF, error) {
	var a auctions.Auction
	if err := s.db.WithContext(ctx).First(&a, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Auction not found")
		}
		return nil, fmt.Errorf("load auction %d: %w", auctionID, err)
	}

	var lots []auctions.Lot
	err := s.db.WithContext(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("display_order ASC").Order("id ASC")
		}).
		Where("auction_id = ? AND status = ? AND is_archived = ?", auctionID, auctions.Listed, false).
		Order("lot_reference ASC").
		Find(&lots).Error
	if err != nil {
		return nil, fmt.Errorf("load lots of auction %d: %w", auctionID, err)
	}

	out := &PDF{Filename: fmt.Sprintf("Catalogue_%d.pdf", auctionID)}
	key := fingerprint(&a, lots)
	if v, ok := s.cache.Get(key); ok {
		out.Data = v.([]byte)
		return out, nil
	}

	var html bytes.Buffer
	if err := catalogueTmpl.Execute(&html, s.view(&a, lots)); err != nil {
		return nil, fmt.Errorf("build catalogue html: %w", err)
	}
	data, err := s.renderer.RenderPDF(ctx, html.String())
	if err != nil {
		return nil, fmt.Errorf("render catalogue %d: %w", auctionID, err)
	}
	s.cache.Add(key, data)
	slog.Info("catalogue rendered",
		slog.Uint64("auction_id", uint64(auctionID)),
		slog.Int("lots", len(lots)),
		slog.Int("bytes", len(data)))

	out.Data = data
	return out, nil
}

func (s *PDFService) view(a *auctions.Auction, lots []auctions.Lot) pageView {
	v := pageView{
		Title:     a.Title,
		Location:  string(a.Location),
		Date:      a.AuctionDate.Format("02 January 2006"),
		StartTime: string(a.StartTime),
	}
	if a.Theme != nil {
		v.Theme = *a.Theme
	}
	for i := range lots {
		l := &lots[i]
		lv := lotView{
			Reference:   l.LotReference,
			Artist:      l.Artist,
			Title:       l.Title,
			Description: l.Description,
			Estimate: triage.Pounds(decimal.NewFromFloat(l.EstimateLow)) + " - " +
				triage.Pounds(decimal.NewFromFloat(l.EstimateHigh)),
		}
		if l.YearOfProduction != nil {
			lv.Year = strconv.Itoa(*l.YearOfProduction)
		}
		if img := l.PrimaryImage(); img != nil {
			src := img.ImageURL
			if img.ThumbnailURL != nil {
				src = *img.ThumbnailURL
			}
			lv.Thumbnail = s.absolute(src)
		}
		v.Lots = append(v.Lots, lv)
	}
	return v
}

func (s *PDFService) absolute(u string) string {
	if strings.HasPrefix(u, "/") && s.assetBase != "" {
		return s.assetBase + u
	}
	return u
}

// fingerprint changes whenever anything printed in the catalogue does.
func fingerprint(a *auctions.Auction, lots []auctions.Lot) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d", a.ID, a.UpdatedAt.UnixNano())
	for _, l := range lots {
		fmt.Fprintf(h, "|%d:%d", l.ID, l.UpdatedAt.UnixNano())
		for _, img := range l.Images {
			fmt.Fprintf(h, ",%d:%t", img.ID, img.IsPrimary)
		}
	}
	return fmt.Sprintf("%d:%x", a.ID, h.Sum64())
}
