// Package catalogue serves the public view of lots on sale: search,
// categories and the printable auction catalogue.
package catalogue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/auctions"

	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"
)

// SearchParams filters combine with AND. Empty fields do not filter.
type SearchParams struct {
	Query       string
	Location    string
	AuctionType string
	Category    string
	AuctionDate *time.Time
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search returns listed, unarchived lots matching p. With a text query the
// best fuzzy matches come first; otherwise and on ties newer lots lead.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]auctions.Lot, error) {
	q := auctions.WithLotRelations(s.db.WithContext(ctx)).
		Model(&auctions.Lot{}).
		Select("lots.*").
		Joins("LEFT JOIN auctions ON auctions.id = lots.auction_id").
		Where("lots.status = ? AND lots.is_archived = ?", auctions.Listed, false).
		Where("(auctions.id IS NULL OR auctions.is_archived = ?)", false)

	text := strings.TrimSpace(p.Query)
	if text != "" {
		like := auctions.ContainsPattern(text)
		q = q.Where(
			"(LOWER(lots.artist) LIKE ? ESCAPE '\\' OR LOWER(lots.title) LIKE ? ESCAPE '\\' OR LOWER(lots.description) LIKE ? ESCAPE '\\')",
			like, like, like,
		)
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		if !auctions.Location(loc).Valid() {
			return nil, apperr.Validation("location must be London, Paris or New York")
		}
		q = q.Where("auctions.location = ?", loc)
	}
	if at := strings.TrimSpace(p.AuctionType); at != "" {
		t, ok := auctions.ParseAuctionType(at)
		if !ok {
			return nil, apperr.Validation("auction_type must be Physical or Online")
		}
		q = q.Where("auctions.auction_type = ?", t)
	}
	if c := strings.TrimSpace(p.Category); c != "" {
		q = q.Where("lots.category = ?", c)
	}
	if p.AuctionDate != nil {
		day := p.AuctionDate.UTC()
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		q = q.Where("auctions.auction_date >= ? AND auctions.auction_date < ?", day, day.AddDate(0, 0, 1))
	}

	var lots []auctions.Lot
	if err := q.Order("lots.created_at DESC").Order("lots.id DESC").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("search catalogue: %w", err)
	}
	if text == "" {
		return lots, nil
	}
	return rank(text, lots), nil
}

type searchable []auctions.Lot

func (s searchable) Len() int { return len(s) }

func (s searchable) String(i int) string {
	l := s[i]
	return strings.ToLower(l.Artist + " " + l.Title + " " + l.Description)
}

// rank orders lots by fuzzy score. Lots arrive newest first and the sort is
// stable, so recency breaks ties.
func rank(query string, lots []auctions.Lot) []auctions.Lot {
	matches := fuzzy.FindFrom(strings.ToLower(query), searchable(lots))
	score := make(map[int]int, len(matches))
	for _, m := range matches {
		score[m.Index] = m.Score
	}

	idx := make([]int, len(lots))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, oka := score[idx[a]]
		sb, okb := score[idx[b]]
		if oka != okb {
			return oka
		}
		return sa > sb
	})

	out := make([]auctions.Lot, len(lots))
	for i, j := range idx {
		out[i] = lots[j]
	}
	return out
}

// Categories lists the distinct categories of lots that are not archived.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).
		Model(&auctions.Lot{}).
		Where("is_archived = ? AND category <> ''", false).
		Distinct().
		Order("category").
		Pluck("category", &out).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
