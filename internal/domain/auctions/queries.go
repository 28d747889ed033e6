package auctions

import (
	"strings"

	"gorm.io/gorm"
)

// WithLotRelations preloads what a lot response shows: its auction and its
// images in display order.
func WithLotRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Auction").
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("lot_images.display_order ASC").Order("lot_images.id ASC")
		})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a case-insensitive LIKE pattern for s, to be used
// with LOWER(column) and ESCAPE '\'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// PrimaryImage returns the primary image of a lot with images loaded.
func (l *Lot) PrimaryImage() *LotImage {
	for i := range l.Images {
		if l.Images[i].IsPrimary {
			return &l.Images[i]
		}
	}
	return nil
}
