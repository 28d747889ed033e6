package auctions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"auction-house/internal/domain/apperr"
	"auction-house/internal/domain/media"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNoStore = errors.New("image storage is not configured")

type ImageUpload struct {
	Filename  string
	Data      []byte
	IsPrimary bool
}

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AddImage stores an image and its thumbnail for a lot. Uploads are keyed by
// content hash, so sending the same file again returns the stored record
// (created is false) and can only move the primary flag onto it.
func (m *LotManager) AddImage(ctx context.Context, lotID uint, up ImageUpload) (img *LotImage, created bool, err error) {
	if len(up.Data) == 0 {
		return nil, false, apperr.Validation("file is empty")
	}
	contentType := http.DetectContentType(up.Data)
	ext, ok := imageExts[contentType]
	if !ok {
		return nil, false, apperr.Validation("only JPEG, PNG, GIF or WebP images can be uploaded")
	}
	if _, err := m.Get(ctx, lotID); err != nil {
		return nil, false, err
	}

	sum := sha256.Sum256(up.Data)
	checksum := hex.EncodeToString(sum[:])

	if existing, err := m.findImage(m.db.WithContext(ctx), lotID, checksum); err != nil {
		return nil, false, err
	} else if existing != nil {
		if up.IsPrimary && !existing.IsPrimary {
			if err := m.SetPrimaryImage(ctx, existing.ID); err != nil {
				return nil, false, err
			}
			existing.IsPrimary = true
		}
		return existing, false, nil
	}

	if m.opts.Store == nil {
		return nil, false, ErrNoStore
	}
	if fe := strings.ToLower(filepath.Ext(up.Filename)); fe == ".jpeg" || fe == ".jpg" {
		ext = fe
	}

	record := LotImage{LotID: lotID, Checksum: checksum}
	record.StorageKey = fmt.Sprintf("lots/%d/%s%s", lotID, checksum[:16], ext)
	record.ImageURL, err = m.opts.Store.Put(ctx, record.StorageKey, up.Data, contentType)
	if err != nil {
		return nil, false, fmt.Errorf("store image: %w", err)
	}

	thumb, err := media.MakeThumbnail(up.Data, media.ThumbnailSize)
	if err != nil {
		slog.Warn("thumbnail skipped", slog.Uint64("lot_id", uint64(lotID)), slog.Any("error", err))
	} else {
		key := fmt.Sprintf("lots/%d/thumbnails/%s%s", lotID, checksum[:16], thumb.Ext)
		url, err := m.opts.Store.Put(ctx, key, thumb.Data, thumb.ContentType)
		if err != nil {
			return nil, false, fmt.Errorf("store thumbnail: %w", err)
		}
		record.ThumbnailKey = &key
		record.ThumbnailURL = &url
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises uploads per lot so order and primary stay consistent.
		var l Lot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, lotID).Error; err != nil {
			return notFoundOr(err, "Lot not found", "load lot %d", lotID)
		}

		// A retry of the same upload may have won the race.
		if existing, err := m.findImage(tx, lotID, checksum); err != nil {
			return err
		} else if existing != nil {
			record = *existing
			return nil
		}

		var stats struct {
			N        int64
			MaxOrder *int
		}
		if err := tx.Model(&LotImage{}).
			Select("COUNT(*) AS n, MAX(display_order) AS max_order").
			Where("lot_id = ?", lotID).
			Scan(&stats).Error; err != nil {
			return fmt.Errorf("count images of lot %d: %w", lotID, err)
		}
		if stats.MaxOrder != nil {
			record.DisplayOrder = *stats.MaxOrder + 1
		}
		record.IsPrimary = false
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		created = true

		if up.IsPrimary || stats.N == 0 {
			if err := markPrimary(tx, lotID, record.ID); err != nil {
				return err
			}
			record.IsPrimary = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &record, created, nil
}

func (m *LotManager) findImage(db *gorm.DB, lotID uint, checksum string) (*LotImage, error) {
	var img LotImage
	err := db.Where("lot_id = ? AND checksum = ?", lotID, checksum).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up image: %w", err)
	}
	return &img, nil
}

// markPrimary flags imageID and clears every other image of the lot in one
// statement.
func markPrimary(tx *gorm.DB, lotID, imageID uint) error {
	err := tx.Model(&LotImage{}).
		Where("lot_id = ?", lotID).
		Update("is_primary", gorm.Expr("id = ?", imageID)).Error
	if err != nil {
		return fmt.Errorf("set primary image of lot %d: %w", lotID, err)
	}
	return nil
}

func (m *LotManager) SetPrimaryImage(ctx context.Context, imageID uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img LotImage
		if err := tx.First(&img, imageID).Error; err != nil {
			return notFoundOr(err, "Image not found", "load image %d", imageID)
		}
		return markPrimary(tx, img.LotID, img.ID)
	})
}

// DeleteImage removes one image. When it was the primary, the next image in
// display order takes over.
func (m *LotManager) DeleteImage(ctx context.Context, imageID uint) error {
	var img LotImage
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&img, imageID).Error; err != nil {
			return notFoundOr(err, "Image not found", "load image %d", imageID)
		}
		if err := tx.Delete(&LotImage{}, imageID).Error; err != nil {
			return fmt.Errorf("delete image %d: %w", imageID, err)
		}
		if !img.IsPrimary {
			return nil
		}

		var next LotImage
		err := tx.Where("lot_id = ?", img.LotID).
			Order("display_order ASC").Order("id ASC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find next image of lot %d: %w", img.LotID, err)
		}
		return markPrimary(tx, img.LotID, next.ID)
	})
	if err != nil {
		return err
	}
	m.removeObjects(ctx, img)
	return nil
}
