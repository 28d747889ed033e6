package auctions

import (
	"context"
	"testing"

	"auction-house/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) images(t *testing.T, lotID uint) []LotImage {
	t.Helper()
	var out []LotImage
	require.NoError(t, f.db.Where("lot_id = ?", lotID).Order("display_order").Find(&out).Error)
	return out
}

func primaries(imgs []LotImage) []uint {
	var ids []uint
	for _, img := range imgs {
		if img.IsPrimary {
			ids = append(ids, img.ID)
		}
	}
	return ids
}

func TestUploadThreeImagesOnePrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "12000001", 1000)

	var first *LotImage
	for i, isPrimary := range []bool{true, false, false} {
		img, created, err := f.lots.AddImage(ctx, l.ID, ImageUpload{
			Filename:  "photo.png",
			Data:      pngBytes(t, 400+i, 200),
			IsPrimary: isPrimary,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, i, img.DisplayOrder)
		if i == 0 {
			first = img
		}
	}

	imgs := f.images(t, l.ID)
	require.Len(t, imgs, 3)
	assert.Equal(t, []uint{first.ID}, primaries(imgs))

	got, err := f.lots.Get(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PrimaryImage())
	assert.Equal(t, first.ID, got.PrimaryImage().ID)
}

func TestFirstImageBecomesPrimary(t *testing.T) {
	f := newFixture(t)
	l := f.lot(t, "12000002", 1000)

	img, _, err := f.lots.AddImage(context.Background(), l.ID, ImageUpload{Filename: "a.png", Data: pngBytes(t, 600, 300)})
	require.NoError(t, err)
	assert.True(t, img.IsPrimary)
	require.NotNil(t, img.ThumbnailURL)
	assert.Contains(t, *img.ThumbnailURL, "/thumbnails/")
	assert.Equal(t, 2, f.store.Puts)
}

func TestReuploadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "12000003", 1000)
	a := pngBytes(t, 50, 50)
	b := pngBytes(t, 60, 60)

	imgA, _, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "a.png", Data: a})
	require.NoError(t, err)
	imgB, _, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "b.png", Data: b})
	require.NoError(t, err)
	puts := f.store.Puts

	again, created, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "b-copy.png", Data: b, IsPrimary: true})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, imgB.ID, again.ID)
	assert.True(t, again.IsPrimary)
	assert.Equal(t, puts, f.store.Puts)

	imgs := f.images(t, l.ID)
	require.Len(t, imgs, 2)
	assert.Equal(t, []uint{imgB.ID}, primaries(imgs))
	assert.NotEqual(t, imgA.ID, imgB.ID)
}

func TestSetPrimaryAndDeletePromotesNext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "12000004", 1000)

	var ids []uint
	for i := 0; i < 3; i++ {
		img, _, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "p.png", Data: pngBytes(t, 20+i, 20)})
		require.NoError(t, err)
		ids = append(ids, img.ID)
	}

	require.NoError(t, f.lots.SetPrimaryImage(ctx, ids[2]))
	assert.Equal(t, []uint{ids[2]}, primaries(f.images(t, l.ID)))

	require.NoError(t, f.lots.DeleteImage(ctx, ids[2]))
	assert.Equal(t, []uint{ids[0]}, primaries(f.images(t, l.ID)))

	require.NoError(t, f.lots.DeleteImage(ctx, ids[1]))
	assert.Equal(t, []uint{ids[0]}, primaries(f.images(t, l.ID)))

	assert.True(t, apperr.IsNotFound(f.lots.DeleteImage(ctx, ids[1])))
	assert.True(t, apperr.IsNotFound(f.lots.SetPrimaryImage(ctx, 999)))
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lot(t, "12000005", 1000)

	_, _, err := f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "x.png"})
	assert.True(t, apperr.IsValidation(err))

	_, _, err = f.lots.AddImage(ctx, l.ID, ImageUpload{Filename: "notes.txt", Data: []byte("hello there")})
	assert.True(t, apperr.IsValidation(err))

	_, _, err = f.lots.AddImage(ctx, 999, ImageUpload{Filename: "a.png", Data: pngBytes(t, 5, 5)})
	assert.True(t, apperr.IsNotFound(err))
}

func TestUndecodableImageHasNoThumbnail(t *testing.T) {
	f := newFixture(t)
	l := f.lot(t, "12000006", 1000)

	data := append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), []byte("truncated")...)
	img, created, err := f.lots.AddImage(context.Background(), l.ID, ImageUpload{Filename: "broken.png", Data: data})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, img.ThumbnailURL)
	assert.Equal(t, 1, f.store.Puts)
}
