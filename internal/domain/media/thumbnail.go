package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailSize    = 300
	thumbnailQuality = 85
)

type Thumbnail struct {
	Data          []byte
	ContentType   string
	Ext           string
	Width, Height int
}

// MakeThumbnail fits data inside a maxSide × maxSide box keeping the aspect
// ratio. Images already inside the box keep their size.
func MakeThumbnail(data []byte, maxSide int) (*Thumbnail, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxSide)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	t := &Thumbnail{Width: w, Height: h}
	// Everything but jpeg is written as png.
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality})
		t.ContentType, t.Ext = "image/jpeg", ".jpg"
	default:
		err = png.Encode(&buf, dst)
		t.ContentType, t.Ext = "image/png", ".png"
	}
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	t.Data = buf.Bytes()
	return t, nil
}

func fitWithin(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
