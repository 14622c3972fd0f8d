package watermark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var rasterFormats = map[string]imaging.Format{
	"image/png":  imaging.PNG,
	"image/jpeg": imaging.JPEG,
	"image/jpg":  imaging.JPEG,
}

const (
	tileAngle   = 30.0
	tilePadding = 6
	tileGap     = 24
)

var stampInk = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

// Raster composites a rotated, semi-transparent stamp tile across the whole image.
type Raster struct {
	opt Options
}

func NewRaster(opt Options) *Raster {
	return &Raster{opt: opt}
}

func (r *Raster) Supports(contentType string) bool {
	_, ok := rasterFormats[normalizeType(contentType)]
	return ok
}

func (r *Raster) Apply(ctx context.Context, contentType string, src []byte, st Stamp) ([]byte, error) {
	format, ok := rasterFormats[normalizeType(contentType)]
	if !ok {
		return nil, ErrUnsupported
	}

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	stamp := scaledTile(st.Lines(), bounds.Dx())

	layer := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	tileLayer(layer, stamp)

	out := imaging.Overlay(img, layer, bounds.Min, r.opt.opacity())

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, format, imaging.JPEGQuality(92)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// renderTile draws the stamp lines onto a transparent tile using the fixed 7x13 face.
func renderTile(lines []string) *image.NRGBA {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}

	tile := image.NewNRGBA(image.Rect(0, 0, width+2*tilePadding, len(lines)*lineHeight+2*tilePadding))
	d := &font.Drawer{Dst: tile, Src: image.NewUniform(stampInk), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(tilePadding, tilePadding+i*lineHeight+ascent)
		d.DrawString(l)
	}
	return tile
}

// scaledTile sizes the tile to roughly a third of the image width and rotates it.
func scaledTile(lines []string, imageWidth int) *image.NRGBA {
	tile := renderTile(lines)
	target := imageWidth / 3
	if target > tile.Bounds().Dx() {
		tile = imaging.Resize(tile, target, 0, imaging.NearestNeighbor)
	}
	return imaging.Rotate(tile, tileAngle, color.Transparent)
}

// tileLayer repeats the stamp over dst in a staggered grid.
func tileLayer(dst *image.NRGBA, stamp *image.NRGBA) {
	sw, sh := stamp.Bounds().Dx(), stamp.Bounds().Dy()
	stepX, stepY := sw+tileGap, sh+tileGap
	db := dst.Bounds()

	for row, y := 0, -sh/2; y < db.Dy(); row, y = row+1, y+stepY {
		offset := 0
		if row%2 == 1 {
			offset = stepX / 2
		}
		for x := -sw/2 - offset; x < db.Dx(); x += stepX {
			r := image.Rect(x, y, x+sw, y+sh)
			draw.Draw(dst, r, stamp, image.Point{}, draw.Over)
		}
	}
}
