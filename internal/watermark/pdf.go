package watermark

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	model.ConfigPath = "disable"
}

const contentTypePDF = "application/pdf"

// tile is one stamp placement on a page.
type tile struct {
	pos      string
	rotation int
	scale    string
}

var pdfTiles = []tile{
	{pos: "tl", rotation: 30, scale: "0.45 rel"},
	{pos: "c", rotation: 45, scale: "0.6 rel"},
	{pos: "br", rotation: 30, scale: "0.45 rel"},
	{pos: "tr", rotation: -30, scale: "0.35 rel"},
	{pos: "bl", rotation: -30, scale: "0.35 rel"},
}

// PDF stamps every page with tiled semi-transparent identity text and a header marker.
type PDF struct {
	opt Options
}

func NewPDF(opt Options) *PDF {
	return &PDF{opt: opt}
}

func (p *PDF) Supports(contentType string) bool {
	return normalizeType(contentType) == contentTypePDF
}

func (p *PDF) Apply(ctx context.Context, _ string, src []byte, st Stamp) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(src), conf)
	if err != nil {
		return nil, fmt.Errorf("read page count: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	marks, err := p.watermarks(st)
	if err != nil {
		return nil, err
	}
	perPage := make(map[int][]*model.Watermark, pages)
	for i := 1; i <= pages; i++ {
		perPage[i] = marks
	}

	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(src), &out, perPage, conf); err != nil {
		return nil, fmt.Errorf("stamp pdf: %w", err)
	}
	return out.Bytes(), nil
}

func (p *PDF) watermarks(st Stamp) ([]*model.Watermark, error) {
	marks := make([]*model.Watermark, 0, len(pdfTiles)+1)
	for _, t := range pdfTiles {
		wm, err := api.TextWatermark(st.Text(), tileDescription(t, p.opt.opacity()), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("build tile %s: %w", t.pos, err)
		}
		marks = append(marks, wm)
	}
	header, err := api.TextWatermark(st.Header(), headerDescription(), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("build header: %w", err)
	}
	return append(marks, header), nil
}

func tileDescription(t tile, opacity float64) string {
	return fmt.Sprintf("fontname:Helvetica, points:24, fillcolor:#808080, position:%s, rotation:%d, scalefactor:%s, opacity:%.2f",
		t.pos, t.rotation, t.scale, opacity)
}

func headerDescription() string {
	return "fontname:Helvetica, points:9, fillcolor:#B00000, position:tc, offset:0 -12, rotation:0, scalefactor:1 abs, opacity:0.8"
}
