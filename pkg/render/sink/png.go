package sink

import (
	"bytes"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/fonts"
	"github.com/matzehuels/slipmap/pkg/layout"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgRenderer
	scale float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGSVGOptions applies SVG options (title, palette, background) to the
// PNG renderer so both formats look alike.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) {
		for _, opt := range opts {
			opt(&r.svgRenderer)
		}
	}
}

// RenderPNG rasterizes l with the embedded Go font.
func RenderPNG(l layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{svgRenderer: newSVGRenderer(l), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", r.scale)
	}
	if !(l.Width > 0) || !(l.Height > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout frame must be positive, got %gx%g", l.Width, l.Height)
	}

	offset := 0.0
	if r.title != "" {
		offset = titleHeight
	}
	s := r.scale
	dc := gg.NewContext(int(l.Width*s+0.5), int((l.Height+offset)*s+0.5))
	if r.background != "" {
		dc.SetHexColor(r.background)
		dc.Clear()
	}

	faces := newFaceSet()
	defer faces.close()

	if r.title != "" {
		if err := faces.use(dc, 18*s); err != nil {
			return nil, err
		}
		dc.SetHexColor("#333333")
		dc.DrawStringAnchored(r.title, l.Width/2*s, titleHeight/2*s, 0.5, 0.35)
	}

	var err error
	switch {
	case l.IsTreemap():
		err = r.drawTreemap(dc, faces, l, offset)
	case l.IsWordCloud():
		err = r.drawWordCloud(dc, faces, l, offset)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (r pngRenderer) drawTreemap(dc *gg.Context, faces *faceSet, l layout.Layout, offset float64) error {
	s := r.scale
	for i, n := range l.Nodes {
		rect := n.Rect
		dc.DrawRectangle(rect.X*s, (rect.Y+offset)*s, rect.W*s, rect.H*s)
		dc.SetHexColor(r.palette.colorAt(i))
		dc.FillPreserve()
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(1.5 * s)
		dc.Stroke()
	}

	dc.SetHexColor("#1a1a1a")
	for _, n := range l.Nodes {
		text, ok := labelTile(n, l.ShowTime)
		if !ok {
			continue
		}
		if err := faces.use(dc, text.FontSize*s); err != nil {
			return err
		}
		c := n.Rect.Center()
		lines := float64(len(text.Lines))
		y := c.Y + offset - (lines-1)*text.FontSize/2
		for _, line := range text.Lines {
			dc.DrawStringAnchored(line, c.X*s, y*s, 0.5, 0.35)
			y += text.FontSize
		}
	}
	return nil
}

func (r pngRenderer) drawWordCloud(dc *gg.Context, faces *faceSet, l layout.Layout, offset float64) error {
	s := r.scale
	for _, w := range l.Words {
		if err := faces.use(dc, w.FontSize*s); err != nil {
			return err
		}
		dc.SetHexColor(r.palette.colorFor(w.Label))
		dc.DrawStringAnchored(w.Label, w.Position.X*s, (w.Position.Y+offset)*s, 0.5, 0.35)
	}
	return nil
}

// faceSet caches faces by size for one render.
type faceSet struct {
	faces map[float64]font.Face
}

func newFaceSet() *faceSet { return &faceSet{faces: make(map[float64]font.Face)} }

func (f *faceSet) use(dc *gg.Context, size float64) error {
	face, ok := f.faces[size]
	if !ok {
		var err error
		face, err = fonts.Face(size)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "load font")
		}
		f.faces[size] = face
	}
	dc.SetFontFace(face)
	return nil
}

func (f *faceSet) close() {
	for _, face := range f.faces {
		face.Close()
	}
}
