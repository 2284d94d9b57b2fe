// Package renderer draws scene text onto solid-color cards.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/story2video/internal/palette"
	"github.com/ivlev/story2video/internal/system"
)

const (
	DefaultFontSize = 42
	DefaultMargin   = 80
	DefaultLineGap  = 5
)

type Options struct {
	FontPath string  // TrueType/OpenType file; empty uses the embedded Go font
	FontSize float64 // points at 72 DPI, i.e. pixels
	Margin   int     // total horizontal margin subtracted from the canvas width
	LineGap  int     // pixels between wrapped lines
}

// Renderer is safe for concurrent use: each Render builds its own font face.
type Renderer struct {
	opts      Options
	font      *opentype.Font // nil selects basicfont
	textColor color.Color
	logger    zerolog.Logger
}

// New loads the preferred font. A missing or broken font file falls back to the
// embedded Go Regular, and that to basicfont.Face7x13.
func New(opts Options) *Renderer {
	r := newRenderer(opts)
	r.font = r.loadFont(opts.FontPath)
	return r
}

// NewBasic returns a renderer that always uses basicfont.Face7x13.
func NewBasic(opts Options) *Renderer {
	return newRenderer(opts)
}

func newRenderer(opts Options) *Renderer {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}
	if opts.LineGap < 0 {
		opts.LineGap = DefaultLineGap
	}

	return &Renderer{
		opts:      opts,
		textColor: color.White,
		logger:    log.Logger.With().Str("component", "renderer").Logger(),
	}
}

func (r *Renderer) loadFont(path string) *opentype.Font {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var f *opentype.Font
			f, err = opentype.Parse(data)
			if err == nil {
				return f
			}
		}
		r.logger.Warn().Err(err).Str("font", path).Msg("preferred font unavailable, using built-in font")
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		r.logger.Warn().Err(err).Msg("embedded font unusable, using basicfont")
		return nil
	}
	return f
}

// NewFace returns a face for the configured font. Callers must Close it.
func (r *Renderer) NewFace() font.Face {
	if r.font == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    r.opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("cannot size font, using basicfont")
		return basicfont.Face7x13
	}
	return face
}

// MaxTextWidth is the widest a wrapped line may be on a canvas of width w.
func (r *Renderer) MaxTextWidth(w int) int {
	return w - r.opts.Margin
}

// Render draws text onto a width x height card. The frame comes from the
// shared image pool; hand it back with system.PutImage when done.
func (r *Renderer) Render(text string, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	img := system.GetImage(image.Rect(0, 0, width, height))
	bg := palette.Pick(palette.Seed(text))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := r.NewFace()
	defer face.Close()

	lines := Wrap(face, text, r.MaxTextWidth(width))
	if len(lines) == 0 {
		return img, nil
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := ascent + metrics.Descent.Ceil()
	blockHeight := len(lines)*lineHeight + (len(lines)-1)*r.opts.LineGap

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.textColor),
		Face: face,
	}

	y := (height - blockHeight) / 2
	for _, line := range lines {
		lineWidth := d.MeasureString(line).Ceil()
		x := (width - lineWidth) / 2
		d.Dot = fixed.P(x, y+ascent)
		d.DrawString(line)
		y += lineHeight + r.opts.LineGap
	}

	return img, nil
}

// RGB packs img into tightly packed 8-bit R,G,B triples, row by row.
func RGB(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i], row[i+1], row[i+2])
		}
	}
	return out
}
