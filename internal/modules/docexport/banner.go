package docexport

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Banner raster resolution in pixels per millimetre.
const bannerScale = 8.0

var (
	fontsOnce sync.Once
	boldTTF   *truetype.Font
	plainTTF  *truetype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if boldTTF, fontsErr = truetype.Parse(gobold.TTF); fontsErr != nil {
			return
		}
		plainTTF, fontsErr = truetype.Parse(goregular.TTF)
	})
	return fontsErr
}

// face returns a face whose em size matches pt points at bannerScale.
func face(f *truetype.Font, pt float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: pt * 25.4 / 72 * bannerScale, Hinting: font.HintingFull})
}

// renderBanner draws the cover banner: a blue band with the title centered
// at 35mm and the subtitle at 50mm.
func renderBanner(widthMM, heightMM float64, fill Color, title, subtitle string) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load banner fonts: %w", err)
	}
	w, h := int(widthMM*bannerScale), int(heightMM*bannerScale)
	dc := gg.NewContext(w, h)

	grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
	grad.AddColorStop(0, rgba(fill))
	grad.AddColorStop(1, color.RGBA{R: uint8(max(fill.R-22, 0)), G: uint8(max(fill.G-30, 0)), B: uint8(max(fill.B-10, 0)), A: 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	dc.SetColor(color.White)
	drawFitted(dc, boldTTF, 28, title, 35*bannerScale)
	drawFitted(dc, plainTTF, 18, subtitle, 50*bannerScale)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode banner png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawFitted centers s on baseline y, shrinking the size until it fits 90% of the width.
func drawFitted(dc *gg.Context, f *truetype.Font, pt float64, s string, y float64) {
	limit := float64(dc.Width()) * 0.9
	for ; pt > 8; pt -= 2 {
		dc.SetFontFace(face(f, pt))
		if w, _ := dc.MeasureString(s); w <= limit {
			break
		}
	}
	dc.DrawStringAnchored(s, float64(dc.Width())/2, y, 0.5, 0)
}

func rgba(c Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}
