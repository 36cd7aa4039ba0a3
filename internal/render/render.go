package render

import (
	"fmt"
	"hash/fnv"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wellnesslabco/glowpost/internal/catalog"
)

// Pin images are 2:3, the layout Pinterest's feed favors.
const (
	imageWidth  = 1000
	imageHeight = 1500

	titleWrapWidth = 20
	jpegQuality    = 95
)

// backgroundPalette holds the four pastel tones a pin background is picked from.
var backgroundPalette = []string{
	"#FFE5E5", // soft pink
	"#E5F3FF", // soft blue
	"#FFF5E5", // soft peach
	"#F0E5FF", // soft purple
}

// benefitLines is the fixed benefit copy drawn on every pin.
var benefitLines = []string{
	"✓ Science-Backed Formula",
	"✓ Visible Results",
	"✓ Trending in 2026",
	"✓ Highly Rated",
}

const ctaLabel = "Tap to Shop →"

// Image is a rendered pin artifact on disk.
type Image struct {
	Path   string
	Width  int
	Height int
}

// Renderer draws fixed-layout promotional pin images.
type Renderer struct {
	fontPath string
}

// New returns a Renderer. fontPath names a preferred TTF asset; when it is
// empty or unreadable the built-in Go fonts are used instead.
func New(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

// Render draws the promotional image for a product and writes it as a JPEG at
// outputPath, overwriting any existing file there.
func (r *Renderer) Render(product catalog.Product, outputPath string) (Image, error) {
	dc := gg.NewContext(imageWidth, imageHeight)

	dc.SetHexColor(pickBackground(product.ASIN))
	dc.Clear()

	titleFace, bodyFace := r.loadFaces()

	// Product name, wrapped and centered in the title region.
	dc.SetHexColor("#2C2C2C")
	dc.SetFontFace(titleFace)
	titleY := 140.0
	for _, line := range wrapTitle(product.Name, titleWrapWidth) {
		dc.DrawStringAnchored(line, imageWidth/2, titleY, 0.5, 0.5)
		titleY += 75
	}

	// Benefit bullets at fixed vertical offsets.
	dc.SetHexColor("#4A4A4A")
	dc.SetFontFace(bodyFace)
	benefitY := 420.0
	for _, line := range benefitLines {
		dc.DrawString(line, 100, benefitY)
		benefitY += 80
	}

	// Call-to-action button near the bottom.
	ctaWidth, ctaHeight := dc.MeasureString(ctaLabel)
	buttonX := (imageWidth - ctaWidth) / 2
	dc.SetHexColor("#FF6B9D")
	dc.DrawRoundedRectangle(buttonX-30, 1350, ctaWidth+60, ctaHeight+40, 12)
	dc.Fill()
	dc.SetHexColor("#FFFFFF")
	dc.DrawStringAnchored(ctaLabel, imageWidth/2, 1350+(ctaHeight+40)/2, 0.5, 0.35)

	if err := writeJPEG(dc, outputPath); err != nil {
		return Image{}, err
	}

	slog.Info("rendered pin image", "asin", product.ASIN, "output", outputPath,
		"dimensions", fmt.Sprintf("%dx%d", imageWidth, imageHeight))

	return Image{Path: outputPath, Width: imageWidth, Height: imageHeight}, nil
}

// loadFaces returns title and body font faces. The preferred font asset is
// optional; render never fails over fonts.
func (r *Renderer) loadFaces() (font.Face, font.Face) {
	if r.fontPath != "" {
		if data, err := os.ReadFile(r.fontPath); err == nil {
			if preferred, err := truetype.Parse(data); err == nil {
				return truetype.NewFace(preferred, &truetype.Options{Size: 60}),
					truetype.NewFace(preferred, &truetype.Options{Size: 40})
			}
		}
		slog.Warn("preferred font unavailable, using built-in fonts", "path", r.fontPath)
	}

	// gofont assets are compiled in, so parsing cannot fail at runtime.
	titleFont, _ := truetype.Parse(gobold.TTF)
	bodyFont, _ := truetype.Parse(goregular.TTF)
	return truetype.NewFace(titleFont, &truetype.Options{Size: 60}),
		truetype.NewFace(bodyFont, &truetype.Options{Size: 40})
}

func writeJPEG(dc *gg.Context, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode JPEG: %w", err)
	}
	return nil
}

// pickBackground maps a product id onto the fixed palette. Hashing keeps the
// choice stable for a given product across runs.
func pickBackground(asin string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(asin))
	return backgroundPalette[int(h.Sum32())%len(backgroundPalette)]
}

// wrapTitle word-wraps text to a fixed character width, breaking on spaces.
func wrapTitle(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
