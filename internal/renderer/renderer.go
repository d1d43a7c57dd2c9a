// Package renderer turns compiled HTML into PDF and thumbnail artifacts.
package renderer

import "context"

// Page sizes accepted in generation options.
const (
	PageSizeA4     = "A4"
	PageSizeLetter = "Letter"
	PageSizeLegal  = "Legal"
)

const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// defaultMarginPx matches the browser print default used by templates.
const defaultMarginPx = 40

// pxPerInch is the CSS reference pixel density.
const pxPerInch = 96

// Options controls the printed page. Margins are in CSS pixels.
type Options struct {
	PageSize     string `json:"pageSize"`
	Orientation  string `json:"orientation"`
	MarginTop    *int   `json:"marginTop,omitempty"`
	MarginBottom *int   `json:"marginBottom,omitempty"`
	MarginLeft   *int   `json:"marginLeft,omitempty"`
	MarginRight  *int   `json:"marginRight,omitempty"`
}

// paperSizes maps page size names to width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeA4:     {8.27, 11.69},
	PageSizeLetter: {8.5, 11},
	PageSizeLegal:  {8.5, 14},
}

// Paper returns the page dimensions in inches, swapped for landscape.
// Unknown sizes fall back to A4.
func (o Options) Paper() (width, height float64) {
	size, ok := paperSizes[o.PageSize]
	if !ok {
		size = paperSizes[PageSizeA4]
	}
	width, height = size[0], size[1]
	if o.Orientation == OrientationLandscape {
		width, height = height, width
	}
	return width, height
}

// MarginInches converts the pixel margins to inches for the print command.
func (o Options) MarginInches() (top, bottom, left, right float64) {
	return marginInches(o.MarginTop),
		marginInches(o.MarginBottom),
		marginInches(o.MarginLeft),
		marginInches(o.MarginRight)
}

func marginInches(px *int) float64 {
	value := defaultMarginPx
	if px != nil && *px >= 0 {
		value = *px
	}
	return float64(value) / pxPerInch
}

// Engine renders compiled HTML. Implementations are safe for concurrent use.
type Engine interface {
	RenderPDF(ctx context.Context, html string, opts Options) ([]byte, error)
	RenderThumbnail(ctx context.Context, html string) ([]byte, error)
	Close() error
}
