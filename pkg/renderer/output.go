package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// Format is an output image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// ParseFormat converts a format name (case-insensitive, "tif" accepted) to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// Encode writes img in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// Downsample shrinks a supersampled image by an integer factor with a
// Catmull-Rom filter. Factors below 2 return img unchanged.
func Downsample(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, max(1, b.Dx()/factor), max(1, b.Dy()/factor)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

const (
	captionPadding = 4
	captionLine    = 13 // basicfont.Face7x13 line height
)

// Caption burns lines of ASCII text into a translucent band along the
// bottom of img
func Caption(img *image.RGBA, lines []string) {
	if len(lines) == 0 {
		return
	}
	b := img.Bounds()
	band := image.Rect(b.Min.X, max(b.Min.Y, b.Max.Y-len(lines)*captionLine-2*captionPadding), b.Max.X, b.Max.Y)
	xdraw.Draw(img, band, image.NewUniform(color.RGBA{0, 0, 0, 160}), image.Point{}, xdraw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{235, 235, 235, 255}),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(band.Min.X+captionPadding, band.Min.Y+captionPadding+basicfont.Face7x13.Ascent+i*captionLine)
		d.DrawString(line)
	}
}
