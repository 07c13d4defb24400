package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Variant transform tags, in generation order.
const (
	VariantCanonical = "canonical"
	VariantContrast  = "contrast"
	VariantThreshold = "threshold"
	VariantInverted  = "inverted"
)

// maxDimension caps variant size before OCR; larger photos slow Tesseract
// without improving recognition.
const maxDimension = 1600

// Variant is one preprocessed rendition of the input image
type Variant struct {
	Name  string // transform tag
	Image image.Image
	Data  []byte // PNG encoding, ready for engine upload
}

// Generate produces the ordered variant set for one scan. Element 0 is the
// canonical rendition; the rest apply independent enhancement passes.
// Output is deterministic for a given input.
func Generate(img image.Image) ([]Variant, error) {
	canonical := normalize(img)

	variants := []Variant{
		{Name: VariantCanonical, Image: canonical},
		{Name: VariantContrast, Image: imaging.Sharpen(imaging.AdjustContrast(canonical, 20), 0.8)},
		{Name: VariantThreshold, Image: adaptiveThreshold(canonical, 15, 7)},
		{Name: VariantInverted, Image: imaging.Invert(canonical)},
	}

	for i := range variants {
		data, err := encodePNG(variants[i].Image)
		if err != nil {
			return nil, fmt.Errorf("encoding %s variant: %w", variants[i].Name, err)
		}
		variants[i].Data = data
	}
	return variants, nil
}

// normalize produces the canonical rendition: grayscale, capped in size.
func normalize(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if b := gray.Bounds(); b.Dx() > maxDimension || b.Dy() > maxDimension {
		gray = imaging.Fit(gray, maxDimension, maxDimension, imaging.Lanczos)
	}
	return gray
}

// adaptiveThreshold binarizes each pixel against its local window mean,
// which keeps text readable across uneven lighting and colored coupon
// backgrounds. Window sums come from an integral image.
func adaptiveThreshold(img image.Image, window, bias int) *image.NRGBA {
	if window%2 == 0 {
		window++
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := make([]int, w*h)
	integral := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := int((r + g + bl) / 3 >> 8)
			gray[y*w+x] = v
			rowSum += v
			if y == 0 {
				integral[y*w+x] = rowSum
			} else {
				integral[y*w+x] = integral[(y-1)*w+x] + rowSum
			}
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	half := window / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(x-half, 0), max(y-half, 0)
			x1, y1 := min(x+half, w-1), min(y+half, h-1)

			sum := integral[y1*w+x1]
			if x0 > 0 {
				sum -= integral[y1*w+x0-1]
			}
			if y0 > 0 {
				sum -= integral[(y0-1)*w+x1]
			}
			if x0 > 0 && y0 > 0 {
				sum += integral[(y0-1)*w+x0-1]
			}
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))

			c := color.NRGBA{255, 255, 255, 255}
			if gray[y*w+x] < mean-bias {
				c = color.NRGBA{0, 0, 0, 255}
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
