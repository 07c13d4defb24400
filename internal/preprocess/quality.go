package preprocess

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// Quality describes how OCR-friendly a rendition is. Component scores are
// in [0,1]; the composite Score is in [0,100].
type Quality struct {
	Contrast   float64 `json:"contrast"`
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
	Noise      float64 `json:"noise"`
	Score      float64 `json:"score"`
}

// Component weights for the composite score.
const (
	contrastWeight   = 0.30
	sharpnessWeight  = 0.25
	brightnessWeight = 0.25
	noiseWeight      = 0.20
)

// sampleSize bounds the luminance sample; quality is a ranking signal, not
// a pixel-exact measurement.
const sampleSize = 400

// AssessQuality scores a rendition for OCR suitability. The dispatcher uses
// it to decide which enhanced variant is worth a network round trip.
func AssessQuality(img image.Image) Quality {
	gray := imaging.Grayscale(imaging.Fit(img, sampleSize, sampleSize, imaging.Box))
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return Quality{}
	}

	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = float64(gray.NRGBAAt(x, y).R)
		}
	}

	q := Quality{
		Contrast:   contrastScore(lum),
		Sharpness:  sharpnessScore(lum, w, h),
		Brightness: brightnessScore(lum),
		Noise:      noiseScore(lum, w, h),
	}
	q.Score = 100 * (contrastWeight*q.Contrast +
		sharpnessWeight*q.Sharpness +
		brightnessWeight*q.Brightness +
		noiseWeight*q.Noise)
	return q
}

// contrastScore is the Michelson contrast over the 5th-95th luminance
// percentiles, so a few specular pixels cannot saturate the measure.
func contrastScore(lum []float64) float64 {
	sorted := make([]float64, len(lum))
	copy(sorted, lum)
	sort.Float64s(sorted)

	lo := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	hi := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	if hi+lo == 0 {
		return 0
	}
	return (hi - lo) / (hi + lo)
}

// sharpnessScore is the Laplacian variance, normalized so typical sharp
// text lands near 1.
func sharpnessScore(lum []float64, w, h int) float64 {
	laps := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := 4*lum[y*w+x] - lum[y*w+x-1] - lum[y*w+x+1] - lum[(y-1)*w+x] - lum[(y+1)*w+x]
			laps = append(laps, lap)
		}
	}
	if len(laps) == 0 {
		return 0
	}
	return math.Min(1, stat.Variance(laps, nil)/500)
}

// brightnessScore peaks at mid-gray and falls off toward pure black/white.
func brightnessScore(lum []float64) float64 {
	mean := stat.Mean(lum, nil)
	return 1 - math.Abs(mean-128)/128
}

// noiseScore compares each pixel against its 3x3 neighborhood mean; large
// average deviation reads as sensor noise or compression artifacts.
func noiseScore(lum []float64, w, h int) float64 {
	var total float64
	var n int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += lum[(y+dy)*w+x+dx]
				}
			}
			total += math.Abs(lum[y*w+x] - sum/9)
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return 1 - math.Min(1, (total/float64(n))/30)
}
