// Package preprocess decodes coupon uploads and produces the preprocessed
// image renditions the OCR engines consume.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUndecodable marks input bytes that cannot be decoded into an image.
var ErrUndecodable = errors.New("image data cannot be decoded")

// Decode turns raw upload bytes into an image. JPEG, PNG, GIF, HEIC/HEIF
// and PDF (first page rendered) are accepted. Zero-byte or malformed input
// fails with ErrUndecodable.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUndecodable)
	}

	if isPDF(data) {
		return renderPDF(data)
	}

	// HEIC/HEIF (common on iPhones) is not covered by the standard image package
	if isHEIC(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: heic: %v", ErrUndecodable, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

// renderPDF rasterizes the first page; coupons shared as PDF are single page.
func renderPDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrUndecodable, err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf render: %v", ErrUndecodable, err)
	}
	return img, nil
}

func isPDF(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "%PDF"
}

// isHEIC sniffs the ftyp box brands written by iPhone photo exports.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
