package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

func success(format string, args ...interface{}) {
	color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
}

func fail(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

func info(format string, args ...interface{}) {
	color.New(color.FgCyan).Printf("ℹ %s\n", fmt.Sprintf(format, args...))
}

func newSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	return s
}

// printCoupon renders the extracted fields as an aligned key/value block,
// skipping fields the pipeline did not fill.
func printCoupon(result *models.ScanResult) {
	c := result.Coupon

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	row := func(key, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %s\t%s\n", key, value)
		}
	}

	row("Store", c.StoreName)
	row("Description", c.Description)
	if c.CashbackAmount != nil {
		row("Cashback", c.CashbackAmount.String())
	}
	row("Code", c.RedeemCode)
	if c.ExpiryDate != nil {
		row("Expires", c.ExpiryDate.Format("2006-01-02"))
	}
	row("Category", c.Category)
	if c.MinimumPurchase != nil {
		row("Min purchase", c.MinimumPurchase.String())
	}
	if c.MaximumDiscount != nil {
		row("Max discount", c.MaximumDiscount.String())
	}
	row("Payment method", c.PaymentMethod)
	row("Usage limit", c.UsageLimit)
	if c.Rating > 0 {
		row("Rating", fmt.Sprintf("%.1f", c.Rating))
	}
	row("Status", c.Status)
	w.Flush()

	meta := fmt.Sprintf("confidence %.2f, engine %s, strategy %s, %.2fs",
		c.Confidence, result.Engine, result.Strategy, result.TotalDuration)
	if result.Cached {
		meta += ", cached"
	}
	color.New(color.Faint).Printf("  %s\n", meta)
}

func isSupportedImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".heic", ".heif", ".pdf":
		return true
	}
	return false
}
