// couponscan drives the scan pipeline from the command line, without the
// HTTP service in front of it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/couponTracker/coupon-ocr-service/internal/ai"
	"github.com/couponTracker/coupon-ocr-service/internal/config"
	"github.com/couponTracker/coupon-ocr-service/internal/observability"
	"github.com/couponTracker/coupon-ocr-service/internal/scan"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "couponscan",
	Short: "Scan coupon images from the command line",
	Long: `couponscan runs the coupon OCR pipeline locally: decode an image,
recognize its text with the configured engines and extract the structured
coupon fields (store, code, amount, expiry).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable pipeline logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// newScanner builds the pipeline the same way the server does. The caller
// closes the returned provider when it is non-nil.
func newScanner(ctx context.Context) (*scan.Service, ai.Provider, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.DefaultLogger("couponscan")
	if !verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	return scan.NewFromConfig(ctx, cfg, logger)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fail("%v", err)
		os.Exit(1)
	}
}
