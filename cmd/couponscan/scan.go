package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/scan"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Scan a coupon image and print the extracted fields",
	Long: `Scan runs one image through the pipeline and prints the extracted
coupon. Use batch to process a whole directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the raw scan result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, provider, err := newScanner(ctx)
	if err != nil {
		return err
	}
	if provider != nil {
		defer provider.Close()
	}
	svc.RefreshAvailability(ctx)

	return scanOne(ctx, svc, args[0])
}

func scanOne(ctx context.Context, svc *scan.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	sp := newSpinner("Scanning " + filepath.Base(path) + "...")
	sp.Start()
	result, err := svc.Scan(ctx, &models.ScanRequest{ImageData: data})
	sp.Stop()

	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if scanJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	success("%s", filepath.Base(path))
	printCoupon(result)
	return nil
}
