package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/couponTracker/coupon-ocr-service/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Map coupon text to a platform category",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	category := classify.Classify(text)
	if category == "" {
		warn("no category matched")
		return nil
	}

	success("%s", category)
	return nil
}
