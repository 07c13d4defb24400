package main

import (
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which OCR engines are reachable",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, provider, err := newScanner(ctx)
	if err != nil {
		return err
	}
	if provider != nil {
		defer provider.Close()
	}

	sp := newSpinner("Probing engines...")
	sp.Start()
	engines := svc.RefreshAvailability(ctx)
	sp.Stop()

	ids := make([]string, 0, len(engines))
	for id := range engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if engines[id] {
			color.New(color.FgGreen).Printf("  ✓ %s\n", id)
		} else {
			color.New(color.FgRed).Printf("  ✗ %s\n", id)
		}
	}
	return nil
}
