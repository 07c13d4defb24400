package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
	"github.com/couponTracker/coupon-ocr-service/internal/scan"
)

var (
	batchOutput  string
	batchWorkers int
	batchWatch   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Scan every coupon image in a directory",
	Long: `Batch scans all supported images in a directory and writes one
<image>.coupon.json result file per image. With --watch it keeps running
and scans new images as they are dropped into the directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "directory for the JSON results (default: next to the images)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "concurrent scans")
	batchCmd.Flags().BoolVar(&batchWatch, "watch", false, "keep watching the directory for new images")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && isSupportedImage(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 && !batchWatch {
		return fmt.Errorf("no coupon images found in %s", dir)
	}

	svc, provider, err := newScanner(ctx)
	if err != nil {
		return err
	}
	if provider != nil {
		defer provider.Close()
	}
	svc.RefreshAvailability(ctx)

	outDir := batchOutput
	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if batchWorkers < 1 {
		batchWorkers = 1
	}

	var bar *progressbar.ProgressBar
	if !batchWatch {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
	}

	var (
		mu      sync.Mutex
		scanned int
		failed  int
	)
	report := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed++
			if bar != nil {
				bar.Clear()
			}
			fail("%s: %v", filepath.Base(path), err)
		} else {
			scanned++
			if bar == nil {
				success("%s", filepath.Base(path))
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	fileCh := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < batchWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileCh {
				report(path, batchOne(ctx, svc, path, outDir))
			}
		}()
	}

	for _, path := range files {
		fileCh <- path
	}

	if batchWatch {
		info("Watching %s, drop coupon images here (Ctrl+C to stop)", dir)
		err = feedFromWatcher(ctx, dir, fileCh)
	}

	close(fileCh)
	wg.Wait()

	if failed > 0 {
		warn("%d scanned, %d failed", scanned, failed)
	} else {
		success("%d coupons scanned", scanned)
	}
	return err
}

func batchOne(ctx context.Context, svc *scan.Service, path, outDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := svc.Scan(ctx, &models.ScanRequest{ImageData: data})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".coupon.json"
	return os.WriteFile(filepath.Join(outDir, name), out, 0o644)
}

// feedFromWatcher forwards images landing in dir to fileCh until interrupted.
// Events are debounced so a file still being written is not read half-way.
func feedFromWatcher(ctx context.Context, dir string, fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 && isSupportedImage(ev.Name) {
				pending[ev.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for path, t := range pending {
				if now.Sub(t) < 300*time.Millisecond {
					continue
				}
				delete(pending, path)
				fileCh <- path
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			warn("watch error: %v", err)

		case <-sigs:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
