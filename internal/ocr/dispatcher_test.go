package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couponTracker/coupon-ocr-service/internal/preprocess"
)

type fakeEngine struct {
	id      string
	network bool
	trust   float64
	text    string
	err     error
	pingErr error

	mu    sync.Mutex
	calls []string
}

func (f *fakeEngine) ID() string { return f.id }

func (f *fakeEngine) Network() bool { return f.network }

func (f *fakeEngine) Trust() float64 { return f.trust }

func (f *fakeEngine) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeEngine) Recognize(ctx context.Context, v preprocess.Variant) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, v.Name)
	f.mu.Unlock()
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Text: f.text}, nil
}

func (f *fakeEngine) variantCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testVariants(t *testing.T) []preprocess.Variant {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			v := uint8((x * y) % 256)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	variants, err := preprocess.Generate(img)
	require.NoError(t, err)
	return variants
}

func newTestDispatcher(engines ...Engine) *Dispatcher {
	return NewDispatcher(engines, time.Second, zerolog.Nop())
}

func TestRecognizeEmptyAvailability(t *testing.T) {
	engine := &fakeEngine{id: EngineTesseract, trust: TrustOnDevice, text: "hello"}
	d := newTestDispatcher(engine)

	candidates := d.Recognize(context.Background(), testVariants(t), map[string]bool{})

	assert.Empty(t, candidates)
	assert.Empty(t, engine.variantCalls())
}

func TestRecognizeOneCandidatePerPair(t *testing.T) {
	onDevice := &fakeEngine{id: EngineTesseract, trust: TrustOnDevice, text: "local text"}
	cloud := &fakeEngine{id: EngineVision, network: true, trust: TrustNetwork, text: "cloud text"}
	d := newTestDispatcher(onDevice, cloud)

	availability := map[string]bool{EngineTesseract: true, EngineVision: true}
	candidates := d.Recognize(context.Background(), testVariants(t), availability)

	// canonical to both, one secondary to the network engine only
	assert.Len(t, candidates, 3)
	assert.Equal(t, []string{preprocess.VariantCanonical}, onDevice.variantCalls())

	cloudCalls := cloud.variantCalls()
	require.Len(t, cloudCalls, 2)
	assert.Contains(t, cloudCalls, preprocess.VariantCanonical)
	assert.NotEqual(t, cloudCalls[0], cloudCalls[1])
}

func TestRecognizeFailureYieldsZeroScoreCandidate(t *testing.T) {
	broken := &fakeEngine{id: EngineVision, network: true, trust: TrustNetwork, err: errors.New("quota exceeded")}
	working := &fakeEngine{id: EngineTesseract, trust: TrustOnDevice, text: "readable"}
	d := newTestDispatcher(broken, working)

	availability := map[string]bool{EngineTesseract: true, EngineVision: true}
	candidates := d.Recognize(context.Background(), testVariants(t), availability)

	require.Len(t, candidates, 3)
	var zeroScore, withText int
	for _, c := range candidates {
		if c.Text == "" {
			assert.Zero(t, c.Score)
			assert.Equal(t, EngineVision, c.Engine)
			zeroScore++
		} else {
			withText++
		}
	}
	assert.Equal(t, 2, zeroScore)
	assert.Equal(t, 1, withText)
}

func TestRecognizeScoresByRuneCountAndTrust(t *testing.T) {
	engine := &fakeEngine{id: EngineCombined, network: true, trust: TrustCombined, text: "₹200 off"}
	d := newTestDispatcher(engine)

	candidates := d.Recognize(context.Background(), testVariants(t), map[string]bool{EngineCombined: true})

	require.NotEmpty(t, candidates)
	// "₹200 off" is 8 runes; combined trust doubles it
	assert.Equal(t, 16.0, candidates[0].Score)
}

func TestRecognizeIgnoresUnknownEngines(t *testing.T) {
	engine := &fakeEngine{id: EngineTesseract, trust: TrustOnDevice, text: "hello"}
	d := newTestDispatcher(engine)

	availability := map[string]bool{EngineTesseract: true, "easyocr": true}
	candidates := d.Recognize(context.Background(), testVariants(t), availability)

	assert.Len(t, candidates, 1)
}

func TestProbeOnDeviceAlwaysAvailable(t *testing.T) {
	onDevice := &fakeEngine{id: EngineTesseract, pingErr: errors.New("should never be consulted")}
	a := NewAvailability([]Engine{onDevice}, time.Second, zerolog.Nop())

	status := a.Probe(context.Background())

	assert.True(t, status[EngineTesseract])
}

func TestProbeNetworkFailureResolvesToFalse(t *testing.T) {
	cloud := &fakeEngine{id: EngineVision, network: true, pingErr: errors.New("401 unauthorized")}
	ok := &fakeEngine{id: EngineAI, network: true}
	a := NewAvailability([]Engine{cloud, ok}, time.Second, zerolog.Nop())

	status := a.Probe(context.Background())

	assert.False(t, status[EngineVision])
	assert.True(t, status[EngineAI])
}

func TestSnapshotCachedUntilNextProbe(t *testing.T) {
	cloud := &fakeEngine{id: EngineVision, network: true}
	a := NewAvailability([]Engine{cloud}, time.Second, zerolog.Nop())

	a.Probe(context.Background())
	assert.True(t, a.Snapshot()[EngineVision])

	// The engine degrades; the cache must not notice until an explicit probe.
	cloud.pingErr = errors.New("timeout")
	assert.True(t, a.Snapshot()[EngineVision])

	a.Probe(context.Background())
	assert.False(t, a.Snapshot()[EngineVision])
}

func TestSnapshotEmptyBeforeFirstProbe(t *testing.T) {
	a := NewAvailability([]Engine{&fakeEngine{id: EngineTesseract}}, time.Second, zerolog.Nop())
	assert.Empty(t, a.Snapshot())
}
