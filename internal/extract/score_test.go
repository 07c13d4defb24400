package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

func TestCompletenessMonotonic(t *testing.T) {
	amount := decimal.NewFromInt(200)
	expiry := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	info := models.CouponInfo{}
	prev := Completeness(info)
	assert.Zero(t, prev)

	steps := []func(*models.CouponInfo){
		func(c *models.CouponInfo) { c.RedeemCode = "SAVE200" },
		func(c *models.CouponInfo) { c.StoreName = "Myntra" },
		func(c *models.CouponInfo) { c.CashbackAmount = &amount },
		func(c *models.CouponInfo) { c.ExpiryDate = &expiry },
		func(c *models.CouponInfo) { c.Description = "Get ₹200 off" },
		func(c *models.CouponInfo) { c.Category = "commerce" },
		func(c *models.CouponInfo) { c.UsageLimit = "once per user" },
	}

	for i, step := range steps {
		step(&info)
		score := Completeness(info)
		assert.Greater(t, score, prev, "step %d must raise the score", i)
		prev = score
	}
}

func TestCompletenessWeighsCodeHighest(t *testing.T) {
	codeOnly := Completeness(models.CouponInfo{RedeemCode: "SAVE200"})
	storeOnly := Completeness(models.CouponInfo{StoreName: "Myntra"})
	descOnly := Completeness(models.CouponInfo{Description: "Get ₹200 off on everything"})

	assert.Greater(t, codeOnly, storeOnly)
	assert.Greater(t, storeOnly, descOnly)
}

func TestSelectConsensusPicksHighestScore(t *testing.T) {
	candidates := []models.ExtractionCandidate{
		{Strategy: StrategyHeuristic, Score: 0.65},
		{Strategy: StrategyTemplate, Score: 1.14},
		{Strategy: StrategyRegion, Score: 0.90},
	}

	winner, err := SelectConsensus(candidates)

	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, winner.Strategy)
}

func TestSelectConsensusTieBreaksByPriority(t *testing.T) {
	candidates := []models.ExtractionCandidate{
		{Strategy: StrategyHeuristic, Score: 0.78},
		{Strategy: StrategyAI, Score: 0.78},
		{Strategy: StrategyTemplate, Score: 0.78},
	}

	winner, err := SelectConsensus(candidates)

	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, winner.Strategy)
}

func TestSelectConsensusIdempotent(t *testing.T) {
	candidates := []models.ExtractionCandidate{
		{Strategy: StrategyRegion, Score: 0.90},
		{Strategy: StrategyAI, Score: 0.90},
	}

	first, err := SelectConsensus(candidates)
	require.NoError(t, err)

	second, err := SelectConsensus(candidates)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, StrategyAI, first.Strategy)
}

func TestSelectConsensusAllEmpty(t *testing.T) {
	candidates := []models.ExtractionCandidate{
		{Strategy: StrategyTemplate},
		{Strategy: StrategyHeuristic},
	}

	_, err := SelectConsensus(candidates)

	assert.ErrorIs(t, err, ErrEmptyExtraction)
}

func TestSelectConsensusNoCandidates(t *testing.T) {
	_, err := SelectConsensus(nil)
	assert.ErrorIs(t, err, ErrEmptyExtraction)
}
