package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) Transcribe(ctx context.Context, imageData []byte) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

var testCategories = []string{"commerce", "food delivery", "payments", "travel", "entertainment"}

func TestExtractProseWrappedJSON(t *testing.T) {
	provider := &fakeProvider{
		response: `Sure! Here is the extracted data: {"storeName": "Amazon", "code": "AMZ10"} Hope this helps.`,
	}
	e := NewExtractor(provider, testCategories)

	info, err := e.Extract(context.Background(), "some ocr text")

	require.NoError(t, err)
	assert.Equal(t, "Amazon", info.StoreName)
	assert.Equal(t, "AMZ10", info.RedeemCode)
	assert.Nil(t, info.CashbackAmount)
}

func TestExtractMarkdownFence(t *testing.T) {
	backticks := string([]byte{96, 96, 96})
	provider := &fakeProvider{
		response: backticks + "json\n" + `{"storeName": "Myntra", "redeemCode": "SAVE200", "cashbackAmount": 200, "expiryDate": "2025-12-31"}` + "\n" + backticks,
	}
	e := NewExtractor(provider, testCategories)

	info, err := e.Extract(context.Background(), "ocr text")

	require.NoError(t, err)
	assert.Equal(t, "Myntra", info.StoreName)
	assert.Equal(t, "SAVE200", info.RedeemCode)
	require.NotNil(t, info.CashbackAmount)
	assert.True(t, info.CashbackAmount.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, info.ExpiryDate)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *info.ExpiryDate)
}

func TestExtractAlternativeFieldNames(t *testing.T) {
	provider := &fakeProvider{
		response: `{"store": "Swiggy", "code": "TASTY50", "amount": "50", "expiry": "12/31/2025"}`,
	}
	e := NewExtractor(provider, testCategories)

	info, err := e.Extract(context.Background(), "ocr text")

	require.NoError(t, err)
	assert.Equal(t, "Swiggy", info.StoreName)
	assert.Equal(t, "TASTY50", info.RedeemCode)
	require.NotNil(t, info.CashbackAmount)
	assert.True(t, info.CashbackAmount.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, info.ExpiryDate)
	assert.Equal(t, time.December, info.ExpiryDate.Month())
	assert.Equal(t, 31, info.ExpiryDate.Day())
}

func TestExtractNoJSONObject(t *testing.T) {
	provider := &fakeProvider{response: "I could not find any coupon in this text."}
	e := NewExtractor(provider, testCategories)

	_, err := e.Extract(context.Background(), "ocr text")

	assert.Error(t, err)
}

func TestExtractProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	e := NewExtractor(provider, testCategories)

	_, err := e.Extract(context.Background(), "ocr text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI extraction failed")
}

func TestExtractCategoryValidation(t *testing.T) {
	provider := &fakeProvider{
		response: `{"storeName": "Zomato", "category": "Food Delivery"}`,
	}
	e := NewExtractor(provider, testCategories)

	info, err := e.Extract(context.Background(), "ocr text")
	require.NoError(t, err)
	assert.Equal(t, "food delivery", info.Category)

	provider.response = `{"storeName": "Zomato", "category": "gadgets"}`
	info, err = e.Extract(context.Background(), "ocr text")
	require.NoError(t, err)
	assert.Empty(t, info.Category)
}

func TestExtractNullLiterals(t *testing.T) {
	provider := &fakeProvider{
		response: `{"storeName": "null", "redeemCode": "NULL10", "paymentMethod": "N/A", "cashbackAmount": -5}`,
	}
	e := NewExtractor(provider, testCategories)

	info, err := e.Extract(context.Background(), "ocr text")

	require.NoError(t, err)
	assert.Empty(t, info.StoreName)
	assert.Empty(t, info.PaymentMethod)
	assert.Equal(t, "NULL10", info.RedeemCode)
	assert.Nil(t, info.CashbackAmount, "negative amounts are discarded")
}

func TestParseDate(t *testing.T) {
	cases := map[string]*time.Time{
		"2025-12-31":   timePtr(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		"12/31/2025":   timePtr(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		"15/06/2026":   timePtr(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)),
		"Dec 31, 2025": timePtr(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		"31 Dec 2025":  timePtr(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		"":             nil,
		"soon":         nil,
	}

	for input, want := range cases {
		got := parseDate(input)
		if want == nil {
			assert.Nil(t, got, "input %q", input)
			continue
		}
		require.NotNil(t, got, "input %q", input)
		assert.True(t, want.Equal(*got), "input %q: got %v", input, got)
	}
}

func TestParseDecimal(t *testing.T) {
	assert.True(t, parseDecimal(float64(42.5)).Equal(decimal.NewFromFloat(42.5)))
	assert.True(t, parseDecimal("1,500.50").Equal(decimal.NewFromFloat(1500.50)))
	assert.True(t, parseDecimal("₹200").Equal(decimal.NewFromInt(200)))
	assert.True(t, parseDecimal(nil).IsZero())
	assert.True(t, parseDecimal("garbage").IsZero())
}

func timePtr(t time.Time) *time.Time {
	return &t
}
