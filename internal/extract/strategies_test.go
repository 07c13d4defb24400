package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/couponTracker/coupon-ocr-service/internal/ai"
	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

func TestExtract(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extract Suite")
}

const myntraCoupon = "Myntra\nGet ₹200 off\nCode: SAVE200\nExpires: 12/31/2025"

var _ = Describe("TemplateStrategy", func() {
	var (
		in   Input
		info models.CouponInfo
		err  error
	)

	JustBeforeEach(func() {
		info, err = NewTemplateStrategy().Run(context.Background(), in)
	})

	When("the text names a known merchant", func() {
		BeforeEach(func() {
			in = Input{Text: myntraCoupon}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should resolve the store and its category", func() {
			Expect(info.StoreName).To(Equal("Myntra"))
			Expect(info.Category).To(Equal("commerce"))
		})

		It("should extract the anchored code", func() {
			Expect(info.RedeemCode).To(Equal("SAVE200"))
		})

		It("should extract the cashback amount", func() {
			Expect(info.CashbackAmount).NotTo(BeNil())
			Expect(info.CashbackAmount.IntPart()).To(Equal(int64(200)))
		})

		It("should extract the expiry date", func() {
			Expect(info.ExpiryDate).NotTo(BeNil())
			Expect(info.ExpiryDate.Year()).To(Equal(2025))
			Expect(info.ExpiryDate.Month()).To(Equal(time.December))
			Expect(info.ExpiryDate.Day()).To(Equal(31))
		})
	})

	When("the text names no known merchant", func() {
		BeforeEach(func() {
			in = Input{Text: "SomeShop\nFlat 50% off everything\nCode: HALF50"}
		})

		It("should propose nothing rather than guess", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsEmpty()).To(BeTrue())
		})
	})

	When("the merchant is known but no code is printed", func() {
		BeforeEach(func() {
			in = Input{Text: "Zomato\n60% off up to ₹120 on your first order"}
		})

		It("should keep the store and leave the code empty", func() {
			Expect(info.StoreName).To(Equal("Zomato"))
			Expect(info.Category).To(Equal("food delivery"))
			Expect(info.RedeemCode).To(BeEmpty())
		})

		It("should pick up the discount cap", func() {
			Expect(info.MaximumDiscount).NotTo(BeNil())
			Expect(info.MaximumDiscount.IntPart()).To(Equal(int64(120)))
		})
	})
})

var _ = Describe("HeuristicStrategy", func() {
	var (
		in   Input
		info models.CouponInfo
		err  error
	)

	JustBeforeEach(func() {
		info, err = NewHeuristicStrategy().Run(context.Background(), in)
	})

	When("reading a complete coupon", func() {
		BeforeEach(func() {
			in = Input{Text: myntraCoupon}
		})

		It("should extract code, amount and expiry", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.RedeemCode).To(Equal("SAVE200"))
			Expect(info.CashbackAmount).NotTo(BeNil())
			Expect(info.ExpiryDate).NotTo(BeNil())
		})

		It("should never guess a store name", func() {
			Expect(info.StoreName).To(BeEmpty())
		})
	})

	When("reading text with a minimum order clause", func() {
		BeforeEach(func() {
			in = Input{Text: "Flat ₹150 off on orders above ₹999\nUse code FIRST150"}
		})

		It("should extract the minimum purchase", func() {
			Expect(info.MinimumPurchase).NotTo(BeNil())
			Expect(info.MinimumPurchase.IntPart()).To(Equal(int64(999)))
			Expect(info.RedeemCode).To(Equal("FIRST150"))
		})
	})

	When("reading gibberish", func() {
		BeforeEach(func() {
			in = Input{Text: "xqzt vprw mlkj\nasdf qwer zxcv"}
		})

		It("should propose nothing", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsEmpty()).To(BeTrue())
		})
	})
})

var _ = Describe("RegionStrategy", func() {
	var (
		in   Input
		info models.CouponInfo
		err  error
	)

	JustBeforeEach(func() {
		info, err = NewRegionStrategy().Run(context.Background(), in)
	})

	When("the engine returned no geometry", func() {
		BeforeEach(func() {
			in = Input{Text: myntraCoupon}
		})

		It("should propose nothing", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsEmpty()).To(BeTrue())
		})
	})

	When("the banner prints the brand in large type", func() {
		BeforeEach(func() {
			in = Input{Words: []models.Word{
				{Text: "MYNTRA", Box: models.Box{X: 40, Y: 10, Width: 300, Height: 60}},
				{Text: "Get", Box: models.Box{X: 40, Y: 100, Width: 60, Height: 24}},
				{Text: "₹200", Box: models.Box{X: 110, Y: 100, Width: 80, Height: 24}},
				{Text: "off", Box: models.Box{X: 200, Y: 100, Width: 50, Height: 24}},
				{Text: "Code:", Box: models.Box{X: 40, Y: 150, Width: 80, Height: 24}},
				{Text: "SAVE200", Box: models.Box{X: 130, Y: 150, Width: 120, Height: 24}},
			}}
		})

		It("should take the store from the most prominent line", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.StoreName).To(Equal("Myntra"))
		})

		It("should reassemble lines so the anchored patterns work", func() {
			Expect(info.RedeemCode).To(Equal("SAVE200"))
			Expect(info.CashbackAmount).NotTo(BeNil())
		})
	})

	When("words arrive out of reading order", func() {
		BeforeEach(func() {
			in = Input{Words: []models.Word{
				{Text: "SAVE200", Box: models.Box{X: 130, Y: 150, Width: 120, Height: 24}},
				{Text: "MYNTRA", Box: models.Box{X: 40, Y: 10, Width: 300, Height: 60}},
				{Text: "Code:", Box: models.Box{X: 40, Y: 150, Width: 80, Height: 24}},
			}}
		})

		It("should still anchor the code to its label", func() {
			Expect(info.RedeemCode).To(Equal("SAVE200"))
		})
	})
})

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Ping(ctx context.Context) error { return nil }

func (s *stubProvider) Close() error { return nil }

func (s *stubProvider) Transcribe(ctx context.Context, imageData []byte) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

var _ = Describe("AIStrategy", func() {
	var (
		provider *stubProvider
		info     models.CouponInfo
		err      error
	)

	BeforeEach(func() {
		provider = &stubProvider{}
	})

	JustBeforeEach(func() {
		strategy := NewAIStrategy(ai.NewExtractor(provider, []string{"commerce", "food delivery"}))
		info, err = strategy.Run(context.Background(), Input{Text: "scanned text"})
	})

	When("the model wraps the JSON in prose", func() {
		BeforeEach(func() {
			provider.response = `Sure! Here is the extracted data: {"storeName": "Amazon", "code": "AMZ10"} Hope this helps.`
		})

		It("should parse the embedded object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(info.StoreName).To(Equal("Amazon"))
			Expect(info.RedeemCode).To(Equal("AMZ10"))
		})
	})

	When("the provider fails", func() {
		BeforeEach(func() {
			provider.err = errors.New("quota exceeded")
		})

		It("should surface the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

type failingStrategy struct{}

func (failingStrategy) ID() string { return "failing" }

func (failingStrategy) Trust() float64 { return 1.0 }

func (failingStrategy) Run(context.Context, Input) (models.CouponInfo, error) {
	return models.CouponInfo{}, errors.New("boom")
}

var _ = Describe("RunAll", func() {
	It("should give every strategy a slot even when one fails", func() {
		strategies := []Strategy{NewHeuristicStrategy(), failingStrategy{}}

		candidates := RunAll(context.Background(), strategies, Input{Text: myntraCoupon})

		Expect(candidates).To(HaveLen(2))
		Expect(candidates[0].Strategy).To(Equal(StrategyHeuristic))
		Expect(candidates[0].Score).To(BeNumerically(">", 0))
		Expect(candidates[1].Strategy).To(Equal("failing"))
		Expect(candidates[1].Score).To(BeZero())
		Expect(candidates[1].Info.IsEmpty()).To(BeTrue())
	})
})
