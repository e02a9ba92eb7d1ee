package perps

// Payment is one trader's funding cash flow. Positive amounts are
// credited to the trader's margin.
type Payment struct {
	Trader uint64
	Amount float64
}

// FundingController periodically converts the premium of fair over
// index into a cash flow between longs and shorts, tethering the
// perpetual to the index.
type FundingController struct {
	interval uint64
	cap      float64

	rate          float64
	premium       float64
	lastSettledAt uint64
}

func NewFundingController(intervalSec uint64, cap float64) *FundingController {
	return &FundingController{interval: intervalSec, cap: cap}
}

// Due reports whether a settlement should fire at the given time.
func (f *FundingController) Due(now uint64) bool {
	return now >= f.lastSettledAt+f.interval
}

// ComputeRate derives the funding rate from the estimator's running
// basis scaled by index, clamped to [-cap, +cap].
func (f *FundingController) ComputeRate(basis, index float64) float64 {
	if index == 0 {
		return 0
	}
	f.premium = basis / index

	rate := f.premium
	if rate > f.cap {
		rate = f.cap
	} else if rate < -f.cap {
		rate = -f.cap
	}
	f.rate = rate
	return rate
}

// Settle applies the current rate across all open positions. Longs pay
// shorts when the rate is positive. payment = rate * size * mark.
func (f *FundingController) Settle(ledger *Ledger, mark float64, now uint64) []Payment {
	var payments []Payment

	ledger.ForEach(func(p *Position) {
		amount := f.rate * float64(p.Size) * mark
		if p.Side == Long {
			amount = -amount
		}
		p.Margin += amount
		payments = append(payments, Payment{Trader: p.Trader, Amount: amount})
	})

	f.lastSettledAt = now
	return payments
}

func (f *FundingController) Rate() float64         { return f.rate }
func (f *FundingController) Premium() float64      { return f.premium }
func (f *FundingController) LastSettledAt() uint64 { return f.lastSettledAt }

// Seed aligns the settlement clock on startup so that the first
// interval is measured from boot, not from zero.
func (f *FundingController) Seed(now uint64) {
	if f.lastSettledAt == 0 {
		f.lastSettledAt = now
	}
}
