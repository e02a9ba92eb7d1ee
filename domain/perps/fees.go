package perps

// FeeSchedule holds the per-fill and liquidation fee rates applied to
// notional value. A negative maker rate is a rebate.
type FeeSchedule struct {
	Maker       float64
	Taker       float64
	Liquidation float64
}

func DefaultFees() FeeSchedule {
	return FeeSchedule{
		Maker:       -0.0001,
		Taker:       0.0005,
		Liquidation: 0.003,
	}
}

// Fee returns the cash amount owed on a fill. Positive means the
// trader pays, negative means the trader receives.
func (f FeeSchedule) Fee(isMaker bool, notional float64) float64 {
	if isMaker {
		return f.Maker * notional
	}
	return f.Taker * notional
}
