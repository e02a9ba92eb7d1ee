package perps

// LiquidationEngine decides when a position must be force-closed and
// what price that becomes unavoidable at. Comparisons use a small
// epsilon so positions hovering at the threshold do not thrash.
type LiquidationEngine struct {
	Maintenance float64
	Initial     float64
	Penalty     float64
	Epsilon     float64
}

func NewLiquidationEngine(maintenance, initial, penalty float64) *LiquidationEngine {
	return &LiquidationEngine{
		Maintenance: maintenance,
		Initial:     initial,
		Penalty:     penalty,
		Epsilon:     1e-9,
	}
}

// LiquidationPrice solves for the mark at which remaining margin
// equals maintenance * notional. For a long at entry E with margin M,
// size S and maintenance ratio m:
//
//	liq = E - (M - m*S*E) / ((1-m)*S)
//
// mirrored for shorts.
func (e *LiquidationEngine) LiquidationPrice(p *Position) float64 {
	if p.Size == 0 {
		return 0
	}
	size := float64(p.Size)
	buffer := (p.Margin - e.Maintenance*size*p.Entry) / ((1 - e.Maintenance) * size)

	var liq float64
	if p.Side == Long {
		liq = p.Entry - buffer
	} else {
		liq = p.Entry + buffer
	}
	if liq < 0 {
		return 0
	}
	return liq
}

// ShouldLiquidate reports whether the position's margin ratio at mark
// has fallen below maintenance.
func (e *LiquidationEngine) ShouldLiquidate(p *Position, mark float64) bool {
	if p.Side == Flat || p.Size == 0 {
		return false
	}
	return p.MarginRatio(mark) < e.Maintenance-e.Epsilon
}

// InsuranceFund absorbs losses from bankrupt liquidations and is fed
// by liquidation penalties and leftover margin.
type InsuranceFund struct {
	balance       float64
	contributions float64
	payouts       float64
}

func NewInsuranceFund(balance float64) *InsuranceFund {
	return &InsuranceFund{balance: balance}
}

func (f *InsuranceFund) Balance() float64 { return f.balance }

func (f *InsuranceFund) Contribute(amount float64) {
	f.balance += amount
	f.contributions += amount
}

// Draw covers a shortfall. When the fund cannot cover the full amount
// it drains to zero and reports false: the caller must surface a
// socialized-loss event and keep operating.
func (f *InsuranceFund) Draw(amount float64) bool {
	if amount <= f.balance {
		f.balance -= amount
		f.payouts += amount
		return true
	}
	f.payouts += f.balance
	f.balance = 0
	return false
}
