package perps

// Ledger tracks every known trader's position. It consumes fills from
// the book and keeps open-interest totals per side. All mutation
// happens on the owning thread; placement and margin updates are
// applied synchronously before the triggering call returns.
type Ledger struct {
	positions map[uint64]*Position
	fees      FeeSchedule

	longOI  int64
	shortOI int64
}

func NewLedger(fees FeeSchedule) *Ledger {
	return &Ledger{
		positions: make(map[uint64]*Position),
		fees:      fees,
	}
}

func (l *Ledger) Get(trader uint64) (*Position, bool) {
	p, ok := l.positions[trader]
	return p, ok
}

// Credit adds margin collateral, creating a flat position shell for an
// unseen trader.
func (l *Ledger) Credit(trader uint64, amount float64) *Position {
	p := l.ensure(trader)
	p.Margin += amount
	return p
}

// Remove deletes the trader's position and returns the margin that was
// left in it.
func (l *Ledger) Remove(trader uint64) (float64, bool) {
	p, ok := l.positions[trader]
	if !ok {
		return 0, false
	}
	l.releaseInterest(p.Side, p.Size)
	delete(l.positions, trader)
	return p.Margin, true
}

// ApplyFill books one side of a trade. dir is the direction the fill
// pushes the trader toward: Long for a buy fill, Short for a sell.
//
// A fill in the direction of the position extends it at the
// volume-weighted average entry. A fill against it reduces the
// position, realizing PnL into margin; any excess flips the position
// to the other side at the fill price.
func (l *Ledger) ApplyFill(trader uint64, dir PositionSide, price float64, qty int64, isMaker bool) *Position {
	p := l.ensure(trader)

	p.Margin -= l.fees.Fee(isMaker, price*float64(qty))

	if p.Side == Flat || p.Side == dir {
		oldNotional := p.Entry * float64(p.Size)
		p.Size += qty
		p.Entry = (oldNotional + price*float64(qty)) / float64(p.Size)
		p.Side = dir
		l.addInterest(dir, qty)
	} else {
		closeQty := min(qty, p.Size)
		p.Margin += l.realized(p, price, closeQty)
		p.Size -= closeQty
		l.releaseInterest(p.Side, closeQty)

		if p.Size == 0 {
			residual := qty - closeQty
			if residual > 0 {
				p.Side = dir
				p.Size = residual
				p.Entry = price
				l.addInterest(dir, residual)
			} else {
				p.Side = Flat
				p.Entry = 0
			}
		}
	}

	if p.Margin > 0 && p.Size > 0 {
		p.Leverage = p.Notional(p.Entry) / p.Margin
	} else {
		p.Leverage = 0
	}
	return p
}

// realized is the PnL on a closed lot: (exit - entry) * lot for a
// closing long, negated for a closing short.
func (l *Ledger) realized(p *Position, exit float64, lot int64) float64 {
	diff := exit - p.Entry
	if p.Side == Short {
		diff = -diff
	}
	return diff * float64(lot)
}

// MarkToMarket refreshes unrealized PnL and liquidation prices against
// the current mark.
func (l *Ledger) MarkToMarket(mark float64, liq *LiquidationEngine) {
	for _, p := range l.positions {
		if p.Side == Flat {
			p.UnrealizedPnL = 0
			p.LiquidationPrice = 0
			continue
		}
		p.UnrealizedPnL = p.PnL(mark)
		p.LiquidationPrice = liq.LiquidationPrice(p)
	}
}

// ForEach visits every non-flat position. The callback must not add or
// remove positions.
func (l *Ledger) ForEach(fn func(*Position)) {
	for _, p := range l.positions {
		if p.Side != Flat {
			fn(p)
		}
	}
}

// OpenInterest returns total long and short size across positions.
func (l *Ledger) OpenInterest() (long, short int64) {
	return l.longOI, l.shortOI
}

func (l *Ledger) ensure(trader uint64) *Position {
	p, ok := l.positions[trader]
	if !ok {
		p = &Position{Trader: trader, Side: Flat}
		l.positions[trader] = p
	}
	return p
}

func (l *Ledger) addInterest(side PositionSide, qty int64) {
	switch side {
	case Long:
		l.longOI += qty
	case Short:
		l.shortOI += qty
	}
}

func (l *Ledger) releaseInterest(side PositionSide, qty int64) {
	switch side {
	case Long:
		l.longOI -= qty
	case Short:
		l.shortOI -= qty
	}
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
