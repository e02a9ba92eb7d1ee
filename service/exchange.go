package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"kestrel/domain/book"
	"kestrel/domain/perps"
	"kestrel/infra/journal"
	"kestrel/infra/memory"
	"kestrel/infra/sequence"
	"kestrel/infra/wal"
)

/*
Exchange is the ONLY write entry point into the engine.

All coordination between:
- domain (book, perps)
- infra (memory, wal, journal)
happens here, on a single owning goroutine.
*/

// Params fixes engine behavior at construction. Per the concurrency
// model they are immutable afterwards.
type Params struct {
	MinPrice int64
	MaxPrice int64
	MaxQty   int64

	EmaAlpha           float64
	FundingIntervalSec uint64
	FundingCap         float64

	MaintenanceMargin  float64
	InitialMargin      float64
	LiquidationPenalty float64
	MaxLeverage        float64
	MinConfidence      float64

	InsuranceFund float64
	Fees          perps.FeeSchedule
}

func DefaultParams() Params {
	return Params{
		MinPrice:           book.DefaultMinPrice,
		MaxPrice:           book.DefaultMaxPrice,
		MaxQty:             book.DefaultMaxQty,
		EmaAlpha:           0.1,
		FundingIntervalSec: 28800,
		FundingCap:         0.001,
		MaintenanceMargin:  0.005,
		InitialMargin:      0.01,
		LiquidationPenalty: 0.003,
		MaxLeverage:        100,
		MinConfidence:      0.5,
		InsuranceFund:      1_000_000,
		Fees:               perps.DefaultFees(),
	}
}

type forcedClose struct {
	trader uint64
	side   perps.PositionSide
	size   int64
}

type Exchange struct {
	log *logrus.Entry

	book *book.Book
	pool *memory.Pool[book.Order]
	ring *memory.RetireRing[book.Order]

	intents *wal.WAL
	trades  *journal.Journal
	seq     *sequence.Sequencer

	ledger  *perps.Ledger
	mark    *perps.MarkEstimator
	funding *perps.FundingController
	liq     *perps.LiquidationEngine
	fund    *perps.InsuranceFund
	fees    perps.FeeSchedule

	params Params

	// order id -> trader, for fan-out of maker fills
	owners map[uint64]uint64

	// forced closes queue here and drain AFTER the operation that
	// detected them returns; the book never sees reentrant callers
	liqQueue []forcedClose
	queued   map[uint64]bool
	draining bool

	syntheticID  uint64
	lastOracleAt uint64
	staleSkips   uint64
	socialized   bool

	// true while rebuilding from the WAL: intents and trades were
	// already durable the first time around
	replaying bool
}

// New wires all dependencies. intents and trades may be nil, which
// disables durability (demos, tests).
func New(params Params, log *logrus.Logger, intents *wal.WAL, trades *journal.Journal) *Exchange {
	if log == nil {
		log = logrus.New()
	}

	e := &Exchange{
		log:     log.WithField("component", "exchange"),
		pool:    memory.NewPool(func() *book.Order { return &book.Order{} }),
		ring:    memory.NewRetireRing[book.Order](1 << 14),
		intents: intents,
		trades:  trades,
		seq:     sequence.New(0),
		fees:    params.Fees,
		params:  params,
		owners:  make(map[uint64]uint64),
		queued:  make(map[uint64]bool),
		// client ids live below the high bit; forced closes above it
		syntheticID: 1 << 63,
	}

	e.book = book.New(
		book.WithLimits(params.MinPrice, params.MaxPrice, params.MaxQty),
		book.WithOrderSource(e.pool.Get, func(o *book.Order) { e.ring.Enqueue(o) }),
	)
	e.ledger = perps.NewLedger(e.fees)
	e.mark = perps.NewMarkEstimator(params.EmaAlpha)
	e.funding = perps.NewFundingController(params.FundingIntervalSec, params.FundingCap)
	e.liq = perps.NewLiquidationEngine(params.MaintenanceMargin, params.InitialMargin, params.LiquidationPenalty)
	e.fund = perps.NewInsuranceFund(params.InsuranceFund)

	return e
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// PlaceOrder submits a limit order. Trades come back in execution
// order; position and margin updates land before this returns.
func (e *Exchange) PlaceOrder(trader uint64, side book.Side, price, qty int64, id uint64) ([]book.Trade, error) {
	e.logIntent(wal.RecordPlace, wal.EncodePlace(wal.PlacePayload{
		Trader: trader,
		ID:     id,
		Side:   uint8(side),
		Price:  price,
		Qty:    qty,
	}))

	trades, err := e.place(trader, side, price, qty, id)
	if err != nil {
		return nil, err
	}

	e.scanLiquidations()
	e.drainLiquidations(nil)
	return trades, nil
}

// place runs matching and fans fills out to the ledger. It is shared
// by client placements, position opens and forced closes.
func (e *Exchange) place(trader uint64, side book.Side, price, qty int64, id uint64) ([]book.Trade, error) {
	trades, err := e.book.Place(side, price, qty, id)
	if err != nil {
		return nil, err
	}
	if e.book.Contains(id) {
		e.owners[id] = trader
	}
	e.applyTrades(trader, side, trades)
	return trades, nil
}

// CancelOrder removes a resting order. Reports whether it was present.
func (e *Exchange) CancelOrder(id uint64) bool {
	e.logIntent(wal.RecordCancel, wal.EncodeCancel(id))

	ok := e.book.Cancel(id)
	if ok {
		delete(e.owners, id)
	}
	return ok
}

// OpenPosition funds margin for the requested leverage and crosses the
// book for size. Entry price is the VWAP of the fills; any residual is
// cancelled (market semantics).
func (e *Exchange) OpenPosition(trader uint64, side perps.PositionSide, size int64, leverage float64) (*perps.Position, error) {
	if side != perps.Long && side != perps.Short {
		return nil, fmt.Errorf("%w: side must be long or short", book.ErrInvalidOrder)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive", book.ErrInvalidOrder)
	}
	if leverage <= 0 || leverage > e.params.MaxLeverage {
		return nil, fmt.Errorf("%w: %.2f", perps.ErrInvalidLeverage, leverage)
	}

	ref, ok := e.referencePrice(side)
	if !ok {
		return nil, ErrNoLiquidity
	}

	notional := float64(size) * ref
	margin := notional / leverage
	if margin < e.liq.Initial*notional {
		return nil, fmt.Errorf("%w: %.2f below initial requirement %.2f",
			perps.ErrInsufficientMargin, margin, e.liq.Initial*notional)
	}

	e.ledger.Credit(trader, margin)

	id := e.nextSyntheticID()
	bookSide, crossPrice := crossingOrder(side, e.params)

	e.logIntent(wal.RecordPlace, wal.EncodePlace(wal.PlacePayload{
		Trader: trader,
		ID:     id,
		Side:   uint8(bookSide),
		Price:  crossPrice,
		Qty:    size,
	}))

	trades, err := e.place(trader, bookSide, crossPrice, size, id)
	if err != nil {
		return nil, err
	}
	if e.book.Contains(id) {
		e.CancelOrder(id)
	}
	if len(trades) == 0 {
		// nothing crossed; hand the margin back
		e.ledger.Credit(trader, -margin)
		return nil, ErrNoLiquidity
	}

	e.ledger.MarkToMarket(e.markOrRef(ref), e.liq)
	e.scanLiquidations()
	e.drainLiquidations(nil)

	p, _ := e.ledger.Get(trader)
	return p, nil
}

// ClosePosition crosses the book against the position and withdraws
// whatever margin is left after the fills.
func (e *Exchange) ClosePosition(trader uint64) (float64, error) {
	p, ok := e.ledger.Get(trader)
	if !ok || p.Side == perps.Flat {
		return 0, perps.ErrUnknownPosition
	}

	id := e.nextSyntheticID()
	bookSide, crossPrice := closingOrder(p.Side, e.params)

	e.logIntent(wal.RecordPlace, wal.EncodePlace(wal.PlacePayload{
		Trader: trader,
		ID:     id,
		Side:   uint8(bookSide),
		Price:  crossPrice,
		Qty:    p.Size,
	}))

	if _, err := e.place(trader, bookSide, crossPrice, p.Size, id); err != nil {
		return 0, err
	}
	if e.book.Contains(id) {
		e.CancelOrder(id)
	}

	if p.Side != perps.Flat {
		return 0, ErrNoLiquidity
	}
	margin, _ := e.ledger.Remove(trader)

	e.scanLiquidations()
	e.drainLiquidations(nil)
	return margin, nil
}

// Tick advances the derivatives layer: mark price, margin health,
// liquidations and, when due, funding. A stale oracle sample records a
// skip and changes nothing.
func (e *Exchange) Tick(sample perps.Sample) Events {
	ev := Events{At: sample.At}

	if err := sample.Validate(e.lastOracleAt, e.params.MinConfidence); err != nil {
		e.staleSkips++
		e.log.WithError(err).WithField("skips", e.staleSkips).Warn("oracle sample skipped")
		ev.Skipped = true
		return ev
	}
	e.lastOracleAt = sample.At

	fair, haveFair := e.fairPrice()
	e.mark.Update(fair, haveFair, sample.Index)
	e.ledger.MarkToMarket(e.mark.Mark(), e.liq)

	ev.Mark = e.mark.Mark()
	ev.Fair = e.mark.Fair()
	ev.Index = e.mark.Index()
	ev.Basis = e.mark.Basis()

	e.scanLiquidations()
	e.drainLiquidations(&ev)

	if e.funding.Due(sample.At) {
		ev.FundingRate = e.funding.ComputeRate(e.mark.Basis(), sample.Index)
		ev.Payments = e.funding.Settle(e.ledger, e.mark.Mark(), sample.At)
		ev.FundingApplied = true

		// funding moves margin; health may have changed
		e.ledger.MarkToMarket(e.mark.Mark(), e.liq)
		e.scanLiquidations()
		e.drainLiquidations(&ev)
	}

	ev.SocializedLoss = e.socialized
	return ev
}

//
// ──────────────────────────────────────────────────────────
// Liquidation routing
// ──────────────────────────────────────────────────────────
//

func (e *Exchange) scanLiquidations() {
	mark := e.mark.Mark()
	if mark == 0 {
		return
	}
	e.ledger.ForEach(func(p *perps.Position) {
		if e.queued[p.Trader] || !e.liq.ShouldLiquidate(p, mark) {
			return
		}
		e.queued[p.Trader] = true
		e.liqQueue = append(e.liqQueue, forcedClose{trader: p.Trader, side: p.Side, size: p.Size})
	})
}

// drainLiquidations executes queued forced closes. The queue is only
// drained from the top-level operation; fills produced here may queue
// further closes, which drain in the same loop. When a pass makes no
// progress (the book is too thin to close anything) the loop stops;
// underwater positions are re-queued by the next health scan.
func (e *Exchange) drainLiquidations(ev *Events) {
	if e.draining {
		return
	}
	e.draining = true
	defer func() { e.draining = false }()

	for len(e.liqQueue) > 0 {
		batch := e.liqQueue
		e.liqQueue = nil
		progress := false

		for _, fc := range batch {
			delete(e.queued, fc.trader)

			liq := e.executeForcedClose(fc)
			if liq == nil {
				continue
			}
			if liq.Closed > 0 {
				progress = true
			}
			if ev != nil {
				ev.Liquidations = append(ev.Liquidations, *liq)
				ev.SocializedLoss = ev.SocializedLoss || e.socialized
			}
		}

		if !progress {
			return
		}
		e.scanLiquidations()
	}
}

func (e *Exchange) executeForcedClose(fc forcedClose) *Liquidation {
	p, ok := e.ledger.Get(fc.trader)
	if !ok || p.Side == perps.Flat {
		return nil
	}

	id := e.nextSyntheticID()
	bookSide, crossPrice := closingOrder(p.Side, e.params)
	size := p.Size

	e.logIntent(wal.RecordPlace, wal.EncodePlace(wal.PlacePayload{
		Trader: fc.trader,
		ID:     id,
		Side:   uint8(bookSide),
		Price:  crossPrice,
		Qty:    size,
	}))

	trades, err := e.place(fc.trader, bookSide, crossPrice, size, id)
	if err != nil {
		e.log.WithError(err).WithField("trader", fc.trader).Error("forced close rejected")
		return nil
	}
	if e.book.Contains(id) {
		e.CancelOrder(id)
	}

	liq := &Liquidation{Trader: fc.trader, Side: fc.side, Trades: trades}
	var closedNotional float64
	for _, t := range trades {
		liq.Closed += t.Qty
		closedNotional += float64(t.Price) * float64(t.Qty)
	}

	if p.Side != perps.Flat {
		// book too thin for a full close; the rest re-queues on the
		// next health scan
		e.log.WithFields(logrus.Fields{
			"trader":    fc.trader,
			"remaining": p.Size,
		}).Warn("partial liquidation")
		return liq
	}

	// Position is flat. The liquidation penalty plus whatever margin
	// survived the fills goes to the insurance fund; a negative
	// remainder draws from it instead.
	margin, _ := e.ledger.Remove(fc.trader)
	penalty := e.liq.Penalty * closedNotional
	remainder := margin - penalty
	liq.Remainder = remainder

	e.fund.Contribute(penalty)
	if remainder >= 0 {
		e.fund.Contribute(remainder)
	} else if !e.fund.Draw(-remainder) {
		e.socialized = true
		e.log.WithField("shortfall", remainder).Error("insurance fund exhausted")
	}

	e.log.WithFields(logrus.Fields{
		"trader":    fc.trader,
		"closed":    liq.Closed,
		"remainder": liq.Remainder,
		"fund":      e.fund.Balance(),
	}).Info("position liquidated")
	return liq
}

//
// ──────────────────────────────────────────────────────────
// Fills fan-out
// ──────────────────────────────────────────────────────────
//

func (e *Exchange) applyTrades(taker uint64, takerSide book.Side, trades []book.Trade) {
	takerDir := perps.Long
	if takerSide == book.Ask {
		takerDir = perps.Short
	}

	for _, t := range trades {
		if e.replaying {
			// book-only rebuild: just keep the owner index in sync
			if !e.book.Contains(t.MakerID) {
				delete(e.owners, t.MakerID)
			}
			continue
		}

		e.journalTrade(t)

		price := float64(t.Price)
		e.ledger.ApplyFill(taker, takerDir, price, t.Qty, false)

		if maker, ok := e.owners[t.MakerID]; ok {
			makerDir := perps.Short
			if takerDir == perps.Short {
				makerDir = perps.Long
			}
			e.ledger.ApplyFill(maker, makerDir, price, t.Qty, true)
			if !e.book.Contains(t.MakerID) {
				delete(e.owners, t.MakerID)
			}
		}
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (e *Exchange) BestBid() (int64, int64, bool) { return e.book.BestBid() }
func (e *Exchange) BestAsk() (int64, int64, bool) { return e.book.BestAsk() }
func (e *Exchange) Mid() (float64, bool)          { return e.book.Mid() }

func (e *Exchange) Depth(s book.Side, n int) []book.Level {
	return e.book.Depth(s, n)
}

func (e *Exchange) Position(trader uint64) (*perps.Position, bool) {
	return e.ledger.Get(trader)
}

func (e *Exchange) Mark() *perps.MarkEstimator        { return e.mark }
func (e *Exchange) Funding() *perps.FundingController { return e.funding }
func (e *Exchange) InsuranceBalance() float64         { return e.fund.Balance() }
func (e *Exchange) OpenInterest() (int64, int64)      { return e.ledger.OpenInterest() }
func (e *Exchange) StaleSkips() uint64                { return e.staleSkips }
func (e *Exchange) Seq() *sequence.Sequencer          { return e.seq }
func (e *Exchange) Book() *book.Book                  { return e.book }

//
// ──────────────────────────────────────────────────────────
// Reclamation
// ──────────────────────────────────────────────────────────
//

// Reclaim drains retired orders back into the pool. Called
// periodically by a background job.
func (e *Exchange) Reclaim() int {
	return e.ring.Drain(func(o *book.Order) {
		o.Reset()
		e.pool.Put(o)
	})
}

//
// ──────────────────────────────────────────────────────────
// internals
// ──────────────────────────────────────────────────────────
//

func (e *Exchange) fairPrice() (float64, bool) {
	if mid, ok := e.book.Mid(); ok {
		return mid, true
	}
	if last, ok := e.book.LastTrade(); ok {
		return float64(last), true
	}
	return 0, false
}

// referencePrice estimates the entry for margin sizing: the mark when
// ticks have run, else the best opposing quote.
func (e *Exchange) referencePrice(side perps.PositionSide) (float64, bool) {
	if m := e.mark.Mark(); m > 0 {
		return m, true
	}
	if side == perps.Long {
		if price, _, ok := e.book.BestAsk(); ok {
			return float64(price), true
		}
	} else {
		if price, _, ok := e.book.BestBid(); ok {
			return float64(price), true
		}
	}
	return 0, false
}

func (e *Exchange) markOrRef(ref float64) float64 {
	if m := e.mark.Mark(); m > 0 {
		return m
	}
	return ref
}

func (e *Exchange) nextSyntheticID() uint64 {
	e.syntheticID++
	return e.syntheticID
}

func (e *Exchange) logIntent(typ wal.RecordType, data []byte) {
	if e.intents == nil || e.replaying {
		return
	}
	rec := &wal.Record{
		Type: typ,
		Seq:  e.seq.Next(),
		Time: time.Now().UnixNano(),
		Data: data,
	}
	if err := e.intents.Append(rec); err != nil {
		e.log.WithError(err).Error("wal append failed")
	}
}

func (e *Exchange) journalTrade(t book.Trade) {
	if e.trades == nil || e.replaying {
		return
	}
	if err := e.trades.Append(t); err != nil {
		e.log.WithError(err).WithField("seq", t.Seq).Error("trade journal append failed")
	}
}

// crossingOrder is the book order that opens a position: buys sweep to
// the max price, sells to the min, so the order always crosses.
func crossingOrder(side perps.PositionSide, p Params) (book.Side, int64) {
	if side == perps.Long {
		return book.Bid, p.MaxPrice
	}
	return book.Ask, p.MinPrice
}

// closingOrder is the opposite-side order that flattens a position.
func closingOrder(side perps.PositionSide, p Params) (book.Side, int64) {
	if side == perps.Long {
		return book.Ask, p.MinPrice
	}
	return book.Bid, p.MaxPrice
}
