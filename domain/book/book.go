package book

import (
	"fmt"
	"time"
)

// Default validation bounds for one instrument. Prices and quantities
// are integer ticks and lots so that matching stays exact.
const (
	DefaultMinPrice = 1
	DefaultMaxPrice = 1_000_000
	DefaultMaxQty   = 1_000_000
)

type orderRef struct {
	side  Side
	price int64
}

// Level is a depth query row.
type Level struct {
	Price int64
	Qty   int64
}

// Book is single-writer and deterministic. It owns both ladders, the
// resting-order index and the ingress sequence counter.
type Book struct {
	bids *RBTree
	asks *RBTree

	index map[uint64]orderRef

	seq      uint64
	tradeSeq uint64

	lastTrade    int64
	hasLastTrade bool

	minPrice int64
	maxPrice int64
	maxQty   int64

	alloc  func() *Order
	retire func(*Order)
	now    func() int64
}

// Option configures a Book at construction time.
type Option func(*Book)

// WithLimits overrides the price and quantity validation bounds.
func WithLimits(minPrice, maxPrice, maxQty int64) Option {
	return func(b *Book) {
		b.minPrice = minPrice
		b.maxPrice = maxPrice
		b.maxQty = maxQty
	}
}

// WithOrderSource plugs in pooled allocation for resting orders.
// retire is called once an order leaves the book for good.
func WithOrderSource(alloc func() *Order, retire func(*Order)) Option {
	return func(b *Book) {
		b.alloc = alloc
		b.retire = retire
	}
}

// WithClock overrides the trade timestamp source.
func WithClock(now func() int64) Option {
	return func(b *Book) {
		b.now = now
	}
}

func New(opts ...Option) *Book {
	b := &Book{
		bids:     NewRBTree(),
		asks:     NewRBTree(),
		index:    make(map[uint64]orderRef),
		minPrice: DefaultMinPrice,
		maxPrice: DefaultMaxPrice,
		maxQty:   DefaultMaxQty,
		alloc:    func() *Order { return &Order{} },
		retire:   func(*Order) {},
		now:      func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ---- commands ----

// Place matches an incoming order against the opposing ladder and rests
// any residual. Trades come back in strict execution order: best price
// first, oldest resting order first within a level.
func (b *Book) Place(side Side, price, qty int64, id uint64) ([]Trade, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if qty > b.maxQty {
		return nil, fmt.Errorf("%w: quantity %d exceeds maximum %d", ErrInvalidOrder, qty, b.maxQty)
	}
	if price < b.minPrice || price > b.maxPrice {
		return nil, fmt.Errorf("%w: price %d outside [%d, %d]", ErrInvalidOrder, price, b.minPrice, b.maxPrice)
	}
	if _, ok := b.index[id]; ok {
		return nil, fmt.Errorf("%w: id %d", ErrDuplicateOrderID, id)
	}

	b.seq++
	o := b.alloc()
	*o = Order{ID: id, Side: side, Price: price, Qty: qty, Seq: b.seq}

	var trades []Trade
	if side == Bid {
		trades = b.matchBid(o)
	} else {
		trades = b.matchAsk(o)
	}

	if o.Remaining() > 0 {
		b.ladder(side).GetOrCreate(price).Enqueue(o)
		b.index[id] = orderRef{side: side, price: price}
	} else {
		b.retire(o)
	}

	return trades, nil
}

// Cancel removes a resting order. Reports whether it was present.
// Cold path: the level FIFO is scanned for the id.
func (b *Book) Cancel(id uint64) bool {
	ref, ok := b.index[id]
	if !ok {
		return false
	}

	tree := b.ladder(ref.side)
	lvl := tree.Find(ref.price)
	if lvl == nil {
		// index and ladder out of sync; must not happen
		panic("book: indexed order has no price level")
	}

	for o := lvl.Head(); o != nil; o = o.Next() {
		if o.ID != id {
			continue
		}
		lvl.Unlink(o)
		if lvl.Empty() {
			tree.Delete(ref.price)
		}
		delete(b.index, id)
		b.retire(o)
		return true
	}

	panic("book: indexed order missing from its level")
}

// ---- matching ----

func (b *Book) matchBid(o *Order) []Trade {
	var trades []Trade
	for o.Remaining() > 0 {
		best := b.asks.BestMin()
		if best == nil || best.Price > o.Price {
			break
		}
		trades = b.fillAtLevel(o, best, trades)
		if best.Empty() {
			b.asks.Delete(best.Price)
		}
	}
	return trades
}

func (b *Book) matchAsk(o *Order) []Trade {
	var trades []Trade
	for o.Remaining() > 0 {
		best := b.bids.BestMax()
		if best == nil || best.Price < o.Price {
			break
		}
		trades = b.fillAtLevel(o, best, trades)
		if best.Empty() {
			b.bids.Delete(best.Price)
		}
	}
	return trades
}

// fillAtLevel consumes the level FIFO front-first until the taker or
// the level is exhausted. The taker pays the maker's resting price.
func (b *Book) fillAtLevel(o *Order, lvl *PriceLevel, trades []Trade) []Trade {
	for o.Remaining() > 0 && !lvl.Empty() {
		maker := lvl.Head()
		fill := min(o.Remaining(), maker.Remaining())

		o.Filled += fill
		maker.Filled += fill
		lvl.Reduce(fill)

		b.tradeSeq++
		b.lastTrade = lvl.Price
		b.hasLastTrade = true
		trades = append(trades, Trade{
			MakerID: maker.ID,
			TakerID: o.ID,
			Price:   lvl.Price,
			Qty:     fill,
			Seq:     b.tradeSeq,
			At:      b.now(),
		})

		if maker.Remaining() == 0 {
			lvl.PopHead()
			delete(b.index, maker.ID)
			b.retire(maker)
		}
	}
	return trades
}

// ---- queries ----

func (b *Book) BestBid() (price, qty int64, ok bool) {
	lvl := b.bids.BestMax()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.Price, lvl.TotalQty, true
}

func (b *Book) BestAsk() (price, qty int64, ok bool) {
	lvl := b.asks.BestMin()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.Price, lvl.TotalQty, true
}

// Mid is the arithmetic mean of best bid and best ask when both exist.
func (b *Book) Mid() (float64, bool) {
	bid, _, okB := b.BestBid()
	ask, _, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (float64(bid) + float64(ask)) / 2, true
}

// LastTrade is the price of the most recent fill, if any.
func (b *Book) LastTrade() (int64, bool) {
	return b.lastTrade, b.hasLastTrade
}

// Depth returns the top maxLevels levels in priority order.
func (b *Book) Depth(side Side, maxLevels int) []Level {
	if maxLevels <= 0 {
		return nil
	}
	out := make([]Level, 0, maxLevels)
	visit := func(lvl *PriceLevel) bool {
		out = append(out, Level{Price: lvl.Price, Qty: lvl.TotalQty})
		return len(out) < maxLevels
	}
	if side == Bid {
		b.bids.WalkDesc(visit)
	} else {
		b.asks.WalkAsc(visit)
	}
	return out
}

// Resting reports how many orders currently rest in the book.
func (b *Book) Resting() int {
	return len(b.index)
}

// Contains reports whether an order id is currently resting.
func (b *Book) Contains(id uint64) bool {
	_, ok := b.index[id]
	return ok
}

// Seq returns the last assigned ingress sequence number.
func (b *Book) Seq() uint64 {
	return b.seq
}

// ResetSeq restores the ingress counter after a replay.
func (b *Book) ResetSeq(v uint64) {
	b.seq = v
}

// BidsWalk visits bid levels best to worst.
func (b *Book) BidsWalk(fn func(*PriceLevel) bool) {
	b.bids.WalkDesc(fn)
}

// AsksWalk visits ask levels best to worst.
func (b *Book) AsksWalk(fn func(*PriceLevel) bool) {
	b.asks.WalkAsc(fn)
}

func (b *Book) ladder(side Side) *RBTree {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
