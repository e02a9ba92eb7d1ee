package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"kestrel/domain/book"
	"kestrel/domain/perps"
	"kestrel/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	var err error
	switch os.Args[1] {
	case "depth":
		err = runDepth(log)
	case "demo":
		err = runDemo(log)
	case "perps":
		err = runPerps(log)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kestrel <depth|demo|perps>")
}

func newExchange(log *logrus.Logger) *service.Exchange {
	return service.New(service.DefaultParams(), log, nil, nil)
}

// seedLiquidity layers resting orders around mid on both sides.
func seedLiquidity(ex *service.Exchange, mid int64, levels int, qty int64, firstID uint64) uint64 {
	id := firstID
	for i := 0; i < levels; i++ {
		ex.PlaceOrder(1, book.Bid, mid-5-int64(i), qty, id)
		id++
		ex.PlaceOrder(2, book.Ask, mid+5+int64(i), qty, id)
		id++
	}
	return id
}

// ---------------- depth ----------------

func runDepth(log *logrus.Logger) error {
	ex := newExchange(log)
	seedLiquidity(ex, 1000, 10, 250, 1)

	bids := ex.Depth(book.Bid, 10)
	asks := ex.Depth(book.Ask, 10)

	fmt.Println("        BIDS        |        ASKS")
	fmt.Println("  price      qty    |  price      qty")
	fmt.Println("--------------------+--------------------")
	for i := 0; i < len(bids) || i < len(asks); i++ {
		left, right := "", ""
		if i < len(bids) {
			left = fmt.Sprintf("%7d %8d", bids[i].Price, bids[i].Qty)
		}
		if i < len(asks) {
			right = fmt.Sprintf("%7d %8d", asks[i].Price, asks[i].Qty)
		}
		fmt.Printf("%-20s|%s\n", left, right)
	}

	if mid, ok := ex.Mid(); ok {
		fmt.Printf("\nmid: %.1f\n", mid)
	}
	return nil
}

// ---------------- demo ----------------

func runDemo(log *logrus.Logger) error {
	ex := newExchange(log)

	fmt.Println("placing resting sells: 50@101, 50@102")
	ex.PlaceOrder(1, book.Ask, 101, 50, 1)
	ex.PlaceOrder(1, book.Ask, 102, 50, 2)

	fmt.Println("placing aggressive buy: 80@102")
	trades, err := ex.PlaceOrder(2, book.Bid, 102, 80, 3)
	if err != nil {
		return err
	}

	for _, t := range trades {
		fmt.Printf("  trade: maker=%d taker=%d price=%d qty=%d\n",
			t.MakerID, t.TakerID, t.Price, t.Qty)
	}

	if price, qty, ok := ex.BestAsk(); ok {
		fmt.Printf("best ask after sweep: %d x %d\n", price, qty)
	}
	return nil
}

// ---------------- perps ----------------

func runPerps(log *logrus.Logger) error {
	ex := newExchange(log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	nextID := seedLiquidity(ex, 1000, 10, 1000, 1)
	feed := perps.NewRandomWalkFeed(1000, time.Now().UnixNano())

	trader := uint64(100)
	for round := 1; round <= 15; round++ {
		fmt.Printf("\n===== round %d =====\n", round)

		ev := ex.Tick(feed.Next())
		fmt.Printf("index=%.2f fair=%.2f mark=%.2f basis=%.4f\n",
			ev.Index, ev.Fair, ev.Mark, ev.Basis)

		// a fresh position most rounds
		if rng.Float64() < 0.7 {
			side := perps.Long
			if rng.Float64() < 0.5 {
				side = perps.Short
			}
			size := int64(rng.Intn(200) + 50)
			leverage := float64(rng.Intn(20) + 2)

			p, err := ex.OpenPosition(trader, side, size, leverage)
			if err != nil {
				fmt.Printf("open %s %d @%.0fx rejected: %v\n", side, size, leverage, err)
			} else {
				fmt.Printf("trader %d opened %s size=%d entry=%.2f margin=%.2f liq=%.2f\n",
					p.Trader, p.Side, p.Size, p.Entry, p.Margin, p.LiquidationPrice)
			}
			trader++
		}

		for _, l := range ev.Liquidations {
			fmt.Printf("LIQUIDATED trader=%d closed=%d remainder=%.2f\n",
				l.Trader, l.Closed, l.Remainder)
		}
		if ev.FundingApplied {
			fmt.Printf("funding applied: rate=%.6f payments=%d\n",
				ev.FundingRate, len(ev.Payments))
		}

		long, short := ex.OpenInterest()
		fmt.Printf("open interest: long=%d short=%d insurance=%.0f\n",
			long, short, ex.InsuranceBalance())

		// top up the book so later rounds keep crossing
		nextID = seedLiquidity(ex, int64(ev.Index), 3, 500, nextID)
	}
	return nil
}
