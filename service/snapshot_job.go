package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"kestrel/domain/book"
	"kestrel/snapshot"
)

// StartSnapshotJob periodically persists resting orders and trims the
// logs that the snapshot makes redundant.
func (e *Exchange) StartSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}
	log := e.log.WithField("component", "snapshot")

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				seq := e.seq.Current()
				if err := w.Write(seq, e.collectSnapshot()); err != nil {
					log.WithError(err).Error("snapshot write failed")
					continue
				}

				if e.intents != nil {
					_ = e.intents.TruncateBefore(seq)
				}
				if e.trades != nil {
					_ = e.trades.TruncateAckedUpTo(^uint64(0))
				}
				log.WithField("seq", seq).Debug("snapshot written")
			}
		}
	}()
}

func (e *Exchange) collectSnapshot() []snapshot.OrderEntry {
	out := make([]snapshot.OrderEntry, 0, 1024)

	visit := func(side uint8) func(*book.PriceLevel) bool {
		return func(lvl *book.PriceLevel) bool {
			for o := lvl.Head(); o != nil; o = o.Next() {
				out = append(out, snapshot.OrderEntry{
					ID:     o.ID,
					Trader: e.owners[o.ID],
					Side:   side,
					Price:  o.Price,
					Qty:    o.Remaining(),
					Seq:    o.Seq,
				})
			}
			return true
		}
	}

	e.book.BidsWalk(visit(uint8(book.Bid)))
	e.book.AsksWalk(visit(uint8(book.Ask)))
	return out
}

// RestoreFromSnapshot seeds an empty book from a snapshot before WAL
// replay. Entries re-enter in original ingress order, preserving FIFO
// priority within levels.
func (e *Exchange) RestoreFromSnapshot(s *snapshot.Snapshot) error {
	if s == nil {
		return nil
	}

	e.replaying = true
	defer func() { e.replaying = false }()

	entries := append([]snapshot.OrderEntry(nil), s.Orders...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })

	for _, o := range entries {
		if _, err := e.place(o.Trader, book.Side(o.Side), o.Price, o.Qty, o.ID); err != nil {
			return err
		}
		if o.ID > e.syntheticID {
			e.syntheticID = o.ID
		}
	}

	e.seq.Reset(s.Seq)
	e.log.WithFields(logrus.Fields{
		"orders": len(entries),
		"seq":    s.Seq,
	}).Info("snapshot restored")
	return nil
}
