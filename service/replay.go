package service

import (
	"errors"

	"kestrel/domain/book"
	"kestrel/infra/wal"
)

/*
ReplayFromWAL rebuilds book state from the intent log.

IMPORTANT:
- This MUST run before accepting traffic.
- The trade journal is NOT replayed; executed trades were durable the
  moment they were journaled.
- Positions are not rebuilt: the derivatives layer is ephemeral and
  margin state does not survive a restart.
*/
func (e *Exchange) ReplayFromWAL(dir string) error {
	e.replaying = true
	defer func() { e.replaying = false }()

	// records at or below a restored snapshot's sequence are already
	// reflected in the book
	base := e.seq.Current()

	lastSeq, err := wal.Replay(dir, func(rec *wal.Record) error {
		if rec.Seq <= base {
			return nil
		}
		switch rec.Type {
		case wal.RecordPlace:
			p, err := wal.DecodePlace(rec.Data)
			if err != nil {
				return err
			}
			_, err = e.place(p.Trader, book.Side(p.Side), p.Price, p.Qty, p.ID)
			// intents are logged before validation, so a rejected or
			// duplicate order replays as a rejected order; skip it
			if err != nil && !errors.Is(err, book.ErrDuplicateOrderID) &&
				!errors.Is(err, book.ErrInvalidOrder) {
				return err
			}
			if p.ID > e.syntheticID {
				e.syntheticID = p.ID
			}
		case wal.RecordCancel:
			id, err := wal.DecodeCancel(rec.Data)
			if err != nil {
				return err
			}
			e.CancelOrder(id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// resume sequencing after the last durable record
	if lastSeq > base {
		e.seq.Reset(lastSeq)
	}

	e.log.WithField("last_seq", lastSeq).Info("wal replay complete")
	return nil
}
