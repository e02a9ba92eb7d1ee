package journal

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"

	"kestrel/domain/book"
)

// State tracks a trade through the broadcast pipeline.
type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one journaled trade plus its delivery state.
type Entry struct {
	Trade       book.Trade
	State       State
	Retries     uint32
	LastAttempt int64
}

// binary encoding:
// [state:1][retries:4][lastAttempt:8][maker:8][taker:8][price:8][qty:8][at:8]
const entrySize = 1 + 4 + 8 + 8 + 8 + 8 + 8 + 8

var ErrBadEntry = errors.New("journal: invalid entry encoding")

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entrySize)
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	binary.BigEndian.PutUint64(buf[13:21], e.Trade.MakerID)
	binary.BigEndian.PutUint64(buf[21:29], e.Trade.TakerID)
	binary.BigEndian.PutUint64(buf[29:37], uint64(e.Trade.Price))
	binary.BigEndian.PutUint64(buf[37:45], uint64(e.Trade.Qty))
	binary.BigEndian.PutUint64(buf[45:53], uint64(e.Trade.At))
	return buf
}

func decodeEntry(seq uint64, b []byte) (Entry, error) {
	if len(b) != entrySize {
		return Entry{}, ErrBadEntry
	}
	return Entry{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Trade: book.Trade{
			Seq:     seq,
			MakerID: binary.BigEndian.Uint64(b[13:21]),
			TakerID: binary.BigEndian.Uint64(b[21:29]),
			Price:   int64(binary.BigEndian.Uint64(b[29:37])),
			Qty:     int64(binary.BigEndian.Uint64(b[37:45])),
			At:      int64(binary.BigEndian.Uint64(b[45:53])),
		},
	}, nil
}

func key(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// Journal is the durable trade log feeding the broadcaster. Entries
// are keyed by trade sequence and carry an at-least-once delivery
// state machine: NEW -> SENT -> ACKED, with FAILED re-queued.
type Journal struct {
	db *pebble.DB
}

func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Append records a freshly executed trade.
func (j *Journal) Append(t book.Trade) error {
	e := Entry{Trade: t, State: StateNew}
	return j.db.Set(key(t.Seq), encodeEntry(e), pebble.Sync)
}

// Pending returns up to limit entries still awaiting acknowledgement.
func (j *Journal) Pending(limit int) ([]Entry, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid() && len(out) < limit; iter.Next() {
		e, err := decodeEntry(binary.BigEndian.Uint64(iter.Key()), iter.Value())
		if err != nil {
			return out, err
		}
		if e.State == StateNew || e.State == StateFailed {
			out = append(out, e)
		}
	}
	return out, iter.Error()
}

func (j *Journal) MarkSent(seq uint64) error {
	return j.transition(seq, StateSent, false)
}

func (j *Journal) MarkAcked(seq uint64) error {
	return j.transition(seq, StateAcked, false)
}

func (j *Journal) MarkFailed(seq uint64) error {
	return j.transition(seq, StateFailed, true)
}

func (j *Journal) transition(seq uint64, to State, bumpRetry bool) error {
	val, closer, err := j.db.Get(key(seq))
	if err != nil {
		return err
	}
	e, err := decodeEntry(seq, val)
	closer.Close()
	if err != nil {
		return err
	}

	e.State = to
	e.LastAttempt = time.Now().UnixNano()
	if bumpRetry {
		e.Retries++
	}
	return j.db.Set(key(seq), encodeEntry(e), pebble.Sync)
}

// TruncateAckedUpTo removes acked entries at or below seq. Called by
// the snapshot job once delivery is settled.
func (j *Journal) TruncateAckedUpTo(seq uint64) error {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	batch := j.db.NewBatch()
	for iter.First(); iter.Valid(); iter.Next() {
		k := binary.BigEndian.Uint64(iter.Key())
		if k > seq {
			break
		}
		e, err := decodeEntry(k, iter.Value())
		if err != nil {
			return err
		}
		if e.State == StateAcked {
			if err := batch.Delete(key(k), nil); err != nil {
				return err
			}
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return j.db.Apply(batch, pebble.Sync)
}

func (j *Journal) Close() error {
	return j.db.Close()
}
