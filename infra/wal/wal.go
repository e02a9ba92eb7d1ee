package wal

import (
	"encoding/binary"
	"os"
	"time"
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

// WAL is the segmented intent log. Every placement and cancellation is
// framed, checksummed and appended before the book mutates, so a crash
// replays to the exact pre-crash state.
type WAL struct {
	dir        string
	segSize    int64
	segDur     time.Duration
	current    *segment
	lastSeq    uint64
	lastRotate time.Time
}

// Frame layout:
// [type:1][seq:8][time:8][len:4][payload][crc:4]
const frameHeaderSize = 1 + 8 + 8 + 4

func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	segs, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	next := 0
	if len(segs) > 0 {
		next = segs[len(segs)-1] + 1
	}

	seg, err := openSegment(cfg.Dir, next)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		segDur:     cfg.SegmentDuration,
		current:    seg,
		lastRotate: time.Now(),
	}, nil
}

func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	buf := make([]byte, frameHeaderSize+int(payloadLen)+4)
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Data)

	crc := checksum(buf[:frameHeaderSize+int(payloadLen)])
	binary.BigEndian.PutUint32(buf[frameHeaderSize+int(payloadLen):], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}
	w.lastSeq = r.Seq

	if w.current.offset >= w.segSize || (w.segDur > 0 && time.Since(w.lastRotate) >= w.segDur) {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) rotate() error {
	_ = w.current.sync()
	_ = w.current.close()

	seg, err := openSegment(w.dir, w.current.index+1)
	if err != nil {
		return err
	}
	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore drops sealed segments whose records are all older
// than seq. Called after a snapshot makes them redundant.
func (w *WAL) TruncateBefore(seq uint64) error {
	segs, err := listSegments(w.dir)
	if err != nil {
		return err
	}

	for _, idx := range segs {
		if idx == w.current.index {
			continue
		}
		last, err := segmentLastSeq(segmentPath(w.dir, idx))
		if err != nil {
			return err
		}
		if last < seq {
			if err := os.Remove(segmentPath(w.dir, idx)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *WAL) Close() error {
	_ = w.current.sync()
	return w.current.close()
}
