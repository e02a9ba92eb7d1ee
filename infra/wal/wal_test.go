package wal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}

	place := PlacePayload{Trader: 7, ID: 42, Side: 1, Price: 100, Qty: 5}
	records := []*Record{
		{Type: RecordPlace, Seq: 1, Time: time.Now().UnixNano(), Data: EncodePlace(place)},
		{Type: RecordCancel, Seq: 2, Time: time.Now().UnixNano(), Data: EncodeCancel(42)},
	}
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got []*Record
	lastSeq, err := Replay(dir, func(r *Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if lastSeq != 2 {
		t.Errorf("last seq = %d, want 2", lastSeq)
	}
	if len(got) != 2 {
		t.Fatalf("replayed %d records, want 2", len(got))
	}

	p, err := DecodePlace(got[0].Data)
	if err != nil {
		t.Fatal(err)
	}
	if p != place {
		t.Errorf("place payload = %+v, want %+v", p, place)
	}

	id, err := DecodeCancel(got[1].Data)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("cancel id = %d, want 42", id)
	}
}

func TestReplayStopsAtTornTail(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}
	for seq := uint64(1); seq <= 3; seq++ {
		rec := &Record{Type: RecordCancel, Seq: seq, Data: EncodeCancel(seq)}
		if err := w.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// simulate a crash mid-write: garbage after the last full frame
	segs, err := listSegments(dir)
	if err != nil || len(segs) == 0 {
		t.Fatalf("segments: %v %v", segs, err)
	}
	last := segmentPath(dir, segs[len(segs)-1])
	f, err := os.OpenFile(last, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte{0x01, 0xde, 0xad})
	f.Close()

	count := 0
	lastSeq, err := Replay(dir, func(r *Record) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 || lastSeq != 3 {
		t.Errorf("replayed (%d, seq %d), want all 3 intact records", count, lastSeq)
	}
}

func TestReplayRejectsCorruptFrame(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append(&Record{Type: RecordCancel, Seq: 1, Data: EncodeCancel(1)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(&Record{Type: RecordCancel, Seq: 2, Data: EncodeCancel(2)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	// flip a payload byte inside the second frame; its CRC must fail
	segs, _ := listSegments(dir)
	path := segmentPath(dir, segs[len(segs)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	frame := frameHeaderSize + 8 + 4
	data[frame+frameHeaderSize] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	count := 0
	_, err = Replay(dir, func(r *Record) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("replayed %d records, want only the intact one", count)
	}
}

func TestSegmentRotationAndTruncate(t *testing.T) {
	dir := t.TempDir()

	// tiny segments force a rotation on every append
	w, err := Open(Config{Dir: dir, SegmentSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	for seq := uint64(1); seq <= 4; seq++ {
		if err := w.Append(&Record{Type: RecordCancel, Seq: seq, Data: EncodeCancel(seq)}); err != nil {
			t.Fatal(err)
		}
	}

	segs, err := listSegments(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) < 4 {
		t.Fatalf("expected rotation to create segments, got %d", len(segs))
	}

	if err := w.TruncateBefore(3); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	count := 0
	_, err = Replay(dir, func(r *Record) error {
		if r.Seq < 3 {
			t.Errorf("record seq %d survived truncation", r.Seq)
		}
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count == 0 {
		t.Error("records at or after the cutoff must survive")
	}

	if _, err := os.Stat(filepath.Join(dir, "000000.wal")); !os.IsNotExist(err) {
		t.Error("fully truncated segment should be deleted")
	}
}
