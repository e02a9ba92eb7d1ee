package journal

import (
	"testing"

	"kestrel/domain/book"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleTrade(seq uint64) book.Trade {
	return book.Trade{MakerID: 1, TakerID: 2, Price: 100, Qty: 5, Seq: seq, At: 123}
}

func TestAppendAndPending(t *testing.T) {
	j := openTest(t)

	if err := j.Append(sampleTrade(1)); err != nil {
		t.Fatal(err)
	}
	if err := j.Append(sampleTrade(2)); err != nil {
		t.Fatal(err)
	}

	pending, err := j.Pending(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Trade != sampleTrade(1) {
		t.Errorf("round trip mismatch: %+v", pending[0].Trade)
	}
	if pending[0].State != StateNew {
		t.Errorf("state = %v, want NEW", pending[0].State)
	}
}

func TestAckedLeavesPending(t *testing.T) {
	j := openTest(t)
	j.Append(sampleTrade(1))
	j.Append(sampleTrade(2))

	if err := j.MarkSent(1); err != nil {
		t.Fatal(err)
	}
	if err := j.MarkAcked(1); err != nil {
		t.Fatal(err)
	}

	pending, err := j.Pending(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Trade.Seq != 2 {
		t.Fatalf("pending = %+v, want only seq 2", pending)
	}
}

func TestFailedIsRetried(t *testing.T) {
	j := openTest(t)
	j.Append(sampleTrade(1))

	j.MarkSent(1)
	if err := j.MarkFailed(1); err != nil {
		t.Fatal(err)
	}

	pending, err := j.Pending(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("failed entry must be pending again, got %d", len(pending))
	}
	if pending[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", pending[0].Retries)
	}
}

func TestTruncateAckedUpTo(t *testing.T) {
	j := openTest(t)
	for seq := uint64(1); seq <= 3; seq++ {
		j.Append(sampleTrade(seq))
	}
	j.MarkSent(1)
	j.MarkAcked(1)
	j.MarkSent(2)
	j.MarkAcked(2)

	if err := j.TruncateAckedUpTo(1); err != nil {
		t.Fatal(err)
	}

	// seq 1 is gone, seq 2 acked but above the cutoff, seq 3 pending
	if _, _, err := j.db.Get(key(1)); err == nil {
		t.Error("seq 1 should be deleted")
	}
	if _, closer, err := j.db.Get(key(2)); err != nil {
		t.Error("seq 2 should survive")
	} else {
		closer.Close()
	}

	pending, err := j.Pending(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Trade.Seq != 3 {
		t.Fatalf("pending = %+v, want only seq 3", pending)
	}
}
