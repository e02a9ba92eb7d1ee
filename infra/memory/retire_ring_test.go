package memory

import "testing"

type obj struct{ n int }

func TestRetireRingFIFO(t *testing.T) {
	r := NewRetireRing[obj](8)

	for i := 0; i < 5; i++ {
		if !r.Enqueue(&obj{n: i}) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	for i := 0; i < 5; i++ {
		v := r.Dequeue()
		if v == nil || v.n != i {
			t.Fatalf("dequeue %d = %v, want n=%d", i, v, i)
		}
	}
	if r.Dequeue() != nil {
		t.Error("empty ring must dequeue nil")
	}
}

func TestRetireRingFull(t *testing.T) {
	r := NewRetireRing[obj](2)

	if !r.Enqueue(&obj{}) || !r.Enqueue(&obj{}) {
		t.Fatal("ring should accept up to capacity")
	}
	if r.Enqueue(&obj{}) {
		t.Error("full ring must reject")
	}

	r.Dequeue()
	if !r.Enqueue(&obj{}) {
		t.Error("ring should accept again after a dequeue")
	}
}

func TestRetireRingDrain(t *testing.T) {
	r := NewRetireRing[obj](8)
	for i := 0; i < 6; i++ {
		r.Enqueue(&obj{n: i})
	}

	seen := 0
	n := r.Drain(func(o *obj) { seen++ })
	if n != 6 || seen != 6 {
		t.Errorf("drained %d (visited %d), want 6", n, seen)
	}
	if r.Dequeue() != nil {
		t.Error("ring must be empty after drain")
	}
}

func TestRetireRingSizeMustBePowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non power-of-two size")
		}
	}()
	NewRetireRing[obj](3)
}

func TestPoolRoundTrip(t *testing.T) {
	p := NewPool(func() *obj { return &obj{} })

	a := p.Get()
	a.n = 42
	p.Put(a)

	b := p.Get()
	if b == nil {
		t.Fatal("pool returned nil")
	}
}
