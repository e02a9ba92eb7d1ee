package perps

import "testing"

func TestMarkSeedsBasisOnFirstSample(t *testing.T) {
	m := NewMarkEstimator(0.1)
	m.Update(1010, true, 1000)

	if !approx(m.Basis(), 10) {
		t.Errorf("basis = %f, want seeded 10", m.Basis())
	}
	if !approx(m.Mark(), 1010) {
		t.Errorf("mark = %f, want 1010", m.Mark())
	}
}

func TestMarkEMARecurrence(t *testing.T) {
	m := NewMarkEstimator(0.1)
	m.Update(1010, true, 1000) // basis seeded to 10
	m.Update(1000, true, 1000) // basis <- 0.1*0 + 0.9*10 = 9

	if !approx(m.Basis(), 9) {
		t.Errorf("basis = %f, want 9", m.Basis())
	}
	if !approx(m.Mark(), 1009) {
		t.Errorf("mark = %f, want 1009", m.Mark())
	}
}

func TestMarkFallsBackToIndex(t *testing.T) {
	m := NewMarkEstimator(0.1)
	m.Update(1010, true, 1000)

	// one-sided book: no fair price available
	m.Update(0, false, 990)

	if !approx(m.Mark(), 990) {
		t.Errorf("mark = %f, want index 990", m.Mark())
	}
	if !approx(m.Basis(), 10) {
		t.Errorf("basis must be unchanged without fair, got %f", m.Basis())
	}
}

func TestMarkBeforeAnySample(t *testing.T) {
	m := NewMarkEstimator(0.1)
	if m.Mark() != 0 {
		t.Errorf("mark before any sample = %f, want 0", m.Mark())
	}
}
