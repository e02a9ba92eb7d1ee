package perps

import "testing"

func TestFundingRateClamped(t *testing.T) {
	f := NewFundingController(28800, 0.001)

	if rate := f.ComputeRate(100, 1000); !approx(rate, 0.001) {
		t.Errorf("rate = %f, want clamped +0.001", rate)
	}
	if rate := f.ComputeRate(-100, 1000); !approx(rate, -0.001) {
		t.Errorf("rate = %f, want clamped -0.001", rate)
	}
	if rate := f.ComputeRate(0.5, 1000); !approx(rate, 0.0005) {
		t.Errorf("rate = %f, want 0.0005 inside the cap", rate)
	}
}

func TestFundingDue(t *testing.T) {
	f := NewFundingController(3600, 0.001)
	f.Seed(100)

	if f.Due(3699) {
		t.Error("not due before the interval elapses")
	}
	if !f.Due(3700) {
		t.Error("due once the interval has elapsed")
	}
}

func TestFundingSettleLongsPayShorts(t *testing.T) {
	l := NewLedger(noFees())
	l.Credit(1, 100)
	l.Credit(2, 100)
	l.ApplyFill(1, Long, 1000, 10, false)
	l.ApplyFill(2, Short, 1000, 10, false)

	f := NewFundingController(3600, 0.001)
	f.ComputeRate(10, 1000) // premium 0.01, clamped to 0.001

	payments := f.Settle(l, 1000, 7200)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	// payment magnitude: 0.001 * 10 * 1000 = 10
	p1, _ := l.Get(1)
	p2, _ := l.Get(2)
	if !approx(p1.Margin, 90) {
		t.Errorf("long margin = %f, want 90 (paid funding)", p1.Margin)
	}
	if !approx(p2.Margin, 110) {
		t.Errorf("short margin = %f, want 110 (received funding)", p2.Margin)
	}
	if f.LastSettledAt() != 7200 {
		t.Errorf("last settled = %d, want 7200", f.LastSettledAt())
	}
}

func TestFundingNegativeRateShortsPay(t *testing.T) {
	l := NewLedger(noFees())
	l.Credit(1, 100)
	l.ApplyFill(1, Short, 1000, 5, false)

	f := NewFundingController(3600, 0.001)
	f.ComputeRate(-10, 1000)
	f.Settle(l, 1000, 3600)

	p, _ := l.Get(1)
	// short pays 0.001 * 5 * 1000 = 5
	if !approx(p.Margin, 95) {
		t.Errorf("short margin = %f, want 95", p.Margin)
	}
}
