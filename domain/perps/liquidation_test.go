package perps

import (
	"math"
	"testing"
)

func TestLiquidationPriceFormula(t *testing.T) {
	e := NewLiquidationEngine(0.005, 0.01, 0.003)

	cases := []struct {
		name string
		pos  Position
		want float64
	}{
		{
			name: "long unit size",
			pos:  Position{Side: Long, Entry: 100, Margin: 10, Size: 1},
			// 100 - (10 - 0.005*1*100) / (0.995*1)
			want: 90.45226130653266,
		},
		{
			name: "long size ten",
			pos:  Position{Side: Long, Entry: 100, Margin: 10, Size: 10},
			want: 99.49748743718592,
		},
		{
			name: "short unit size",
			pos:  Position{Side: Short, Entry: 100, Margin: 10, Size: 1},
			want: 109.54773869346734,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.LiquidationPrice(&tc.pos)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("liq price = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLiquidationPriceFloorsAtZero(t *testing.T) {
	e := NewLiquidationEngine(0.005, 0.01, 0.003)
	p := Position{Side: Long, Entry: 10, Margin: 1000, Size: 1}
	if got := e.LiquidationPrice(&p); got != 0 {
		t.Errorf("overfunded long liq price = %f, want clamp to 0", got)
	}
}

func TestShouldLiquidate(t *testing.T) {
	e := NewLiquidationEngine(0.005, 0.01, 0.003)
	p := Position{Side: Long, Entry: 100, Margin: 10, Size: 10}

	// At mark 100 the ratio is 10/1000 = 0.01, healthy.
	if e.ShouldLiquidate(&p, 100) {
		t.Error("healthy position flagged")
	}
	// At mark 99.49 margin ratio dips below maintenance.
	if !e.ShouldLiquidate(&p, 99.49) {
		t.Error("underwater position not flagged")
	}
	flat := Position{Side: Flat}
	if e.ShouldLiquidate(&flat, 1) {
		t.Error("flat position can never liquidate")
	}
}

func TestInsuranceFund(t *testing.T) {
	f := NewInsuranceFund(100)

	f.Contribute(50)
	if !approx(f.Balance(), 150) {
		t.Errorf("balance = %f, want 150", f.Balance())
	}

	if !f.Draw(100) {
		t.Error("covered draw must succeed")
	}
	if !approx(f.Balance(), 50) {
		t.Errorf("balance = %f, want 50", f.Balance())
	}

	// Draw beyond the balance drains it and reports the shortfall.
	if f.Draw(80) {
		t.Error("uncovered draw must report failure")
	}
	if !approx(f.Balance(), 0) {
		t.Errorf("balance = %f, want 0 after exhaustion", f.Balance())
	}
}
