package convert

import (
	"testing"

	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/types"
)

func idFor(b byte) types.CurrencyID {
	var id types.CurrencyID
	id[len(id)-1] = b
	return id
}

func fractionalState(ids []types.CurrencyID, weights, reserves []int64, supply int64) *currency.State {
	n := len(ids)
	price := make([]int64, n)
	s := &currency.State{
		Currencies:      ids,
		Weights:         weights,
		Reserves:        reserves,
		Supply:          supply,
		Flags:           types.CurrencyStateFractional,
		ConversionPrice: price,
	}
	for i := 0; i < n; i++ {
		s.ConversionPrice[i] = s.PriceInReserve(i)
	}
	return s
}

func TestConvertAmountsSingleBuy(t *testing.T) {
	s := fractionalState([]types.CurrencyID{idFor(1)}, []int64{25000000}, []int64{100000000}, 400000000)

	res := ConvertAmounts(s, []int64{10000000}, []int64{0}, nil)
	if !res.OK {
		t.Fatalf("ConvertAmounts failed")
	}

	want := int64(9637123)
	got := res.NewState.Supply - s.Supply
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 5 {
		t.Fatalf("supply delta = %d, want ~%d", got, want)
	}
	if res.NewState.Reserves[0] != 110000000 {
		t.Fatalf("reserve balance = %d, want 110000000", res.NewState.Reserves[0])
	}
}

func TestConvertAmountsFourWaySymmetric(t *testing.T) {
	ids := []types.CurrencyID{idFor(1), idFor(2), idFor(3), idFor(4)}
	weights := []int64{25000000, 25000000, 25000000, 25000000}
	reserves := []int64{100000000, 100000000, 100000000, 100000000}
	s := fractionalState(ids, weights, reserves, 400000000)

	in := []int64{10000000, 10000000, 10000000, 10000000}
	zero := []int64{0, 0, 0, 0}
	res := ConvertAmounts(s, in, zero, nil)
	if !res.OK {
		t.Fatalf("ConvertAmounts failed")
	}

	for i := 1; i < 4; i++ {
		if res.NewState.Reserves[i] != res.NewState.Reserves[0] {
			t.Fatalf("reserve %d diverged: %v", i, res.NewState.Reserves)
		}
		if res.Rates[i] != res.Rates[0] {
			t.Fatalf("rate %d diverged: %v", i, res.Rates)
		}
	}
	if res.NewState.Reserves[0] != 110000000 {
		t.Fatalf("reserve balance = %d, want 110000000", res.NewState.Reserves[0])
	}
}

func TestConvertAmountsBuyAndSellSameBlockDeterministic(t *testing.T) {
	ids := []types.CurrencyID{idFor(1)}
	weights := []int64{25000000}
	reserves := []int64{100000000}
	supply := int64(400000000)

	mk := func() *currency.State { return fractionalState(ids, weights, reserves, supply) }

	// one batch: buy 1e7 reserve, sell 1e7 fractional, both in reserve 0.
	s1 := mk()
	res1 := ConvertAmounts(s1, []int64{10000000}, []int64{10000000}, nil)
	if !res1.OK {
		t.Fatalf("ConvertAmounts failed")
	}

	s2 := mk()
	res2 := ConvertAmounts(s2, []int64{10000000}, []int64{10000000}, nil)
	if !res2.OK {
		t.Fatalf("ConvertAmounts failed (second run)")
	}

	if res1.Rates[0] != res2.Rates[0] {
		t.Fatalf("clearing price not deterministic across runs: %d vs %d", res1.Rates[0], res2.Rates[0])
	}
	if res1.NewState.Supply != res2.NewState.Supply || res1.NewState.Reserves[0] != res2.NewState.Reserves[0] {
		t.Fatalf("state diverged across identical runs")
	}
}

func TestConvertAmountsReserveToReserve(t *testing.T) {
	ids := []types.CurrencyID{idFor(1), idFor(2)}
	weights := []int64{25000000, 25000000}
	reserves := []int64{100000000, 100000000}
	s := fractionalState(ids, weights, reserves, 400000000)

	cross := [][]int64{
		{0, 10000000},
		{0, 0},
	}
	zero := []int64{0, 0}
	res := ConvertAmounts(s, zero, zero, cross)
	if !res.OK {
		t.Fatalf("ConvertAmounts failed")
	}
	if res.ViaPrices == nil {
		t.Fatalf("expected via-prices from cross-conversion recursion")
	}
	if len(res.ViaPrices) != 2 {
		t.Fatalf("via-prices length = %d, want 2", len(res.ViaPrices))
	}
}

func TestConvertAmountsNoopOnAllZero(t *testing.T) {
	s := fractionalState([]types.CurrencyID{idFor(1)}, []int64{25000000}, []int64{100000000}, 400000000)
	res := ConvertAmounts(s, []int64{0}, []int64{0}, nil)
	if !res.OK {
		t.Fatalf("all-zero conversion must be a no-op success, not a failure")
	}
	if res.NewState.Supply != s.Supply || res.NewState.Reserves[0] != s.Reserves[0] {
		t.Fatalf("no-op conversion must leave state unchanged")
	}
}

func TestConvertAmountsRejectsLengthMismatch(t *testing.T) {
	s := fractionalState([]types.CurrencyID{idFor(1)}, []int64{25000000}, []int64{100000000}, 400000000)
	res := ConvertAmounts(s, []int64{1, 2}, []int64{0}, nil)
	if res.OK {
		t.Fatalf("expected failure on length mismatch")
	}
	if res.Rates[0] != s.PriceInReserve(0) {
		t.Fatalf("failure must return the pre-call price vector")
	}
}

func TestConvertAmountsRejectsNegativeInput(t *testing.T) {
	s := fractionalState([]types.CurrencyID{idFor(1)}, []int64{25000000}, []int64{100000000}, 400000000)
	res := ConvertAmounts(s, []int64{-1}, []int64{0}, nil)
	if res.OK {
		t.Fatalf("expected failure on negative reserve input")
	}
	if res.NewState.Reserves[0] != s.Reserves[0] {
		t.Fatalf("failed conversion must leave state untouched")
	}
}

func TestConvertAmountsPriceMonotonicOnPureBuy(t *testing.T) {
	s := fractionalState([]types.CurrencyID{idFor(1)}, []int64{25000000}, []int64{100000000}, 400000000)
	before := s.PriceInReserve(0)

	res := ConvertAmounts(s, []int64{1000000}, []int64{0}, nil)
	if !res.OK {
		t.Fatalf("ConvertAmounts failed")
	}
	if res.NewState.Supply <= s.Supply {
		t.Fatalf("supply must strictly grow on a pure buy")
	}
	if res.Rates[0] < before {
		t.Fatalf("rate must not drop below the pre-call price on a pure buy: got %d, had %d", res.Rates[0], before)
	}
}
