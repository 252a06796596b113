package currency

import (
	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/types"
)

// State is a currency's committed on-chain state: supply, reserve
// balances, per-reserve weights, conversion prices, and phase flags.
type State struct {
	Currencies []types.CurrencyID
	Weights    []int64
	Reserves   []int64

	Supply        int64
	InitialSupply int64
	Emitted       int64

	Flags types.CurrencyStateFlag

	ConversionPrice    []int64
	ViaConversionPrice []int64
}

// CoinbaseState extends State with the per-block ledger reset by
// ClearForNextBlock and recomputed by the import processor.
type CoinbaseState struct {
	State

	ReserveIn  []int64
	NativeIn   []int64
	ReserveOut []int64

	Fees           []int64
	ConversionFees []int64

	NativeFees           int64
	NativeConversionFees int64
	NativeOut            int64
	PreConvertedOut      int64

	// PrimaryCurrencyOut tracks native units paid out unconverted; see
	// SPEC_FULL.md §3 supplement.
	PrimaryCurrencyOut int64

	// PreConvertedReserves is the portion of each reserve already earmarked
	// by pre-conversion before the block's clearing pass runs; subtracted
	// from reserveConverted before the conversion engine is invoked.
	PreConvertedReserves []int64
}

// numReserves returns len(Currencies), the canonical reserve count.
func (s *State) numReserves() int { return len(s.Currencies) }

// reserveIndex returns the position of id in Currencies, or -1.
func (s *State) reserveIndex(id types.CurrencyID) int {
	for i, c := range s.Currencies {
		if c == id {
			return i
		}
	}
	return -1
}

// Validate checks the core state invariants: reserve/weight vector lengths
// match the currency count, and weights sum to at most 100%.
func (s *State) Validate() error {
	n := s.numReserves()
	if len(s.Weights) != n || len(s.Reserves) != n {
		return errInvalidDefinition("weights/reserves length mismatch")
	}
	var weightSum int64
	for i := 0; i < n; i++ {
		if s.Weights[i] <= 0 {
			return errInvalidDefinition("non-positive reserve weight")
		}
		weightSum += s.Weights[i]
		if s.Reserves[i] < 0 {
			return errInvalidDefinition("negative reserve balance")
		}
	}
	if s.Flags.Has(types.CurrencyStateFractional) && weightSum > types.SatoshiDen {
		return errInvalidDefinition("reserve weights exceed 100%")
	}
	if s.Supply < 0 {
		return errInvalidDefinition("negative supply")
	}
	return nil
}

// PriceInReserve returns the satoshis of reserve i per unit of supply at the
// current committed state: reserves[i] * SatoshiDen^2 / (supply * weights[i]).
func (s *State) PriceInReserve(i int) int64 {
	if i < 0 || i >= s.numReserves() || s.Supply <= 0 || s.Weights[i] <= 0 {
		return 0
	}
	num, ok := bigmath.MulDiv(s.Reserves[i], types.SatoshiDen, s.Weights[i])
	if !ok {
		return 0
	}
	price, ok := bigmath.MulDiv(num, types.SatoshiDen, s.Supply)
	if !ok {
		return 0
	}
	return price
}

// PricesInReserve returns PriceInReserve for every reserve.
func (s *State) PricesInReserve() []int64 {
	out := make([]int64, s.numReserves())
	for i := range out {
		out[i] = s.PriceInReserve(i)
	}
	return out
}

// ReserveToNativeRaw converts an amount of reserve i into native units at an
// explicit price (satoshis of reserve per unit of native), truncating
// toward zero.
func ReserveToNativeRaw(amount, price int64) int64 {
	if price <= 0 || amount == 0 {
		return 0
	}
	v, ok := bigmath.MulDiv(abs64(amount), types.SatoshiDen, price)
	if !ok {
		return 0
	}
	return sign64(amount) * v
}

// NativeToReserveRaw converts an amount of native units into reserve units
// at an explicit price, truncating toward zero.
func NativeToReserveRaw(amount, price int64) int64 {
	if amount == 0 {
		return 0
	}
	v, ok := bigmath.MulDiv(abs64(amount), price, types.SatoshiDen)
	if !ok {
		return 0
	}
	return sign64(amount) * v
}

// ReserveToNative converts amount of reserve i to native units using the
// state's recorded ConversionPrice[i].
func (s *State) ReserveToNative(amount int64, i int) int64 {
	if i < 0 || i >= len(s.ConversionPrice) {
		return 0
	}
	return ReserveToNativeRaw(amount, s.ConversionPrice[i])
}

// NativeToReserve converts amount of native units to reserve i using the
// state's recorded ConversionPrice[i].
func (s *State) NativeToReserve(amount int64, i int) int64 {
	if i < 0 || i >= len(s.ConversionPrice) {
		return 0
	}
	return NativeToReserveRaw(amount, s.ConversionPrice[i])
}

// ViaReserveToNative is ReserveToNative using ViaConversionPrice instead,
// for reserve-to-reserve legs priced through the fractional currency.
func (s *State) ViaReserveToNative(amount int64, i int) int64 {
	if i < 0 || i >= len(s.ViaConversionPrice) {
		return 0
	}
	return ReserveToNativeRaw(amount, s.ViaConversionPrice[i])
}

// ClearForNextBlock resets the per-block ledger fields of a CoinbaseState,
// leaving the committed State (supply, reserves, weights, flags) untouched,
// the way original_source's CCoinbaseCurrencyState::ClearForNextBlock does.
func (c *CoinbaseState) ClearForNextBlock() {
	n := c.numReserves()
	c.ReserveIn = make([]int64, n)
	c.NativeIn = make([]int64, n)
	c.ReserveOut = make([]int64, n)
	c.Fees = make([]int64, n)
	c.ConversionFees = make([]int64, n)
	c.PreConvertedReserves = make([]int64, n)
	c.NativeFees = 0
	c.NativeConversionFees = 0
	c.NativeOut = 0
	c.PreConvertedOut = 0
	c.PrimaryCurrencyOut = 0
	// ConversionPrice/ViaConversionPrice are intentionally carried forward,
	// not reset: they are the previous block's committed price schedule
	// until the import processor recomputes them.
	if c.ConversionPrice == nil {
		c.ConversionPrice = make([]int64, n)
	}
	if c.ViaConversionPrice == nil {
		c.ViaConversionPrice = make([]int64, n)
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() State {
	out := *s
	out.Currencies = append([]types.CurrencyID(nil), s.Currencies...)
	out.Weights = append([]int64(nil), s.Weights...)
	out.Reserves = append([]int64(nil), s.Reserves...)
	out.ConversionPrice = append([]int64(nil), s.ConversionPrice...)
	out.ViaConversionPrice = append([]int64(nil), s.ViaConversionPrice...)
	return out
}

// Clone returns a deep copy of c.
func (c *CoinbaseState) Clone() CoinbaseState {
	out := *c
	out.State = c.State.Clone()
	out.ReserveIn = append([]int64(nil), c.ReserveIn...)
	out.NativeIn = append([]int64(nil), c.NativeIn...)
	out.ReserveOut = append([]int64(nil), c.ReserveOut...)
	out.Fees = append([]int64(nil), c.Fees...)
	out.ConversionFees = append([]int64(nil), c.ConversionFees...)
	out.PreConvertedReserves = append([]int64(nil), c.PreConvertedReserves...)
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign64(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}
