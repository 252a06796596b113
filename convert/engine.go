// Package convert implements the batched multi-reserve conversion engine:
// a direct, idiomatic-Go port of original_source's
// CCurrencyState::ConvertAmounts (reserves.cpp), generalized to Go's value
// semantics instead of C++'s in/out reference parameters.
package convert

import (
	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/types"
)

// Result is the outcome of one ConvertAmounts call. OK is false exactly
// when the engine rejects the batch: Rates holds the pre-call price vector
// and NewState is a copy of the input state, untouched.
type Result struct {
	Rates     []int64
	NewState  currency.State
	ViaPrices []int64
	OK        bool
}

// ConvertAmounts runs one batched clearing pass. inputReserves and
// inputFractional must have the same length as base.Currencies.
// crossConversions, if non-nil, is an R×R matrix of reserve-i-to-reserve-j
// amounts routed through the fractional currency.
func ConvertAmounts(base *currency.State, inputReserves, inputFractional []int64, crossConversions [][]int64) Result {
	n := len(base.Currencies)
	initialRates := base.PricesInReserve()
	fail := Result{Rates: initialRates, NewState: base.Clone(), OK: false}
	noop := Result{Rates: initialRates, NewState: base.Clone(), OK: true}

	if len(inputReserves) != n || len(inputFractional) != n {
		return fail
	}
	if crossConversions != nil {
		if len(crossConversions) != n {
			return fail
		}
		for _, row := range crossConversions {
			if len(row) != n {
				return fail
			}
		}
	}

	haveConversion := false
	for _, v := range inputReserves {
		if v != 0 {
			haveConversion = true
			break
		}
	}
	if !haveConversion {
		for _, v := range inputFractional {
			if v != 0 {
				haveConversion = true
				break
			}
		}
	}
	if !haveConversion {
		for _, row := range crossConversions {
			for _, v := range row {
				if v != 0 {
					haveConversion = true
				}
			}
		}
	}
	if !haveConversion {
		return noop
	}

	for _, v := range inputReserves {
		if v < 0 {
			return fail
		}
	}
	for _, v := range inputFractional {
		if v < 0 {
			return fail
		}
	}

	var totalReserveWeight, maxReserveRatio int64
	weightOf := make(map[types.CurrencyID]int64, n)
	for i := 0; i < n; i++ {
		w := base.Weights[i]
		if w <= 0 {
			return fail
		}
		if w > maxReserveRatio {
			maxReserveRatio = w
		}
		totalReserveWeight += w
		weightOf[base.Currencies[i]] = w
	}
	if maxReserveRatio == 0 || totalReserveWeight > types.SatoshiDen {
		return fail
	}

	var inEntries, outEntries []flowEntry
	for i := 0; i < n; i++ {
		asNative := base.ReserveToNative(inputReserves[i], i)
		netFractional := inputFractional[i] - asNative

		if netFractional > 0 {
			key, ok := bigmath.MulDiv(netFractional, maxReserveRatio, base.Weights[i])
			if !ok {
				return fail
			}
			inEntries = append(inEntries, flowEntry{key: key, remaining: netFractional, id: base.Currencies[i]})
		} else if netFractional < 0 {
			amt := -netFractional
			key, ok := bigmath.MulDiv(amt, maxReserveRatio, base.Weights[i])
			if !ok {
				return fail
			}
			outEntries = append(outEntries, flowEntry{key: key, remaining: amt, id: base.Currencies[i]})
		}
	}

	layersIn, ok := buildLayers(inEntries, weightOf, maxReserveRatio)
	if !ok {
		return fail
	}
	layersOut, ok := buildLayers(outEntries, weightOf, maxReserveRatio)
	if !ok {
		return fail
	}

	supply := base.Supply

	// Pass 1: buy layers applied to the base state (buy-then-sell, first leg).
	type accum struct{ first, second int64 }
	outAccum := map[types.CurrencyID]*accum{}
	inAccum := map[types.CurrencyID]*accum{}

	addSupply, addNormalizedReserves := int64(0), int64(0)
	for _, lyr := range layersOut {
		base1, ok := bigmath.MulDiv(supply, lyr.weight, types.SatoshiDen)
		if !ok {
			return fail
		}
		totalLayerReserves := base1 + addNormalizedReserves
		addNormalizedReserves += lyr.amount
		newSupply, ok := bigmath.FractionalOut(lyr.amount, supply+addSupply, totalLayerReserves, lyr.weight)
		if !ok || newSupply < 0 {
			return fail
		}
		addSupply += newSupply
		for _, id := range lyr.ids {
			share, ok := bigmath.MulDiv(newSupply, weightOf[id], lyr.weight)
			if !ok {
				return fail
			}
			a := outAccum[id]
			if a == nil {
				a = &accum{}
				outAccum[id] = a
			}
			a.first += share
		}
	}
	supplyAfterBuy := supply + addSupply
	reserveAfterBuy := supply + addNormalizedReserves
	if supplyAfterBuy < 0 || reserveAfterBuy < 0 {
		return fail
	}

	// Pass 2: sell layers computed both before-buy (BB) and after-buy (AB)
	// in the same walk. The double addition of addNormalizedReservesBB/AB
	// below is not a typo: it mirrors original_source's reserve argument
	// verbatim (reserves.cpp ~1130-1134), which is bit-exact consensus code.
	addSupply = 0
	addNormalizedReservesBB, addNormalizedReservesAB := int64(0), int64(0)
	for _, lyr := range layersIn {
		baseBB, ok := bigmath.MulDiv(supply, lyr.weight, types.SatoshiDen)
		if !ok {
			return fail
		}
		totalLayerReservesBB := baseBB + addNormalizedReservesBB

		baseAB, ok := bigmath.MulDiv(supplyAfterBuy, lyr.weight, types.SatoshiDen)
		if !ok {
			return fail
		}
		totalLayerReservesAB := baseAB + addNormalizedReservesAB

		newReserveBB, ok := bigmath.ReserveOut(lyr.amount, supply+addSupply, totalLayerReservesBB+addNormalizedReservesBB, lyr.weight)
		if !ok {
			return fail
		}
		newReserveAB, ok := bigmath.ReserveOut(lyr.amount, supplyAfterBuy+addSupply, totalLayerReservesAB+addNormalizedReservesAB, lyr.weight)
		if !ok {
			return fail
		}

		addSupply -= lyr.amount
		addNormalizedReservesBB -= newReserveBB
		addNormalizedReservesAB -= newReserveAB

		for _, id := range lyr.ids {
			shareBB, ok := bigmath.MulDiv(newReserveBB, weightOf[id], lyr.weight)
			if !ok {
				return fail
			}
			shareAB, ok := bigmath.MulDiv(newReserveAB, weightOf[id], lyr.weight)
			if !ok {
				return fail
			}
			a := inAccum[id]
			if a == nil {
				a = &accum{}
				inAccum[id] = a
			}
			a.first += shareBB
			a.second += shareAB
		}
	}
	supplyAfterSell := supply + addSupply

	// Pass 3: buy layers applied after the before-buy sell pass (the
	// sell-then-buy ordering), filling the second half of outAccum.
	addSupply = 0
	addNormalizedReserves = 0
	for _, lyr := range layersOut {
		base3, ok := bigmath.MulDiv(supplyAfterSell, lyr.weight, types.SatoshiDen)
		if !ok {
			return fail
		}
		totalLayerReserves := base3 + addNormalizedReserves
		addNormalizedReserves += lyr.amount
		newSupply, ok := bigmath.FractionalOut(lyr.amount, supplyAfterSell+addSupply, totalLayerReserves, lyr.weight)
		if !ok {
			return fail
		}
		addSupply += newSupply
		for _, id := range lyr.ids {
			share, ok := bigmath.MulDiv(newSupply, weightOf[id], lyr.weight)
			if !ok {
				return fail
			}
			a := outAccum[id]
			if a == nil {
				a = &accum{}
				outAccum[id] = a
			}
			a.second += share
		}
	}

	newState := base.Clone()
	rates := make([]int64, n)

	for i := 0; i < n; i++ {
		id := base.Currencies[i]
		if a, had := outAccum[id]; had {
			delta, ok := bigmath.Shr1(a.first, a.second)
			if !ok {
				return fail
			}
			fractionalSize := inputFractional[i] + delta
			if fractionalSize <= 0 {
				return fail
			}
			rate, ok := bigmath.MulDiv(inputReserves[i], types.SatoshiDen, fractionalSize)
			if !ok {
				return fail
			}
			rates[i] = rate
			newState.Supply += delta
			if inputFractional[i] != 0 {
				newState.Reserves[i] += currency.NativeToReserveRaw(delta, rate)
			} else {
				newState.Reserves[i] += inputReserves[i]
			}
		} else if a, had := inAccum[id]; had {
			avg, ok := bigmath.Shr1(a.first, a.second)
			if !ok {
				return fail
			}
			adjustedReserveDelta := base.NativeToReserve(avg, i)
			reserveSize := inputReserves[i] + adjustedReserveDelta
			if inputFractional[i] <= 0 {
				return fail
			}
			rate, ok := bigmath.MulDiv(reserveSize, types.SatoshiDen, inputFractional[i])
			if !ok {
				return fail
			}
			rates[i] = rate
			newState.Supply -= inputFractional[i]
			newState.Reserves[i] -= adjustedReserveDelta
		}
	}

	// Open Question (b): rate fallback ordering. Only indices with no
	// layering activity at all fall back to the pre-call PriceInReserve;
	// every index that produced a layer was already filled above.
	for i := 0; i < n; i++ {
		if rates[i] == 0 {
			rates[i] = base.PriceInReserve(i)
		}
	}
	if newState.Supply < 0 {
		return fail
	}
	for _, r := range newState.Reserves {
		if r < 0 {
			return fail
		}
	}

	result := Result{Rates: rates, NewState: newState, OK: true}

	if crossConversions != nil {
		result = applyCrossConversions(&newState, rates, crossConversions, result)
	}

	return result
}

// applyCrossConversions sums per-source reserve totals routed to each
// destination, converts those totals to the fractional currency at the
// just-computed rates, and recursively clears them against the working
// state to produce via-prices.
func applyCrossConversions(newState *currency.State, rates []int64, crossConversions [][]int64, base Result) Result {
	n := len(newState.Currencies)

	convertRToR := false
	fractionsToConvert := make([]int64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			amt := crossConversions[i][j]
			if amt == 0 {
				continue
			}
			convertRToR = true
			fractionsToConvert[j] += currency.ReserveToNativeRaw(amt, rates[i])
		}
	}
	if !convertRToR {
		return base
	}

	zero := make([]int64, n)
	recurse := ConvertAmounts(newState, zero, fractionsToConvert, nil)
	if !recurse.OK {
		base.ViaPrices = newState.PricesInReserve()
		return base
	}
	base.NewState = recurse.NewState
	base.ViaPrices = recurse.Rates
	return base
}
