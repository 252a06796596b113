package currency

import (
	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/types"
)

// lcgModulus and lcgMultiplier are the standard minimal-standard LCG
// parameters (Lewis-Goodman-Miller) used for the deterministic remainder
// shuffle below.
const (
	lcgMultiplier int64 = 48271
	lcgModulus    int64 = 2147483647 // 2^31 - 1
)

// lcg advances the minimal-standard generator one step.
func lcg(seed int64) int64 {
	return (lcgMultiplier * seed) % lcgModulus
}

// UpdateWithEmission redistributes reserve weights to preserve the reserve
// ratio when toEmit units of the fractional currency are minted outside
// conversion. Mutates s in place and returns the new state by value
// through s.
func UpdateWithEmission(s *State, toEmit int64) {
	s.InitialSupply = s.Supply

	if !s.Flags.Has(types.CurrencyStateFractional) || s.numReserves() == 0 {
		s.Supply += toEmit
		s.Emitted = toEmit
		return
	}

	var initialRatio int64
	for _, w := range s.Weights {
		initialRatio += w
	}

	newSupply := s.Supply + toEmit
	if newSupply <= 0 || s.Supply <= 0 || initialRatio <= 0 {
		s.Supply = newSupply
		s.Emitted = toEmit
		return
	}

	// newRatio = initialRatio * supply * SatoshiDen / (supply+toEmit) / SatoshiDen,
	// rounded half-to-odd: round up at exactly half only when the truncated
	// ratio is odd.
	numerator, ok := bigmath.MulDiv(initialRatio, s.Supply, 1)
	if !ok {
		s.Supply = newSupply
		s.Emitted = toEmit
		return
	}
	scaledNum, ok := bigmath.MulDiv(numerator, types.SatoshiDen, newSupply)
	if !ok {
		s.Supply = newSupply
		s.Emitted = toEmit
		return
	}
	truncatedRatio := scaledNum / types.SatoshiDen
	remainderScaled := scaledNum % types.SatoshiDen
	newRatio := truncatedRatio
	if remainderScaled*2 == types.SatoshiDen {
		if truncatedRatio%2 != 0 {
			newRatio++
		}
	} else if remainderScaled*2 > types.SatoshiDen {
		newRatio++
	}

	delta := initialRatio - newRatio
	if delta < 0 {
		delta = 0
	}

	n := s.numReserves()
	newWeights := make([]int64, n)
	assigned := make([]int64, n)
	var totalAssigned int64

	for i := 0; i < n; i++ {
		if initialRatio == 0 {
			continue
		}
		share, _, _ := bigmath.MulDivRem(delta, s.Weights[i], initialRatio)
		assigned[i] = share
		totalAssigned += share
	}

	remainder := delta - totalAssigned

	// Deterministic remainder distribution: split evenly first (already
	// folded into the per-weight share above via truncation), then
	// pseudorandomly shuffle the assignment of the one-extra-unit
	// remainder using the minimal-standard LCG seeded with
	// supply + forAll + forSome.
	if remainder > 0 {
		forAll := remainder / int64(n)
		forSome := remainder % int64(n)
		seed := s.Supply + forAll + forSome
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		// Fisher-Yates shuffle driven by successive LCG outputs.
		for i := n - 1; i > 0; i-- {
			seed = lcg(seed)
			j := int(seed % int64(i+1))
			order[i], order[j] = order[j], order[i]
		}
		for k := 0; k < int(remainder) && k < n; k++ {
			assigned[order[k]]++
		}
	}

	for i := 0; i < n; i++ {
		newWeights[i] = s.Weights[i] - assigned[i]
		if newWeights[i] < 0 {
			newWeights[i] = 0
		}
	}

	s.Weights = newWeights
	s.Supply = newSupply
	s.Emitted = toEmit
}
