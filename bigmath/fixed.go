// Package bigmath implements the fixed-point satoshi kernel: 256-bit
// intermediate multiplication/division with truncation-toward-zero rounding,
// and the explicit overflow contract required of every consensus-critical
// arithmetic step in the reserve engine.
package bigmath

import (
	"math"

	"github.com/holiman/uint256"
)

// SatoshiDen is the fixed-point scale: 1 unit == 1e-8 of a currency, i.e.
// 100% of a reserve weight is represented as SatoshiDen.
const SatoshiDen int64 = 100000000

// MulDiv computes floor(a*b/c) (truncated toward zero) using a 256-bit
// unsigned intermediate, the way original_source uses arith_uint256 for every
// product that can overflow 64 bits. ok is false if a, b, or c is negative,
// c is zero, or the final result does not fit in an int64 — per the
// overflow contract, callers MUST treat a false ok as a hard abort and
// leave their own state untouched.
func MulDiv(a, b, c int64) (result int64, ok bool) {
	if a < 0 || b < 0 || c <= 0 {
		return 0, false
	}
	ua := uint256.NewInt(uint64(a))
	ub := uint256.NewInt(uint64(b))
	uc := uint256.NewInt(uint64(c))

	product := new(uint256.Int).Mul(ua, ub)
	quotient := new(uint256.Int).Div(product, uc)

	if !quotient.IsUint64() {
		return 0, false
	}
	v := quotient.Uint64()
	if v > uint64(math.MaxInt64) {
		return 0, false
	}
	return int64(v), true
}

// MulDivRem is MulDiv but also returns the remainder of the 256-bit division,
// needed by callers that must split a value precisely (e.g. the conversion
// engine's per-currency apportionment inside a layer).
func MulDivRem(a, b, c int64) (result int64, remainder int64, ok bool) {
	if a < 0 || b < 0 || c <= 0 {
		return 0, 0, false
	}
	ua := uint256.NewInt(uint64(a))
	ub := uint256.NewInt(uint64(b))
	uc := uint256.NewInt(uint64(c))

	product := new(uint256.Int).Mul(ua, ub)
	quotient, rem := new(uint256.Int).DivMod(product, uc, new(uint256.Int))

	if !quotient.IsUint64() || !rem.IsUint64() {
		return 0, 0, false
	}
	qv, rv := quotient.Uint64(), rem.Uint64()
	if qv > uint64(math.MaxInt64) {
		return 0, 0, false
	}
	return int64(qv), int64(rv), true
}

// Shr1 computes floor((a+b)/2) without overflow, using a 256-bit sum the way
// original_source shifts an arith_uint256 right by one bit to average two
// clearing-price candidates.
func Shr1(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	sum := new(uint256.Int).Add(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	sum.Rsh(sum, 1)
	if !sum.IsUint64() {
		return 0, false
	}
	v := sum.Uint64()
	if v > uint64(math.MaxInt64) {
		return 0, false
	}
	return int64(v), true
}
