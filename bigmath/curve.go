package bigmath

import (
	"math/big"

	bigfloat "github.com/vrsc-reserve/engine/mathkernel"
)

// curvePrecision is the big.Float mantissa precision used to evaluate the
// bonded-curve formulas, chosen to strictly exceed the 50 significant decimal
// digits of original_source's cpp_dec_float_50 (50 decimal digits needs
// ceil(50*log2(10)) ~= 167 bits; 192 gives headroom).
const curvePrecision = 192

func newCurveFloat() *big.Float {
	return new(big.Float).SetPrec(curvePrecision)
}

// substituteZero applies the documented quirk: a zero supply or reserve is
// treated as 1 satoshi internally to avoid a singularity in the curve.
func substituteZero(v int64) int64 {
	if v == 0 {
		return 1
	}
	return v
}

// FractionalOut implements supply * ((reserveIn/reserve + 1)^ratio - 1),
// ratio = weight/SatoshiDen. Returns ok=false on a negative or non-finite
// intermediate, per the overflow contract; callers must abort and leave
// their own state untouched.
func FractionalOut(reserveIn, supply, reserve, weight int64) (int64, bool) {
	if reserveIn < 0 || supply < 0 || reserve < 0 || weight <= 0 {
		return 0, false
	}
	if reserveIn == 0 {
		return 0, true
	}

	s := substituteZero(supply)
	r := substituteZero(reserve)

	tSupply := newCurveFloat().SetInt64(s)
	tReserve := newCurveFloat().SetInt64(r)
	tDeposit := newCurveFloat().SetInt64(reserveIn)
	ratio := newCurveFloat().Quo(newCurveFloat().SetInt64(weight), newCurveFloat().SetInt64(SatoshiDen))

	res := newCurveFloat().Quo(tDeposit, tReserve)
	res.Add(res, newCurveFloat().SetInt64(1))
	res = bigfloat.Pow(res, ratio)
	res.Sub(res, newCurveFloat().SetInt64(1))
	res.Mul(res, tSupply)

	if res.Sign() < 0 || res.IsInf() {
		return 0, false
	}

	result, acc := res.Int(nil)
	_ = acc
	if !result.IsInt64() {
		return 0, false
	}
	return result.Int64(), true
}

// ReserveOut implements reserve * (1 - (1 - fractionalIn/supply)^(1/ratio)).
func ReserveOut(fractionalIn, supply, reserve, weight int64) (int64, bool) {
	if fractionalIn < 0 || supply < 0 || reserve < 0 || weight <= 0 {
		return 0, false
	}
	if fractionalIn == 0 {
		return 0, true
	}
	if fractionalIn >= supply {
		// selling the entire (substituted) supply returns the entire reserve
		return reserve, true
	}

	s := substituteZero(supply)
	r := substituteZero(reserve)

	tSupply := newCurveFloat().SetInt64(s)
	tReserve := newCurveFloat().SetInt64(r)
	tSell := newCurveFloat().SetInt64(fractionalIn)
	ratio := newCurveFloat().Quo(newCurveFloat().SetInt64(weight), newCurveFloat().SetInt64(SatoshiDen))
	invRatio := newCurveFloat().Quo(newCurveFloat().SetInt64(1), ratio)

	res := newCurveFloat().Quo(tSell, tSupply)
	res.Sub(newCurveFloat().SetInt64(1), res)
	res = bigfloat.Pow(res, invRatio)
	res.Sub(newCurveFloat().SetInt64(1), res)
	res.Mul(res, tReserve)

	if res.Sign() < 0 || res.IsInf() {
		return 0, false
	}

	result, acc := res.Int(nil)
	_ = acc
	if !result.IsInt64() {
		return 0, false
	}
	return result.Int64(), true
}
