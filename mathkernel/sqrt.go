package mathkernel

import "math/big"

// Sqrt returns a big.Float representation of the square root of z,
// at the same precision as z, used by the AGM iteration inside Log.
// Panics on a negative z.
func Sqrt(z *big.Float) *big.Float {
	if z.Sign() < 0 {
		panic("Sqrt: argument is negative")
	}
	return new(big.Float).SetPrec(z.Prec()).Sqrt(z)
}
