// Package transfer implements the reserve transfer model: the unit of
// cross-system currency movement produced by export and consumed exactly
// once by import, grounded on original_source's CReserveTransfer
// (reserves.cpp).
package transfer

import (
	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/types"
)

// DestinationKind identifies the shape of a TransferDestination, mirroring
// original_source's CTransferDestination::DEST_* constants.
type DestinationKind uint8

const (
	DestInvalid DestinationKind = iota
	DestPKH
	DestID
	DestFullID
	DestSH
	DestNestedTransfer
)

// Destination is where a transfer's output lands, plus the optional
// gateway/next-leg instructions carried alongside it.
type Destination struct {
	Kind        DestinationKind
	Destination []byte

	GatewayID  types.CurrencyID
	HasGateway bool
	Fees       int64

	// Nested holds the raw encoding of a further ReserveTransfer when Kind
	// is DestNestedTransfer.
	Nested []byte
}

// HasGatewayLeg reports whether this destination names a further system to
// forward to.
func (d Destination) HasGatewayLeg() bool { return d.HasGateway }

// ReserveTransfer is the unit of cross-system currency movement, component
// F. ReserveValues must carry exactly one entry; FirstCurrency/FirstValue
// read that entry without requiring map iteration order elsewhere.
type ReserveTransfer struct {
	Flags types.TransferFlag

	FeeCurrencyID types.CurrencyID
	NFees         int64

	ReserveValues *currency.ValueMap

	DestCurrencyID  types.CurrencyID
	SecondReserveID types.CurrencyID

	Destination Destination
}

func (t *ReserveTransfer) has(f types.TransferFlag) bool { return t.Flags.Has(f) }

func (t *ReserveTransfer) IsConversion() bool       { return t.has(types.TransferConvert) }
func (t *ReserveTransfer) IsPreConversion() bool    { return t.has(types.TransferPreConvert) }
func (t *ReserveTransfer) IsReserveToReserve() bool { return t.has(types.TransferReserveToReserve) }
func (t *ReserveTransfer) IsMint() bool             { return t.has(types.TransferMint) }
func (t *ReserveTransfer) IsBurn() bool             { return t.has(types.TransferBurn) }
func (t *ReserveTransfer) IsRefund() bool           { return t.has(types.TransferRefund) }
func (t *ReserveTransfer) IsFeeOutput() bool        { return t.has(types.TransferFeeOutput) }
func (t *ReserveTransfer) IsImportToSource() bool   { return t.has(types.TransferImportToSource) }
func (t *ReserveTransfer) IsDoubleSend() bool       { return t.has(types.TransferDoubleSend) }
func (t *ReserveTransfer) IsDefinitionImport() bool { return t.has(types.TransferDefinitionImport) }
func (t *ReserveTransfer) HasNextLeg() bool {
	return t.Destination.HasGatewayLeg() || t.Destination.Kind == DestNestedTransfer
}

// FirstCurrency and FirstValue read the single entry ReserveValues must
// carry; both return the zero value if ReserveValues is empty.
func (t *ReserveTransfer) FirstCurrency() types.CurrencyID {
	ids := t.ReserveValues.IDs()
	if len(ids) == 0 {
		return types.CurrencyID{}
	}
	return ids[0]
}

func (t *ReserveTransfer) FirstValue() int64 {
	return t.ReserveValues.Get(t.FirstCurrency())
}

// IsValid checks the structural invariants a ReserveTransfer must hold:
// exactly one reserve value, a non-zero destination currency, and a
// well-formed destination.
func (t *ReserveTransfer) IsValid() bool {
	if t.ReserveValues.Len() != 1 {
		return false
	}
	if t.DestCurrencyID.IsZero() {
		return false
	}
	if t.Destination.Kind == DestInvalid {
		return false
	}
	if t.FirstValue() < 0 {
		return false
	}
	return true
}

// CalculateTransferFee computes the base per-transfer fee for a given
// destination and flag set. Fee-output legs and plain (non-preconvert)
// conversion legs carry no transfer fee of their own. The shift amount
// below mirrors original_source's CReserveTransfer::CalculateTransferFee
// verbatim, including its "<<" binding looser than "+" in the source
// expression: for destinations under DestinationByteDivisor bytes the
// per-byte term is zero and the formula reduces to 2x the per-step fee;
// for larger destinations the per-byte term becomes part of the shift
// count itself, not an additive term.
func CalculateTransferFee(destination Destination, flags types.TransferFlag) int64 {
	if flags.Has(types.TransferFeeOutput) || (!flags.Has(types.TransferPreConvert) && flags.Has(types.TransferConvert)) {
		return 0
	}
	perByte := (types.DefaultPerStepFee << 1) * (int64(len(destination.Destination)) / types.DestinationByteDivisor)
	shift := 1 + perByte
	if shift < 0 || shift >= 63 {
		return 0
	}
	return types.DefaultPerStepFee << uint(shift)
}

// CalculateTransferFee is the method form, using this transfer's own
// destination and flags.
func (t *ReserveTransfer) CalculateTransferFee() int64 {
	return CalculateTransferFee(t.Destination, t.Flags)
}

// TotalTransferFee folds the base transfer fee and any gateway-leg fee
// into a single-currency value map keyed by FeeCurrencyID.
func (t *ReserveTransfer) TotalTransferFee() *currency.ValueMap {
	fee := t.NFees
	if t.Destination.HasGatewayLeg() && t.Destination.Fees != 0 {
		fee += t.Destination.Fees
	}
	out := currency.NewValueMap()
	out.Add(t.FeeCurrencyID, fee)
	return out
}

// CalculateConversionFee is SUCCESS_FEE of inputAmount with a
// MIN_SUCCESS_FEE floor, the shared fee formula used by the import
// processor and ConversionFee below.
func CalculateConversionFee(inputAmount int64) int64 {
	fee := CalculateConversionFeeNoMin(inputAmount)
	if fee < types.MinSuccessFee {
		fee = types.MinSuccessFee
	}
	return fee
}

// CalculateConversionFeeNoMin is SUCCESS_FEE of inputAmount without the
// MIN_SUCCESS_FEE floor, used where a caller must apply the floor once
// across a combined total rather than per leg (e.g. pass-through fees).
func CalculateConversionFeeNoMin(inputAmount int64) int64 {
	if inputAmount <= 0 {
		return 0
	}
	v, ok := bigmath.MulDiv(inputAmount, types.SuccessFee, bigmath.SatoshiDen)
	if !ok {
		return 0
	}
	return v
}

// ConversionFee returns the per-reserve-currency conversion fee owed by a
// conversion or pre-conversion transfer, doubled for reserve-to-reserve
// legs since those clear through the fractional currency twice.
func (t *ReserveTransfer) ConversionFee() *currency.ValueMap {
	out := currency.NewValueMap()
	if !t.IsConversion() && !t.IsPreConversion() {
		return out
	}
	t.ReserveValues.Range(func(id types.CurrencyID, amount int64) {
		out.Add(id, CalculateConversionFee(amount))
	})
	if t.IsReserveToReserve() {
		out = currency.Scale(out, 2, 1)
	}
	return out
}

// CalculateFee folds the transfer fee and the conversion fee (if any)
// into one map, the way the engine prices a transfer before dispatch.
func (t *ReserveTransfer) CalculateFee() *currency.ValueMap {
	out := currency.NewValueMap()
	out.Add(t.FeeCurrencyID, t.CalculateTransferFee())
	conv := t.ConversionFee()
	return currency.Add(out, conv)
}

// GetRefundTransfer transforms t into its refund form: convert/pre-convert
// clear, refund sets, a full-identity destination degrades to a plain
// identity destination (the identity already exists on the source chain),
// and pre-conversions retarget the destination currency to the first
// reserve so the refund lands as an ordinary transfer of what was paid in.
// Idempotent: calling it again on an already-refunded transfer is a no-op
// beyond re-deriving the same destination currency.
func (t *ReserveTransfer) GetRefundTransfer() ReserveTransfer {
	rt := *t
	rt.ReserveValues = t.ReserveValues.Clone()

	if rt.Destination.Kind == DestFullID {
		rt.Destination.Kind = DestID
	}

	if t.IsPreConversion() {
		rt.DestCurrencyID = rt.FirstCurrency()
	}

	rt.Flags &= ^(types.TransferDoubleSend | types.TransferPreConvert | types.TransferConvert)

	if rt.Flags.Has(types.TransferPreallocate) {
		rt.Flags &= ^types.TransferPreallocate
		id := rt.FirstCurrency()
		rt.ReserveValues.Set(id, 0)
	}

	rt.Flags |= types.TransferRefund
	rt.DestCurrencyID = rt.FirstCurrency()
	return rt
}

// TxOutput is the engine-level description of what a transfer settles
// into: a plain payment, a reserve-token output, or a forwarded next-leg
// transfer. It deliberately stops short of building an actual output
// script; that belongs to the chain layer, not the reserve engine.
type TxOutput struct {
	NextLeg      bool
	NextTransfer *ReserveTransfer
	NativeAmount int64
	Reserves     *currency.ValueMap
	Destination  Destination
}

// GetTxOut decides the shape of a transfer's settlement output. It
// mirrors original_source's CReserveTransfer::GetTxOut: a next-leg
// transfer when a gateway or nested transfer is present, otherwise a
// plain payment when no reserves accompany a native amount, otherwise a
// reserve-token output. An unsupported destination kind fails.
func (t *ReserveTransfer) GetTxOut(reserves *currency.ValueMap, nativeAmount int64) (TxOutput, bool) {
	if t.HasNextLeg() {
		next := ReserveTransfer{
			Flags:         types.TransferConvert,
			ReserveValues: reserves,
			FeeCurrencyID: t.Destination.GatewayID,
			NFees:         t.Destination.Fees,
			Destination:   t.Destination,
		}
		if t.Destination.Kind == DestNestedTransfer {
			// caller is expected to have decoded the nested transfer and
			// substituted it via NextTransfer before this point; here we
			// only carry the envelope forward.
		} else {
			next.Destination.HasGateway = false
		}
		return TxOutput{NextLeg: true, NextTransfer: &next, NativeAmount: nativeAmount, Destination: t.Destination}, true
	}

	if reserves.Len() == 0 && nativeAmount != 0 {
		switch t.Destination.Kind {
		case DestID, DestFullID, DestPKH, DestSH:
			return TxOutput{NativeAmount: nativeAmount, Destination: t.Destination}, true
		}
		return TxOutput{}, false
	}

	switch t.Destination.Kind {
	case DestID, DestFullID, DestPKH:
		return TxOutput{NativeAmount: nativeAmount, Reserves: reserves, Destination: t.Destination}, true
	}
	return TxOutput{}, false
}
