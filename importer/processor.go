// Package importer implements the import processor: the single entry
// point that consumes one batch of reserve transfers against a currency's
// committed state and produces a new state plus outputs, grounded on
// original_source's CCurrencyState::AddReserveTransferImportOutputs
// (reserves.cpp) for the order of operations, and on coreV2/state/checker
// for the conservation-check idiom.
package importer

import (
	"time"

	"github.com/vrsc-reserve/engine/bigmath"
	"github.com/vrsc-reserve/engine/convert"
	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/ledger"
	"github.com/vrsc-reserve/engine/metrics"
	"github.com/vrsc-reserve/engine/registry"
	"github.com/vrsc-reserve/engine/rerrors"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

// Request bundles the import processor's inputs: sourceSystem, destSystem,
// importCurrencyDef, importCurrencyState, transferBatch, plus the
// registry/environment/fee-policy collaborators the processor requires to
// be passed in explicitly rather than read from process globals.
type Request struct {
	SourceSystem types.CurrencyID
	DestSystem   types.CurrencyID

	ImportCurrencyDef   *currency.Definition
	ImportCurrencyState currency.CoinbaseState

	TransferBatch []transfer.ReserveTransfer

	Registry  registry.CurrencyRegistry
	Env       registry.Environment
	FeePolicy registry.FeeRecipientPolicy

	Recorder *metrics.Recorder
}

// Result is the import processor's output contract: outputs,
// importedCurrency, gatewayDepositsIn, spentCurrencyOut, newCurrencyState.
// On failure (OK == false) every other field is undefined and MUST be
// discarded by the caller.
type Result struct {
	Outputs []transfer.TxOutput

	ImportedCurrency  *currency.ValueMap
	GatewayDepositsIn *currency.ValueMap
	SpentCurrencyOut  *currency.ValueMap

	NewCurrencyState currency.CoinbaseState

	OK bool
}

func fail() Result { return Result{OK: false} }

// AddReserveTransferImportOutputs runs one import batch end to end: reset,
// per-transfer dispatch, primary fee output, burn absorption, clearing,
// ledger update, launch-phase pricing, emission, and the final
// conservation check, in that order.
func AddReserveTransferImportOutputs(req Request) (Result, error) {
	start := time.Now()
	res, err := addReserveTransferImportOutputs(req)
	convertedLegs := 0
	if res.OK {
		convertedLegs = 1
	}
	req.Recorder.ObserveImport(convertedLegs, !res.OK, time.Since(start).Seconds())
	return res, err
}

func addReserveTransferImportOutputs(req Request) (Result, error) {
	def := req.ImportCurrencyDef
	if def == nil {
		return fail(), rerrors.New(rerrors.InvalidInput, "import currency definition is nil")
	}
	if err := def.Validate(); err != nil {
		return fail(), rerrors.Wrap(rerrors.InvalidInput, err, "import currency definition")
	}

	// Step 1: reset.
	newState := req.ImportCurrencyState.Clone()
	newState.ClearForNextBlock()
	n := len(newState.Currencies)

	desc := ledger.NewDescriptor()
	reserveConverted := make([]int64, n)
	fractionalConverted := make([]int64, n)
	crossConversions := make([][]int64, n)
	for i := range crossConversions {
		crossConversions[i] = make([]int64, n)
	}
	carveOut := make([]int64, n)
	liquidityFees := make([]int64, n)

	var totalMinted int64
	var burnedTotal int64
	var totalNativeFee int64
	view := registry.NewTransactionView(req.TransferBatch)

	isRefunding := newState.Flags.Has(types.CurrencyStateRefunding)
	isLaunchComplete := newState.Flags.Has(types.CurrencyStateLaunchComplete)
	isLaunchClear := newState.Flags.Has(types.CurrencyStateLaunchClear)
	isLaunchConfirmed := newState.Flags.Has(types.CurrencyStateLaunchConfirmed)
	isLaunchSystem := req.SourceSystem == def.LaunchSystemID

	// Step 2: per-transfer dispatch, i < N.
	for i := range req.TransferBatch {
		rt := req.TransferBatch[i]
		if isRefunding {
			rt = rt.GetRefundTransfer()
		}
		if !rt.IsValid() {
			return fail(), rerrors.New(rerrors.InvalidInput, "malformed reserve transfer in batch")
		}

		fee := rt.CalculateFee()
		required := rt.CalculateTransferFee()
		if rt.NFees < required {
			return fail(), rerrors.New(rerrors.FeeUnderpayment, "declared fee below base transfer fee")
		}
		totalNativeFee += fee.Get(rt.FeeCurrencyID)

		switch {
		case rt.IsBurn():
			if rt.FirstCurrency() != def.ID {
				return fail(), rerrors.New(rerrors.PolicyViolation, "burn of a currency other than the import currency")
			}
			burnedTotal += rt.FirstValue()
			desc.AddNativeOutConverted(def.ID, rt.FirstValue())

		case rt.IsMint():
			totalMinted += rt.FirstValue()
			out, ok := rt.GetTxOut(currency.NewValueMap(), rt.FirstValue())
			if !ok {
				return fail(), rerrors.New(rerrors.UnsupportedDestination, "mint output destination unsupported")
			}
			view.Emit(out)
			desc.AddNativeOutConverted(def.ID, rt.FirstValue())

		case rt.IsPreConversion():
			if isLaunchComplete {
				return fail(), rerrors.New(rerrors.PolicyViolation, "pre-conversion after launch complete")
			}
			if !isLaunchSystem {
				return fail(), rerrors.New(rerrors.PolicyViolation, "pre-conversion from a non-launch system")
			}
			srcID := rt.FirstCurrency()
			idx := def.ReserveIndex(srcID)
			if idx < 0 {
				return fail(), rerrors.New(rerrors.MissingCurrency, "pre-conversion source is not a reserve of the import currency")
			}
			convFee := transfer.CalculateConversionFee(rt.FirstValue())
			remainder := rt.FirstValue() - convFee
			if remainder < 0 {
				return fail(), rerrors.New(rerrors.InvalidInput, "pre-conversion amount below its own conversion fee")
			}
			carve := int64(0)
			if def.TotalCarveOut > 0 {
				var ok bool
				carve, ok = bigmath.MulDiv(remainder, def.TotalCarveOut, bigmath.SatoshiDen)
				if !ok {
					return fail(), rerrors.New(rerrors.Overflow, "carve-out computation overflowed")
				}
			}
			carveOut[idx] += carve
			reserveConverted[idx] += remainder - carve

			price := newState.ConversionPrice[idx]
			fractionalOut := currency.ReserveToNativeRaw(remainder-carve, price)
			out, ok := rt.GetTxOut(currency.NewValueMap(), fractionalOut)
			if !ok {
				return fail(), rerrors.New(rerrors.UnsupportedDestination, "pre-conversion output destination unsupported")
			}
			view.Emit(out)
			desc.AddReserveInput(srcID, rt.FirstValue())

		case rt.IsConversion():
			srcID := rt.FirstCurrency()
			destID := rt.DestCurrencyID
			convFee := rt.ConversionFee().Get(srcID)
			remainder := rt.FirstValue() - convFee
			if remainder < 0 {
				return fail(), rerrors.New(rerrors.InvalidInput, "conversion amount below its own conversion fee")
			}

			switch {
			case srcID == def.ID:
				idx := def.ReserveIndex(destID)
				if idx < 0 {
					return fail(), rerrors.New(rerrors.MissingCurrency, "conversion destination is not a reserve")
				}
				fractionalConverted[idx] += remainder
				desc.AddReserveInput(srcID, rt.FirstValue())
				estimate := newState.NativeToReserve(remainder, idx)
				out, ok := rt.GetTxOut(currency.FromVector([]types.CurrencyID{destID}, []int64{estimate}), 0)
				if !ok {
					return fail(), rerrors.New(rerrors.UnsupportedDestination, "sell-conversion output destination unsupported")
				}
				view.Emit(out)

			case destID == def.ID:
				idx := def.ReserveIndex(srcID)
				if idx < 0 {
					return fail(), rerrors.New(rerrors.MissingCurrency, "conversion source is not a reserve")
				}
				reserveConverted[idx] += remainder
				desc.AddReserveInput(srcID, rt.FirstValue())
				estimate := newState.ReserveToNative(remainder, idx)
				out, ok := rt.GetTxOut(currency.NewValueMap(), estimate)
				if !ok {
					return fail(), rerrors.New(rerrors.UnsupportedDestination, "buy-conversion output destination unsupported")
				}
				view.Emit(out)

			default:
				if !rt.IsReserveToReserve() {
					return fail(), rerrors.New(rerrors.PolicyViolation, "reserve-to-reserve conversion without the reserve-to-reserve flag")
				}
				si, di := def.ReserveIndex(srcID), def.ReserveIndex(destID)
				if si < 0 || di < 0 {
					return fail(), rerrors.New(rerrors.MissingCurrency, "reserve-to-reserve leg names an unknown reserve")
				}
				crossConversions[si][di] += remainder
				desc.AddReserveInput(srcID, rt.FirstValue())
				out, ok := rt.GetTxOut(currency.NewValueMap(), 0)
				if !ok {
					return fail(), rerrors.New(rerrors.UnsupportedDestination, "reserve-to-reserve output destination unsupported")
				}
				view.Emit(out)
			}

		case rt.HasNextLeg():
			out, ok := rt.GetTxOut(rt.ReserveValues.Clone(), 0)
			if !ok {
				return fail(), rerrors.New(rerrors.UnsupportedDestination, "next-leg output destination unsupported")
			}
			view.Emit(out)
			addPassthroughReserves(desc, rt.ReserveValues, def.ID)

		default:
			out, ok := rt.GetTxOut(rt.ReserveValues.Clone(), rt.ReserveValues.Get(def.ID))
			if !ok {
				return fail(), rerrors.New(rerrors.UnsupportedDestination, "plain transfer output destination unsupported")
			}
			view.Emit(out)
			addPassthroughReserves(desc, rt.ReserveValues, def.ID)
			if req.SourceSystem != req.DestSystem {
				desc.IsReserveTx = true
			}
		}
	}

	// Step 3: launch-clear settlement. On the one block that carries a
	// currency out of its pre-launch phase, it pays half the launch cost
	// to the launch system in launch fees (the other half having been
	// paid at definition time); once that same block also confirms the
	// launch, every pre-allocation entry and, for a PBaaS chain, its
	// gateway-converter issuance are materialized as outputs.
	var preAllocTotal int64
	if isLaunchClear {
		fee := def.CurrencyRegistrationFee
		if fee != 0 {
			if def.LaunchSystemID == req.DestSystem {
				totalNativeFee += fee
			} else {
				desc.AddReserveInput(def.LaunchSystemID, fee)
			}
		}

		if isLaunchConfirmed {
			for _, p := range def.PreAllocation {
				preAllocTotal += p.Amount
				desc.AddNativeOutConverted(def.ID, p.Amount)

				dest := p.ID
				if dest.IsZero() {
					if recipient, ok := req.FeePolicy.ExporterReward(); ok {
						dest = recipient
					}
				}
				destination := transfer.Destination{Kind: transfer.DestID, Destination: dest.Bytes()}

				if def.ID == req.DestSystem {
					view.Emit(transfer.TxOutput{NativeAmount: p.Amount, Destination: destination})
					newState.NativeOut += p.Amount
				} else {
					values := currency.NewValueMap()
					values.Set(def.ID, p.Amount)
					view.Emit(transfer.TxOutput{Reserves: values, Destination: destination})
				}
			}

			if def.IsPBaaSChain && def.GatewayConverterIssuance != 0 {
				preAllocTotal += def.GatewayConverterIssuance
				desc.AddNativeOutConverted(def.ID, def.GatewayConverterIssuance)
				newState.NativeOut += def.GatewayConverterIssuance
			}
		}
	}

	// Step 3 (continued): primary fee output (i == N).
	allocateFeeOutput(&newState, def, req.DestSystem, totalNativeFee, liquidityFees, req.FeePolicy, view)

	// Step 4: burn absorption.
	newState.Supply -= burnedTotal
	for i := range liquidityFees {
		if def.Currencies[i] == def.ID {
			newState.Supply -= liquidityFees[i]
		}
	}

	// Step 5: clear.
	reserveIn := make([]int64, n)
	for i := range reserveIn {
		reserveIn[i] = reserveConverted[i] - newState.PreConvertedReserves[i]
	}
	clearResult := convert.ConvertAmounts(&newState.State, reserveIn, fractionalConverted, crossConversions)
	if !clearResult.OK {
		return fail(), rerrors.New(rerrors.ConservationViolation, "conversion engine rejected the batch clearing")
	}
	newState.State = clearResult.NewState
	if isLaunchComplete {
		newState.ConversionPrice = clearResult.Rates
	} else {
		newState.ViaConversionPrice = clearResult.Rates
	}

	// Step 6: ledger update. Reserves and Supply were already moved by the
	// clearing pass above; these are per-block audit counters only, kept for
	// callers that report reserveIn/reserveOut/nativeIn without re-deriving
	// them from the transfer batch.
	for i := 0; i < n; i++ {
		newState.ReserveIn[i] = reserveConverted[i] + liquidityFees[i]
		newState.ReserveOut[i] = fractionalConverted[i]
		newState.NativeIn[i] = fractionalConverted[i]
	}

	// Step 7: launch-phase pricing reconstruction. Before launch completes,
	// ConversionPrice must reflect the pre-block reserve ratio rather than
	// the ratio after this block's clearing, so pre-conversions within the
	// same block all price off the same pre-launch schedule.
	if !isLaunchComplete {
		reverted := newState.State.Clone()
		for i := 0; i < n; i++ {
			reverted.Reserves[i] -= newState.ReserveIn[i] - newState.ReserveOut[i]
			if reverted.Reserves[i] < 0 {
				reverted.Reserves[i] = 0
			}
		}
		newState.ConversionPrice = reverted.PricesInReserve()
	}

	// Step 8: mint emission.
	if totalMinted+preAllocTotal > 0 {
		currency.UpdateWithEmission(&newState.State, totalMinted+preAllocTotal)
	}

	// Step 9: conservation check.
	spentCurrencyOut := desc.ReserveOutputMap(def.ID)
	reserveInputs := desc.ReserveInputs(&newState.State, def.ID)
	check := currency.Sub(reserveInputs, spentCurrencyOut)
	if check.HasNegative() {
		return fail(), rerrors.New(rerrors.ConservationViolation, "reserve inputs do not cover spent currency out")
	}

	gatewayDepositsIn := currency.NewValueMap()
	if req.SourceSystem != req.DestSystem {
		gatewayDepositsIn = desc.ReserveInputMap(def.ID)
	}

	importedCurrency := currency.NewValueMap()
	if totalMinted != 0 {
		importedCurrency.Set(def.ID, totalMinted)
	}

	return Result{
		Outputs:           view.Outputs,
		ImportedCurrency:  importedCurrency,
		GatewayDepositsIn: gatewayDepositsIn,
		SpentCurrencyOut:  spentCurrencyOut,
		NewCurrencyState:  newState,
		OK:                true,
	}, nil
}

// allocateFeeOutput implements the primary fee output: once launch is
// confirmed, the basket is fractional, and it actually carries the
// destination system's native currency as a reserve with a nonzero
// balance, split transfer fees 50/50 between liquidity fees added to
// reserves and a native payout; otherwise pay an exporter identity
// resolved by registry.FeeRecipientPolicy's priority order, with an
// ExportReward carve-out for the exporter's own service fee.
func allocateFeeOutput(state *currency.CoinbaseState, def *currency.Definition, destSystem types.CurrencyID, totalNativeFee int64, liquidityFees []int64, policy registry.FeeRecipientPolicy, view *registry.TransactionView) types.CurrencyID {
	nativeIdx := def.ReserveIndex(destSystem)
	hasNativeReserve := nativeIdx >= 0 && state.Reserves[nativeIdx] != 0
	if state.Flags.Has(types.CurrencyStateLaunchConfirmed) && def.IsFractional && hasNativeReserve {
		half := totalNativeFee / 2
		n := len(def.Currencies)
		if n > 0 {
			perReserve := half / int64(n)
			for i := range liquidityFees {
				liquidityFees[i] += perReserve
			}
		}
		state.NativeOut += totalNativeFee - half
		return types.CurrencyID{}
	}

	recipient, ok := policy.ExporterReward()
	if !ok {
		state.NativeFees += totalNativeFee
		return types.CurrencyID{}
	}
	reward := exportReward(totalNativeFee)
	values := currency.NewValueMap()
	values.Set(def.ID, reward)
	rt := transfer.ReserveTransfer{
		Flags:          types.TransferFeeOutput,
		FeeCurrencyID:  def.ID,
		DestCurrencyID: def.ID,
		ReserveValues:  values,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: recipient.Bytes()},
	}
	if out, ok := rt.GetTxOut(currency.NewValueMap(), reward); ok {
		view.Emit(out)
	}
	state.NativeOut += totalNativeFee - reward
	return recipient
}

// exportReward is a linear exporter service fee: one basis point of the
// accrued native fee, floored at MinSuccessFee the same way a conversion
// fee is floored.
func exportReward(totalNativeFee int64) int64 {
	v, ok := bigmath.MulDiv(totalNativeFee, types.SuccessFee, bigmath.SatoshiDen)
	if !ok || v < types.MinSuccessFee {
		return types.MinSuccessFee
	}
	return v
}

// addPassthroughReserves records a plain (non-converting) transfer's reserve
// values on both sides of the ledger: the transfer brings them into the
// import as surely as it pays them out, so the conservation check in step 9
// nets to zero for currencies that never touch the conversion engine.
func addPassthroughReserves(desc *ledger.Descriptor, values *currency.ValueMap, nativeID types.CurrencyID) {
	values.Range(func(id types.CurrencyID, amount int64) {
		if id != nativeID && amount != 0 {
			desc.AddReserveInput(id, amount)
		}
	})
	desc.AddReserveOutputValues(values, nativeID)
}
