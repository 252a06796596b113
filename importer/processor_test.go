package importer

import (
	"testing"

	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/registry"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

func idFor(b byte) types.CurrencyID {
	var id types.CurrencyID
	id[len(id)-1] = b
	return id
}

func launchedFractionalState(fractionalID, reserveID types.CurrencyID) (*currency.Definition, currency.CoinbaseState) {
	def := &currency.Definition{
		ID:           fractionalID,
		Currencies:   []types.CurrencyID{reserveID},
		Weights:      []int64{types.SatoshiDen},
		IsFractional: true,
	}
	state := currency.CoinbaseState{
		State: currency.State{
			Currencies:      []types.CurrencyID{reserveID},
			Weights:         []int64{types.SatoshiDen},
			Reserves:        []int64{100000000},
			Supply:          100000000,
			Flags:           types.CurrencyStateFractional | types.CurrencyStateLaunchComplete,
			ConversionPrice: []int64{types.SatoshiDen},
		},
	}
	return def, state
}

func TestAddReserveTransferImportOutputsPlainTransfer(t *testing.T) {
	fractionalID, reserveID := idFor(1), idFor(2)
	def, state := launchedFractionalState(fractionalID, reserveID)

	values := currency.NewValueMap()
	values.Set(reserveID, 1000000)
	rt := transfer.ReserveTransfer{
		FeeCurrencyID:  reserveID,
		NFees:          transfer.CalculateTransferFee(transfer.Destination{Kind: transfer.DestID}, 0),
		ReserveValues:  values,
		DestCurrencyID: reserveID,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: []byte{1}},
	}

	req := Request{
		SourceSystem:        idFor(9),
		DestSystem:          idFor(9),
		ImportCurrencyDef:   def,
		ImportCurrencyState: state,
		TransferBatch:       []transfer.ReserveTransfer{rt},
		Registry:            registry.NewStaticRegistry(*def),
	}

	res, err := AddReserveTransferImportOutputs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected import to succeed")
	}
	if len(res.Outputs) != 1 {
		t.Fatalf("expected one output, got %d", len(res.Outputs))
	}
}

func TestAddReserveTransferImportOutputsBuyConversion(t *testing.T) {
	fractionalID, reserveID := idFor(1), idFor(2)
	def, state := launchedFractionalState(fractionalID, reserveID)

	values := currency.NewValueMap()
	values.Set(reserveID, 10000000)
	rt := transfer.ReserveTransfer{
		Flags:          types.TransferConvert,
		FeeCurrencyID:  reserveID,
		NFees:          transfer.CalculateTransferFee(transfer.Destination{Kind: transfer.DestID}, types.TransferConvert),
		ReserveValues:  values,
		DestCurrencyID: fractionalID,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: []byte{1}},
	}

	req := Request{
		SourceSystem:        idFor(9),
		DestSystem:          idFor(9),
		ImportCurrencyDef:   def,
		ImportCurrencyState: state,
		TransferBatch:       []transfer.ReserveTransfer{rt},
		Registry:            registry.NewStaticRegistry(*def),
	}

	res, err := AddReserveTransferImportOutputs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected import to succeed")
	}
	if res.NewCurrencyState.Reserves[0] <= state.Reserves[0] {
		t.Fatalf("expected reserve balance to grow from a buy conversion, got %d (was %d)", res.NewCurrencyState.Reserves[0], state.Reserves[0])
	}
	if res.NewCurrencyState.Supply <= state.Supply {
		t.Fatalf("expected supply to grow from a buy conversion, got %d (was %d)", res.NewCurrencyState.Supply, state.Supply)
	}
}

func TestAddReserveTransferImportOutputsRejectsUnderpaidFee(t *testing.T) {
	fractionalID, reserveID := idFor(1), idFor(2)
	def, state := launchedFractionalState(fractionalID, reserveID)

	values := currency.NewValueMap()
	values.Set(reserveID, 1000)
	rt := transfer.ReserveTransfer{
		FeeCurrencyID:  reserveID,
		NFees:          0,
		ReserveValues:  values,
		DestCurrencyID: reserveID,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: []byte{1}},
	}

	req := Request{
		SourceSystem:        idFor(9),
		DestSystem:          idFor(9),
		ImportCurrencyDef:   def,
		ImportCurrencyState: state,
		TransferBatch:       []transfer.ReserveTransfer{rt},
		Registry:            registry.NewStaticRegistry(*def),
	}

	res, err := AddReserveTransferImportOutputs(req)
	if err == nil || res.OK {
		t.Fatalf("expected fee underpayment to fail the import")
	}
}

func TestAddReserveTransferImportOutputsLaunchClearPreAllocation(t *testing.T) {
	fractionalID, reserveID, recipient := idFor(1), idFor(2), idFor(3)
	def, state := launchedFractionalState(fractionalID, reserveID)
	def.LaunchSystemID = idFor(9)
	def.CurrencyRegistrationFee = 2000000
	def.PreAllocation = []currency.PreAllocationEntry{{ID: recipient, Amount: 500000}}
	state.Flags = types.CurrencyStateFractional | types.CurrencyStateLaunchClear | types.CurrencyStateLaunchConfirmed

	values := currency.NewValueMap()
	values.Set(reserveID, 1000000)
	rt := transfer.ReserveTransfer{
		FeeCurrencyID:  reserveID,
		NFees:          transfer.CalculateTransferFee(transfer.Destination{Kind: transfer.DestID}, 0),
		ReserveValues:  values,
		DestCurrencyID: reserveID,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: []byte{1}},
	}

	req := Request{
		SourceSystem:        idFor(9),
		DestSystem:          idFor(9),
		ImportCurrencyDef:   def,
		ImportCurrencyState: state,
		TransferBatch:       []transfer.ReserveTransfer{rt},
		Registry:            registry.NewStaticRegistry(*def),
	}

	res, err := AddReserveTransferImportOutputs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected import to succeed")
	}
	if len(res.Outputs) != 2 {
		t.Fatalf("expected the plain transfer output plus one pre-allocation output, got %d", len(res.Outputs))
	}
	found := false
	for _, out := range res.Outputs {
		if out.Reserves != nil && out.Reserves.Get(fractionalID) == 500000 && string(out.Destination.Destination) == string(recipient.Bytes()) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a pre-allocation output to recipient, got %+v", res.Outputs)
	}
	if res.NewCurrencyState.Supply <= state.Supply {
		t.Fatalf("expected supply to grow by at least the pre-allocation amount, got %d (was %d)", res.NewCurrencyState.Supply, state.Supply)
	}
}

func TestAllocateFeeOutputRequiresFractionalNativeReserve(t *testing.T) {
	nativeID := idFor(9)
	def := &currency.Definition{
		ID:           idFor(1),
		Currencies:   []types.CurrencyID{nativeID},
		Weights:      []int64{types.SatoshiDen},
		IsFractional: false,
	}
	state := &currency.CoinbaseState{
		State: currency.State{
			Currencies: []types.CurrencyID{nativeID},
			Reserves:   []int64{100000000},
			Flags:      types.CurrencyStateLaunchConfirmed,
		},
	}
	policy := registry.FeeRecipientPolicy{HasDefaultID: true, DefaultID: idFor(5)}
	view := registry.NewTransactionView(nil)

	recipient := allocateFeeOutput(state, def, nativeID, 1000000, make([]int64, 1), policy, view)
	if recipient != idFor(5) {
		t.Fatalf("expected the exporter payout path for a non-fractional basket, got recipient %s", recipient.Hex())
	}
	if state.NativeOut != 0 {
		t.Fatalf("expected the liquidity split to be skipped, got NativeOut=%d", state.NativeOut)
	}
}

func TestAddReserveTransferImportOutputsGatewayDeposit(t *testing.T) {
	fractionalID, reserveID := idFor(1), idFor(2)
	def, state := launchedFractionalState(fractionalID, reserveID)

	values := currency.NewValueMap()
	values.Set(reserveID, 5000000)
	rt := transfer.ReserveTransfer{
		FeeCurrencyID:  reserveID,
		NFees:          transfer.CalculateTransferFee(transfer.Destination{Kind: transfer.DestID}, 0),
		ReserveValues:  values,
		DestCurrencyID: reserveID,
		Destination:    transfer.Destination{Kind: transfer.DestID, Destination: []byte{1}},
	}

	req := Request{
		SourceSystem:        idFor(7),
		DestSystem:          idFor(9),
		ImportCurrencyDef:   def,
		ImportCurrencyState: state,
		TransferBatch:       []transfer.ReserveTransfer{rt},
		Registry:            registry.NewStaticRegistry(*def),
	}

	res, err := AddReserveTransferImportOutputs(req)
	if err != nil || !res.OK {
		t.Fatalf("expected cross-system import to succeed, err=%v", err)
	}
	if res.GatewayDepositsIn.Get(reserveID) == 0 {
		t.Fatalf("expected a cross-system transfer to register a gateway deposit")
	}
}
