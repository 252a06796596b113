package wire

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

func idFor(b byte) types.CurrencyID {
	var id types.CurrencyID
	id[len(id)-1] = b
	return id
}

func TestValueMapRoundTrip(t *testing.T) {
	v := currency.NewValueMap()
	v.Set(idFor(3), 100)
	v.Set(idFor(1), -50)
	v.Set(idFor(2), 7)

	data, err := EncodeValueMap(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeValueMap(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !currency.Equal(v, got) {
		t.Fatalf("round trip mismatch: got %v", got)
	}
}

func TestEncodeValueMapRejectsZeroEntry(t *testing.T) {
	v := currency.NewValueMap()
	v.Set(idFor(1), 0)
	if _, err := EncodeValueMap(v); err == nil {
		t.Fatalf("expected error encoding a non-canonical map")
	}
}

func TestDecodeValueMapRejectsZeroEntry(t *testing.T) {
	pairs := []valuePair{{ID: idFor(1).Bytes(), Value: encodeInt64(0)}}
	data, err := rlp.EncodeToBytes(pairs)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if _, err := DecodeValueMap(data); err == nil {
		t.Fatalf("expected decode to reject a zero-valued entry")
	}
}

func TestDecodeValueMapRejectsOutOfOrder(t *testing.T) {
	pairs := []valuePair{
		{ID: idFor(2).Bytes(), Value: encodeInt64(5)},
		{ID: idFor(1).Bytes(), Value: encodeInt64(5)},
	}
	data, err := rlp.EncodeToBytes(pairs)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if _, err := DecodeValueMap(data); err == nil {
		t.Fatalf("expected decode to reject out-of-order ids")
	}
}

func TestCurrencyStateRoundTrip(t *testing.T) {
	s := &currency.State{
		Currencies:         []types.CurrencyID{idFor(1), idFor(2)},
		Weights:            []int64{25000000, 25000000},
		Reserves:           []int64{1000, 2000},
		Supply:             500000,
		InitialSupply:      400000,
		Emitted:            10000,
		Flags:              types.CurrencyStateFractional | types.CurrencyStatePrelaunch,
		ConversionPrice:    []int64{100000000, 200000000},
		ViaConversionPrice: []int64{0, 0},
	}

	data, err := EncodeCurrencyState(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeCurrencyState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Supply != s.Supply || got.Flags != s.Flags || len(got.Currencies) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Currencies[0] != idFor(1) || got.Reserves[1] != 2000 {
		t.Fatalf("vector contents mismatch: %+v", got)
	}
}

func TestCoinbaseStateRoundTrip(t *testing.T) {
	c := &currency.CoinbaseState{
		State: currency.State{
			Currencies: []types.CurrencyID{idFor(1)},
			Weights:    []int64{50000000},
			Reserves:   []int64{1000},
			Supply:     1000,
		},
		ReserveIn:            []int64{10},
		NativeIn:             []int64{20},
		ReserveOut:           []int64{5},
		Fees:                 []int64{1},
		ConversionFees:       []int64{2},
		NativeFees:           3,
		NativeConversionFees: 4,
		NativeOut:            5,
		PreConvertedOut:      6,
		PrimaryCurrencyOut:   7,
		PreConvertedReserves: []int64{8},
	}

	data, err := EncodeCoinbaseState(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeCoinbaseState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.NativeFees != 3 || got.PrimaryCurrencyOut != 7 || got.ReserveIn[0] != 10 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestReserveTransferRoundTrip(t *testing.T) {
	values := currency.NewValueMap()
	values.Set(idFor(1), 12345)

	rt := &transfer.ReserveTransfer{
		Flags:           types.TransferConvert | types.TransferPreConvert,
		FeeCurrencyID:   idFor(9),
		NFees:           1000,
		ReserveValues:   values,
		DestCurrencyID:  idFor(2),
		SecondReserveID: idFor(3),
		Destination: transfer.Destination{
			Kind:        transfer.DestID,
			Destination: []byte{1, 2, 3, 4},
			GatewayID:   idFor(4),
			HasGateway:  true,
			Fees:        77,
		},
	}

	data, err := EncodeReserveTransfer(rt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeReserveTransfer(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Flags != rt.Flags || got.FeeCurrencyID != rt.FeeCurrencyID || got.NFees != rt.NFees {
		t.Fatalf("scalar field mismatch: %+v", got)
	}
	if got.ReserveValues.Get(idFor(1)) != 12345 {
		t.Fatalf("reserve values mismatch: %+v", got.ReserveValues)
	}
	if got.Destination.Kind != transfer.DestID || !got.Destination.HasGateway || got.Destination.Fees != 77 {
		t.Fatalf("destination mismatch: %+v", got.Destination)
	}
}
