// Package wire implements bit-exact consensus serialization: fields in
// declaration order, little-endian integers, maps in sorted id order,
// compact length-prefixed vectors, with non-canonical zero-valued map
// entries rejected on decode. Framing is RLP
// (github.com/ethereum/go-ethereum/rlp), the wire codec used for every
// persisted state object (core/state/coins/coins.go); the satoshi
// integers themselves are written little-endian rather than RLP's
// big-endian minimal encoding, via the Int64Vector/idVector adapters
// below, to keep the byte layout exact instead of RLP-native.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/rerrors"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func decodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, rerrors.New(rerrors.InvalidInput, "wire: int64 field is not 8 bytes")
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func decodeUint32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, rerrors.New(rerrors.InvalidInput, "wire: uint32 field is not 4 bytes")
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int64Vector is a compact length-prefixed vector of little-endian int64s.
type Int64Vector []int64

func (v Int64Vector) EncodeRLP(w io.Writer) error {
	items := make([][]byte, len(v))
	for i, x := range v {
		items[i] = encodeInt64(x)
	}
	return rlp.Encode(w, items)
}

func (v *Int64Vector) DecodeRLP(s *rlp.Stream) error {
	var items [][]byte
	if err := s.Decode(&items); err != nil {
		return err
	}
	out := make([]int64, len(items))
	for i, b := range items {
		x, err := decodeInt64(b)
		if err != nil {
			return err
		}
		out[i] = x
	}
	*v = out
	return nil
}

// idVector is a compact length-prefixed vector of raw 20-byte currency ids.
type idVector []types.CurrencyID

func (v idVector) EncodeRLP(w io.Writer) error {
	items := make([][]byte, len(v))
	for i, id := range v {
		items[i] = id.Bytes()
	}
	return rlp.Encode(w, items)
}

func (v *idVector) DecodeRLP(s *rlp.Stream) error {
	var items [][]byte
	if err := s.Decode(&items); err != nil {
		return err
	}
	out := make([]types.CurrencyID, len(items))
	for i, b := range items {
		out[i] = types.BytesToCurrencyID(b)
	}
	*v = out
	return nil
}

// valuePair is one sorted (id, value) entry of an encoded ValueMap.
type valuePair struct {
	ID    []byte
	Value []byte
}

// EncodeValueMap serializes v in canonical sorted-id order. It refuses to
// encode a non-canonical map (one carrying a zero-valued entry), the
// "reject maps with zero-valued entries... for signed messages" rule.
func EncodeValueMap(v *currency.ValueMap) ([]byte, error) {
	if !v.IsCanonical() {
		return nil, rerrors.New(rerrors.InvalidInput, "wire: refusing to encode a non-canonical value map")
	}
	ids := v.IDs()
	pairs := make([]valuePair, len(ids))
	for i, id := range ids {
		pairs[i] = valuePair{ID: id.Bytes(), Value: encodeInt64(v.Get(id))}
	}
	return rlp.EncodeToBytes(pairs)
}

// DecodeValueMap is the inverse of EncodeValueMap. It rejects out-of-order
// or duplicate ids and zero-valued entries, refusing anything that did not
// come from EncodeValueMap.
func DecodeValueMap(data []byte) (*currency.ValueMap, error) {
	var pairs []valuePair
	if err := rlp.DecodeBytes(data, &pairs); err != nil {
		return nil, err
	}
	out := currency.NewValueMap()
	var prev *types.CurrencyID
	for _, p := range pairs {
		id := types.BytesToCurrencyID(p.ID)
		if prev != nil && id.Cmp(*prev) <= 0 {
			return nil, rerrors.New(rerrors.InvalidInput, "wire: value map ids are not in strict sorted order")
		}
		val, err := decodeInt64(p.Value)
		if err != nil {
			return nil, err
		}
		if val == 0 {
			return nil, rerrors.New(rerrors.InvalidInput, "wire: non-canonical zero-valued map entry")
		}
		out.Set(id, val)
		prev = &id
	}
	return out, nil
}

// wireState mirrors currency.State field-for-field in declaration order.
type wireState struct {
	Currencies idVector
	Weights    Int64Vector
	Reserves   Int64Vector

	Supply        []byte
	InitialSupply []byte
	Emitted       []byte

	Flags []byte

	ConversionPrice    Int64Vector
	ViaConversionPrice Int64Vector
}

func toWireState(s *currency.State) wireState {
	return wireState{
		Currencies:         idVector(s.Currencies),
		Weights:            Int64Vector(s.Weights),
		Reserves:           Int64Vector(s.Reserves),
		Supply:             encodeInt64(s.Supply),
		InitialSupply:      encodeInt64(s.InitialSupply),
		Emitted:            encodeInt64(s.Emitted),
		Flags:              encodeUint32(uint32(s.Flags)),
		ConversionPrice:    Int64Vector(s.ConversionPrice),
		ViaConversionPrice: Int64Vector(s.ViaConversionPrice),
	}
}

func (w wireState) toState() (currency.State, error) {
	supply, err := decodeInt64(w.Supply)
	if err != nil {
		return currency.State{}, err
	}
	initialSupply, err := decodeInt64(w.InitialSupply)
	if err != nil {
		return currency.State{}, err
	}
	emitted, err := decodeInt64(w.Emitted)
	if err != nil {
		return currency.State{}, err
	}
	flags, err := decodeUint32(w.Flags)
	if err != nil {
		return currency.State{}, err
	}
	return currency.State{
		Currencies:         []types.CurrencyID(w.Currencies),
		Weights:            []int64(w.Weights),
		Reserves:           []int64(w.Reserves),
		Supply:             supply,
		InitialSupply:      initialSupply,
		Emitted:            emitted,
		Flags:              types.CurrencyStateFlag(flags),
		ConversionPrice:    []int64(w.ConversionPrice),
		ViaConversionPrice: []int64(w.ViaConversionPrice),
	}, nil
}

// EncodeCurrencyState serializes a committed currency.State.
func EncodeCurrencyState(s *currency.State) ([]byte, error) {
	return rlp.EncodeToBytes(toWireState(s))
}

// DecodeCurrencyState is the inverse of EncodeCurrencyState.
func DecodeCurrencyState(data []byte) (currency.State, error) {
	var w wireState
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return currency.State{}, err
	}
	return w.toState()
}

// wireCoinbaseState mirrors currency.CoinbaseState: the embedded State
// first, then the per-block ledger fields, in declaration order.
type wireCoinbaseState struct {
	State wireState

	ReserveIn  Int64Vector
	NativeIn   Int64Vector
	ReserveOut Int64Vector

	Fees           Int64Vector
	ConversionFees Int64Vector

	NativeFees           []byte
	NativeConversionFees []byte
	NativeOut            []byte
	PreConvertedOut      []byte
	PrimaryCurrencyOut   []byte

	PreConvertedReserves Int64Vector
}

// EncodeCoinbaseState serializes a per-block CoinbaseState.
func EncodeCoinbaseState(c *currency.CoinbaseState) ([]byte, error) {
	w := wireCoinbaseState{
		State:                toWireState(&c.State),
		ReserveIn:            Int64Vector(c.ReserveIn),
		NativeIn:             Int64Vector(c.NativeIn),
		ReserveOut:           Int64Vector(c.ReserveOut),
		Fees:                 Int64Vector(c.Fees),
		ConversionFees:       Int64Vector(c.ConversionFees),
		NativeFees:           encodeInt64(c.NativeFees),
		NativeConversionFees: encodeInt64(c.NativeConversionFees),
		NativeOut:            encodeInt64(c.NativeOut),
		PreConvertedOut:      encodeInt64(c.PreConvertedOut),
		PrimaryCurrencyOut:   encodeInt64(c.PrimaryCurrencyOut),
		PreConvertedReserves: Int64Vector(c.PreConvertedReserves),
	}
	return rlp.EncodeToBytes(w)
}

// DecodeCoinbaseState is the inverse of EncodeCoinbaseState.
func DecodeCoinbaseState(data []byte) (currency.CoinbaseState, error) {
	var w wireCoinbaseState
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return currency.CoinbaseState{}, err
	}
	state, err := w.State.toState()
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	nativeFees, err := decodeInt64(w.NativeFees)
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	nativeConversionFees, err := decodeInt64(w.NativeConversionFees)
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	nativeOut, err := decodeInt64(w.NativeOut)
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	preConvertedOut, err := decodeInt64(w.PreConvertedOut)
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	primaryCurrencyOut, err := decodeInt64(w.PrimaryCurrencyOut)
	if err != nil {
		return currency.CoinbaseState{}, err
	}
	return currency.CoinbaseState{
		State:                state,
		ReserveIn:            []int64(w.ReserveIn),
		NativeIn:             []int64(w.NativeIn),
		ReserveOut:           []int64(w.ReserveOut),
		Fees:                 []int64(w.Fees),
		ConversionFees:       []int64(w.ConversionFees),
		NativeFees:           nativeFees,
		NativeConversionFees: nativeConversionFees,
		NativeOut:            nativeOut,
		PreConvertedOut:      preConvertedOut,
		PrimaryCurrencyOut:   primaryCurrencyOut,
		PreConvertedReserves: []int64(w.PreConvertedReserves),
	}, nil
}

// wireDestination mirrors transfer.Destination field-for-field.
type wireDestination struct {
	Kind        byte
	Destination []byte

	GatewayID  []byte
	HasGateway bool
	Fees       []byte

	Nested []byte
}

func toWireDestination(d transfer.Destination) wireDestination {
	return wireDestination{
		Kind:        byte(d.Kind),
		Destination: d.Destination,
		GatewayID:   d.GatewayID.Bytes(),
		HasGateway:  d.HasGateway,
		Fees:        encodeInt64(d.Fees),
		Nested:      d.Nested,
	}
}

func (w wireDestination) toDestination() (transfer.Destination, error) {
	fees, err := decodeInt64(w.Fees)
	if err != nil {
		return transfer.Destination{}, err
	}
	return transfer.Destination{
		Kind:        transfer.DestinationKind(w.Kind),
		Destination: w.Destination,
		GatewayID:   types.BytesToCurrencyID(w.GatewayID),
		HasGateway:  w.HasGateway,
		Fees:        fees,
		Nested:      w.Nested,
	}, nil
}

// wireTransfer mirrors transfer.ReserveTransfer field-for-field.
type wireTransfer struct {
	Flags []byte

	FeeCurrencyID []byte
	NFees         []byte

	ReserveValues []byte

	DestCurrencyID  []byte
	SecondReserveID []byte

	Destination wireDestination
}

// EncodeReserveTransfer serializes a single ReserveTransfer.
func EncodeReserveTransfer(t *transfer.ReserveTransfer) ([]byte, error) {
	values, err := EncodeValueMap(t.ReserveValues)
	if err != nil {
		return nil, err
	}
	w := wireTransfer{
		Flags:           encodeUint32(uint32(t.Flags)),
		FeeCurrencyID:   t.FeeCurrencyID.Bytes(),
		NFees:           encodeInt64(t.NFees),
		ReserveValues:   values,
		DestCurrencyID:  t.DestCurrencyID.Bytes(),
		SecondReserveID: t.SecondReserveID.Bytes(),
		Destination:     toWireDestination(t.Destination),
	}
	return rlp.EncodeToBytes(w)
}

// DecodeReserveTransfer is the inverse of EncodeReserveTransfer.
func DecodeReserveTransfer(data []byte) (transfer.ReserveTransfer, error) {
	var w wireTransfer
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return transfer.ReserveTransfer{}, err
	}
	flags, err := decodeUint32(w.Flags)
	if err != nil {
		return transfer.ReserveTransfer{}, err
	}
	nFees, err := decodeInt64(w.NFees)
	if err != nil {
		return transfer.ReserveTransfer{}, err
	}
	values, err := DecodeValueMap(w.ReserveValues)
	if err != nil {
		return transfer.ReserveTransfer{}, err
	}
	dest, err := w.Destination.toDestination()
	if err != nil {
		return transfer.ReserveTransfer{}, err
	}
	return transfer.ReserveTransfer{
		Flags:           types.TransferFlag(flags),
		FeeCurrencyID:   types.BytesToCurrencyID(w.FeeCurrencyID),
		NFees:           nFees,
		ReserveValues:   values,
		DestCurrencyID:  types.BytesToCurrencyID(w.DestCurrencyID),
		SecondReserveID: types.BytesToCurrencyID(w.SecondReserveID),
		Destination:     dest,
	}, nil
}
