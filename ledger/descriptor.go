// Package ledger implements the per-transaction reserve ledger (component
// H): per-currency counters accumulated while scanning a transaction's
// reserve-affecting outputs, grounded on original_source's
// CReserveTransactionDescriptor (reserves.cpp).
package ledger

import (
	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/types"
)

// InOuts is one currency's set of per-transaction counters.
type InOuts struct {
	ReserveIn             int64
	ReserveOut            int64
	ReserveOutConverted   int64
	NativeOutConverted    int64
	ReserveConversionFees int64
}

// Descriptor accumulates per-currency InOuts plus the transaction's native
// (fee-currency) totals while the import processor or a wallet-side reserve
// scan walks a transaction's outputs.
type Descriptor struct {
	Currencies map[types.CurrencyID]*InOuts

	NativeIn  int64
	NativeOut int64

	IsReserveTx bool
}

// NewDescriptor returns an empty descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{Currencies: map[types.CurrencyID]*InOuts{}}
}

func (d *Descriptor) entry(id types.CurrencyID) *InOuts {
	e, ok := d.Currencies[id]
	if !ok {
		e = &InOuts{}
		d.Currencies[id] = e
	}
	return e
}

// AddReserveInput adds value to id's reserveIn counter.
func (d *Descriptor) AddReserveInput(id types.CurrencyID, value int64) {
	d.entry(id).ReserveIn += value
}

// AddReserveOutput adds value to id's reserveOut counter.
func (d *Descriptor) AddReserveOutput(id types.CurrencyID, value int64) {
	d.entry(id).ReserveOut += value
}

// AddReserveOutConverted adds value to id's reserveOutConverted counter:
// the portion of reserveOut that arrived via conversion rather than a
// plain reserve-to-reserve passthrough.
func (d *Descriptor) AddReserveOutConverted(id types.CurrencyID, value int64) {
	d.entry(id).ReserveOutConverted += value
}

// AddNativeOutConverted adds value to id's nativeOutConverted counter: the
// native-equivalent amount produced by converting id's reserve in.
func (d *Descriptor) AddNativeOutConverted(id types.CurrencyID, value int64) {
	d.entry(id).NativeOutConverted += value
}

// AddReserveConversionFees adds value to id's reserveConversionFees
// counter.
func (d *Descriptor) AddReserveConversionFees(id types.CurrencyID, value int64) {
	d.entry(id).ReserveConversionFees += value
}

// AddReserveOutputValues folds every nonzero entry of a token output's
// value map into ReserveOut, skipping the native currency.
func (d *Descriptor) AddReserveOutputValues(values *currency.ValueMap, nativeID types.CurrencyID) {
	d.IsReserveTx = true
	values.Range(func(id types.CurrencyID, amount int64) {
		if id != nativeID && amount != 0 {
			d.AddReserveOutput(id, amount)
		}
	})
}

// NativeFees is the transaction's native-currency fee: nativeIn - nativeOut.
func (d *Descriptor) NativeFees() int64 {
	return d.NativeIn - d.NativeOut
}

// ReserveFees returns, per non-native currency, reserveIn minus the
// portion of reserveOut that was not itself produced by conversion — i.e.
// the amount of that reserve the transaction consumed without paying back
// out, skipped for entries that net to zero.
func (d *Descriptor) ReserveFees(nativeID types.CurrencyID) *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if id == nativeID {
			continue
		}
		fee := e.ReserveIn - (e.ReserveOut - e.ReserveOutConverted)
		if fee != 0 {
			out.Set(id, fee)
		}
	}
	return out
}

// AllFeesAsNative converts every reserve fee into native units at the
// given state's committed ConversionPrice and adds the transaction's own
// native fee.
func (d *Descriptor) AllFeesAsNative(state *currency.State, nativeID types.CurrencyID) int64 {
	total := d.NativeFees()
	fees := d.ReserveFees(nativeID)
	for i, id := range state.Currencies {
		if v := fees.Get(id); v != 0 {
			total += state.ReserveToNative(v, i)
		}
	}
	return total
}

// AllFeesAsNativeAtRates is AllFeesAsNative but priced at an explicit rate
// vector instead of the state's committed ConversionPrice, for use inside
// the import processor where the batch's just-cleared prices apply.
func (d *Descriptor) AllFeesAsNativeAtRates(state *currency.State, nativeID types.CurrencyID, rates []int64) int64 {
	total := d.NativeFees()
	fees := d.ReserveFees(nativeID)
	for i, id := range state.Currencies {
		if v := fees.Get(id); v != 0 {
			total += currency.ReserveToNativeRaw(v, rates[i])
		}
	}
	return total
}

// ReserveInputMap returns reserveIn for each non-native currency, and
// nativeOutConverted for any currency (the native one included) that has
// it; where a currency has both, the nativeOutConverted value replaces
// reserveIn under that key rather than being added to it, treating a
// converted native payout as an "input" from the reserve side of the
// ledger.
func (d *Descriptor) ReserveInputMap(nativeID types.CurrencyID) *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if id != nativeID && e.ReserveIn != 0 {
			out.Set(id, e.ReserveIn)
		}
		if e.NativeOutConverted != 0 {
			out.Set(id, e.NativeOutConverted)
		}
	}
	return out
}

// ReserveOutputMap returns, per non-native currency, the reserveOut
// counter.
func (d *Descriptor) ReserveOutputMap(nativeID types.CurrencyID) *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if id != nativeID && e.ReserveOut != 0 {
			out.Set(id, e.ReserveOut)
		}
	}
	return out
}

// ReserveOutConvertedMap returns, per non-native currency, the
// reserveOutConverted counter.
func (d *Descriptor) ReserveOutConvertedMap(nativeID types.CurrencyID) *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if id != nativeID && e.ReserveOutConverted != 0 {
			out.Set(id, e.ReserveOutConverted)
		}
	}
	return out
}

// NativeOutConvertedMap returns, per currency (including the native
// currency's own entry, if present), the nativeOutConverted counter.
func (d *Descriptor) NativeOutConvertedMap() *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if e.NativeOutConverted != 0 {
			out.Set(id, e.NativeOutConverted)
		}
	}
	return out
}

// ReserveConversionFeesMap returns, per currency, the
// reserveConversionFees counter.
func (d *Descriptor) ReserveConversionFeesMap() *currency.ValueMap {
	out := currency.NewValueMap()
	for id, e := range d.Currencies {
		if e.ReserveConversionFees != 0 {
			out.Set(id, e.ReserveConversionFees)
		}
	}
	return out
}

// ReserveInputs builds the conservation-check input map: every
// currency's input-side total, as ReserveInputMap returns it. state is
// not consulted.
func (d *Descriptor) ReserveInputs(state *currency.State, nativeID types.CurrencyID) *currency.ValueMap {
	return d.ReserveInputMap(nativeID)
}
