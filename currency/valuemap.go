package currency

import (
	"sort"

	"github.com/vrsc-reserve/engine/types"
)

// ValueMap is an ordered mapping of currency id to signed satoshi amount.
// Iteration via Range always visits ids in canonical (sorted) order, the
// way the Checker and Commission packages iterate plain Go maps only
// after sorting their keys.
type ValueMap struct {
	m map[types.CurrencyID]int64
}

// NewValueMap returns an empty map.
func NewValueMap() *ValueMap {
	return &ValueMap{m: map[types.CurrencyID]int64{}}
}

// ValueMapFromMap wraps a plain map, taking ownership of it.
func ValueMapFromMap(m map[types.CurrencyID]int64) *ValueMap {
	if m == nil {
		m = map[types.CurrencyID]int64{}
	}
	return &ValueMap{m: m}
}

// Get returns the value for id, or 0 if absent.
func (v *ValueMap) Get(id types.CurrencyID) int64 {
	return v.m[id]
}

// Set assigns value to id, overwriting any prior value.
func (v *ValueMap) Set(id types.CurrencyID, value int64) {
	v.m[id] = value
}

// Add increments id's value by delta, creating the entry if absent.
func (v *ValueMap) Add(id types.CurrencyID, delta int64) {
	v.m[id] += delta
}

// Len returns the number of entries, including any zero-valued ones.
func (v *ValueMap) Len() int {
	return len(v.m)
}

// ids returns the map's keys in canonical order.
func (v *ValueMap) ids() []types.CurrencyID {
	ids := make([]types.CurrencyID, 0, len(v.m))
	for id := range v.m {
		ids = append(ids, id)
	}
	types.SortCurrencyIDs(ids)
	return ids
}

// IDs is the exported form of ids, for callers outside the package that
// need the canonical key order without a value (e.g. ReserveTransfer's
// FirstCurrency).
func (v *ValueMap) IDs() []types.CurrencyID {
	return v.ids()
}

// Clone returns a deep copy of v.
func (v *ValueMap) Clone() *ValueMap {
	out := make(map[types.CurrencyID]int64, len(v.m))
	for id, val := range v.m {
		out[id] = val
	}
	return &ValueMap{m: out}
}

// Range visits every entry in canonical id order.
func (v *ValueMap) Range(fn func(id types.CurrencyID, value int64)) {
	for _, id := range v.ids() {
		fn(id, v.m[id])
	}
}

// Canonicalize returns a new ValueMap with every zero-valued entry removed.
// Canonicalize is idempotent: canonical(canonical(m)) == canonical(m).
func (v *ValueMap) Canonicalize() *ValueMap {
	out := NewValueMap()
	for id, val := range v.m {
		if val != 0 {
			out.m[id] = val
		}
	}
	return out
}

// IsCanonical reports whether v has no zero-valued entries.
func (v *ValueMap) IsCanonical() bool {
	for _, val := range v.m {
		if val == 0 {
			return false
		}
	}
	return true
}

// HasNegative reports whether any entry is less than zero.
func (v *ValueMap) HasNegative() bool {
	for _, val := range v.m {
		if val < 0 {
			return true
		}
	}
	return false
}

// Add returns a new ValueMap that is the componentwise sum of a and b.
func Add(a, b *ValueMap) *ValueMap {
	out := NewValueMap()
	a.Range(func(id types.CurrencyID, val int64) { out.m[id] += val })
	b.Range(func(id types.CurrencyID, val int64) { out.m[id] += val })
	return out
}

// Sub returns a new ValueMap that is the componentwise difference a - b.
func Sub(a, b *ValueMap) *ValueMap {
	out := NewValueMap()
	a.Range(func(id types.CurrencyID, val int64) { out.m[id] += val })
	b.Range(func(id types.CurrencyID, val int64) { out.m[id] -= val })
	return out
}

// Scale returns a new ValueMap with every entry multiplied by num and
// divided by den (truncated toward zero), the componentwise analogue of the
// fixed-point kernel's MulDiv, used e.g. to apply a fee-split fraction to an
// entire reserve vector at once.
func Scale(v *ValueMap, num, den int64) *ValueMap {
	out := NewValueMap()
	v.Range(func(id types.CurrencyID, val int64) {
		sign := int64(1)
		if val < 0 {
			sign = -1
			val = -val
		}
		out.m[id] = sign * (val * num / den)
	})
	return out
}

// Equal reports whether a and b have the same canonical contents.
func Equal(a, b *ValueMap) bool {
	ca, cb := a.Canonicalize(), b.Canonicalize()
	if len(ca.m) != len(cb.m) {
		return false
	}
	for id, val := range ca.m {
		if cb.m[id] != val {
			return false
		}
	}
	return true
}

// Vectorize produces a dense []int64 aligned with ids, padding with zero for
// any id not present in v.
func (v *ValueMap) Vectorize(ids []types.CurrencyID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = v.m[id]
	}
	return out
}

// FromVector is the inverse of Vectorize.
func FromVector(ids []types.CurrencyID, values []int64) *ValueMap {
	out := NewValueMap()
	n := len(ids)
	if len(values) < n {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		out.m[ids[i]] = values[i]
	}
	return out
}

// SortedIDs is a convenience for tests and encoders that want the canonical
// key order without visiting values.
func SortedIDs(m map[types.CurrencyID]int64) []types.CurrencyID {
	ids := make([]types.CurrencyID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })
	return ids
}
