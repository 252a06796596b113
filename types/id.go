package types

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// CurrencyIDLength is the width of an opaque currency identifier: 160
// bits, matching an Ethereum-style Address.
const CurrencyIDLength = 20

// CurrencyID is an opaque 160-bit identifier for a currency.
type CurrencyID [CurrencyIDLength]byte

// IsZero reports whether id is the zero value.
func (id CurrencyID) IsZero() bool {
	return id == CurrencyID{}
}

// Bytes returns the raw bytes of id.
func (id CurrencyID) Bytes() []byte {
	return id[:]
}

// Hex returns the "0x"-prefixed hex encoding of id.
func (id CurrencyID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// String implements fmt.Stringer and is used by loggers.
func (id CurrencyID) String() string {
	return id.Hex()
}

// Cmp orders two ids for canonical (sorted) iteration.
func (id CurrencyID) Cmp(other CurrencyID) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// BytesToCurrencyID right-aligns b into a CurrencyID, truncating from the
// left if b is longer than CurrencyIDLength, matching the BytesToAddress
// convention.
func BytesToCurrencyID(b []byte) CurrencyID {
	var id CurrencyID
	if len(b) > CurrencyIDLength {
		b = b[len(b)-CurrencyIDLength:]
	}
	copy(id[CurrencyIDLength-len(b):], b)
	return id
}

// HexToCurrencyID decodes a hex string (with or without 0x prefix) into a
// CurrencyID. Panics on malformed input, mirroring HexToHash.
func HexToCurrencyID(s string) CurrencyID {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("HexToCurrencyID: %v", err))
	}
	return BytesToCurrencyID(b)
}

// MarshalText returns the hex representation of id, for JSON fixtures and
// RPC responses.
func (id CurrencyID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText parses a hex-encoded id, with or without a 0x prefix.
func (id *CurrencyID) UnmarshalText(input []byte) error {
	s := strings.TrimPrefix(string(input), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("UnmarshalText: %w", err)
	}
	*id = BytesToCurrencyID(b)
	return nil
}

// SortCurrencyIDs sorts ids in place in canonical order.
func SortCurrencyIDs(ids []CurrencyID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Cmp(ids[j]) < 0
	})
}
