// Package registry defines the import processor's external collaborator
// boundary: currency definition lookup, the transaction view the
// processor reads transfers from and writes outputs to, and the
// fee-recipient policy object that replaces the source's process-global
// miner/notary/default/node address lookups.
package registry

import (
	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

// CurrencyRegistry resolves currency ids to their definitions. Callers
// outside the core own caching and thread-safety. The import processor
// carries one in its Request but looks no definition up through it: the
// import currency's definition arrives directly as
// Request.ImportCurrencyDef, and a missing registry entry does not fail
// an import.
type CurrencyRegistry interface {
	// GetCachedCurrency returns the definition for id and true, or a zero
	// Definition and false if id is unknown.
	GetCachedCurrency(id types.CurrencyID) (currency.Definition, bool)
}

// StaticRegistry is an in-memory CurrencyRegistry backed by a plain map,
// for tests and the demo CLI's fixture loader.
type StaticRegistry struct {
	definitions map[types.CurrencyID]currency.Definition
}

// NewStaticRegistry returns a registry seeded with defs.
func NewStaticRegistry(defs ...currency.Definition) *StaticRegistry {
	r := &StaticRegistry{definitions: make(map[types.CurrencyID]currency.Definition, len(defs))}
	for _, d := range defs {
		r.definitions[d.ID] = d
	}
	return r
}

// Put adds or replaces a single definition.
func (r *StaticRegistry) Put(d currency.Definition) {
	r.definitions[d.ID] = d
}

func (r *StaticRegistry) GetCachedCurrency(id types.CurrencyID) (currency.Definition, bool) {
	d, ok := r.definitions[id]
	return d, ok
}

// TransactionView is the caller-supplied ordered sequence of transfers the
// import processor reads from, and the ordered sequence of outputs it
// appends to. The core never parses scripts; it is the caller's job to map
// script objects to transfer.TxOutput and back.
type TransactionView struct {
	Transfers []transfer.ReserveTransfer
	Outputs   []transfer.TxOutput
}

// NewTransactionView wraps an ordered transfer batch for one import call.
func NewTransactionView(transfers []transfer.ReserveTransfer) *TransactionView {
	return &TransactionView{Transfers: transfers}
}

// Emit appends out to the view's output sequence.
func (v *TransactionView) Emit(out transfer.TxOutput) {
	v.Outputs = append(v.Outputs, out)
}

// Environment bundles the engine's environment constants. Most fields
// mirror config.Config's compiled-in defaults; ChainID is the
// 160-bit id of the host chain (ASSETCHAINS_CHAINID), which has no
// sensible compiled-in default.
type Environment struct {
	ChainID                types.CurrencyID
	SatoshiDen             int64
	MaxReserveCurrencies   int
	DefaultPerStepFee      int64
	DestinationByteDivisor int64
	SuccessFee             int64
	MinSuccessFee          int64
}

// FeeRecipientPolicy replaces the source's process-global miner/notary/
// default/node address lookups with an explicit, caller-supplied object.
// ExporterReward resolves in priority order: explicit miner address, then
// notary id, then default id, then node id, then the registered notary
// pubkey.
type FeeRecipientPolicy struct {
	MinerAddress    types.CurrencyID
	HasMinerAddress bool
	NotaryID        types.CurrencyID
	HasNotaryID     bool
	DefaultID       types.CurrencyID
	HasDefaultID    bool
	NodeID          types.CurrencyID
	HasNodeID       bool
	NotaryPubkeyID  types.CurrencyID
}

// ExporterReward resolves the fee recipient by the fixed priority order:
// explicit miner address, then notary id, then default id, then node id,
// then the registered notary pubkey id. Returns false if none is set.
func (p FeeRecipientPolicy) ExporterReward() (types.CurrencyID, bool) {
	switch {
	case p.HasMinerAddress:
		return p.MinerAddress, true
	case p.HasNotaryID:
		return p.NotaryID, true
	case p.HasDefaultID:
		return p.DefaultID, true
	case p.HasNodeID:
		return p.NodeID, true
	case !p.NotaryPubkeyID.IsZero():
		return p.NotaryPubkeyID, true
	default:
		return types.CurrencyID{}, false
	}
}
