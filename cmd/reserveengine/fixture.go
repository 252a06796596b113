package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vrsc-reserve/engine/currency"
	"github.com/vrsc-reserve/engine/importer"
	"github.com/vrsc-reserve/engine/metrics"
	"github.com/vrsc-reserve/engine/registry"
	"github.com/vrsc-reserve/engine/transfer"
	"github.com/vrsc-reserve/engine/types"
)

// fixture is the on-disk shape of an import batch: a currency definition,
// its committed state going into the block, the transfer batch to import,
// and the collaborator values the core never reads from globals. CurrencyID
// fields round-trip through hex via types.CurrencyID's MarshalText, the
// same way an Ethereum-style Address does for its own JSON fixtures.
type fixture struct {
	SourceSystem types.CurrencyID `json:"source_system"`
	DestSystem   types.CurrencyID `json:"dest_system"`

	Definition fixtureDefinition `json:"import_currency"`
	State      fixtureState      `json:"state"`
	Transfers  []fixtureTransfer `json:"transfers"`

	FeePolicy fixtureFeePolicy `json:"fee_policy"`
}

type fixtureDefinition struct {
	ID             types.CurrencyID       `json:"id"`
	Currencies     []types.CurrencyID     `json:"currencies"`
	Weights        []int64                `json:"weights"`
	IsFractional   bool                   `json:"is_fractional"`
	LaunchSystemID types.CurrencyID       `json:"launch_system_id"`
	TotalCarveOut  int64                  `json:"total_carve_out"`
	PreAllocation  []fixturePreAllocEntry `json:"pre_allocation"`
}

type fixturePreAllocEntry struct {
	ID     types.CurrencyID `json:"id"`
	Amount int64            `json:"amount"`
}

type fixtureState struct {
	Currencies      []types.CurrencyID `json:"currencies"`
	Weights         []int64            `json:"weights"`
	Reserves        []int64            `json:"reserves"`
	Supply          int64              `json:"supply"`
	InitialSupply   int64              `json:"initial_supply"`
	Emitted         int64              `json:"emitted"`
	Flags           uint32             `json:"flags"`
	ConversionPrice []int64            `json:"conversion_price"`
}

type fixtureTransfer struct {
	Flags           uint32             `json:"flags"`
	FeeCurrencyID   types.CurrencyID   `json:"fee_currency_id"`
	Fees            int64              `json:"fees"`
	ReserveValues   map[string]int64   `json:"reserve_values"`
	DestCurrencyID  types.CurrencyID   `json:"dest_currency_id"`
	SecondReserveID types.CurrencyID   `json:"second_reserve_id"`
	Destination     fixtureDestination `json:"destination"`
}

type fixtureDestination struct {
	Kind        uint8  `json:"kind"`
	Destination string `json:"destination_hex"`
}

type fixtureFeePolicy struct {
	MinerAddress   *types.CurrencyID `json:"miner_address,omitempty"`
	NotaryID       *types.CurrencyID `json:"notary_id,omitempty"`
	DefaultID      *types.CurrencyID `json:"default_id,omitempty"`
	NodeID         *types.CurrencyID `json:"node_id,omitempty"`
	NotaryPubkeyID types.CurrencyID  `json:"notary_pubkey_id,omitempty"`
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, err
	}
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parsing fixture: %w", err)
	}
	return f, nil
}

func (f fixture) definition() *currency.Definition {
	entries := make([]currency.PreAllocationEntry, len(f.Definition.PreAllocation))
	for i, p := range f.Definition.PreAllocation {
		entries[i] = currency.PreAllocationEntry{ID: p.ID, Amount: p.Amount}
	}
	return &currency.Definition{
		ID:             f.Definition.ID,
		Currencies:     f.Definition.Currencies,
		Weights:        f.Definition.Weights,
		IsFractional:   f.Definition.IsFractional,
		LaunchSystemID: f.Definition.LaunchSystemID,
		TotalCarveOut:  f.Definition.TotalCarveOut,
		PreAllocation:  entries,
	}
}

func (f fixture) coinbaseState() currency.CoinbaseState {
	return currency.CoinbaseState{
		State: currency.State{
			Currencies:      f.State.Currencies,
			Weights:         f.State.Weights,
			Reserves:        f.State.Reserves,
			Supply:          f.State.Supply,
			InitialSupply:   f.State.InitialSupply,
			Emitted:         f.State.Emitted,
			Flags:           types.CurrencyStateFlag(f.State.Flags),
			ConversionPrice: f.State.ConversionPrice,
		},
	}
}

func (f fixture) transferBatch() ([]transfer.ReserveTransfer, error) {
	out := make([]transfer.ReserveTransfer, len(f.Transfers))
	for i, t := range f.Transfers {
		values := currency.NewValueMap()
		for idHex, amount := range t.ReserveValues {
			var id types.CurrencyID
			if err := id.UnmarshalText([]byte(idHex)); err != nil {
				return nil, fmt.Errorf("transfer %d: reserve value id: %w", i, err)
			}
			values.Set(id, amount)
		}
		destBytes, err := decodeDestinationHex(t.Destination.Destination)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: destination: %w", i, err)
		}
		out[i] = transfer.ReserveTransfer{
			Flags:           types.TransferFlag(t.Flags),
			FeeCurrencyID:   t.FeeCurrencyID,
			NFees:           t.Fees,
			ReserveValues:   values,
			DestCurrencyID:  t.DestCurrencyID,
			SecondReserveID: t.SecondReserveID,
			Destination: transfer.Destination{
				Kind:        transfer.DestinationKind(t.Destination.Kind),
				Destination: destBytes,
			},
		}
	}
	return out, nil
}

func (f fixture) feePolicy() registry.FeeRecipientPolicy {
	p := registry.FeeRecipientPolicy{NotaryPubkeyID: f.FeePolicy.NotaryPubkeyID}
	if f.FeePolicy.MinerAddress != nil {
		p.HasMinerAddress = true
		p.MinerAddress = *f.FeePolicy.MinerAddress
	}
	if f.FeePolicy.NotaryID != nil {
		p.HasNotaryID = true
		p.NotaryID = *f.FeePolicy.NotaryID
	}
	if f.FeePolicy.DefaultID != nil {
		p.HasDefaultID = true
		p.DefaultID = *f.FeePolicy.DefaultID
	}
	if f.FeePolicy.NodeID != nil {
		p.HasNodeID = true
		p.NodeID = *f.FeePolicy.NodeID
	}
	return p
}

func decodeDestinationHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func (f fixture) request(recorder *metrics.Recorder) (importer.Request, error) {
	batch, err := f.transferBatch()
	if err != nil {
		return importer.Request{}, err
	}
	def := f.definition()
	return importer.Request{
		SourceSystem:        f.SourceSystem,
		DestSystem:          f.DestSystem,
		ImportCurrencyDef:   def,
		ImportCurrencyState: f.coinbaseState(),
		TransferBatch:       batch,
		Registry:            registry.NewStaticRegistry(*def),
		FeePolicy:           f.feePolicy(),
		Recorder:            recorder,
	}, nil
}
