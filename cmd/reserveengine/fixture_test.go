package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vrsc-reserve/engine/types"
)

const sampleFixture = `{
  "source_system": "0x0000000000000000000000000000000000000009",
  "dest_system": "0x0000000000000000000000000000000000000009",
  "import_currency": {
    "id": "0x0000000000000000000000000000000000000001",
    "currencies": ["0x0000000000000000000000000000000000000002"],
    "weights": [100000000],
    "is_fractional": true
  },
  "state": {
    "currencies": ["0x0000000000000000000000000000000000000002"],
    "weights": [100000000],
    "reserves": [100000000],
    "supply": 100000000,
    "flags": 9,
    "conversion_price": [100000000]
  },
  "transfers": [
    {
      "flags": 0,
      "fee_currency_id": "0x0000000000000000000000000000000000000002",
      "fees": 20000,
      "reserve_values": {"0x0000000000000000000000000000000000000002": 1000000},
      "dest_currency_id": "0x0000000000000000000000000000000000000002",
      "destination": {"kind": 2, "destination_hex": "01"}
    }
  ],
  "fee_policy": {}
}`

func writeSampleFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(path, []byte(sampleFixture), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadFixtureAndBuildRequest(t *testing.T) {
	path := writeSampleFixture(t)
	f, err := loadFixture(path)
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}

	req, err := f.request(nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if len(req.TransferBatch) != 1 {
		t.Fatalf("expected one transfer, got %d", len(req.TransferBatch))
	}
	want := types.HexToCurrencyID("0x0000000000000000000000000000000000000002")
	if got := req.TransferBatch[0].FirstCurrency(); got != want {
		t.Fatalf("unexpected reserve currency: %s", got.Hex())
	}
	if req.ImportCurrencyDef.ID != types.HexToCurrencyID("0x0000000000000000000000000000000000000001") {
		t.Fatalf("unexpected import currency id")
	}
}
