// Command reserveengine is a demo driver for the reserve currency engine:
// it loads a fixture describing one currency's committed state and a batch
// of reserve transfers, runs the import processor once, and prints the
// resulting state and outputs. Grounded on cmd/minter/cmd's root command
// (cobra root command plus viper config load) and cmd/make_genesis (a
// thin main loading a fixture and printing JSON), trimmed to the one
// operation this engine's core actually has.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vrsc-reserve/engine/config"
	"github.com/vrsc-reserve/engine/importer"
	"github.com/vrsc-reserve/engine/logging"
	"github.com/vrsc-reserve/engine/metrics"
	"github.com/vrsc-reserve/engine/types"
)

func main() {
	config.RootCmd.AddCommand(importCmd)
	if err := config.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var importCmd = &cobra.Command{
	Use:   "import <fixture.json>",
	Short: "Run one reserve transfer import batch against a fixture and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Loaded()
	logging.InitLog(cfg)

	f, err := loadFixture(args[0])
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	recorder := metrics.NewDefault()
	req, err := f.request(recorder)
	if err != nil {
		return fmt.Errorf("building import request: %w", err)
	}

	logging.Info("running import", "source", req.SourceSystem, "dest", req.DestSystem, "transfers", len(req.TransferBatch))

	res, err := importer.AddReserveTransferImportOutputs(req)
	if err != nil {
		logging.Error("import failed", "err", err)
		return err
	}
	if !res.OK {
		logging.Error("import rejected the batch")
		return fmt.Errorf("import rejected the batch")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resultView{
		Outputs:           len(res.Outputs),
		ImportedCurrency:  res.ImportedCurrency.Vectorize(res.NewCurrencyState.Currencies),
		GatewayDepositsIn: res.GatewayDepositsIn.Vectorize(res.NewCurrencyState.Currencies),
		SpentCurrencyOut:  res.SpentCurrencyOut.Vectorize(res.NewCurrencyState.Currencies),
		Currencies:        res.NewCurrencyState.Currencies,
		Reserves:          res.NewCurrencyState.Reserves,
		Supply:            res.NewCurrencyState.Supply,
		ConversionPrice:   res.NewCurrencyState.ConversionPrice,
	})
}

// resultView is a flattened, human-readable projection of importer.Result;
// the engine's own types stay map-shaped internally (currency.ValueMap)
// but print as plain vectors aligned to the new state's currency order.
type resultView struct {
	Outputs           int     `json:"outputs"`
	ImportedCurrency  []int64 `json:"imported_currency"`
	GatewayDepositsIn []int64 `json:"gateway_deposits_in"`
	SpentCurrencyOut  []int64 `json:"spent_currency_out"`

	Currencies      []types.CurrencyID `json:"currencies"`
	Reserves        []int64            `json:"reserves"`
	Supply          int64              `json:"supply"`
	ConversionPrice []int64            `json:"conversion_price"`
}
