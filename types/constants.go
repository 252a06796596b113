package types

// Environment constants for the conversion engine. These are compile-time
// values; the engine packages read them directly, and a loaded
// config.Config does not override them.
const (
	// SatoshiDen is 100% expressed in the fixed-point fraction scale.
	SatoshiDen int64 = 100000000

	// MaxReserveCurrencies caps the size of a fractional currency's reserve
	// basket.
	MaxReserveCurrencies = 10

	// DefaultPerStepFee is the base per-transfer fee, in satoshis of the
	// fee currency, before the destination-byte surcharge.
	DefaultPerStepFee int64 = 10000

	// DestinationByteDivisor converts destination-script length into a
	// fee component: CalculateTransferFee folds the truncated quotient
	// len(destination)/DestinationByteDivisor into its shift count.
	DestinationByteDivisor int64 = 128

	// SuccessFee is the conversion-fee rate, expressed as a fraction of
	// SatoshiDen (e.g. 10000 == 0.01%... scaled the same way reserve
	// weights are).
	SuccessFee int64 = 10000

	// MinSuccessFee is the floor below which a computed conversion fee is
	// always raised.
	MinSuccessFee int64 = 10000
)

// CurrencyStateFlag bits: CoinbaseCurrencyState's "flags" bitset.
type CurrencyStateFlag uint32

const (
	CurrencyStateFractional CurrencyStateFlag = 1 << iota
	CurrencyStateLaunchClear
	CurrencyStateLaunchConfirmed
	CurrencyStateLaunchComplete
	CurrencyStatePrelaunch
	CurrencyStateRefunding
)

// Has reports whether all bits of mask are set in f.
func (f CurrencyStateFlag) Has(mask CurrencyStateFlag) bool {
	return f&mask == mask
}

// TransferFlag bits: ReserveTransfer's "flags" bitset.
type TransferFlag uint32

const (
	TransferConvert TransferFlag = 1 << iota
	TransferPreConvert
	TransferReserveToReserve
	TransferMint
	TransferBurn
	TransferBurnChangeWeight
	TransferFeeOutput
	TransferRefund
	TransferImportToSource
	TransferDoubleSend
	TransferPreallocate
	TransferNextLegPresent
	TransferDefinitionImport
)

// Has reports whether all bits of mask are set in f.
func (f TransferFlag) Has(mask TransferFlag) bool {
	return f&mask == mask
}
