package deploy

import (
	aptoslib "github.com/aptos-labs/aptos-go-sdk"
)

const (
	// MuchGasMaxAmount is the max gas amount of MuchGas. Node defaults are 200,000.
	MuchGasMaxAmount uint64 = 2_000_000
	// MuchGasUnitPrice is the gas unit price in octas of MuchGas. Node defaults are 100.
	MuchGasUnitPrice uint64 = 1_000
	// DefaultExpirationSeconds is how long a submitted transaction stays valid.
	DefaultExpirationSeconds uint64 = 300
)

// GasPolicy is the gas budget attached to every transaction of a run.
type GasPolicy struct {
	MaxGasAmount      uint64
	GasUnitPrice      uint64
	ExpirationSeconds uint64
}

// MuchGas returns a policy with a budget well above what publishing a package needs, so that
// deployments do not fail on gas estimation.
func MuchGas() GasPolicy {
	return GasPolicy{
		MaxGasAmount:      MuchGasMaxAmount,
		GasUnitPrice:      MuchGasUnitPrice,
		ExpirationSeconds: DefaultExpirationSeconds,
	}
}

// WithDefaults fills zero fields from MuchGas.
func (p GasPolicy) WithDefaults() GasPolicy {
	d := MuchGas()
	if p.MaxGasAmount == 0 {
		p.MaxGasAmount = d.MaxGasAmount
	}
	if p.GasUnitPrice == 0 {
		p.GasUnitPrice = d.GasUnitPrice
	}
	if p.ExpirationSeconds == 0 {
		p.ExpirationSeconds = d.ExpirationSeconds
	}

	return p
}

// options renders the policy as transaction builder options.
func (p GasPolicy) options() []any {
	return []any{
		aptoslib.MaxGasAmount(p.MaxGasAmount),
		aptoslib.GasUnitPrice(p.GasUnitPrice),
		aptoslib.ExpirationSeconds(p.ExpirationSeconds),
	}
}
