package config

import "math/big"

// NanoPerTon is the number of nanotons in one TON.
const NanoPerTon = 1_000_000_000

// Params are the protocol fee constants. The runtime charges ComputeFee per
// executed transaction and ForwardFee per emitted message. Contracts use
// GasConsumption, MinTonsForStorage and ProvideAddressGas to decide whether
// an inbound message carries enough value.
type Params struct {
	ComputeFee        uint64
	ForwardFee        uint64
	GasConsumption    uint64
	MinTonsForStorage uint64
	ProvideAddressGas uint64
}

// DefaultParams returns the fee constants used by every node.
func DefaultParams() Params {
	return Params{
		ComputeFee:        10_000_000, // 0.01 TON
		ForwardFee:        5_000_000,  // 0.005 TON
		GasConsumption:    15_000_000, // 0.015 TON
		MinTonsForStorage: 10_000_000, // 0.01 TON
		ProvideAddressGas: 10_000_000, // 0.01 TON
	}
}

// Nano returns v as a big integer.
func Nano(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// TransferMinValue is the smallest value a wallet accepts with a transfer
// request carrying forwardTon, exclusive.
func (p Params) TransferMinValue(forwardTon *big.Int) *big.Int {
	fwdCount := uint64(1)
	if forwardTon.Sign() > 0 {
		fwdCount = 2
	}
	v := new(big.Int).Set(forwardTon)
	v.Add(v, Nano(fwdCount*p.ForwardFee+2*p.GasConsumption+p.MinTonsForStorage))
	return v
}

// MintMinValue is the smallest value a mint may attach to its internal
// transfer carrying forwardTon, exclusive. It leaves the receiving wallet
// enough to bounce the transfer back when it is rejected.
func (p Params) MintMinValue(forwardTon *big.Int) *big.Int {
	fwdCount := uint64(2)
	if forwardTon.Sign() > 0 {
		fwdCount = 3
	}
	v := new(big.Int).Set(forwardTon)
	v.Add(v, Nano(fwdCount*p.ForwardFee+p.ComputeFee+p.GasConsumption+p.MinTonsForStorage))
	return v
}

// BurnMinValue is the smallest value a wallet accepts with a burn request,
// exclusive.
func (p Params) BurnMinValue() *big.Int {
	return Nano(p.ForwardFee + 2*p.GasConsumption)
}

// DiscoveryMinValue is the smallest value the minter accepts with a
// discovery request when the fee is enforced, exclusive.
func (p Params) DiscoveryMinValue() *big.Int {
	return Nano(p.ForwardFee + p.ProvideAddressGas)
}
