package jetton

import (
	"errors"
	"fmt"
)

// Reason names an abort condition independently of its numeric exit code.
//
// Value checks use two reasons. ReasonNotEnoughTon (alias
// ReasonInsufficientValue) rejects a transfer or mint whose attached TON
// cannot fund the forward amount, fees and a possible bounce, and a ClaimTon
// that would dig into the storage reserve. ReasonNotEnoughGas rejects a burn
// whose attached TON cannot pay for the burn notification. The base variant
// maps ReasonNotEnoughGas to 707, the code it shares with
// ReasonNotValidWallet; clients tell them apart by the Reason carried by
// ExitError, which its message includes.
type Reason string

// Abort reasons shared by both contract variants.
const (
	ReasonNotAdmin          Reason = "not_admin"
	ReasonUnauthorizedBurn  Reason = "unauthorized_burn"
	ReasonDiscoveryFee      Reason = "discovery_fee_not_matched"
	ReasonMintClosed        Reason = "mint_closed"
	ReasonWrongWorkchain    Reason = "wrong_workchain"
	ReasonNotOwner          Reason = "not_owner"
	ReasonBalance           Reason = "balance_error"
	ReasonNotValidWallet    Reason = "not_valid_wallet"
	ReasonNotEnoughGas      Reason = "not_enough_gas"
	ReasonMalformedPayload  Reason = "malformed_payload"
	ReasonNotEnoughTon      Reason = "not_enough_ton"
	ReasonContractLocked    Reason = "contract_locked"
	ReasonAmountOverflow    Reason = "amount_overflow"
	ReasonUnknownOp         Reason = "unknown_op"
	ReasonIncorrectSender   Reason = ReasonNotAdmin
	ReasonInsufficientValue Reason = ReasonNotEnoughTon
)

// Base contracts use bare integers; the governance contracts use a named
// error table that maps onto the same reasons.
var exitCodes = map[Variant]map[Reason]int{
	VariantBase: {
		ReasonNotAdmin:         73,
		ReasonUnauthorizedBurn: 74,
		ReasonDiscoveryFee:     75,
		ReasonMintClosed:       76,
		ReasonWrongWorkchain:   333,
		ReasonNotOwner:         705,
		ReasonBalance:          706,
		ReasonNotValidWallet:   707,
		ReasonNotEnoughGas:     707,
		ReasonMalformedPayload: 708,
		ReasonNotEnoughTon:     709,
		ReasonContractLocked:   710,
		ReasonAmountOverflow:   5,
		ReasonUnknownOp:        0xffff,
	},
	VariantGovernance: {
		ReasonNotAdmin:         73,
		ReasonUnauthorizedBurn: 74,
		ReasonDiscoveryFee:     75,
		ReasonMintClosed:       76,
		ReasonWrongWorkchain:   333,
		ReasonNotOwner:         73,
		ReasonBalance:          47,
		ReasonNotValidWallet:   74,
		ReasonNotEnoughGas:     48,
		ReasonMalformedPayload: 49,
		ReasonNotEnoughTon:     48,
		ReasonContractLocked:   45,
		ReasonAmountOverflow:   5,
		ReasonUnknownOp:        0xffff,
	},
}

// Governance error names, keyed by reason.
var governanceNames = map[Reason]string{
	ReasonNotAdmin:         "error::not_owner",
	ReasonUnauthorizedBurn: "error::not_valid_wallet",
	ReasonDiscoveryFee:     "error::discovery_fee_not_matched",
	ReasonMintClosed:       "error::mint_closed",
	ReasonWrongWorkchain:   "error::wrong_workchain",
	ReasonNotOwner:         "error::not_owner",
	ReasonBalance:          "error::balance_error",
	ReasonNotValidWallet:   "error::not_valid_wallet",
	ReasonNotEnoughGas:     "error::not_enough_gas",
	ReasonMalformedPayload: "error::invalid_message",
	ReasonNotEnoughTon:     "error::not_enough_gas",
	ReasonContractLocked:   "error::contract_locked",
	ReasonAmountOverflow:   "error::integer_overflow",
	ReasonUnknownOp:        "error::wrong_op",
}

// ExitError is returned by account logic to abort a message. The runtime
// discards all staged effects and bounces the message when it is bounceable.
type ExitError struct {
	Reason  Reason
	Code    int
	Variant Variant
}

// Abort builds the ExitError for reason under the given variant.
func Abort(v Variant, r Reason) *ExitError {
	return &ExitError{Reason: r, Code: ExitCode(v, r), Variant: v}
}

// ExitCode returns the numeric exit code of a reason.
func ExitCode(v Variant, r Reason) int {
	if codes, ok := exitCodes[v]; ok {
		if c, ok := codes[r]; ok {
			return c
		}
	}
	return exitCodes[VariantBase][r]
}

// Name returns the symbolic name used by the governance error table, or the
// bare reason for the base variant.
func (e *ExitError) Name() string {
	if e.Variant == VariantGovernance {
		if n, ok := governanceNames[e.Reason]; ok {
			return n
		}
	}
	return string(e.Reason)
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d (%s)", e.Code, e.Name())
}

// ExitCode implements the runtime's exit-code accessor.
func (e *ExitError) ExitCode() int { return e.Code }

// Is matches any ExitError with the same reason, regardless of variant.
func (e *ExitError) Is(target error) bool {
	t, ok := target.(*ExitError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

// Sentinel errors for errors.Is matching on reason.
var (
	ErrNotAdmin         = &ExitError{Reason: ReasonNotAdmin}
	ErrUnauthorizedBurn = &ExitError{Reason: ReasonUnauthorizedBurn}
	ErrDiscoveryFee     = &ExitError{Reason: ReasonDiscoveryFee}
	ErrMintClosed       = &ExitError{Reason: ReasonMintClosed}
	ErrWrongWorkchain   = &ExitError{Reason: ReasonWrongWorkchain}
	ErrNotOwner         = &ExitError{Reason: ReasonNotOwner}
	ErrBalance          = &ExitError{Reason: ReasonBalance}
	ErrNotValidWallet   = &ExitError{Reason: ReasonNotValidWallet}
	ErrNotEnoughGas     = &ExitError{Reason: ReasonNotEnoughGas}
	ErrMalformed        = &ExitError{Reason: ReasonMalformedPayload}
	ErrNotEnoughTon     = &ExitError{Reason: ReasonNotEnoughTon}
	ErrContractLocked   = &ExitError{Reason: ReasonContractLocked}
	ErrAmountOverflow   = &ExitError{Reason: ReasonAmountOverflow}
	ErrUnknownOp        = &ExitError{Reason: ReasonUnknownOp}
)

// Codec errors.
var (
	ErrAmountRange   = errors.New("amount does not fit into 120 bits")
	ErrUnexpectedOp  = errors.New("unexpected op code")
	ErrNotBounce     = errors.New("body is not a bounced token message")
	ErrBounced       = errors.New("bounced body, use ParseBounce")
	ErrEitherNoRef   = errors.New("either bit set without reference")
	ErrUnknownCode   = errors.New("unknown code image")
	ErrInvalidStatus = errors.New("wallet status out of range")
)
