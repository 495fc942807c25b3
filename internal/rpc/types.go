package rpc

import (
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeRejected       = -32001 // the ledger refused a sandbox operation
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AddressParam is used by endpoints that take a single account address.
type AddressParam struct {
	Address string `json:"address"`
}

// WalletAddressParam is used by jetton_getWalletAddress and
// jetton_getBalance.
type WalletAddressParam struct {
	Minter string `json:"minter"`
	Owner  string `json:"owner"`
}

// FundParam is used by ledger_fund. Amount is in TON.
type FundParam struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// DeployMinterParam is used by ledger_deployMinter. Content is either a hex
// BOC, an off-chain URI, or on-chain metadata, checked in that order.
type DeployMinterParam struct {
	Admin       string `json:"admin"`
	Variant     string `json:"variant,omitempty"`
	Value       string `json:"value,omitempty"` // TON
	ContentBOC  string `json:"content_boc,omitempty"`
	URI         string `json:"uri,omitempty"`
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Decimals    *uint8 `json:"decimals,omitempty"`
}

// SendParam is used by ledger_send. Body is a hex BOC.
type SendParam struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Value  string `json:"value"` // TON
	Bounce bool   `json:"bounce"`
	Body   string `json:"body,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// LedgerInfoResult is returned by ledger_getInfo.
type LedgerInfoResult struct {
	NextLT     uint64       `json:"next_lt"`
	TxCount    uint64       `json:"tx_count"`
	Queued     int          `json:"queued"`
	Fees       string       `json:"fees"` // TON
	Commitment string       `json:"commitment"`
	Params     ParamsResult `json:"params"`
}

// ParamsResult lists the fee constants in TON.
type ParamsResult struct {
	ComputeFee        string `json:"compute_fee"`
	ForwardFee        string `json:"forward_fee"`
	GasConsumption    string `json:"gas_consumption"`
	MinTonsForStorage string `json:"min_tons_for_storage"`
	ProvideAddressGas string `json:"provide_address_gas"`
}

// AccountResult is returned by ledger_getAccount.
type AccountResult struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"` // TON
	Kind     string `json:"kind"`    // plain, minter, wallet or contract
	Variant  string `json:"variant,omitempty"`
	CodeHash string `json:"code_hash,omitempty"`
	Data     string `json:"data,omitempty"` // hex BOC
}

// DeployResult is returned by ledger_deployMinter.
type DeployResult struct {
	Address  string          `json:"address"`
	Variant  string          `json:"variant"`
	Metadata *token.Metadata `json:"metadata,omitempty"`
}

// TxResult describes one executed transaction of a trace.
type TxResult struct {
	LT       uint64   `json:"lt"`
	Src      string   `json:"src"`
	Dst      string   `json:"dst"`
	Op       string   `json:"op"`
	QueryID  uint64   `json:"query_id"`
	Value    string   `json:"value"` // TON
	Bounced  bool     `json:"bounced,omitempty"`
	Deployed bool     `json:"deployed,omitempty"`
	Success  bool     `json:"success"`
	ExitCode int      `json:"exit_code"`
	Error    string   `json:"error,omitempty"`
	Out      []uint64 `json:"out,omitempty"`
	Body     string   `json:"body,omitempty"` // hex BOC of the inbound body
}

// SendResult is returned by ledger_send.
type SendResult struct {
	LT           uint64     `json:"lt"`
	Transactions []TxResult `json:"transactions"`
	Failed       int        `json:"failed"`
}

// JettonDataResult is returned by jetton_getData.
type JettonDataResult struct {
	Address        string          `json:"address"`
	Variant        string          `json:"variant"`
	TotalSupply    string          `json:"total_supply"` // raw units
	Mintable       bool            `json:"mintable"`
	Admin          string          `json:"admin"`
	PendingAdmin   string          `json:"pending_admin,omitempty"`
	Content        string          `json:"content"` // hex BOC
	WalletCodeHash string          `json:"wallet_code_hash"`
	Metadata       *token.Metadata `json:"metadata,omitempty"`
}

// WalletAddressResult is returned by jetton_getWalletAddress.
type WalletAddressResult struct {
	Wallet   string `json:"wallet"`
	Deployed bool   `json:"deployed"`
}

// WalletDataResult is returned by jetton_getWalletData.
type WalletDataResult struct {
	Address string `json:"address"`
	Variant string `json:"variant"`
	Status  uint8  `json:"status"`
	Balance string `json:"balance"` // raw units
	Owner   string `json:"owner"`
	Minter  string `json:"minter"`
}

// BalanceResult is returned by jetton_getBalance.
type BalanceResult struct {
	Wallet  string `json:"wallet"`
	Balance string `json:"balance"` // raw units
}

// AuditResult is returned by jetton_audit.
type AuditResult struct {
	Minter      string `json:"minter"`
	TotalSupply string `json:"total_supply"`
	WalletSum   string `json:"wallet_sum"`
	Wallets     int    `json:"wallets"`
	Pending     int    `json:"pending"`
	Queued      int    `json:"queued"`
	Balanced    bool   `json:"balanced"`
}

// PendingResult is returned by jetton_getPending.
type PendingResult struct {
	Account string  `json:"account"`
	Deltas  []Delta `json:"deltas"`
}

// Delta is a pending optimistic mutation.
type Delta struct {
	LT      uint64 `json:"lt"`
	Op      string `json:"op"`
	QueryID uint64 `json:"query_id"`
	Amount  string `json:"amount"`
	Peer    string `json:"peer"`
}

// TokenListResult is returned by token_list.
type TokenListResult struct {
	Tokens []token.Metadata `json:"tokens"`
}
