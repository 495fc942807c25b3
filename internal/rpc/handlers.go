package rpc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/internal/contract"
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// runTimeout bounds a single ledger_send drain.
const runTimeout = 30 * time.Second

// defaultDeployValue is the TON credited to a minter when none is given.
const defaultDeployValue = "1"

// ── Ledger endpoints ────────────────────────────────────────────────────

func (s *Server) handleLedgerGetInfo(_ *Request) (interface{}, *Error) {
	commitment, err := s.chain.Commitment()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("commitment: %v", err)}
	}
	st := s.chain.State()
	p := s.chain.Params()
	return &LedgerInfoResult{
		NextLT:     st.NextLT,
		TxCount:    st.TxCount,
		Queued:     s.chain.QueueLen(),
		Fees:       tonString(s.chain.CollectedFees()),
		Commitment: commitment.String(),
		Params: ParamsResult{
			ComputeFee:        tonString(config.Nano(p.ComputeFee)),
			ForwardFee:        tonString(config.Nano(p.ForwardFee)),
			GasConsumption:    tonString(config.Nano(p.GasConsumption)),
			MinTonsForStorage: tonString(config.Nano(p.MinTonsForStorage)),
			ProvideAddressGas: tonString(config.Nano(p.ProvideAddressGas)),
		},
	}, nil
}

func (s *Server) handleLedgerGetAccount(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	acct, err := s.chain.Account(addr)
	if err != nil {
		return nil, lookupError(err)
	}

	res := &AccountResult{
		Address: addr.String(),
		Balance: tonString(acct.Balance),
		Kind:    "plain",
	}
	if !acct.IsContract() {
		return res, nil
	}
	res.Kind = "contract"
	res.CodeHash = hex.EncodeToString(acct.CodeHash())
	if acct.Data != nil {
		res.Data = encodeBOC(acct.Data)
	}
	if kind, v, err := jetton.ParseCode(acct.Code); err == nil {
		res.Variant = v.String()
		switch kind {
		case jetton.KindMinter:
			res.Kind = "minter"
		case jetton.KindWallet:
			res.Kind = "wallet"
		}
	}
	return res, nil
}

func (s *Server) handleLedgerFund(req *Request) (interface{}, *Error) {
	var params FundParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}
	amount, amtErr := parseTON("amount", params.Amount)
	if amtErr != nil {
		return nil, amtErr
	}

	if err := s.chain.Fund(addr, amount); err != nil {
		return nil, &Error{Code: CodeRejected, Message: fmt.Sprintf("fund: %v", err)}
	}
	bal, err := s.chain.Balance(addr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("balance: %v", err)}
	}
	return &AccountResult{Address: addr.String(), Balance: tonString(bal), Kind: "plain"}, nil
}

func (s *Server) handleLedgerDeployMinter(req *Request) (interface{}, *Error) {
	var params DeployMinterParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	admin, addrErr := parseAddr("admin", params.Admin)
	if addrErr != nil {
		return nil, addrErr
	}

	variant := s.variant
	if params.Variant != "" {
		v, err := jetton.ParseVariant(params.Variant)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
		}
		variant = v
	}

	if params.Value == "" {
		params.Value = defaultDeployValue
	}
	value, valErr := parseTON("value", params.Value)
	if valErr != nil {
		return nil, valErr
	}

	content, contentErr := deployContent(&params)
	if contentErr != nil {
		return nil, contentErr
	}

	s.runMu.Lock()
	addr, err := contract.DeployMinter(s.chain, variant, admin, content, value)
	s.runMu.Unlock()
	if err != nil {
		return nil, &Error{Code: CodeRejected, Message: fmt.Sprintf("deploy minter: %v", err)}
	}
	s.logger.Info().Str("minter", addr.String()).Str("variant", variant.String()).Msg("Minter deployed")

	res := &DeployResult{Address: addr.String(), Variant: variant.String()}
	if s.index != nil {
		meta, err := s.index.Refresh(addr)
		if err != nil {
			s.logger.Warn().Err(err).Str("minter", addr.String()).Msg("Metadata refresh failed")
		}
		res.Metadata = meta
	}
	return res, nil
}

// deployContent picks the minter content: an explicit BOC, then on-chain
// attributes when a name or symbol is given, then an off-chain URI.
func deployContent(p *DeployMinterParam) (*cell.Cell, *Error) {
	if p.ContentBOC != "" {
		c, err := decodeBOC(p.ContentBOC)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "invalid content_boc: " + err.Error()}
		}
		return c, nil
	}
	if p.Name != "" || p.Symbol != "" {
		meta := &token.Metadata{
			URI:         p.URI,
			Name:        p.Name,
			Symbol:      p.Symbol,
			Description: p.Description,
			Image:       p.Image,
			Decimals:    jetton.Decimals,
		}
		if p.Decimals != nil {
			meta.Decimals = *p.Decimals
		}
		c, err := token.OnchainContent(meta)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "invalid metadata: " + err.Error()}
		}
		return c, nil
	}
	if p.URI == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "uri, content_boc, name or symbol is required"}
	}
	c, err := token.OffchainContent(p.URI)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid uri: " + err.Error()}
	}
	return c, nil
}

func (s *Server) handleLedgerSend(req *Request) (interface{}, *Error) {
	var params SendParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	from, addrErr := parseAddr("from", params.From)
	if addrErr != nil {
		return nil, addrErr
	}
	to, addrErr := parseAddr("to", params.To)
	if addrErr != nil {
		return nil, addrErr
	}
	value, valErr := parseTON("value", params.Value)
	if valErr != nil {
		return nil, valErr
	}
	var body *cell.Cell
	if params.Body != "" {
		c, err := decodeBOC(params.Body)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "invalid body: " + err.Error()}
		}
		body = c
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	lt, err := s.chain.Submit(from, chain.OutMessage{
		Dst:    to,
		Value:  value,
		Bounce: params.Bounce,
		Body:   body,
	})
	if err != nil {
		return nil, &Error{Code: CodeRejected, Message: fmt.Sprintf("submit: %v", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	trace, runErr := s.chain.Run(ctx)
	if s.index != nil {
		s.index.Observe(trace)
	}

	res := &SendResult{LT: lt, Transactions: make([]TxResult, 0, len(trace))}
	for _, tx := range trace {
		res.Transactions = append(res.Transactions, txResult(tx))
		if !tx.Success {
			res.Failed++
		}
	}
	if runErr != nil {
		s.logger.Warn().Err(runErr).Uint64("lt", lt).Int("txs", len(trace)).Msg("Run stopped early")
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("run: %v", runErr), Data: res}
	}
	s.logger.Debug().Uint64("lt", lt).Int("txs", len(trace)).Int("failed", res.Failed).Msg("Message processed")
	return res, nil
}

// ── Helpers ─────────────────────────────────────────────────────────────

func txResult(tx *chain.TxResult) TxResult {
	res := TxResult{
		LT:       tx.LT,
		Src:      addrString(tx.Src),
		Dst:      addrString(tx.Dst),
		Op:       jetton.OpName(tx.Op),
		QueryID:  tx.QueryID,
		Value:    tonString(tx.Value),
		Bounced:  tx.Bounced,
		Deployed: tx.Deployed,
		Success:  tx.Success,
		ExitCode: tx.ExitCode,
		Error:    tx.Err,
		Out:      tx.Out,
	}
	if tx.Body != nil {
		res.Body = encodeBOC(tx.Body)
	}
	return res
}

func parseAddr(field, s string) (*address.Address, *Error) {
	if s == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: field + " is required"}
	}
	addr, err := jetton.ParseAddress(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid " + field + ": " + err.Error()}
	}
	if jetton.IsNone(addr) {
		return nil, &Error{Code: CodeInvalidParams, Message: field + " must not be addr_none"}
	}
	return addr, nil
}

// parseTON parses a decimal TON amount into nanotons.
func parseTON(field, s string) (*big.Int, *Error) {
	if s == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: field + " is required"}
	}
	c, err := tlb.FromTON(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid " + field + ": " + err.Error()}
	}
	return c.Nano(), nil
}

func tonString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return tlb.FromNanoTON(v).String()
}

func addrString(a *address.Address) string {
	if a == nil || jetton.IsNone(a) {
		return ""
	}
	return a.String()
}

func encodeBOC(c *cell.Cell) string {
	return hex.EncodeToString(c.ToBOC())
}

func decodeBOC(s string) (*cell.Cell, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return cell.FromBOC(raw)
}

// lookupError maps getter failures onto RPC errors.
func lookupError(err error) *Error {
	switch {
	case errors.Is(err, chain.ErrAccountNotFound),
		errors.Is(err, contract.ErrNotMinter),
		errors.Is(err, contract.ErrNotWallet):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}
