package rpc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/klingnet-jetton/internal/contract"
	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

// ── Jetton getters ──────────────────────────────────────────────────────

func (s *Server) handleJettonGetData(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	jd, err := contract.GetJettonData(s.chain, addr)
	if err != nil {
		return nil, lookupError(err)
	}

	res := &JettonDataResult{
		Address:        addr.String(),
		Variant:        jd.Variant.String(),
		TotalSupply:    jd.TotalSupply.Dec(),
		Mintable:       jd.Mintable,
		Admin:          addrString(jd.Admin),
		PendingAdmin:   addrString(jd.PendingAdmin),
		WalletCodeHash: fmt.Sprintf("%x", jd.WalletCode.Hash()),
	}
	if jd.Content != nil {
		res.Content = encodeBOC(jd.Content)
	}
	if s.index != nil {
		if meta, err := s.index.Store().Get(addr); err == nil {
			res.Metadata = meta
		}
	}
	return res, nil
}

func (s *Server) handleJettonGetWalletAddress(req *Request) (interface{}, *Error) {
	var params WalletAddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	minter, addrErr := parseAddr("minter", params.Minter)
	if addrErr != nil {
		return nil, addrErr
	}
	owner, addrErr := parseAddr("owner", params.Owner)
	if addrErr != nil {
		return nil, addrErr
	}

	wallet, err := contract.GetWalletAddress(s.chain, minter, owner)
	if err != nil {
		return nil, lookupError(err)
	}
	res := &WalletAddressResult{Wallet: addrString(wallet)}
	if !jetton.IsNone(wallet) {
		if acct, err := s.chain.Account(wallet); err == nil && acct.IsContract() {
			res.Deployed = true
		}
	}
	return res, nil
}

func (s *Server) handleJettonGetWalletData(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	ws, err := contract.GetWalletData(s.chain, addr)
	if err != nil {
		return nil, lookupError(err)
	}
	return &WalletDataResult{
		Address: addr.String(),
		Variant: ws.Variant.String(),
		Status:  ws.Status,
		Balance: ws.Balance.Dec(),
		Owner:   addrString(ws.Owner),
		Minter:  addrString(ws.Minter),
	}, nil
}

func (s *Server) handleJettonGetBalance(req *Request) (interface{}, *Error) {
	var params WalletAddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	minter, addrErr := parseAddr("minter", params.Minter)
	if addrErr != nil {
		return nil, addrErr
	}
	owner, addrErr := parseAddr("owner", params.Owner)
	if addrErr != nil {
		return nil, addrErr
	}

	wallet, err := contract.GetWalletAddress(s.chain, minter, owner)
	if err != nil {
		return nil, lookupError(err)
	}
	bal, err := contract.GetBalance(s.chain, minter, owner)
	if err != nil {
		return nil, lookupError(err)
	}
	return &BalanceResult{Wallet: addrString(wallet), Balance: bal.Dec()}, nil
}

func (s *Server) handleJettonGetPending(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	deltas, err := contract.PendingDeltas(s.chain, addr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("pending: %v", err)}
	}
	res := &PendingResult{Account: addr.String(), Deltas: make([]Delta, 0, len(deltas))}
	for lt, d := range deltas {
		res.Deltas = append(res.Deltas, Delta{
			LT:      lt,
			Op:      jetton.OpName(d.Op),
			QueryID: d.QueryID,
			Amount:  d.Amount.Dec(),
			Peer:    addrString(d.Peer),
		})
	}
	sort.Slice(res.Deltas, func(i, j int) bool { return res.Deltas[i].LT < res.Deltas[j].LT })
	return res, nil
}

func (s *Server) handleJettonAudit(req *Request) (interface{}, *Error) {
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	r, err := contract.Audit(s.chain, addr)
	if err != nil {
		return nil, lookupError(err)
	}
	return &AuditResult{
		Minter:      addr.String(),
		TotalSupply: r.TotalSupply.Dec(),
		WalletSum:   r.WalletSum.Dec(),
		Wallets:     r.Wallets,
		Pending:     r.Pending,
		Queued:      r.Queued,
		Balanced:    r.Balanced,
	}, nil
}

// ── Token metadata ──────────────────────────────────────────────────────

func (s *Server) requireTokenIndex() *Error {
	if s.index == nil {
		return &Error{Code: CodeInternalError, Message: "token index not available"}
	}
	return nil
}

func (s *Server) handleTokenGetMetadata(req *Request) (interface{}, *Error) {
	if err := s.requireTokenIndex(); err != nil {
		return nil, err
	}
	var params AddressParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	addr, addrErr := parseAddr("address", params.Address)
	if addrErr != nil {
		return nil, addrErr
	}

	meta, err := s.index.Store().Get(addr)
	if errors.Is(err, storage.ErrNotFound) {
		// Index on first lookup.
		meta, err = s.index.Refresh(addr)
		if err != nil {
			return nil, lookupError(err)
		}
	}
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("get metadata: %v", err)}
	}
	return meta, nil
}

func (s *Server) handleTokenList(_ *Request) (interface{}, *Error) {
	if err := s.requireTokenIndex(); err != nil {
		return nil, err
	}
	list, err := s.index.Store().List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list tokens: %v", err)}
	}
	if list == nil {
		list = []token.Metadata{}
	}
	return &TokenListResult{Tokens: list}, nil
}
