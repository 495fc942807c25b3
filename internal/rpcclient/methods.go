package rpcclient

import (
	"github.com/Klingon-tech/klingnet-jetton/internal/rpc"
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
)

// GetInfo returns the ledger counters and fee constants.
func (c *Client) GetInfo() (*rpc.LedgerInfoResult, error) {
	var res rpc.LedgerInfoResult
	if err := c.Call("ledger_getInfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAccount returns the account at addr.
func (c *Client) GetAccount(addr string) (*rpc.AccountResult, error) {
	var res rpc.AccountResult
	if err := c.Call("ledger_getAccount", rpc.AddressParam{Address: addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Fund credits amount TON to addr.
func (c *Client) Fund(addr, amount string) (*rpc.AccountResult, error) {
	var res rpc.AccountResult
	if err := c.Call("ledger_fund", rpc.FundParam{Address: addr, Amount: amount}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeployMinter deploys a minter.
func (c *Client) DeployMinter(p rpc.DeployMinterParam) (*rpc.DeployResult, error) {
	var res rpc.DeployResult
	if err := c.Call("ledger_deployMinter", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Send submits a message and returns the trace it produced.
func (c *Client) Send(p rpc.SendParam) (*rpc.SendResult, error) {
	var res rpc.SendResult
	if err := c.Call("ledger_send", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// JettonData returns the state of a minter.
func (c *Client) JettonData(minter string) (*rpc.JettonDataResult, error) {
	var res rpc.JettonDataResult
	if err := c.Call("jetton_getData", rpc.AddressParam{Address: minter}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// WalletAddress derives the wallet of owner under minter.
func (c *Client) WalletAddress(minter, owner string) (*rpc.WalletAddressResult, error) {
	var res rpc.WalletAddressResult
	if err := c.Call("jetton_getWalletAddress", rpc.WalletAddressParam{Minter: minter, Owner: owner}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// WalletData returns the state of the wallet at addr.
func (c *Client) WalletData(addr string) (*rpc.WalletDataResult, error) {
	var res rpc.WalletDataResult
	if err := c.Call("jetton_getWalletData", rpc.AddressParam{Address: addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Balance returns the token balance of owner under minter.
func (c *Client) Balance(minter, owner string) (*rpc.BalanceResult, error) {
	var res rpc.BalanceResult
	if err := c.Call("jetton_getBalance", rpc.WalletAddressParam{Minter: minter, Owner: owner}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Pending lists the unsettled deltas of an account.
func (c *Client) Pending(addr string) (*rpc.PendingResult, error) {
	var res rpc.PendingResult
	if err := c.Call("jetton_getPending", rpc.AddressParam{Address: addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Audit checks supply conservation of a minter.
func (c *Client) Audit(minter string) (*rpc.AuditResult, error) {
	var res rpc.AuditResult
	if err := c.Call("jetton_audit", rpc.AddressParam{Address: minter}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Metadata returns the indexed metadata of a minter.
func (c *Client) Metadata(minter string) (*token.Metadata, error) {
	var res token.Metadata
	if err := c.Call("token_getMetadata", rpc.AddressParam{Address: minter}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Tokens lists every indexed minter.
func (c *Client) Tokens() ([]token.Metadata, error) {
	var res rpc.TokenListResult
	if err := c.Call("token_list", nil, &res); err != nil {
		return nil, err
	}
	return res.Tokens, nil
}
