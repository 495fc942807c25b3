package rpcclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xssnick/tonutils-go/address"

	"github.com/Klingon-tech/klingnet-jetton/config"
	"github.com/Klingon-tech/klingnet-jetton/internal/chain"
	"github.com/Klingon-tech/klingnet-jetton/internal/contract"
	klog "github.com/Klingon-tech/klingnet-jetton/internal/log"
	"github.com/Klingon-tech/klingnet-jetton/internal/rpc"
	"github.com/Klingon-tech/klingnet-jetton/internal/storage"
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

type testEnv struct {
	client *Client
	chain  *chain.Chain
	admin  string
}

func testAddr(b byte) string {
	return address.NewAddress(0, 0, bytes.Repeat([]byte{b}, 32)).String()
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	db := storage.NewMemory()
	ch, err := chain.New(db, config.DefaultParams())
	if err != nil {
		t.Fatalf("create chain: %v", err)
	}
	if _, err := contract.Register(ch, contract.Options{}); err != nil {
		t.Fatalf("register contracts: %v", err)
	}

	// Create and start RPC server on random port.
	srv := rpc.New("127.0.0.1:0", ch)
	srv.SetTokenIndex(token.NewIndex(ch, token.NewStore(db)))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	client := New("http://" + srv.Addr() + "/")
	admin := testAddr(0xad)
	if _, err := client.Fund(admin, "100"); err != nil {
		t.Fatalf("fund admin: %v", err)
	}

	return &testEnv{client: client, chain: ch, admin: admin}
}

func (env *testEnv) deploy(t *testing.T) string {
	t.Helper()
	res, err := env.client.DeployMinter(rpc.DeployMinterParam{
		Admin:  env.admin,
		Name:   "Client Token",
		Symbol: "CLT",
	})
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	return res.Address
}

func requireSettled(t *testing.T, res *rpc.SendResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Failed != 0 {
		t.Fatalf("failed transactions: %+v", res.Transactions)
	}
}

func TestClient_GetInfo(t *testing.T) {
	env := setupTestEnv(t)

	info, err := env.client.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo error: %v", err)
	}
	if info.Commitment == "" {
		t.Error("commitment is empty")
	}
	if info.Params.ComputeFee != "0.01" {
		t.Errorf("compute_fee = %q, want 0.01", info.Params.ComputeFee)
	}
}

func TestClient_FundAndGetAccount(t *testing.T) {
	env := setupTestEnv(t)

	acct, err := env.client.GetAccount(env.admin)
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if acct.Balance != "100" {
		t.Errorf("balance = %q, want 100", acct.Balance)
	}
}

func TestClient_TokenLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	minter := env.deploy(t)
	bob := testAddr(0xb0)

	res, err := env.client.Mint(MintRequest{
		Admin:    env.admin,
		Minter:   minter,
		Receiver: env.admin,
		Amount:   jetton.MustParseAmount("50", jetton.Decimals),
		Value:    "0.1",
	})
	requireSettled(t, res, err)

	res, err = env.client.Transfer(TransferRequest{
		Owner:       env.admin,
		Minter:      minter,
		Destination: bob,
		Amount:      jetton.MustParseAmount("20", jetton.Decimals),
		Value:       "0.2",
	})
	requireSettled(t, res, err)

	res, err = env.client.Burn(env.admin, minter, jetton.MustParseAmount("5", jetton.Decimals), "0.1")
	requireSettled(t, res, err)

	bal, err := env.client.Balance(minter, env.admin)
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if bal.Balance != "25000000000" {
		t.Errorf("admin balance = %q, want 25000000000", bal.Balance)
	}
	bal, err = env.client.Balance(minter, bob)
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if bal.Balance != "20000000000" {
		t.Errorf("bob balance = %q, want 20000000000", bal.Balance)
	}

	data, err := env.client.JettonData(minter)
	if err != nil {
		t.Fatalf("JettonData error: %v", err)
	}
	if data.TotalSupply != "45000000000" {
		t.Errorf("total_supply = %q, want 45000000000", data.TotalSupply)
	}

	audit, err := env.client.Audit(minter)
	if err != nil {
		t.Fatalf("Audit error: %v", err)
	}
	if !audit.Balanced || audit.Wallets != 2 {
		t.Errorf("audit = %+v", audit)
	}

	pending, err := env.client.Pending(bal.Wallet)
	if err != nil {
		t.Fatalf("Pending error: %v", err)
	}
	if len(pending.Deltas) != 0 {
		t.Errorf("pending = %+v, want none", pending.Deltas)
	}

	wd, err := env.client.WalletData(bal.Wallet)
	if err != nil {
		t.Fatalf("WalletData error: %v", err)
	}
	if wd.Balance != bal.Balance {
		t.Errorf("wallet data balance = %q, want %q", wd.Balance, bal.Balance)
	}

	meta, err := env.client.Metadata(minter)
	if err != nil {
		t.Fatalf("Metadata error: %v", err)
	}
	if meta.Symbol != "CLT" {
		t.Errorf("symbol = %q, want CLT", meta.Symbol)
	}
	tokens, err := env.client.Tokens()
	if err != nil {
		t.Fatalf("Tokens error: %v", err)
	}
	if len(tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(tokens))
	}
}

func TestClient_Discover(t *testing.T) {
	env := setupTestEnv(t)
	minter := env.deploy(t)
	owner := testAddr(0x0c)

	take, err := env.client.Discover(env.admin, minter, owner, true, "0.1")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	want, err := env.client.WalletAddress(minter, owner)
	if err != nil {
		t.Fatalf("WalletAddress error: %v", err)
	}
	wantAddr, err := jetton.ParseAddress(want.Wallet)
	if err != nil {
		t.Fatalf("parse wallet: %v", err)
	}
	if !jetton.SameAddress(take.Wallet, wantAddr) {
		t.Errorf("wallet = %s, want %s", take.Wallet, want.Wallet)
	}
	if take.Owner == nil {
		t.Error("owner should be included")
	}

	// Below the discovery fee the base minter refuses.
	if _, err := env.client.Discover(env.admin, minter, owner, false, "0.015"); err == nil {
		t.Error("expected discovery to be rejected")
	}
}

func TestEncodeDecodeBody(t *testing.T) {
	body, err := EncodeBody(&jetton.Excesses{QueryID: 9})
	if err != nil {
		t.Fatalf("EncodeBody error: %v", err)
	}
	msg, err := DecodeBody(body)
	if err != nil {
		t.Fatalf("DecodeBody error: %v", err)
	}
	ex, ok := msg.(*jetton.Excesses)
	if !ok || ex.QueryID != 9 {
		t.Errorf("decoded = %#v", msg)
	}
}

func TestNextQueryID_Unique(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		id := nextQueryID()
		if seen[id] {
			t.Fatalf("duplicate query id %d", id)
		}
		seen[id] = true
	}
}

func TestClient_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.client.JettonData(env.admin)
	if err == nil {
		t.Fatal("expected error for a plain account")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeNotFound {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeNotFound)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // nothing listens on port 1
	client.SetRetry(2, time.Millisecond)

	_, err := client.GetInfo()
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	var raw json.RawMessage
	err := env.client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"tx_count":7},"id":1}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL)
	client.SetRetry(3, time.Millisecond)
	info, err := client.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo error: %v", err)
	}
	if info.TxCount != 7 {
		t.Errorf("tx_count = %d, want 7", info.TxCount)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestClient_DoesNotRetryRPCErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32001,"message":"rejected"},"id":1}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL)
	client.SetRetry(5, time.Millisecond)
	if _, err := client.Fund(testAddr(1), "1"); err == nil {
		t.Fatal("expected rpc error")
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestClient_AdminHandover(t *testing.T) {
	env := setupTestEnv(t)
	minter := env.deploy(t)
	next := testAddr(0xa2)
	if _, err := env.client.Fund(next, "1"); err != nil {
		t.Fatalf("fund: %v", err)
	}

	res, err := env.client.ChangeAdmin(env.admin, minter, next, "0.05")
	requireSettled(t, res, err)
	res, err = env.client.ClaimAdmin(next, minter, "0.05")
	requireSettled(t, res, err)
	res, err = env.client.CloseMinting(next, minter, "0.05")
	requireSettled(t, res, err)

	data, err := env.client.JettonData(minter)
	if err != nil {
		t.Fatalf("JettonData error: %v", err)
	}
	admin, err := jetton.ParseAddress(data.Admin)
	if err != nil {
		t.Fatalf("parse admin: %v", err)
	}
	want, _ := jetton.ParseAddress(next)
	if !jetton.SameAddress(admin, want) {
		t.Errorf("admin = %s, want %s", data.Admin, next)
	}
	if data.Mintable {
		t.Error("minting should be closed")
	}

	// The old admin lost its rights.
	res, err = env.client.CloseMinting(env.admin, minter, "0.05")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Failed == 0 || res.Transactions[0].ExitCode != jetton.ExitCode(jetton.VariantBase, jetton.ReasonNotAdmin) {
		t.Errorf("transactions = %+v, want not-admin abort", res.Transactions)
	}
}
