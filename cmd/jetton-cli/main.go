// jetton-cli is a command-line client for interacting with a jettond node.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/xssnick/tonutils-go/tlb"

	"github.com/Klingon-tech/klingnet-jetton/internal/rpc"
	"github.com/Klingon-tech/klingnet-jetton/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-jetton/internal/token"
	"github.com/Klingon-tech/klingnet-jetton/pkg/jetton"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := "http://127.0.0.1:8547"
	asJSON := false

	// Scan for --rpc and --json before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--json":
			asJSON = true
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]
	out := printer{json: asJSON}

	switch cmd {
	case "info":
		cmdInfo(client, out)
	case "account":
		cmdAccount(client, out, cmdArgs)
	case "fund":
		cmdFund(client, out, cmdArgs)
	case "deploy":
		cmdDeploy(client, out, cmdArgs)
	case "send":
		cmdSend(client, out, cmdArgs)
	case "mint":
		cmdMint(client, out, cmdArgs)
	case "transfer":
		cmdTransfer(client, out, cmdArgs)
	case "burn":
		cmdBurn(client, out, cmdArgs)
	case "discover":
		cmdDiscover(client, out, cmdArgs)
	case "admin":
		cmdAdmin(client, out, cmdArgs)
	case "data":
		cmdData(client, out, cmdArgs)
	case "wallet":
		cmdWallet(client, out, cmdArgs)
	case "balance":
		cmdBalance(client, out, cmdArgs)
	case "pending":
		cmdPending(client, out, cmdArgs)
	case "audit":
		cmdAudit(client, out, cmdArgs)
	case "token":
		cmdToken(client, out, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: jetton-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8547)
  --json              Print raw JSON results

Ledger:
  info                            Show ledger counters and fees
  account <address>               Show an account
  fund <address> <ton>            Credit TON to an account
  deploy --admin <a> [--variant base|governance] [--uri <u> | --name <n> --symbol <S>]
                                  Deploy a minter
  send --from <a> --to <a> --value <ton> [--body <hex>] [--bounce]
                                  Submit a raw message and print its trace

Tokens:
  mint --admin <a> --minter <m> --to <owner> --amount <n> [--value <ton>]
                                  Mint tokens
  transfer --from <owner> --minter <m> --to <owner> --amount <n> [--forward <ton>]
                                  Transfer tokens
  burn --from <owner> --minter <m> --amount <n>
                                  Burn tokens
  discover --from <a> --minter <m> --owner <o> [--include]
                                  Ask the minter for a wallet address

  admin change --admin <a> --minter <m> --new <a>
  admin claim --from <a> --minter <m>
  admin close --admin <a> --minter <m>
  admin content --admin <a> --minter <m> --uri <u>
  admin claim-ton --admin <a> --minter <m> --to <a> [--amount <ton>]
  admin lock --admin <a> --minter <m> --owner <o> --status <0-3>

Queries:
  data <minter>                   Show minter state
  wallet <minter> <owner>         Show the wallet of an owner
  balance <minter> <owner>        Show the token balance of an owner
  pending <address>               Show unsettled deltas of a contract
  audit <minter>                  Check supply conservation
  token list                      List indexed tokens
  token info <minter>             Show token metadata
`)
}

// ── ledger ──────────────────────────────────────────────────────────────

func cmdInfo(client *rpcclient.Client, out printer) {
	info, err := client.GetInfo()
	if err != nil {
		fatal("ledger_getInfo: %v", err)
	}
	if out.raw(info) {
		return
	}
	fmt.Printf("Next LT:     %d\n", info.NextLT)
	fmt.Printf("Tx count:    %d\n", info.TxCount)
	fmt.Printf("Queued:      %d\n", info.Queued)
	fmt.Printf("Fees:        %s TON\n", info.Fees)
	fmt.Printf("Commitment:  %s\n", info.Commitment)
	fmt.Println()
	fmt.Printf("Compute fee:         %s\n", info.Params.ComputeFee)
	fmt.Printf("Forward fee:         %s\n", info.Params.ForwardFee)
	fmt.Printf("Gas consumption:     %s\n", info.Params.GasConsumption)
	fmt.Printf("Min TON for storage: %s\n", info.Params.MinTonsForStorage)
	fmt.Printf("Provide address gas: %s\n", info.Params.ProvideAddressGas)
}

func cmdAccount(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli account <address>")
	}
	acct, err := client.GetAccount(args[0])
	if err != nil {
		fatal("ledger_getAccount: %v", err)
	}
	printAccount(out, acct)
}

func cmdFund(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 2 {
		fatal("Usage: jetton-cli fund <address> <ton>")
	}
	acct, err := client.Fund(args[0], args[1])
	if err != nil {
		fatal("ledger_fund: %v", err)
	}
	printAccount(out, acct)
}

func printAccount(out printer, acct *rpc.AccountResult) {
	if out.raw(acct) {
		return
	}
	fmt.Printf("Address: %s\n", acct.Address)
	fmt.Printf("Balance: %s TON\n", acct.Balance)
	fmt.Printf("Kind:    %s\n", acct.Kind)
	if acct.Variant != "" {
		fmt.Printf("Variant: %s\n", acct.Variant)
	}
	if acct.CodeHash != "" {
		fmt.Printf("Code:    %s\n", acct.CodeHash)
	}
}

func cmdDeploy(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	admin := fs.String("admin", "", "Admin address")
	variant := fs.String("variant", "", "Contract variant: base or governance (default: node setting)")
	value := fs.String("value", "", "TON to attach (default: 1)")
	uri := fs.String("uri", "", "Off-chain metadata URI")
	name := fs.String("name", "", "Token name (on-chain metadata)")
	symbol := fs.String("symbol", "", "Token symbol (on-chain metadata)")
	description := fs.String("description", "", "Token description")
	image := fs.String("image", "", "Token image URL")
	decimals := fs.Int("decimals", -1, "Decimal places (default: 9)")
	fs.Parse(args)

	if *admin == "" || (*uri == "" && *name == "" && *symbol == "") {
		fatal("Usage: jetton-cli deploy --admin <a> [--variant v] (--uri <u> | --name <n> --symbol <S>)")
	}

	p := rpc.DeployMinterParam{
		Admin:       *admin,
		Variant:     *variant,
		Value:       *value,
		URI:         *uri,
		Name:        *name,
		Symbol:      *symbol,
		Description: *description,
		Image:       *image,
	}
	if *decimals >= 0 {
		if *decimals > 255 {
			fatal("invalid decimals: %d", *decimals)
		}
		d := uint8(*decimals)
		p.Decimals = &d
	}

	res, err := client.DeployMinter(p)
	if err != nil {
		fatal("ledger_deployMinter: %v", err)
	}
	if out.raw(res) {
		return
	}
	fmt.Printf("Minter:  %s\n", res.Address)
	fmt.Printf("Variant: %s\n", res.Variant)
	if res.Metadata != nil {
		printMetadata(res.Metadata)
	}
}

func cmdSend(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	from := fs.String("from", "", "Sender address")
	to := fs.String("to", "", "Destination address")
	value := fs.String("value", "", "TON to attach")
	body := fs.String("body", "", "Message body as hex BOC")
	bounce := fs.Bool("bounce", true, "Bounce on failure")
	fs.Parse(args)

	if *from == "" || *to == "" || *value == "" {
		fatal("Usage: jetton-cli send --from <a> --to <a> --value <ton> [--body <hex>] [--bounce]")
	}
	res, err := client.Send(rpc.SendParam{From: *from, To: *to, Value: *value, Bounce: *bounce, Body: *body})
	printTrace(out, res, err)
}

// ── tokens ──────────────────────────────────────────────────────────────

func cmdMint(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	admin := fs.String("admin", "", "Admin address")
	minter := fs.String("minter", "", "Minter address")
	to := fs.String("to", "", "Receiver address")
	amount := fs.String("amount", "", "Amount in tokens")
	decimals := fs.Int("decimals", jetton.Decimals, "Token decimals")
	value := fs.String("value", "0.1", "TON attached to the mint request")
	tonAmount := fs.String("ton", "0.05", "TON carried to the receiver wallet")
	forward := fs.String("forward", "", "TON forwarded with the transfer notification")
	fs.Parse(args)

	if *admin == "" || *minter == "" || *to == "" || *amount == "" {
		fatal("Usage: jetton-cli mint --admin <a> --minter <m> --to <owner> --amount <n>")
	}
	req := rpcclient.MintRequest{
		Admin:     *admin,
		Minter:    *minter,
		Receiver:  *to,
		Amount:    parseTokens(*amount, *decimals),
		TonAmount: parseTON(*tonAmount).Nano(),
		Value:     *value,
	}
	if *forward != "" {
		req.ForwardTon = parseTON(*forward).Nano()
	}
	res, err := client.Mint(req)
	printTrace(out, res, err)
}

func cmdTransfer(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	from := fs.String("from", "", "Owner address")
	minter := fs.String("minter", "", "Minter address")
	to := fs.String("to", "", "Destination owner address")
	amount := fs.String("amount", "", "Amount in tokens")
	decimals := fs.Int("decimals", jetton.Decimals, "Token decimals")
	value := fs.String("value", "0.1", "TON attached to the transfer")
	forward := fs.String("forward", "", "TON forwarded to the destination owner")
	fs.Parse(args)

	if *from == "" || *minter == "" || *to == "" || *amount == "" {
		fatal("Usage: jetton-cli transfer --from <owner> --minter <m> --to <owner> --amount <n>")
	}
	req := rpcclient.TransferRequest{
		Owner:       *from,
		Minter:      *minter,
		Destination: *to,
		Amount:      parseTokens(*amount, *decimals),
		Value:       *value,
	}
	if *forward != "" {
		req.ForwardTon = parseTON(*forward).Nano()
	}
	res, err := client.Transfer(req)
	printTrace(out, res, err)
}

func cmdBurn(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	from := fs.String("from", "", "Owner address")
	minter := fs.String("minter", "", "Minter address")
	amount := fs.String("amount", "", "Amount in tokens")
	decimals := fs.Int("decimals", jetton.Decimals, "Token decimals")
	value := fs.String("value", "0.1", "TON attached to the burn")
	fs.Parse(args)

	if *from == "" || *minter == "" || *amount == "" {
		fatal("Usage: jetton-cli burn --from <owner> --minter <m> --amount <n>")
	}
	res, err := client.Burn(*from, *minter, parseTokens(*amount, *decimals), *value)
	printTrace(out, res, err)
}

func cmdDiscover(client *rpcclient.Client, out printer, args []string) {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	from := fs.String("from", "", "Requesting address")
	minter := fs.String("minter", "", "Minter address")
	owner := fs.String("owner", "", "Owner to look up")
	include := fs.Bool("include", false, "Ask the minter to echo the owner")
	value := fs.String("value", "0.1", "TON attached to the request")
	fs.Parse(args)

	if *from == "" || *minter == "" || *owner == "" {
		fatal("Usage: jetton-cli discover --from <a> --minter <m> --owner <o> [--include]")
	}
	take, err := client.Discover(*from, *minter, *owner, *include, *value)
	if err != nil {
		fatal("discover: %v", err)
	}
	res := struct {
		QueryID uint64 `json:"query_id"`
		Wallet  string `json:"wallet"`
		Owner   string `json:"owner,omitempty"`
	}{QueryID: take.QueryID, Wallet: "none"}
	if !jetton.IsNone(take.Wallet) {
		res.Wallet = take.Wallet.String()
	}
	if take.Owner != nil {
		res.Owner = take.Owner.String()
	}
	if out.raw(res) {
		return
	}
	fmt.Printf("Wallet: %s\n", res.Wallet)
	if res.Owner != "" {
		fmt.Printf("Owner:  %s\n", res.Owner)
	}
}

func cmdAdmin(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli admin <change|claim|close|content|claim-ton|lock> [flags]")
	}

	fs := flag.NewFlagSet("admin "+args[0], flag.ExitOnError)
	admin := fs.String("admin", "", "Admin address")
	from := fs.String("from", "", "Claiming address")
	minter := fs.String("minter", "", "Minter address")
	newAdmin := fs.String("new", "", "Proposed admin address")
	uri := fs.String("uri", "", "New off-chain metadata URI")
	to := fs.String("to", "", "Receiver of claimed TON")
	amount := fs.String("amount", "", "TON to claim (default: all above reserve)")
	owner := fs.String("owner", "", "Wallet owner")
	status := fs.Uint("status", 0, "Lock status: 0 unlocked, 1 out-locked, 2 in-locked, 3 locked")
	value := fs.String("value", "0.05", "TON attached to the request")
	fs.Parse(args[1:])

	if *minter == "" {
		fatal("--minter is required")
	}
	require := func(name, v string) {
		if v == "" {
			fatal("--%s is required", name)
		}
	}

	var res *rpc.SendResult
	var err error
	switch args[0] {
	case "change":
		require("admin", *admin)
		require("new", *newAdmin)
		res, err = client.ChangeAdmin(*admin, *minter, *newAdmin, *value)
	case "claim":
		require("from", *from)
		res, err = client.ClaimAdmin(*from, *minter, *value)
	case "close":
		require("admin", *admin)
		res, err = client.CloseMinting(*admin, *minter, *value)
	case "content":
		require("admin", *admin)
		require("uri", *uri)
		content, cerr := token.OffchainContent(*uri)
		if cerr != nil {
			fatal("content: %v", cerr)
		}
		res, err = client.ChangeContent(*admin, *minter, content, *value)
	case "claim-ton":
		require("admin", *admin)
		require("to", *to)
		res, err = client.ClaimTon(*admin, *minter, *to, *amount, *value)
	case "lock":
		require("admin", *admin)
		require("owner", *owner)
		if *status > uint(jetton.StatusFullLocked) {
			fatal("invalid status: %d", *status)
		}
		res, err = client.SetStatus(*admin, *minter, *owner, uint8(*status), *value)
	default:
		fatal("Unknown admin command: %s", args[0])
	}
	printTrace(out, res, err)
}

// ── queries ─────────────────────────────────────────────────────────────

func cmdData(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli data <minter>")
	}
	data, err := client.JettonData(args[0])
	if err != nil {
		fatal("jetton_getData: %v", err)
	}
	if out.raw(data) {
		return
	}
	decimals := jetton.Decimals
	if data.Metadata != nil {
		decimals = int(data.Metadata.Decimals)
	}
	fmt.Printf("Minter:       %s\n", data.Address)
	fmt.Printf("Variant:      %s\n", data.Variant)
	fmt.Printf("Total supply: %s\n", formatTokens(data.TotalSupply, decimals))
	fmt.Printf("Mintable:     %t\n", data.Mintable)
	fmt.Printf("Admin:        %s\n", data.Admin)
	if data.PendingAdmin != "" {
		fmt.Printf("Next admin:   %s\n", data.PendingAdmin)
	}
	fmt.Printf("Wallet code:  %s\n", data.WalletCodeHash)
	if data.Metadata != nil {
		printMetadata(data.Metadata)
	}
}

func cmdWallet(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 2 {
		fatal("Usage: jetton-cli wallet <minter> <owner>")
	}
	addr, err := client.WalletAddress(args[0], args[1])
	if err != nil {
		fatal("jetton_getWalletAddress: %v", err)
	}
	if !addr.Deployed {
		if out.raw(addr) {
			return
		}
		fmt.Printf("Wallet:   %s\n", addr.Wallet)
		fmt.Println("Deployed: false")
		return
	}
	data, err := client.WalletData(addr.Wallet)
	if err != nil {
		fatal("jetton_getWalletData: %v", err)
	}
	if out.raw(data) {
		return
	}
	fmt.Printf("Wallet:  %s\n", data.Address)
	fmt.Printf("Variant: %s\n", data.Variant)
	fmt.Printf("Owner:   %s\n", data.Owner)
	fmt.Printf("Minter:  %s\n", data.Minter)
	fmt.Printf("Balance: %s\n", formatTokens(data.Balance, jetton.Decimals))
	fmt.Printf("Status:  %s\n", statusName(data.Status))
}

func cmdBalance(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 2 {
		fatal("Usage: jetton-cli balance <minter> <owner>")
	}
	bal, err := client.Balance(args[0], args[1])
	if err != nil {
		fatal("jetton_getBalance: %v", err)
	}
	if out.raw(bal) {
		return
	}
	fmt.Printf("Wallet:  %s\n", bal.Wallet)
	fmt.Printf("Balance: %s\n", formatTokens(bal.Balance, jetton.Decimals))
}

func cmdPending(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli pending <address>")
	}
	res, err := client.Pending(args[0])
	if err != nil {
		fatal("jetton_getPending: %v", err)
	}
	if out.raw(res) {
		return
	}
	if len(res.Deltas) == 0 {
		fmt.Println("No pending deltas.")
		return
	}
	fmt.Printf("Pending: %d\n\n", len(res.Deltas))
	for _, d := range res.Deltas {
		fmt.Printf("  lt=%d %s query=%d amount=%s peer=%s\n", d.LT, d.Op, d.QueryID, d.Amount, d.Peer)
	}
}

func cmdAudit(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli audit <minter>")
	}
	res, err := client.Audit(args[0])
	if err != nil {
		fatal("jetton_audit: %v", err)
	}
	if out.raw(res) {
		return
	}
	fmt.Printf("Minter:       %s\n", res.Minter)
	fmt.Printf("Total supply: %s\n", res.TotalSupply)
	fmt.Printf("Wallet sum:   %s\n", res.WalletSum)
	fmt.Printf("Wallets:      %d\n", res.Wallets)
	fmt.Printf("Pending:      %d\n", res.Pending)
	fmt.Printf("Queued:       %d\n", res.Queued)
	fmt.Printf("Balanced:     %t\n", res.Balanced)
	if !res.Balanced {
		os.Exit(2)
	}
}

func cmdToken(client *rpcclient.Client, out printer, args []string) {
	if len(args) < 1 {
		fatal("Usage: jetton-cli token <list|info> [minter]")
	}

	switch args[0] {
	case "list":
		tokens, err := client.Tokens()
		if err != nil {
			fatal("token_list: %v", err)
		}
		if out.raw(tokens) {
			return
		}
		if len(tokens) == 0 {
			fmt.Println("No tokens found.")
			return
		}
		fmt.Printf("Tokens: %d\n\n", len(tokens))
		for i, t := range tokens {
			fmt.Printf("  [%d] %s (%s)\n", i, t.Name, t.Symbol)
			fmt.Printf("      Minter:   %s\n", t.Minter)
			fmt.Printf("      Decimals: %d\n", t.Decimals)
			if t.URI != "" {
				fmt.Printf("      URI:      %s\n", t.URI)
			}
			fmt.Println()
		}
	case "info":
		if len(args) < 2 {
			fatal("Usage: jetton-cli token info <minter>")
		}
		meta, err := client.Metadata(args[1])
		if err != nil {
			fatal("token_getMetadata: %v", err)
		}
		if out.raw(meta) {
			return
		}
		fmt.Printf("Minter:   %s\n", meta.Minter)
		printMetadata(meta)
	default:
		fatal("Unknown token command: %s\nUsage: jetton-cli token <list|info> [minter]", args[0])
	}
}

// ── helpers ─────────────────────────────────────────────────────────────

type printer struct {
	json bool
}

// raw prints v as indented JSON when --json was given.
func (p printer) raw(v interface{}) bool {
	if !p.json {
		return false
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode: %v", err)
	}
	return true
}

func printTrace(out printer, res *rpc.SendResult, err error) {
	if err != nil {
		fatal("ledger_send: %v", err)
	}
	if out.raw(res) {
		return
	}
	fmt.Printf("Trace: %d transactions, %d failed\n\n", len(res.Transactions), res.Failed)
	for _, tx := range res.Transactions {
		status := "ok"
		if !tx.Success {
			status = fmt.Sprintf("exit %d", tx.ExitCode)
		}
		flags := ""
		if tx.Bounced {
			flags += " bounced"
		}
		if tx.Deployed {
			flags += " deployed"
		}
		fmt.Printf("  lt=%-6d %-24s %s -> %s  %s TON  [%s]%s\n",
			tx.LT, tx.Op, shortAddr(tx.Src), shortAddr(tx.Dst), tx.Value, status, flags)
		if tx.Error != "" {
			fmt.Printf("           %s\n", tx.Error)
		}
	}
	if res.Failed > 0 {
		os.Exit(2)
	}
}

func printMetadata(m *token.Metadata) {
	if m.Name != "" {
		fmt.Printf("Name:     %s\n", m.Name)
	}
	if m.Symbol != "" {
		fmt.Printf("Symbol:   %s\n", m.Symbol)
	}
	fmt.Printf("Decimals: %d\n", m.Decimals)
	if m.Description != "" {
		fmt.Printf("About:    %s\n", m.Description)
	}
	if m.Image != "" {
		fmt.Printf("Image:    %s\n", m.Image)
	}
	if m.URI != "" {
		fmt.Printf("URI:      %s\n", m.URI)
	}
}

func parseTokens(s string, decimals int) *uint256.Int {
	x, err := jetton.ParseAmount(s, decimals)
	if err != nil {
		fatal("invalid amount %q: %v", s, err)
	}
	return x
}

func parseTON(s string) tlb.Coins {
	c, err := tlb.FromTON(s)
	if err != nil {
		fatal("invalid TON amount %q: %v", s, err)
	}
	return c
}

// formatTokens renders raw units with decimals, falling back to the raw
// string when it does not parse.
func formatTokens(raw string, decimals int) string {
	x, err := uint256.FromDecimal(raw)
	if err != nil {
		return raw
	}
	return jetton.FormatAmount(x, decimals)
}

func statusName(s uint8) string {
	switch s {
	case jetton.StatusUnlocked:
		return "unlocked"
	case jetton.StatusOutLocked:
		return "out-locked"
	case jetton.StatusInLocked:
		return "in-locked"
	case jetton.StatusFullLocked:
		return "locked"
	}
	return fmt.Sprintf("unknown (%d)", s)
}

func shortAddr(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:6] + "…" + s[len(s)-6:]
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
