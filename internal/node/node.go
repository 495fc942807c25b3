// Package node provides a reusable jetton ledger node that can be embedded
// in any binary (daemon, tests, tools).
package node

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
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

// auditInterval is how often the background audit checks every minter.
const auditInterval = time.Minute

// Node is a fully-initialized jetton ledger node.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	db       storage.DB
	ch       *chain.Chain
	registry *contract.Registry
	index    *token.Index

	// RPC
	rpcServer *rpc.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, storage, chain, contracts, token index, RPC) but does NOT start
// background goroutines. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" && !cfg.Ledger.InMemory {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "jetton.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	variant, err := jetton.ParseVariant(cfg.Ledger.Variant)
	if err != nil {
		return nil, fmt.Errorf("ledger variant: %w", err)
	}
	policy, err := contract.PolicyFromConfig(cfg.Ledger.DiscoveryFee)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("variant", variant.String()).
		Str("discovery_fee", policy.String()).
		Bool("in_memory", cfg.Ledger.InMemory).
		Msg("Starting Jetton Ledger Node")

	// ── 2. Open storage ─────────────────────────────────────────────
	var db storage.DB
	if cfg.Ledger.InMemory {
		db = storage.NewMemory()
		logger.Warn().Msg("Ledger state is kept in memory only")
	} else {
		bdb, err := storage.NewBadger(cfg.LedgerDir())
		if err != nil {
			return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
		}
		db = bdb
		logger.Info().Str("path", cfg.LedgerDir()).Msg("Database opened")
	}

	// ── 3. Chain ────────────────────────────────────────────────────
	ch, err := chain.New(storage.NewPrefixDB(db, []byte("ledger/")), config.DefaultParams())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create chain: %w", err)
	}
	ch.SetMaxSteps(cfg.Ledger.MaxSteps)
	ch.SetLogger(klog.Chain)

	state := ch.State()
	if state.IsGenesis() {
		logger.Info().Msg("Ledger initialized empty")
	} else {
		logger.Info().
			Uint64("next_lt", state.NextLT).
			Uint64("tx_count", state.TxCount).
			Int("queued", ch.QueueLen()).
			Msg("Ledger resumed from database")
	}

	// ── 4. Contracts ────────────────────────────────────────────────
	registry, err := contract.Register(ch, contract.Options{
		Discovery: policy,
		CacheSize: cfg.Ledger.AddressCacheSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register contracts: %w", err)
	}

	// ── 5. Token metadata index ─────────────────────────────────────
	index := token.NewIndex(ch, token.NewStore(storage.NewPrefixDB(db, []byte("token/"))))
	indexed, err := index.Rebuild()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("rebuild token index: %w", err)
	}
	logger.Info().Int("minters", indexed).Msg("Token index ready")

	// ── 6. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		rpcServer = rpc.New(rpcAddr, ch, cfg.RPC)
		rpcServer.SetTokenIndex(index)
		rpcServer.SetDefaultVariant(variant)
		if err := rpcServer.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("start RPC at %s: %w", rpcAddr, err)
		}
		logger.Info().Str("addr", rpcServer.Addr()).Msg("RPC server started")
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Node{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		ch:        ch,
		registry:  registry,
		index:     index,
		rpcServer: rpcServer,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start drains messages left in flight by a previous run and launches the
// background audit loop.
func (n *Node) Start() error {
	if queued := n.ch.QueueLen(); queued > 0 {
		n.logger.Info().Int("queued", queued).Msg("Delivering messages left in flight")
		trace, err := n.ch.Run(n.ctx)
		n.index.Observe(trace)
		if err != nil {
			return fmt.Errorf("drain queue: %w", err)
		}
		n.logger.Info().Int("txs", len(trace)).Int("failed", len(trace.Failed())).Msg("Queue drained")
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.runAuditLoop(auditInterval)
	}()

	state := n.ch.State()
	n.logger.Info().
		Uint64("next_lt", state.NextLT).
		Uint64("tx_count", state.TxCount).
		Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Chain returns the ledger runtime.
func (n *Node) Chain() *chain.Chain {
	return n.ch
}

// Registry returns the registered contract implementations.
func (n *Node) Registry() *contract.Registry {
	return n.registry
}

// TokenIndex returns the metadata index.
func (n *Node) TokenIndex() *token.Index {
	return n.index
}

// ── Audit ───────────────────────────────────────────────────────────────

func (n *Node) runAuditLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			if _, err := n.AuditAll(); err != nil {
				n.logger.Warn().Err(err).Msg("Audit failed")
			}
		}
	}
}

// AuditAll checks conservation for every minter on the ledger and returns
// the reports. Imbalances found while nothing is in flight are logged as
// errors.
func (n *Node) AuditAll() ([]*contract.AuditReport, error) {
	var minters []*address.Address
	err := n.ch.ForEachAccount(func(acct *chain.Account) error {
		if !acct.IsContract() {
			return nil
		}
		if kind, _, err := jetton.ParseCode(acct.Code); err == nil && kind == jetton.KindMinter {
			minters = append(minters, acct.Address)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reports := make([]*contract.AuditReport, 0, len(minters))
	for _, m := range minters {
		r, err := contract.Audit(n.ch, m)
		if errors.Is(err, contract.ErrNotMinter) {
			continue
		}
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
		if !r.Balanced && r.Queued == 0 && r.Pending == 0 {
			n.logger.Error().
				Str("minter", m.String()).
				Str("supply", r.TotalSupply.Dec()).
				Str("wallet_sum", r.WalletSum.Dec()).
				Msg("Supply conservation violated")
		}
	}
	n.logger.Debug().Int("minters", len(reports)).Msg("Audit complete")
	return reports, nil
}
