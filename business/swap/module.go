// Package swap implements the swap bounded context: live rate polling,
// allowance coordination and trade execution against an aggregator route.
package swap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/business/swap/infra/ethereum"
	"github.com/dexflow/swapengine/business/swap/infra/paraswap"
	"github.com/dexflow/swapengine/internal/monolith"
	"github.com/dexflow/swapengine/internal/ratelimit"
)

// Module wires the swap context. Without a signing key it comes up
// quote-only: the poller runs but Executor() returns nil.
type Module struct {
	poller    *app.RatePoller
	tracker   *app.TxTracker
	approvals *app.ApprovalCoordinator
	executor  *app.Executor
}

// Startup builds the provider, poller and (when a key is configured) the
// execution stack, then starts polling.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	// Expert mode trades under the lifted ceiling; otherwise the configured
	// bps cap is passed through to the aggregator in whole percent.
	maxImpactPct := int(cfg.Swap.MaxImpactBps / 100)
	if cfg.Swap.ExpertMode {
		maxImpactPct = 100
	}

	provider, err := paraswap.NewProvider(paraswap.ProviderConfig{
		BaseURL:      cfg.Aggregator.BaseURL,
		ChainID:      cfg.Ethereum.ChainID,
		Partner:      cfg.Aggregator.Partner,
		IncludeDEXs:  cfg.Aggregator.IncludeDEXs,
		Timeout:      cfg.Aggregator.RequestTimeout,
		MaxImpactPct: maxImpactPct,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create rate provider: %w", err)
	}

	limiter := ratelimit.New(cfg.Aggregator.RequestsPerMin)

	account := common.Address{}
	var wallet *ethereum.NodeWallet
	if cfg.Ethereum.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Ethereum.PrivateKey, "0x"))
		if err != nil {
			return fmt.Errorf("invalid signing key: %w", err)
		}
		account = ethereum.KeyedSignerAddress(key)
		chainID := new(big.Int).SetUint64(cfg.Ethereum.ChainID)
		wallet = ethereum.NewNodeWallet(mono.EthClient(), account,
			ethereum.NewKeyedSigner(key, chainID), log)
	}

	m.poller = app.NewRatePoller(provider, limiter, account, cfg.Aggregator.PollInterval, log)
	m.tracker = app.NewTxTracker()

	if wallet != nil {
		erc20, err := ethereum.NewERC20(mono.EthClient(), wallet, cfg.Ethereum.ChainID, log)
		if err != nil {
			return fmt.Errorf("failed to create erc20 adapter: %w", err)
		}

		m.approvals = app.NewApprovalCoordinator(erc20, account, cfg.Swap.SpenderAddressHex(), log)

		m.executor, err = app.NewExecutor(
			provider,
			wallet,
			m.poller,
			m.tracker,
			m.approvals,
			ethereum.NewHexResolver(),
			app.ExecutorConfig{
				SlippageBps: cfg.Swap.SlippageBps,
				ExpertMode:  cfg.Swap.ExpertMode,
			},
			log,
		)
		if err != nil {
			return err
		}
	}

	m.poller.Start(ctx)

	log.Info(ctx, "swap module started",
		"chain", cfg.Ethereum.ChainID,
		"account", account.Hex(),
		"quote_only", wallet == nil)

	return nil
}

// Shutdown stops the poller. In-flight receipt waits finish on their own.
func (m *Module) Shutdown(_ context.Context) error {
	if m.poller != nil {
		m.poller.Stop()
	}
	return nil
}

// Poller returns the rate poller.
func (m *Module) Poller() *app.RatePoller {
	return m.poller
}

// Tracker returns the transaction tracker.
func (m *Module) Tracker() *app.TxTracker {
	return m.tracker
}

// Approvals returns the approval coordinator, or nil in quote-only mode.
func (m *Module) Approvals() *app.ApprovalCoordinator {
	return m.approvals
}

// Executor returns the trade executor, or nil in quote-only mode.
func (m *Module) Executor() *app.Executor {
	return m.executor
}
