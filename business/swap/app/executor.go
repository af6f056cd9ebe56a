package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/logger"
)

const executorTracerName = "swap.executor"

// ExecutorConfig holds trade execution policy.
type ExecutorConfig struct {
	SlippageBps int64
	ExpertMode  bool
}

// Confirmation is the review snapshot produced by RequestSwap. The quote it
// carries is frozen: ConfirmSwap validates it against the live rate before
// submitting.
type Confirmation struct {
	Quote       *domain.Quote
	MinReceived *big.Int // SELL: least acceptable output
	MaxSold     *big.Int // BUY: most acceptable input
	ImpactBps   int64
	Severity    int
	Summary     string
	Recipient   common.Address
	Approval    domain.ApprovalState
}

// Executor drives a swap through its lifecycle: capture a quote for review,
// re-validate it at submission, broadcast, then track the receipt. Only one
// execution runs at a time.
type Executor struct {
	provider  RateProvider
	wallet    Wallet
	poller    *RatePoller
	tracker   *TxTracker
	approvals *ApprovalCoordinator
	resolver  RecipientResolver
	log       logger.LoggerInterface
	tracer    trace.Tracer
	cfg       ExecutorConfig

	mu        sync.Mutex
	state     domain.ExecutionState
	trade     *domain.Trade
	confirmed *Confirmation
	txHash    *common.Hash
	lastErr   error
}

// NewExecutor wires an executor. Slippage is validated up front so a
// misconfigured tolerance fails at startup, not at submit time.
func NewExecutor(
	provider RateProvider,
	wallet Wallet,
	poller *RatePoller,
	tracker *TxTracker,
	approvals *ApprovalCoordinator,
	resolver RecipientResolver,
	cfg ExecutorConfig,
	log logger.LoggerInterface,
) (*Executor, error) {
	tolerance, err := domain.BasisPointsToPercent(cfg.SlippageBps)
	if err != nil {
		return nil, err
	}
	log.Info(context.Background(), "executor configured",
		"slippage", tolerance.String(),
		"expert_mode", cfg.ExpertMode)
	return &Executor{
		provider:  provider,
		wallet:    wallet,
		poller:    poller,
		tracker:   tracker,
		approvals: approvals,
		resolver:  resolver,
		log:       log,
		tracer:    otel.Tracer(executorTracerName),
		cfg:       cfg,
		state:     domain.StateIdle,
	}, nil
}

// State returns the current execution state.
func (e *Executor) State() domain.ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError returns the error that ended the last execution attempt.
func (e *Executor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// TxHash returns the hash of the in-flight or last submitted transaction.
func (e *Executor) TxHash() (common.Hash, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.txHash == nil {
		return common.Hash{}, false
	}
	return *e.txHash, true
}

// SetTrade replaces the trade intent and restarts quote polling for it.
// Any captured confirmation is invalidated. Rejected mid-signature.
func (e *Executor) SetTrade(trade *domain.Trade) error {
	if trade != nil {
		if err := trade.Validate(); err != nil {
			return err
		}
	}

	e.mu.Lock()
	if e.state == domain.StateSubmitting {
		e.mu.Unlock()
		return apperror.Validation(apperror.CodeInvalidState, "cannot change trade while submitting")
	}
	e.trade = trade
	e.confirmed = nil
	e.lastErr = nil
	// Drop the hash so a receipt from the replaced session cannot finalize
	// this one. The tracker keeps following the old transaction.
	e.txHash = nil
	e.state = domain.StateIdle
	e.mu.Unlock()

	e.poller.SetTrade(trade)
	return nil
}

// RequestSwap captures the freshest quote for the current trade and returns
// it for review. The captured quote is what ConfirmSwap will execute, so a
// rate drift between review and submission is detected, never silently
// accepted.
func (e *Executor) RequestSwap(ctx context.Context, recipientInput string) (*Confirmation, error) {
	ctx, span := e.tracer.Start(ctx, "swap.request")
	defer span.End()

	e.mu.Lock()
	if e.state == domain.StateSubmitting || e.state == domain.StatePendingOnChain {
		e.mu.Unlock()
		return nil, apperror.Validation(apperror.CodeInvalidState,
			fmt.Sprintf("execution already in progress (%s)", e.state))
	}
	trade := e.trade
	e.mu.Unlock()

	if trade == nil {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, "no trade set")
	}

	recipient, err := e.resolveRecipient(ctx, recipientInput)
	if err != nil {
		return nil, err
	}

	quote, pollErr := e.poller.Latest()
	if quote == nil {
		if pollErr != nil {
			return nil, pollErr
		}
		return nil, apperror.Validation(apperror.CodeNoRoute, "no quote available yet")
	}

	impactBps := domain.ImpactBpsFromUSD(quote.SrcUSD, quote.DestUSD)
	severity := domain.ImpactSeverity(impactBps)
	if quote.MaxImpactReached && severity < domain.ImpactSeverityMax {
		severity = domain.ImpactSeverityMax
	}
	if domain.ImpactBlocksExecution(severity, e.cfg.ExpertMode) {
		err := apperror.Validation(apperror.CodePriceImpactTooHigh,
			fmt.Sprintf("price impact %d bps (severity %d)", impactBps, severity))
		span.RecordError(err)
		return nil, err
	}

	approval := domain.ApprovalUnknown
	if e.approvals != nil {
		approval, err = e.approvals.State(ctx, trade.SrcToken, e.maxInput(quote))
		if err != nil {
			e.log.Warn(ctx, "allowance read failed", "error", err)
			approval = domain.ApprovalUnknown
		}
	}

	conf := &Confirmation{
		Quote:       quote,
		MinReceived: domain.MinimumOut(quote.DestAmount, e.cfg.SlippageBps),
		MaxSold:     domain.MaximumIn(quote.SrcAmount, e.cfg.SlippageBps),
		ImpactBps:   impactBps,
		Severity:    severity,
		Summary: domain.BuildSummary(quote,
			trade.SrcToken.Symbol(), trade.DestToken.Symbol(),
			e.wallet.Address(), recipient),
		Recipient: recipient,
		Approval:  approval,
	}

	e.mu.Lock()
	e.confirmed = conf
	e.lastErr = nil
	e.txHash = nil
	e.state = domain.StateAwaitingConfirmation
	e.mu.Unlock()

	span.SetAttributes(
		attribute.String("side", string(quote.Side)),
		attribute.Int64("impact_bps", impactBps),
	)

	return conf, nil
}

// ConfirmSwap executes the captured confirmation: re-validates it against
// the live quote, checks the allowance, builds the transaction, and hands it
// to the wallet. On success the returned hash is already tracked and a
// background wait finalizes it.
func (e *Executor) ConfirmSwap(ctx context.Context) (common.Hash, error) {
	ctx, span := e.tracer.Start(ctx, "swap.confirm")
	defer span.End()

	e.mu.Lock()
	if e.state != domain.StateAwaitingConfirmation || e.confirmed == nil {
		state := e.state
		e.mu.Unlock()
		return common.Hash{}, apperror.Validation(apperror.CodeInvalidState,
			fmt.Sprintf("nothing to confirm (state %s)", state))
	}
	conf := e.confirmed
	trade := e.trade
	e.state = domain.StateSubmitting
	e.mu.Unlock()

	hash, err := e.submit(ctx, trade, conf)
	if err != nil {
		span.RecordError(err)
		e.mu.Lock()
		e.state = domain.StateFailed
		e.lastErr = err
		e.mu.Unlock()
		return common.Hash{}, err
	}

	e.mu.Lock()
	e.txHash = &hash
	e.state = domain.StatePendingOnChain
	e.mu.Unlock()

	span.SetAttributes(attribute.String("tx", hash.Hex()))

	return hash, nil
}

// ExecuteSwap is RequestSwap plus ConfirmSwap in one call, for expert mode
// where no review step is shown.
func (e *Executor) ExecuteSwap(ctx context.Context, recipientInput string) (common.Hash, error) {
	if !e.cfg.ExpertMode {
		return common.Hash{}, apperror.Validation(apperror.CodeInvalidState,
			"direct execution requires expert mode")
	}
	if _, err := e.RequestSwap(ctx, recipientInput); err != nil {
		return common.Hash{}, err
	}
	return e.ConfirmSwap(ctx)
}

// Dismiss closes the review or result view. The typed input is cleared only
// when a transaction was actually submitted, so a declined or failed attempt
// leaves the form intact for retry.
func (e *Executor) Dismiss() (clearedInput bool) {
	e.mu.Lock()
	if e.state == domain.StateSubmitting {
		e.mu.Unlock()
		return false
	}
	cleared := e.txHash != nil
	e.confirmed = nil
	e.lastErr = nil
	e.txHash = nil
	if cleared {
		e.trade = nil
	}
	e.state = domain.StateIdle
	e.mu.Unlock()

	if cleared {
		e.poller.SetTrade(nil)
	}
	return cleared
}

// submit performs the staleness check, allowance check, build and broadcast.
func (e *Executor) submit(ctx context.Context, trade *domain.Trade, conf *Confirmation) (common.Hash, error) {
	latest, _ := e.poller.Latest()
	if err := e.checkStale(conf, latest); err != nil {
		return common.Hash{}, err
	}

	if e.approvals != nil && !trade.SrcToken.IsNative() {
		state, err := e.approvals.State(ctx, trade.SrcToken, e.maxInput(conf.Quote))
		if err != nil {
			return common.Hash{}, err
		}
		switch state {
		case domain.ApprovalApproved, domain.ApprovalNotRequired:
		case domain.ApprovalPending:
			return common.Hash{}, apperror.Validation(apperror.CodeInsufficientAllowance,
				"approval still pending")
		default:
			return common.Hash{}, apperror.Validation(apperror.CodeInsufficientAllowance,
				fmt.Sprintf("allowance below required input for %s", trade.SrcToken.Symbol()))
		}
	}

	srcBound, destBound := e.slippageBounds(conf)

	payload, err := e.provider.BuildTransaction(ctx, BuildRequest{
		Quote:      latest,
		SrcAmount:  srcBound,
		DestAmount: destBound,
		Account:    e.wallet.Address(),
		Recipient:  conf.Recipient,
	})
	if err != nil {
		return common.Hash{}, err
	}

	handle, err := e.wallet.SendTransaction(ctx, payload)
	if err != nil {
		if IsUserRejection(err) {
			return common.Hash{}, apperror.New(apperror.CodeUserRejected, apperror.WithCause(err))
		}
		return common.Hash{}, apperror.External(apperror.CodeSubmissionFailed, "broadcast", err)
	}

	hash := handle.Hash()
	e.tracker.Add(hash, e.wallet.Address(), conf.Summary)

	e.log.Info(ctx, "swap submitted", "tx", hash.Hex(), "summary", conf.Summary)

	go e.awaitReceipt(hash, handle)

	return hash, nil
}

// checkStale verifies the confirmed quote still holds against the live one.
// The tolerance band is the user's slippage: a live rate inside the band is
// fine, one outside it means the review screen showed a price that no longer
// exists.
func (e *Executor) checkStale(conf *Confirmation, latest *domain.Quote) error {
	if latest == nil || !conf.Quote.SamePair(latest) {
		return apperror.New(apperror.CodeStaleQuote)
	}

	if conf.Quote.Side == domain.SideBuy {
		// Live input cost rose above the confirmed maximum.
		if latest.SrcAmount.Cmp(conf.MaxSold) > 0 {
			return apperror.New(apperror.CodeStaleQuote)
		}
		return nil
	}

	// Live output fell below the confirmed minimum.
	if conf.MinReceived.Cmp(latest.DestAmount) > 0 {
		return apperror.New(apperror.CodeStaleQuote)
	}
	return nil
}

// slippageBounds returns the amounts sent to the transaction builder with
// the tolerance applied to the quoted leg only.
func (e *Executor) slippageBounds(conf *Confirmation) (src, dest *big.Int) {
	if conf.Quote.Side == domain.SideBuy {
		return conf.MaxSold, conf.Quote.DestAmount
	}
	return conf.Quote.SrcAmount, conf.MinReceived
}

// maxInput is the worst-case input the allowance must cover.
func (e *Executor) maxInput(q *domain.Quote) *big.Int {
	if q.Side == domain.SideBuy {
		return domain.MaximumIn(q.SrcAmount, e.cfg.SlippageBps)
	}
	return q.SrcAmount
}

func (e *Executor) resolveRecipient(ctx context.Context, input string) (common.Address, error) {
	if input == "" {
		return e.wallet.Address(), nil
	}
	if e.resolver == nil {
		if !common.IsHexAddress(input) {
			return common.Address{}, apperror.Validation(apperror.CodeInvalidRecipient, input)
		}
		return common.HexToAddress(input), nil
	}
	addr, err := e.resolver.Resolve(ctx, input)
	if err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// awaitReceipt blocks on the receipt and finalizes both the tracker record
// and, if this execution is still the active one, the executor state. Runs
// detached from the request context: a dismissed view must not abandon a
// broadcast transaction.
func (e *Executor) awaitReceipt(hash common.Hash, handle TxHandle) {
	ctx := context.Background()

	receipt, err := handle.Wait(ctx)
	if err != nil {
		e.log.Error(ctx, "receipt wait failed", "tx", hash.Hex(), "error", err)
		e.tracker.MarkUnknown(hash)
		e.finishExecution(hash, domain.StateFailed,
			apperror.External(apperror.CodeReceiptNotFound, hash.Hex(), err))
		return
	}

	e.tracker.Finalize(hash, receipt)

	if receipt.Status == types.ReceiptStatusSuccessful {
		e.log.Info(ctx, "swap confirmed", "tx", hash.Hex())
		e.finishExecution(hash, domain.StateSucceeded, nil)
		return
	}

	e.log.Warn(ctx, "swap reverted", "tx", hash.Hex())
	e.finishExecution(hash, domain.StateFailed,
		apperror.Validation(apperror.CodeSubmissionFailed,
			fmt.Sprintf("transaction %s reverted", hash.Hex())))
}

// finishExecution moves the state machine to a terminal state, but only if
// the given hash is still the active execution (the user may have dismissed
// and started over).
func (e *Executor) finishExecution(hash common.Hash, state domain.ExecutionState, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.txHash == nil || *e.txHash != hash {
		return
	}
	e.state = state
	e.lastErr = err
}
