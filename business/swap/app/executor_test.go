package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
	"github.com/dexflow/swapengine/internal/logger"
)

var (
	testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSpender = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testTxHash  = common.HexToHash("0xabcdef0000000000000000000000000000000000000000000000000000000001")
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

// fakeProvider scripts quotes and records build requests.
type fakeProvider struct {
	mu       sync.Mutex
	quote    *domain.Quote
	fetchErr error
	fetchFn  func() // invoked mid-fetch, before the result is returned
	built    []BuildRequest
}

func (f *fakeProvider) setQuote(q *domain.Quote) {
	f.mu.Lock()
	f.quote = q
	f.fetchErr = nil
	f.mu.Unlock()
}

func (f *fakeProvider) FetchRate(ctx context.Context, q RateQuery) (*domain.Quote, error) {
	f.mu.Lock()
	fn := f.fetchFn
	quote, err := f.quote, f.fetchErr
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
	return quote, err
}

func (f *fakeProvider) BuildTransaction(ctx context.Context, req BuildRequest) (*TxPayload, error) {
	f.mu.Lock()
	f.built = append(f.built, req)
	f.mu.Unlock()
	return &TxPayload{To: common.HexToAddress("0x2222222222222222222222222222222222222222"), From: req.Account, Value: big.NewInt(0)}, nil
}

// fakeHandle resolves its receipt (or a wait error) through channels so
// tests control timing.
type fakeHandle struct {
	hash    common.Hash
	receipt chan *types.Receipt
	waitErr chan error
}

func newFakeHandle(hash common.Hash) *fakeHandle {
	return &fakeHandle{
		hash:    hash,
		receipt: make(chan *types.Receipt, 1),
		waitErr: make(chan error, 1),
	}
}

func (h *fakeHandle) Hash() common.Hash { return h.hash }

func (h *fakeHandle) Wait(ctx context.Context) (*types.Receipt, error) {
	select {
	case r := <-h.receipt:
		return r, nil
	case err := <-h.waitErr:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fakeWallet signs everything unless sendErr is set.
type fakeWallet struct {
	mu      sync.Mutex
	sendErr error
	handles []*fakeHandle
}

func (w *fakeWallet) Address() common.Address { return testAccount }

func (w *fakeWallet) SendTransaction(ctx context.Context, payload *TxPayload) (TxHandle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sendErr != nil {
		return nil, w.sendErr
	}
	h := newFakeHandle(testTxHash)
	w.handles = append(w.handles, h)
	return h, nil
}

// fakeExecApprover serves a scripted allowance and counts how often it is read.
type fakeExecApprover struct {
	mu        sync.Mutex
	allowance *big.Int
	reads     int
}

func (f *fakeExecApprover) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return new(big.Int).Set(f.allowance), nil
}

func (f *fakeExecApprover) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (TxHandle, error) {
	h := newFakeHandle(common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001"))
	h.receipt <- &types.Receipt{Status: types.ReceiptStatusSuccessful}
	f.mu.Lock()
	f.allowance = new(big.Int).Set(amount)
	f.mu.Unlock()
	return h, nil
}

func (f *fakeExecApprover) allowanceReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// sellQuote prices 2 WETH -> 200 USDC-ish units for the standard test trade.
func sellQuote(destAmount int64) *domain.Quote {
	return &domain.Quote{
		SrcToken:     asset.WETH.Address(),
		DestToken:    asset.USDC.Address(),
		SrcDecimals:  18,
		DestDecimals: 6,
		SrcAmount:    big.NewInt(2e18),
		DestAmount:   big.NewInt(destAmount),
		Side:         domain.SideSell,
		SrcUSD:       decimal.NewFromInt(200),
		DestUSD:      decimal.NewFromInt(200),
		ReceivedAt:   time.Now(),
	}
}

type testRig struct {
	provider *fakeProvider
	wallet   *fakeWallet
	poller   *RatePoller
	tracker  *TxTracker
	exec     *Executor
}

func newTestRig(t *testing.T, cfg ExecutorConfig) *testRig {
	t.Helper()

	provider := &fakeProvider{}
	wallet := &fakeWallet{}
	poller := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())
	tracker := NewTxTracker()

	exec, err := NewExecutor(provider, wallet, poller, tracker, nil, nil, cfg, testLogger())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return &testRig{provider: provider, wallet: wallet, poller: poller, tracker: tracker, exec: exec}
}

// newApprovalRig is newTestRig with a wired approval coordinator, so the
// allowance gate in front of submission is part of the flow.
func newApprovalRig(t *testing.T, cfg ExecutorConfig, approver *fakeExecApprover) *testRig {
	t.Helper()

	provider := &fakeProvider{}
	wallet := &fakeWallet{}
	poller := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())
	tracker := NewTxTracker()
	approvals := NewApprovalCoordinator(approver, testAccount, testSpender, testLogger())

	exec, err := NewExecutor(provider, wallet, poller, tracker, approvals, nil, cfg, testLogger())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return &testRig{provider: provider, wallet: wallet, poller: poller, tracker: tracker, exec: exec}
}

func (r *testRig) setTradeAndPoll(t *testing.T, q *domain.Quote) {
	t.Helper()

	trade, err := domain.NewTrade(asset.WETH, asset.USDC, big.NewInt(2e18), domain.FieldInput)
	if err != nil {
		t.Fatalf("NewTrade: %v", err)
	}
	if err := r.exec.SetTrade(&trade); err != nil {
		t.Fatalf("SetTrade: %v", err)
	}
	r.provider.setQuote(q)
	r.poller.pollOnce(context.Background())
}

func waitForState(t *testing.T, e *Executor, want domain.ExecutionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", e.State(), want)
}

func TestExecutor_SuccessfulSwap(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	conf, err := rig.exec.RequestSwap(context.Background(), "")
	if err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	// 200 USDC at 50 bps tolerance -> minimum 199 USDC.
	if conf.MinReceived.Cmp(big.NewInt(199_000000)) != 0 {
		t.Errorf("MinReceived = %s, want 199000000", conf.MinReceived)
	}
	if rig.exec.State() != domain.StateAwaitingConfirmation {
		t.Fatalf("state = %s, want AWAITING_CONFIRMATION", rig.exec.State())
	}

	hash, err := rig.exec.ConfirmSwap(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSwap: %v", err)
	}
	if hash != testTxHash {
		t.Errorf("hash = %s, want %s", hash.Hex(), testTxHash.Hex())
	}
	if rig.exec.State() != domain.StatePendingOnChain {
		t.Errorf("state = %s, want PENDING_ON_CHAIN", rig.exec.State())
	}
	if _, ok := rig.tracker.Get(hash); !ok {
		t.Error("submitted tx should be tracked")
	}

	// Deliver the receipt and watch the execution finish.
	rig.wallet.handles[0].receipt <- &types.Receipt{Status: types.ReceiptStatusSuccessful}
	waitForState(t, rig.exec, domain.StateSucceeded)

	rec, _ := rig.tracker.Get(hash)
	if !rec.Finalized() || !rec.Succeeded {
		t.Error("tracker record should be finalized as succeeded")
	}

	// Dismissing after a submitted tx clears the typed input.
	if !rig.exec.Dismiss() {
		t.Error("Dismiss should report cleared input after submission")
	}
}

func TestExecutor_StaleQuote(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}

	// Rate moves beyond the slippage band between review and submit:
	// minimum 199 but the live route now pays 198.
	rig.provider.setQuote(sellQuote(198_000000))
	rig.poller.pollOnce(context.Background())

	_, err := rig.exec.ConfirmSwap(context.Background())
	if !apperror.IsCode(err, apperror.CodeStaleQuote) {
		t.Fatalf("err = %v, want STALE_QUOTE", err)
	}
	if rig.exec.State() != domain.StateFailed {
		t.Errorf("state = %s, want FAILED", rig.exec.State())
	}
	if len(rig.tracker.All()) != 0 {
		t.Error("no tx should be tracked for a stale-quote failure")
	}
}

func TestExecutor_DriftWithinToleranceSubmits(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}

	// Drops to exactly the minimum: still submittable.
	rig.provider.setQuote(sellQuote(199_000000))
	rig.poller.pollOnce(context.Background())

	if _, err := rig.exec.ConfirmSwap(context.Background()); err != nil {
		t.Fatalf("ConfirmSwap within tolerance: %v", err)
	}
}

func TestExecutor_UserRejection(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}

	rig.wallet.sendErr = &WalletError{Code: WalletErrCodeUserRejected, Message: "User denied transaction signature"}

	_, err := rig.exec.ConfirmSwap(context.Background())
	if !apperror.IsCode(err, apperror.CodeUserRejected) {
		t.Fatalf("err = %v, want USER_REJECTED", err)
	}
	if len(rig.tracker.All()) != 0 {
		t.Error("a rejected signature must not be tracked")
	}

	// Declining keeps the typed input for retry.
	if rig.exec.Dismiss() {
		t.Error("Dismiss should not clear input when nothing was submitted")
	}
}

func TestExecutor_SubmissionFailure(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}

	rig.wallet.sendErr = &WalletError{Code: -32000, Message: "nonce too low"}

	_, err := rig.exec.ConfirmSwap(context.Background())
	if !apperror.IsCode(err, apperror.CodeSubmissionFailed) {
		t.Fatalf("err = %v, want SUBMISSION_FAILED", err)
	}
}

func TestExecutor_SingleFlight(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	if _, err := rig.exec.ConfirmSwap(context.Background()); err != nil {
		t.Fatalf("ConfirmSwap: %v", err)
	}

	// Receipt not delivered yet: a second request must be rejected.
	_, err := rig.exec.RequestSwap(context.Background(), "")
	if !apperror.IsCode(err, apperror.CodeInvalidState) {
		t.Fatalf("err = %v, want INVALID_STATE", err)
	}

	rig.wallet.handles[0].receipt <- &types.Receipt{Status: types.ReceiptStatusSuccessful}
	waitForState(t, rig.exec, domain.StateSucceeded)
}

func TestExecutor_RevertedOnChain(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	hash, err := rig.exec.ConfirmSwap(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSwap: %v", err)
	}

	rig.wallet.handles[0].receipt <- &types.Receipt{Status: types.ReceiptStatusFailed}
	waitForState(t, rig.exec, domain.StateFailed)

	rec, _ := rig.tracker.Get(hash)
	if !rec.Finalized() || rec.Succeeded {
		t.Error("reverted tx should finalize as not succeeded")
	}
}

func TestExecutor_PriceImpactBlocks(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})

	q := sellQuote(200_000000)
	q.SrcUSD = decimal.NewFromInt(1000)
	q.DestUSD = decimal.NewFromInt(800) // 20% impact, severity 4
	rig.setTradeAndPoll(t, q)

	_, err := rig.exec.RequestSwap(context.Background(), "")
	if !apperror.IsCode(err, apperror.CodePriceImpactTooHigh) {
		t.Fatalf("err = %v, want PRICE_IMPACT_TOO_HIGH", err)
	}
}

func TestExecutor_ExpertModeDirectSubmit(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50, ExpertMode: true})

	q := sellQuote(200_000000)
	q.SrcUSD = decimal.NewFromInt(1000)
	q.DestUSD = decimal.NewFromInt(800) // severity 4, but expert mode lifts the block
	rig.setTradeAndPoll(t, q)

	hash, err := rig.exec.ExecuteSwap(context.Background(), "")
	if err != nil {
		t.Fatalf("ExecuteSwap: %v", err)
	}
	if hash != testTxHash {
		t.Errorf("hash = %s, want %s", hash.Hex(), testTxHash.Hex())
	}
}

func TestExecutor_ExecuteSwapRequiresExpertMode(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	_, err := rig.exec.ExecuteSwap(context.Background(), "")
	if !apperror.IsCode(err, apperror.CodeInvalidState) {
		t.Fatalf("err = %v, want INVALID_STATE", err)
	}
}

func TestExecutor_RecipientSummary(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	recipient := "0x3333333333333333333333333333333333333333"
	conf, err := rig.exec.RequestSwap(context.Background(), recipient)
	if err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	if conf.Recipient != common.HexToAddress(recipient) {
		t.Errorf("recipient = %s", conf.Recipient.Hex())
	}
	want := "Swap 2 WETH for 200 USDC to " + domain.ShortenAddress(conf.Recipient)
	if conf.Summary != want {
		t.Errorf("summary = %q, want %q", conf.Summary, want)
	}
}

func TestExecutor_InvalidRecipient(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	_, err := rig.exec.RequestSwap(context.Background(), "not-an-address")
	if !apperror.IsCode(err, apperror.CodeInvalidRecipient) {
		t.Fatalf("err = %v, want INVALID_RECIPIENT", err)
	}
}

func TestExecutor_NoQuoteYet(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})

	trade, _ := domain.NewTrade(asset.WETH, asset.USDC, big.NewInt(1e18), domain.FieldInput)
	if err := rig.exec.SetTrade(&trade); err != nil {
		t.Fatalf("SetTrade: %v", err)
	}

	_, err := rig.exec.RequestSwap(context.Background(), "")
	if !apperror.IsCode(err, apperror.CodeNoRoute) {
		t.Fatalf("err = %v, want NO_ROUTE", err)
	}
}

func TestExecutor_SetTradeDropsPendingSession(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	hash, err := rig.exec.ConfirmSwap(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSwap: %v", err)
	}

	// A new intent while the old tx is pending starts a fresh session.
	next, err := domain.NewTrade(asset.WETH, asset.DAI, big.NewInt(1e18), domain.FieldInput)
	if err != nil {
		t.Fatalf("NewTrade: %v", err)
	}
	if err := rig.exec.SetTrade(&next); err != nil {
		t.Fatalf("SetTrade: %v", err)
	}
	if rig.exec.State() != domain.StateIdle {
		t.Fatalf("state = %s, want IDLE", rig.exec.State())
	}
	if _, ok := rig.exec.TxHash(); ok {
		t.Error("fresh session should not report the replaced trade's hash")
	}

	// The old receipt lands: the tracker finalizes it, the fresh session
	// must stay untouched.
	rig.wallet.handles[0].receipt <- &types.Receipt{Status: types.ReceiptStatusSuccessful}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rec, _ := rig.tracker.Get(hash); rec.Finalized() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := rig.tracker.Get(hash)
	if !rec.Finalized() || !rec.Succeeded {
		t.Fatal("old tx should still finalize in the tracker")
	}
	if rig.exec.State() != domain.StateIdle {
		t.Errorf("old receipt moved fresh session to %s, want IDLE", rig.exec.State())
	}
}

func TestExecutor_InsufficientAllowanceBlocksSubmit(t *testing.T) {
	approver := &fakeExecApprover{allowance: big.NewInt(1e18)} // trade needs 2e18
	rig := newApprovalRig(t, ExecutorConfig{SlippageBps: 50}, approver)
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	conf, err := rig.exec.RequestSwap(context.Background(), "")
	if err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	if conf.Approval != domain.ApprovalRequired {
		t.Errorf("approval = %s, want APPROVAL_REQUIRED", conf.Approval)
	}

	_, err = rig.exec.ConfirmSwap(context.Background())
	if !apperror.IsCode(err, apperror.CodeInsufficientAllowance) {
		t.Fatalf("err = %v, want INSUFFICIENT_ALLOWANCE", err)
	}
	if rig.exec.State() != domain.StateFailed {
		t.Errorf("state = %s, want FAILED", rig.exec.State())
	}
	if len(rig.wallet.handles) != 0 {
		t.Error("nothing must be broadcast with the allowance short")
	}
	rig.provider.mu.Lock()
	built := len(rig.provider.built)
	rig.provider.mu.Unlock()
	if built != 0 {
		t.Error("no transaction should be built with the allowance short")
	}
}

func TestExecutor_ApprovedAllowanceSubmits(t *testing.T) {
	approver := &fakeExecApprover{allowance: big.NewInt(5e18)}
	rig := newApprovalRig(t, ExecutorConfig{SlippageBps: 50}, approver)
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	conf, err := rig.exec.RequestSwap(context.Background(), "")
	if err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	if conf.Approval != domain.ApprovalApproved {
		t.Errorf("approval = %s, want APPROVED", conf.Approval)
	}

	if _, err := rig.exec.ConfirmSwap(context.Background()); err != nil {
		t.Fatalf("ConfirmSwap with sufficient allowance: %v", err)
	}
}

func TestExecutor_NativeInputSkipsAllowance(t *testing.T) {
	approver := &fakeExecApprover{allowance: big.NewInt(0)}
	rig := newApprovalRig(t, ExecutorConfig{SlippageBps: 50}, approver)

	trade, err := domain.NewTrade(asset.MATIC, asset.USDC, big.NewInt(2e18), domain.FieldInput)
	if err != nil {
		t.Fatalf("NewTrade: %v", err)
	}
	if err := rig.exec.SetTrade(&trade); err != nil {
		t.Fatalf("SetTrade: %v", err)
	}
	q := sellQuote(200_000000)
	q.SrcToken = common.Address{}
	rig.provider.setQuote(q)
	rig.poller.pollOnce(context.Background())

	conf, err := rig.exec.RequestSwap(context.Background(), "")
	if err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	if conf.Approval != domain.ApprovalNotRequired {
		t.Errorf("approval = %s, want NOT_REQUIRED", conf.Approval)
	}

	if _, err := rig.exec.ConfirmSwap(context.Background()); err != nil {
		t.Fatalf("ConfirmSwap for native input: %v", err)
	}
	if approver.allowanceReads() != 0 {
		t.Errorf("allowance read %d times for a native input, want 0", approver.allowanceReads())
	}
}

func TestExecutor_ReceiptWaitFailure(t *testing.T) {
	rig := newTestRig(t, ExecutorConfig{SlippageBps: 50})
	rig.setTradeAndPoll(t, sellQuote(200_000000))

	if _, err := rig.exec.RequestSwap(context.Background(), ""); err != nil {
		t.Fatalf("RequestSwap: %v", err)
	}
	hash, err := rig.exec.ConfirmSwap(context.Background())
	if err != nil {
		t.Fatalf("ConfirmSwap: %v", err)
	}

	rig.wallet.handles[0].waitErr <- errors.New("rpc connection lost")
	waitForState(t, rig.exec, domain.StateFailed)

	if !apperror.IsCode(rig.exec.LastError(), apperror.CodeReceiptNotFound) {
		t.Errorf("LastError = %v, want RECEIPT_NOT_FOUND", rig.exec.LastError())
	}

	rec, _ := rig.tracker.Get(hash)
	if rec.Finalized() {
		t.Error("no receipt exists, record must not report finalized")
	}
	if !rec.Unknown {
		t.Error("record should carry the unknown outcome")
	}
	if len(rig.tracker.Pending()) != 0 {
		t.Error("an unresolved tx must not sit in the pending set forever")
	}
}

func TestNewExecutor_InvalidSlippage(t *testing.T) {
	provider := &fakeProvider{}
	poller := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	_, err := NewExecutor(provider, &fakeWallet{}, poller, NewTxTracker(), nil, nil,
		ExecutorConfig{SlippageBps: -1}, testLogger())
	if !apperror.IsCode(err, apperror.CodeInvalidSlippage) {
		t.Fatalf("err = %v, want INVALID_SLIPPAGE", err)
	}
}
