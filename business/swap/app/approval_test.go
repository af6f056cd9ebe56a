package app

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
)

var testApprovalSpender = common.HexToAddress("0x216B4B4Ba9F3e719726886d34a177484278Bfcae")

type fakeApprover struct {
	mu         sync.Mutex
	allowances map[common.Address]*big.Int
	approveErr error
	handle     *fakeHandle
}

func newFakeApprover() *fakeApprover {
	return &fakeApprover{allowances: make(map[common.Address]*big.Int)}
}

func (f *fakeApprover) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.allowances[token]; ok {
		return new(big.Int).Set(a), nil
	}
	return big.NewInt(0), nil
}

func (f *fakeApprover) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (TxHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	f.handle = newFakeHandle(common.HexToHash("0xaa"))
	return f.handle, nil
}

func TestApprovalCoordinator_NativeNeedsNoApproval(t *testing.T) {
	c := NewApprovalCoordinator(newFakeApprover(), testAccount, testApprovalSpender, testLogger())

	state, err := c.State(context.Background(), asset.MATIC, big.NewInt(1e18))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != domain.ApprovalNotRequired {
		t.Errorf("state = %s, want NOT_REQUIRED", state)
	}
}

func TestApprovalCoordinator_AllowanceStates(t *testing.T) {
	approver := newFakeApprover()
	c := NewApprovalCoordinator(approver, testAccount, testApprovalSpender, testLogger())

	required := big.NewInt(1e18)

	state, err := c.State(context.Background(), asset.WETH, required)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != domain.ApprovalRequired {
		t.Errorf("zero allowance: state = %s, want NOT_APPROVED", state)
	}

	approver.mu.Lock()
	approver.allowances[asset.WETH.Address()] = big.NewInt(2e18)
	approver.mu.Unlock()

	state, _ = c.State(context.Background(), asset.WETH, required)
	if state != domain.ApprovalApproved {
		t.Errorf("sufficient allowance: state = %s, want APPROVED", state)
	}
}

func TestApprovalCoordinator_ApproveFlow(t *testing.T) {
	approver := newFakeApprover()
	c := NewApprovalCoordinator(approver, testAccount, testApprovalSpender, testLogger())

	done := make(chan error, 1)
	go func() {
		done <- c.Approve(context.Background(), asset.WETH, big.NewInt(1e18))
	}()

	// While the approve tx is unmined the state must latch to PENDING even
	// though the on-chain allowance still reads zero.
	deadline := time.Now().Add(2 * time.Second)
	for {
		state, _ := c.State(context.Background(), asset.WETH, big.NewInt(1e18))
		if state == domain.ApprovalPending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("state never reached PENDING")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for {
		approver.mu.Lock()
		h := approver.handle
		approver.mu.Unlock()
		if h != nil {
			h.receipt <- &types.Receipt{Status: types.ReceiptStatusSuccessful}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("approve was never submitted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := <-done; err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Latch released after mining.
	state, _ := c.State(context.Background(), asset.WETH, big.NewInt(1e18))
	if state == domain.ApprovalPending {
		t.Error("PENDING latch should release after the receipt")
	}
}

func TestApprovalCoordinator_UserRejection(t *testing.T) {
	approver := newFakeApprover()
	approver.approveErr = &WalletError{Code: WalletErrCodeUserRejected, Message: "denied"}
	c := NewApprovalCoordinator(approver, testAccount, testApprovalSpender, testLogger())

	err := c.Approve(context.Background(), asset.WETH, big.NewInt(1e18))
	if !apperror.IsCode(err, apperror.CodeUserRejected) {
		t.Fatalf("err = %v, want USER_REJECTED", err)
	}
}

func TestApprovalCoordinator_RevertedApprove(t *testing.T) {
	approver := newFakeApprover()
	c := NewApprovalCoordinator(approver, testAccount, testApprovalSpender, testLogger())

	done := make(chan error, 1)
	go func() {
		done <- c.Approve(context.Background(), asset.WETH, big.NewInt(1e18))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		approver.mu.Lock()
		h := approver.handle
		approver.mu.Unlock()
		if h != nil {
			h.receipt <- &types.Receipt{Status: types.ReceiptStatusFailed}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("approve was never submitted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := <-done; !apperror.IsCode(err, apperror.CodeApprovalFailed) {
		t.Fatalf("err = %v, want APPROVAL_FAILED", err)
	}
}
