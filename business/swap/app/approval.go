package app

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
	"github.com/dexflow/swapengine/internal/logger"
)

// ApprovalCoordinator manages the ERC-20 allowance the spender contract
// holds over the trade's input token. While an approve transaction is in
// flight the state reads PENDING regardless of the on-chain allowance, so
// callers never re-prompt for an approval that is already mined-but-unread.
type ApprovalCoordinator struct {
	approver TokenApprover
	owner    common.Address
	spender  common.Address
	log      logger.LoggerInterface

	mu      sync.Mutex
	pending map[asset.TokenID]struct{}
}

// NewApprovalCoordinator creates a coordinator for one owner/spender pair.
func NewApprovalCoordinator(approver TokenApprover, owner, spender common.Address, log logger.LoggerInterface) *ApprovalCoordinator {
	return &ApprovalCoordinator{
		approver: approver,
		owner:    owner,
		spender:  spender,
		log:      log,
		pending:  make(map[asset.TokenID]struct{}),
	}
}

// State reads the approval state for spending `required` raw units of the
// token. Native coins never need approval.
func (c *ApprovalCoordinator) State(ctx context.Context, token *asset.Token, required *big.Int) (domain.ApprovalState, error) {
	if token == nil || required == nil {
		return domain.ApprovalUnknown, apperror.Validation(apperror.CodeInvalidInput, "token and amount required")
	}
	if token.IsNative() {
		return domain.ApprovalNotRequired, nil
	}

	c.mu.Lock()
	_, inFlight := c.pending[token.ID()]
	c.mu.Unlock()
	if inFlight {
		return domain.ApprovalPending, nil
	}

	allowance, err := c.approver.Allowance(ctx, token.Address(), c.owner, c.spender)
	if err != nil {
		return domain.ApprovalUnknown, err
	}

	if allowance.Cmp(required) >= 0 {
		return domain.ApprovalApproved, nil
	}
	return domain.ApprovalRequired, nil
}

// Approve grants the spender an allowance of exactly `amount` and blocks
// until the transaction is mined. A wallet rejection surfaces as
// USER_REJECTED; any other failure as APPROVAL_FAILED.
func (c *ApprovalCoordinator) Approve(ctx context.Context, token *asset.Token, amount *big.Int) error {
	if token == nil || token.IsNative() {
		return nil
	}

	c.mu.Lock()
	if _, inFlight := c.pending[token.ID()]; inFlight {
		c.mu.Unlock()
		return apperror.Validation(apperror.CodeInvalidState,
			fmt.Sprintf("approval already pending for %s", token.Symbol()))
	}
	c.pending[token.ID()] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, token.ID())
		c.mu.Unlock()
	}()

	c.log.Info(ctx, "submitting approval",
		"token", token.Symbol(),
		"spender", c.spender.Hex(),
		"amount", amount.String())

	handle, err := c.approver.Approve(ctx, token.Address(), c.spender, amount)
	if err != nil {
		if IsUserRejection(err) {
			return apperror.New(apperror.CodeUserRejected, apperror.WithCause(err))
		}
		return apperror.External(apperror.CodeApprovalFailed, "approve submission", err)
	}

	receipt, err := handle.Wait(ctx)
	if err != nil {
		return apperror.External(apperror.CodeApprovalFailed, "waiting for approve receipt", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return apperror.New(apperror.CodeApprovalFailed,
			apperror.WithContext(fmt.Sprintf("approve tx %s reverted", handle.Hash().Hex())))
	}

	c.log.Info(ctx, "approval confirmed", "token", token.Symbol(), "tx", handle.Hash().Hex())

	return nil
}
