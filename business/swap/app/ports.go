// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/asset"
)

// RateQuery describes a quote request for a token pair.
type RateQuery struct {
	SrcToken  *asset.Token
	DestToken *asset.Token
	Amount    *big.Int // raw units of the side's fixed leg
	Side      domain.Side
	Account   common.Address
}

// BuildRequest carries everything needed to turn a quote into calldata.
// SrcAmount and DestAmount already have the slippage tolerance applied:
// for SELL, DestAmount is the minimum acceptable output; for BUY,
// SrcAmount is the maximum acceptable input.
type BuildRequest struct {
	Quote      *domain.Quote
	SrcAmount  *big.Int
	DestAmount *big.Int
	Account    common.Address
	Recipient  common.Address // zero means the account itself
}

// TxPayload is an unsigned transaction ready for the wallet.
type TxPayload struct {
	To       common.Address
	From     common.Address
	Data     []byte
	Value    *big.Int
	GasPrice *big.Int
	GasLimit uint64
	ChainID  uint64
}

// RateProvider is the aggregator port: price discovery and calldata building.
type RateProvider interface {
	// FetchRate returns the current best route for the query.
	FetchRate(ctx context.Context, q RateQuery) (*domain.Quote, error)

	// BuildTransaction turns a quote into an unsigned transaction payload.
	BuildTransaction(ctx context.Context, req BuildRequest) (*TxPayload, error)
}

// TxHandle is a submitted transaction: its hash plus a way to wait for
// the receipt.
type TxHandle interface {
	Hash() common.Hash
	// Wait blocks until the transaction is mined or the context ends.
	Wait(ctx context.Context) (*types.Receipt, error)
}

// Wallet signs and broadcasts transactions for a single account.
type Wallet interface {
	Address() common.Address
	SendTransaction(ctx context.Context, payload *TxPayload) (TxHandle, error)
}

// TokenApprover reads and grants ERC-20 allowances.
type TokenApprover interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (TxHandle, error)
}

// RecipientResolver turns user input (hex address, name) into an address.
type RecipientResolver interface {
	Resolve(ctx context.Context, input string) (common.Address, error)
}

// WalletErrCodeUserRejected is the EIP-1193 code for a user-rejected request.
const WalletErrCodeUserRejected = 4001

// WalletError is a provider-style wallet failure with a numeric code.
type WalletError struct {
	Code    int
	Message string
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// IsUserRejection reports whether the error is the user declining to sign.
func IsUserRejection(err error) bool {
	var we *WalletError
	return errors.As(err, &we) && we.Code == WalletErrCodeUserRejected
}
