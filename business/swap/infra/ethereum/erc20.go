// Package ethereum implements the chain-facing ports: ERC-20 allowance
// management, transaction broadcast, and recipient resolution.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/circuitbreaker"
	"github.com/dexflow/swapengine/internal/logger"
)

const tracerName = "ethereum"

// erc20ABI covers the two entry points the approval flow needs.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// Ensure ERC20 implements TokenApprover.
var _ app.TokenApprover = (*ERC20)(nil)

// ERC20 reads allowances straight from the node and routes approve
// transactions through the wallet.
type ERC20 struct {
	client  *ethclient.Client
	wallet  app.Wallet
	abi     abi.ABI
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	chainID uint64
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewERC20 creates the ERC-20 adapter.
func NewERC20(client *ethclient.Client, wallet app.Wallet, chainID uint64, log logger.LoggerInterface) (*ERC20, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	return &ERC20{
		client:  client,
		wallet:  wallet,
		abi:     parsed,
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("erc20-calls")),
		chainID: chainID,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Allowance returns the amount of `token` that `spender` may move on behalf
// of `owner`.
func (e *ERC20) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	ctx, span := e.tracer.Start(ctx, "erc20.allowance",
		trace.WithAttributes(
			attribute.String("token", token.Hex()),
			attribute.String("spender", spender.Hex()),
		),
	)
	defer span.End()

	callData, err := e.abi.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to encode allowance call: %w", err)
	}

	result, err := e.cb.Execute(func() ([]byte, error) {
		return e.client.CallContract(ctx, goethereum.CallMsg{
			To:   &token,
			Data: callData,
		}, nil)
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("allowance read for %s", token.Hex())))
	}

	outputs, err := e.abi.Unpack("allowance", result)
	if err != nil || len(outputs) != 1 {
		return nil, apperror.Internal(apperror.CodeContractCallFailed,
			"failed to decode allowance result", err)
	}

	allowance, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext("allowance result is not uint256"))
	}

	return allowance, nil
}

// Approve grants `spender` an allowance of `amount` over `token` from the
// wallet's account.
func (e *ERC20) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (app.TxHandle, error) {
	ctx, span := e.tracer.Start(ctx, "erc20.approve",
		trace.WithAttributes(
			attribute.String("token", token.Hex()),
			attribute.String("spender", spender.Hex()),
			attribute.String("amount", amount.String()),
		),
	)
	defer span.End()

	callData, err := e.abi.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approve call: %w", err)
	}

	handle, err := e.wallet.SendTransaction(ctx, &app.TxPayload{
		To:      token,
		From:    e.wallet.Address(),
		Data:    callData,
		Value:   big.NewInt(0),
		ChainID: e.chainID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	e.logger.Info(ctx, "approve submitted",
		"token", token.Hex(),
		"spender", spender.Hex(),
		"tx", handle.Hash().Hex())

	return handle, nil
}
