package ethereum

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/logger"
)

// Ensure NodeWallet implements Wallet.
var _ app.Wallet = (*NodeWallet)(nil)

// SignerFunc signs a transaction for the wallet's account. An interactive
// signer may return a WalletError with the EIP-1193 rejection code.
type SignerFunc func(ctx context.Context, tx *types.Transaction) (*types.Transaction, error)

// NewKeyedSigner signs locally with a private key.
func NewKeyedSigner(key *ecdsa.PrivateKey, chainID *big.Int) SignerFunc {
	signer := types.LatestSignerForChainID(chainID)
	return func(_ context.Context, tx *types.Transaction) (*types.Transaction, error) {
		return types.SignTx(tx, signer, key)
	}
}

// KeyedSignerAddress derives the account address for a keyed signer.
func KeyedSignerAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// NodeWallet fills in gas and nonce, signs through the configured signer,
// and broadcasts via the node.
type NodeWallet struct {
	client  *ethclient.Client
	address common.Address
	sign    SignerFunc
	logger  logger.LoggerInterface
}

// NewNodeWallet creates a wallet for one account.
func NewNodeWallet(client *ethclient.Client, address common.Address, sign SignerFunc, log logger.LoggerInterface) *NodeWallet {
	return &NodeWallet{
		client:  client,
		address: address,
		sign:    sign,
		logger:  log,
	}
}

// Address returns the wallet's account.
func (w *NodeWallet) Address() common.Address {
	return w.address
}

// SendTransaction completes, signs and broadcasts the payload. Signer
// errors pass through untouched so rejection codes survive; node errors are
// wrapped as RPC failures.
func (w *NodeWallet) SendTransaction(ctx context.Context, payload *app.TxPayload) (app.TxHandle, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, apperror.External(apperror.CodeEthereumRPCError, "pending nonce", err)
	}

	gasPrice := payload.GasPrice
	if gasPrice == nil || gasPrice.Sign() == 0 {
		gasPrice, err = w.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, apperror.External(apperror.CodeEthereumRPCError, "suggest gas price", err)
		}
	}

	value := payload.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := payload.GasLimit
	if gasLimit == 0 {
		to := payload.To
		gasLimit, err = w.client.EstimateGas(ctx, goethereum.CallMsg{
			From:     w.address,
			To:       &to,
			Value:    value,
			GasPrice: gasPrice,
			Data:     payload.Data,
		})
		if err != nil {
			return nil, apperror.External(apperror.CodeEthereumRPCError, "estimate gas", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &payload.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     payload.Data,
	})

	signed, err := w.sign(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return nil, apperror.External(apperror.CodeEthereumRPCError, "broadcast", err)
	}

	w.logger.Info(ctx, "transaction broadcast",
		"tx", signed.Hash().Hex(),
		"to", payload.To.Hex(),
		"nonce", nonce)

	return &minedHandle{client: w.client, tx: signed}, nil
}

// minedHandle waits for receipts with bind.WaitMined.
type minedHandle struct {
	client *ethclient.Client
	tx     *types.Transaction
}

func (h *minedHandle) Hash() common.Hash {
	return h.tx.Hash()
}

func (h *minedHandle) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, h.client, h.tx)
	if err != nil {
		return nil, apperror.External(apperror.CodeReceiptNotFound, h.tx.Hash().Hex(), err)
	}
	return receipt, nil
}
