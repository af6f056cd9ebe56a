package ethereum

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/internal/apperror"
)

// Ensure HexResolver implements RecipientResolver.
var _ app.RecipientResolver = (*HexResolver)(nil)

// HexResolver accepts plain hex addresses. Name resolution (ENS and
// friends) would slot in here as another RecipientResolver.
type HexResolver struct{}

// NewHexResolver creates the resolver.
func NewHexResolver() *HexResolver {
	return &HexResolver{}
}

// Resolve validates and normalizes a recipient address.
func (r *HexResolver) Resolve(_ context.Context, input string) (common.Address, error) {
	trimmed := strings.TrimSpace(input)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, apperror.Validation(apperror.CodeInvalidRecipient, input)
	}
	return common.HexToAddress(trimmed), nil
}
