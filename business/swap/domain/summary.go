package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dexflow/swapengine/internal/asset"
)

// summaryPrecision is the number of fractional digits shown in summaries.
const summaryPrecision = 6

// BuildSummary renders the human-readable description recorded alongside a
// submitted swap, e.g. "Swap 1.5 WETH for 2745.1 USDC". When the recipient
// differs from the sending account, a shortened recipient is appended.
func BuildSummary(q *Quote, srcSymbol, destSymbol string, account, recipient common.Address) string {
	in := asset.ToDisplayRounded(q.SrcAmount, q.SrcDecimals, summaryPrecision)
	out := asset.ToDisplayRounded(q.DestAmount, q.DestDecimals, summaryPrecision)

	base := fmt.Sprintf("Swap %s %s for %s %s", in, srcSymbol, out, destSymbol)
	if recipient == account || recipient == (common.Address{}) {
		return base
	}
	return fmt.Sprintf("%s to %s", base, ShortenAddress(recipient))
}

// ShortenAddress renders an address as 0x1234...abcd.
func ShortenAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
