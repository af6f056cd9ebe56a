package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDBase     = 8453
)

// Well-known token addresses.
var (
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	AddrWMATICPolygon = common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")
	AddrWETHPolygon   = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	AddrUSDCPolygon   = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	AddrDAIPolygon    = common.HexToAddress("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063")
)

// Well-known tokens.
var (
	ETH    = NewTokenWithName(NewNativeTokenID(ChainIDEthereum), "ETH", "Ethereum", 18)
	MATIC  = NewTokenWithName(NewNativeTokenID(ChainIDPolygon), "MATIC", "Polygon", 18)
	WMATIC = NewTokenWithName(NewTokenID(ChainIDPolygon, AddrWMATICPolygon), "WMATIC", "Wrapped Matic", 18)
	WETH   = NewTokenWithName(NewTokenID(ChainIDPolygon, AddrWETHPolygon), "WETH", "Wrapped Ether", 18)
	USDC   = NewTokenWithName(NewTokenID(ChainIDPolygon, AddrUSDCPolygon), "USDC", "USD Coin", 6)
	DAI    = NewTokenWithName(NewTokenID(ChainIDPolygon, AddrDAIPolygon), "DAI", "Dai Stablecoin", 18)
)

// DefaultRegistry returns a registry pre-populated with well-known tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []*Token{ETH, MATIC, WMATIC, WETH, USDC, DAI} {
		r.Register(t)
	}
	return r
}
