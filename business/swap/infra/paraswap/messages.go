package paraswap

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
)

// priceResponse wraps the aggregator's /prices answer. The route is kept as
// raw JSON because it is echoed back verbatim when building the transaction.
type priceResponse struct {
	PriceRoute json.RawMessage `json:"priceRoute"`
}

// priceRoute is the subset of the route we interpret ourselves.
type priceRoute struct {
	SrcToken     string `json:"srcToken"`
	DestToken    string `json:"destToken"`
	SrcDecimals  uint8  `json:"srcDecimals"`
	DestDecimals uint8  `json:"destDecimals"`
	SrcAmount    string `json:"srcAmount"`
	DestAmount   string `json:"destAmount"`
	SrcUSD       string `json:"srcUSD"`
	DestUSD      string `json:"destUSD"`
	Side         string `json:"side"`
}

// apiError is the aggregator's error envelope.
type apiError struct {
	Error string `json:"error"`
}

// buildBody is the POST /transactions request.
type buildBody struct {
	SrcToken     string          `json:"srcToken"`
	DestToken    string          `json:"destToken"`
	SrcDecimals  uint8           `json:"srcDecimals"`
	DestDecimals uint8           `json:"destDecimals"`
	SrcAmount    string          `json:"srcAmount"`
	DestAmount   string          `json:"destAmount"`
	PriceRoute   json.RawMessage `json:"priceRoute"`
	UserAddress  string          `json:"userAddress"`
	Receiver     string          `json:"receiver,omitempty"`
	Partner      string          `json:"partner,omitempty"`
}

// buildResponse is the POST /transactions answer: an unsigned transaction.
type buildResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Data     string `json:"data"`
	GasPrice string `json:"gasPrice"`
	Gas      uint64 `json:"gas"`
	ChainID  uint64 `json:"chainId"`
}

const maxImpactErrorMarker = "ESTIMATED_LOSS_GREATER_THAN_MAX_IMPACT"

// mapAPIError turns an aggregator error message into the app taxonomy.
func mapAPIError(msg string) error {
	switch {
	case strings.Contains(msg, maxImpactErrorMarker):
		return apperror.Validation(apperror.CodePriceImpactTooHigh, msg)
	case strings.Contains(strings.ToLower(msg), "no routes"):
		return apperror.Validation(apperror.CodeNoRoute, msg)
	default:
		return apperror.New(apperror.CodeAggregatorError, apperror.WithContext(msg))
	}
}

// toQuote maps a raw price route into the domain quote.
func toQuote(raw json.RawMessage) (*domain.Quote, error) {
	var route priceRoute
	if err := json.Unmarshal(raw, &route); err != nil {
		return nil, apperror.Internal(apperror.CodeAggregatorError, "malformed price route", err)
	}

	srcAmount, err := parseAmount(route.SrcAmount, "srcAmount")
	if err != nil {
		return nil, err
	}
	destAmount, err := parseAmount(route.DestAmount, "destAmount")
	if err != nil {
		return nil, err
	}

	side := domain.SideSell
	if route.Side == string(domain.SideBuy) {
		side = domain.SideBuy
	}

	return &domain.Quote{
		SrcToken:     common.HexToAddress(route.SrcToken),
		DestToken:    common.HexToAddress(route.DestToken),
		SrcDecimals:  route.SrcDecimals,
		DestDecimals: route.DestDecimals,
		SrcAmount:    srcAmount,
		DestAmount:   destAmount,
		Side:         side,
		SrcUSD:       parseUSD(route.SrcUSD),
		DestUSD:      parseUSD(route.DestUSD),
		PriceRoute:   raw,
		ReceivedAt:   time.Now(),
	}, nil
}

func parseAmount(s, field string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, apperror.Validation(apperror.CodeAggregatorError,
			fmt.Sprintf("invalid %s %q", field, s))
	}
	return v, nil
}

// parseUSD is tolerant: the aggregator omits USD valuations for unlisted
// tokens, and a missing valuation just disables the impact check.
func parseUSD(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
