// Package paraswap implements the RateProvider port against the Paraswap v5
// aggregator API.
package paraswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/circuitbreaker"
	"github.com/dexflow/swapengine/internal/httpclient"
	"github.com/dexflow/swapengine/internal/logger"
)

const (
	tracerName = "paraswap"
	meterName  = "paraswap"

	// DefaultBaseURL is the public Paraswap v5 API.
	DefaultBaseURL = "https://apiv5.paraswap.io"

	pricesEndpoint       = "/prices"
	transactionsEndpoint = "/transactions"

	httpTimeout = 10 * time.Second

	// liftedMaxImpactPct re-prices with the impact ceiling effectively off;
	// the caller decides whether such a route is executable.
	liftedMaxImpactPct = 100
)

// Ensure Provider implements RateProvider.
var _ app.RateProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the Paraswap provider.
type ProviderConfig struct {
	BaseURL     string
	ChainID     uint64
	Partner     string
	IncludeDEXs string // comma-separated allowlist, empty = all
	Timeout     time.Duration

	// MaxImpactPct caps the price impact the aggregator will route under,
	// in whole percent. Zero defers to the aggregator's own ceiling.
	MaxImpactPct int
}

// DefaultProviderConfig returns sensible defaults for Polygon.
func DefaultProviderConfig(chainID uint64) ProviderConfig {
	return ProviderConfig{
		BaseURL: DefaultBaseURL,
		ChainID: chainID,
		Timeout: httpTimeout,
	}
}

// providerMetrics holds OTEL metric instruments.
type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	buildsTotal  metric.Int64Counter
}

// Provider implements RateProvider against the Paraswap HTTP API.
type Provider struct {
	client httpclient.Client
	config ProviderConfig
	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a new Paraswap provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("paraswap"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	p := &Provider{
		client: client,
		config: cfg,
		logger: log,
		cb:     circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("paraswap-api")),
		tracer: tracer,
	}

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.quotesTotal, err = meter.Int64Counter(
		"paraswap_quotes_total",
		metric.WithDescription("Total price requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"paraswap_quote_latency_ms",
		metric.WithDescription("Price request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"paraswap_quote_errors_total",
		metric.WithDescription("Total price request errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.buildsTotal, err = meter.Int64Counter(
		"paraswap_tx_builds_total",
		metric.WithDescription("Total transaction build requests"),
	)
	if err != nil {
		return err
	}

	return nil
}

// FetchRate queries /prices for the best route. When the aggregator refuses
// to price under its impact ceiling, the query is retried with the ceiling
// lifted and the quote is flagged so callers can block or warn.
func (p *Provider) FetchRate(ctx context.Context, q app.RateQuery) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "paraswap.fetch_rate",
		trace.WithAttributes(
			attribute.String("src", q.SrcToken.Symbol()),
			attribute.String("dest", q.DestToken.Symbol()),
			attribute.String("side", string(q.Side)),
		),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	quote, err := p.fetchRate(ctx, q, p.config.MaxImpactPct)
	if apperror.IsCode(err, apperror.CodePriceImpactTooHigh) {
		span.AddEvent("max_impact_reached")
		quote, err = p.fetchRate(ctx, q, liftedMaxImpactPct)
		if quote != nil {
			quote.MaxImpactReached = true
		}
	}

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("src_amount", quote.SrcAmount.String()),
		attribute.String("dest_amount", quote.DestAmount.String()),
		attribute.Bool("max_impact_reached", quote.MaxImpactReached),
	)

	p.logger.Debug(ctx, "rate fetched",
		"src", q.SrcToken.Symbol(),
		"dest", q.DestToken.Symbol(),
		"side", string(q.Side),
		"dest_amount", quote.DestAmount.String())

	return quote, nil
}

func (p *Provider) fetchRate(ctx context.Context, q app.RateQuery, maxImpactPct int) (*domain.Quote, error) {
	req := p.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "prices"),
			httpclient.NewLabel("side", string(q.Side)),
		),
	).
		SetQueryParam("srcToken", tokenParam(q.SrcToken.Address())).
		SetQueryParam("destToken", tokenParam(q.DestToken.Address())).
		SetQueryParam("srcDecimals", strconv.Itoa(int(q.SrcToken.Decimals()))).
		SetQueryParam("destDecimals", strconv.Itoa(int(q.DestToken.Decimals()))).
		SetQueryParam("amount", q.Amount.String()).
		SetQueryParam("side", string(q.Side)).
		SetQueryParam("network", strconv.FormatUint(p.config.ChainID, 10)).
		SetQueryParam("userAddress", q.Account.Hex())

	if p.config.Partner != "" {
		req.SetQueryParam("partner", p.config.Partner)
	}
	if p.config.IncludeDEXs != "" {
		req.SetQueryParam("includeDEXS", p.config.IncludeDEXs)
	}
	if maxImpactPct > 0 {
		req.SetQueryParam("maxImpact", strconv.Itoa(maxImpactPct))
	}

	resp, err := p.doWithBreaker(func() (*httpclient.Response, error) {
		return req.Get(ctx, pricesEndpoint)
	})
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}

	var priced priceResponse
	if err := json.Unmarshal(resp.Body(), &priced); err != nil || len(priced.PriceRoute) == 0 {
		return nil, apperror.Internal(apperror.CodeAggregatorError, "malformed prices response", err)
	}

	return toQuote(priced.PriceRoute)
}

// BuildTransaction posts the route to /transactions and returns the
// unsigned payload. ignoreChecks skips the aggregator's balance and
// allowance validation; those are enforced locally before submission.
func (p *Provider) BuildTransaction(ctx context.Context, req app.BuildRequest) (*app.TxPayload, error) {
	ctx, span := p.tracer.Start(ctx, "paraswap.build_transaction")
	defer span.End()

	p.metrics.buildsTotal.Add(ctx, 1)

	body := buildBody{
		SrcToken:     tokenParam(req.Quote.SrcToken),
		DestToken:    tokenParam(req.Quote.DestToken),
		SrcDecimals:  req.Quote.SrcDecimals,
		DestDecimals: req.Quote.DestDecimals,
		SrcAmount:    req.SrcAmount.String(),
		DestAmount:   req.DestAmount.String(),
		PriceRoute:   req.Quote.PriceRoute,
		UserAddress:  req.Account.Hex(),
		Partner:      p.config.Partner,
	}
	if req.Recipient != (common.Address{}) && req.Recipient != req.Account {
		body.Receiver = req.Recipient.Hex()
	}

	httpReq := p.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "transactions")),
	).
		SetQueryParam("ignoreChecks", "true").
		SetBody(body)

	path := fmt.Sprintf("%s/%d", transactionsEndpoint, p.config.ChainID)

	resp, err := p.doWithBreaker(func() (*httpclient.Response, error) {
		return httpReq.Post(ctx, path)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.IsError() {
		err := decodeAPIError(resp)
		span.RecordError(err)
		return nil, err
	}

	var built buildResponse
	if err := json.Unmarshal(resp.Body(), &built); err != nil {
		return nil, apperror.Internal(apperror.CodeAggregatorError, "malformed transactions response", err)
	}

	payload, err := toPayload(&built, p.config.ChainID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("to", payload.To.Hex()))

	return payload, nil
}

// doWithBreaker runs the HTTP call through the circuit breaker. Only
// transport failures and 5xx responses count as breaker failures: client
// errors like NO_ROUTE are the aggregator working as intended.
func (p *Provider) doWithBreaker(fn func() (*httpclient.Response, error)) (*httpclient.Response, error) {
	resp, err := p.cb.Execute(func() (*httpclient.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("aggregator returned HTTP %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if resp != nil {
			return resp, apperror.External(apperror.CodeAggregatorError, "aggregator request", err)
		}
		if apperror.IsCode(err, apperror.CodeCircuitOpen) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodeAggregatorError, "aggregator request", err)
	}
	return resp, nil
}

func decodeAPIError(resp *httpclient.Response) error {
	var apiErr apiError
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error != "" {
		return mapAPIError(apiErr.Error)
	}
	return apperror.New(apperror.CodeAggregatorError,
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
}

func toPayload(b *buildResponse, chainID uint64) (*app.TxPayload, error) {
	value, ok := new(big.Int).SetString(orZero(b.Value), 10)
	if !ok {
		return nil, apperror.Validation(apperror.CodeAggregatorError,
			fmt.Sprintf("invalid tx value %q", b.Value))
	}
	gasPrice, ok := new(big.Int).SetString(orZero(b.GasPrice), 10)
	if !ok {
		return nil, apperror.Validation(apperror.CodeAggregatorError,
			fmt.Sprintf("invalid gas price %q", b.GasPrice))
	}

	if b.ChainID != 0 {
		chainID = b.ChainID
	}

	return &app.TxPayload{
		To:       common.HexToAddress(b.To),
		From:     common.HexToAddress(b.From),
		Data:     common.FromHex(b.Data),
		Value:    value,
		GasPrice: gasPrice,
		GasLimit: b.Gas,
		ChainID:  chainID,
	}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// tokenParam renders a token address for the API; the native coin uses the
// conventional 0xeeee... sentinel.
func tokenParam(addr common.Address) string {
	if addr == (common.Address{}) {
		return "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	}
	return addr.Hex()
}
