package app

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/logger"
	"github.com/dexflow/swapengine/internal/ratelimit"
)

// DefaultPollInterval matches the aggregator's quote refresh cadence.
const DefaultPollInterval = time.Second

// QuoteUpdate is pushed to the poller's subscriber on every completed poll.
type QuoteUpdate struct {
	Quote *domain.Quote // nil when the poll failed
	Err   error
}

// RatePoller keeps the quote for the current trade intent fresh. Changing
// the intent bumps a generation counter: polls that were in flight for the
// previous intent are discarded when they land.
type RatePoller struct {
	provider RateProvider
	limiter  *ratelimit.Limiter
	log      logger.LoggerInterface
	interval time.Duration
	account  common.Address

	mu         sync.Mutex
	generation uint64
	trade      *domain.Trade
	latest     *domain.Quote
	lastErr    error
	onUpdate   func(QuoteUpdate)

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRatePoller creates a poller. A nil limiter disables rate limiting.
func NewRatePoller(provider RateProvider, limiter *ratelimit.Limiter, account common.Address, interval time.Duration, log logger.LoggerInterface) *RatePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &RatePoller{
		provider: provider,
		limiter:  limiter,
		log:      log,
		interval: interval,
		account:  account,
		kick:     make(chan struct{}, 1),
	}
}

// OnUpdate registers the subscriber notified after each poll. Must be set
// before Start.
func (p *RatePoller) OnUpdate(fn func(QuoteUpdate)) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Start launches the polling loop.
func (p *RatePoller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)
}

// Stop terminates the polling loop and waits for it to exit.
func (p *RatePoller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}

// SetTrade replaces the polled intent. The previous quote is dropped
// immediately so a stale price is never served for the new intent, and any
// in-flight poll for the old intent will be discarded on arrival. A nil
// trade pauses polling.
func (p *RatePoller) SetTrade(trade *domain.Trade) {
	p.mu.Lock()
	p.generation++
	p.trade = trade
	p.latest = nil
	p.lastErr = nil
	p.mu.Unlock()

	if trade != nil {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// Latest returns the freshest quote for the current intent, or nil plus the
// last poll error when there is none.
func (p *RatePoller) Latest() (*domain.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.lastErr
}

func (p *RatePoller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug(ctx, "rate poller stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
		case <-p.kick:
		}

		p.pollOnce(ctx)
	}
}

// pollOnce fetches a quote for the intent snapshot taken at entry. The
// result only lands if the intent has not changed in the meantime.
func (p *RatePoller) pollOnce(ctx context.Context) {
	p.mu.Lock()
	gen := p.generation
	trade := p.trade
	p.mu.Unlock()

	if trade == nil {
		return
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
	}

	quote, err := p.provider.FetchRate(ctx, RateQuery{
		SrcToken:  trade.SrcToken,
		DestToken: trade.DestToken,
		Amount:    trade.Amount,
		Side:      trade.Side(),
		Account:   p.account,
	})

	p.mu.Lock()
	if gen != p.generation {
		// Intent changed while this poll was in flight.
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.latest = nil
		p.lastErr = err
	} else {
		p.latest = quote
		p.lastErr = nil
	}
	notify := p.onUpdate
	p.mu.Unlock()

	if err != nil {
		p.log.Warn(ctx, "rate poll failed", "error", err)
	} else {
		p.log.Debug(ctx, "quote updated", "rate", quote.ExecutionRate().String())
	}

	if notify != nil {
		notify(QuoteUpdate{Quote: quote, Err: err})
	}
}
