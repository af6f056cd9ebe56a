package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
)

func testTrade(t *testing.T) *domain.Trade {
	t.Helper()
	trade, err := domain.NewTrade(asset.WETH, asset.USDC, big.NewInt(1e18), domain.FieldInput)
	if err != nil {
		t.Fatalf("NewTrade: %v", err)
	}
	return &trade
}

func TestRatePoller_ServesLatestQuote(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	p.SetTrade(testTrade(t))
	provider.setQuote(sellQuote(200_000000))
	p.pollOnce(context.Background())

	quote, err := p.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote == nil || quote.DestAmount.Cmp(big.NewInt(200_000000)) != 0 {
		t.Fatalf("latest = %+v, want dest 200000000", quote)
	}
}

func TestRatePoller_InFlightPollDiscardedOnIntentChange(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	p.SetTrade(testTrade(t))
	provider.setQuote(sellQuote(200_000000))

	// The intent changes while the fetch is in flight: its result must not
	// become the quote for the new intent.
	provider.fetchFn = func() {
		provider.fetchFn = nil
		newTrade, _ := domain.NewTrade(asset.WETH, asset.DAI, big.NewInt(1e18), domain.FieldInput)
		p.SetTrade(&newTrade)
	}
	p.pollOnce(context.Background())

	if quote, _ := p.Latest(); quote != nil {
		t.Errorf("stale poll result landed: %+v", quote)
	}
}

func TestRatePoller_SetTradeClearsQuote(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	p.SetTrade(testTrade(t))
	provider.setQuote(sellQuote(200_000000))
	p.pollOnce(context.Background())

	newTrade, _ := domain.NewTrade(asset.WETH, asset.DAI, big.NewInt(1e18), domain.FieldInput)
	p.SetTrade(&newTrade)

	if quote, _ := p.Latest(); quote != nil {
		t.Error("changing the intent must drop the old quote immediately")
	}
}

func TestRatePoller_ProviderErrorMeansNoQuote(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	p.SetTrade(testTrade(t))
	provider.setQuote(sellQuote(200_000000))
	p.pollOnce(context.Background())

	provider.mu.Lock()
	provider.fetchErr = apperror.New(apperror.CodeAggregatorError)
	provider.mu.Unlock()
	p.pollOnce(context.Background())

	quote, err := p.Latest()
	if quote != nil {
		t.Error("failed poll must degrade to no quote, not serve the old one")
	}
	if !apperror.IsCode(err, apperror.CodeAggregatorError) {
		t.Errorf("err = %v, want AGGREGATOR_ERROR", err)
	}
}

func TestRatePoller_NilTradeDoesNotPoll(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	provider.setQuote(sellQuote(200_000000))
	p.pollOnce(context.Background())

	if quote, _ := p.Latest(); quote != nil {
		t.Error("poller without an intent should not fetch")
	}
}

func TestRatePoller_NotifiesSubscriber(t *testing.T) {
	provider := &fakeProvider{}
	p := NewRatePoller(provider, nil, testAccount, time.Second, testLogger())

	var got []QuoteUpdate
	p.OnUpdate(func(u QuoteUpdate) { got = append(got, u) })

	p.SetTrade(testTrade(t))
	provider.setQuote(sellQuote(200_000000))
	p.pollOnce(context.Background())

	if len(got) != 1 || got[0].Quote == nil || got[0].Err != nil {
		t.Fatalf("updates = %+v, want one successful update", got)
	}
}
