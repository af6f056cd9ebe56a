// Package main is the entry point for the swap execution engine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dexflow/swapengine/business/swap"
	"github.com/dexflow/swapengine/business/swap/app"
	"github.com/dexflow/swapengine/business/swap/domain"
	"github.com/dexflow/swapengine/internal/apm"
	"github.com/dexflow/swapengine/internal/asset"
	"github.com/dexflow/swapengine/internal/config"
	"github.com/dexflow/swapengine/internal/health"
	"github.com/dexflow/swapengine/internal/logger"
	"github.com/dexflow/swapengine/internal/metrics"
	"github.com/dexflow/swapengine/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const (
	healthPort    = 8081
	quoteDeadline = 15 * time.Second
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	src := flag.String("src", "", "Input token symbol")
	dest := flag.String("dest", "", "Output token symbol")
	amount := flag.String("amount", "", "Amount in display units")
	side := flag.String("side", "SELL", "SELL (exact input) or BUY (exact output)")
	recipient := flag.String("recipient", "", "Recipient address (default: own account)")
	yes := flag.Bool("yes", false, "Submit without interactive confirmation")
	watch := flag.Bool("watch", false, "Stream quotes without executing")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("swapengine %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	opts := swapOptions{
		src:       *src,
		dest:      *dest,
		amount:    *amount,
		side:      domain.Side(strings.ToUpper(*side)),
		recipient: *recipient,
		autoYes:   *yes,
		watch:     *watch,
	}

	if err := run(ctx, *configPath, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type swapOptions struct {
	src       string
	dest      string
	amount    string
	side      domain.Side
	recipient string
	autoYes   bool
	watch     bool
}

func run(ctx context.Context, configPath string, opts swapOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)

	log.Info(ctx, "starting swap engine",
		"version", version,
		"environment", cfg.App.Environment,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.OtlpProvider, log))
		log.Info(ctx, "tracing initialized", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(healthPort, version, log)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create application container: %w", err)
	}
	defer mono.Close()

	healthServer.RegisterCheck("ethereum", func(ctx context.Context) (bool, string) {
		if _, err := mono.EthClient().BlockNumber(ctx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})

	module := &swap.Module{}
	if err := mono.StartModules(ctx, module); err != nil {
		return fmt.Errorf("failed to start swap module: %w", err)
	}

	trade, err := buildTrade(mono.AssetRegistry(), cfg.Ethereum.ChainID, opts)
	if err != nil {
		return err
	}

	if opts.watch || module.Executor() == nil {
		if module.Executor() == nil && !opts.watch {
			log.Warn(ctx, "no signing key configured, falling back to quote streaming")
		}
		module.Poller().SetTrade(trade)
		return watchQuotes(ctx, module.Poller(), trade)
	}

	return executeSwap(ctx, module, trade, opts)
}

// buildTrade resolves the token pair and normalizes the typed amount into
// raw units of whichever leg the side fixes.
func buildTrade(registry *asset.Registry, chainID uint64, opts swapOptions) (*domain.Trade, error) {
	if opts.src == "" || opts.dest == "" || opts.amount == "" {
		return nil, fmt.Errorf("src, dest and amount are required (or run with -watch)")
	}
	if opts.side != domain.SideSell && opts.side != domain.SideBuy {
		return nil, fmt.Errorf("side must be SELL or BUY, got %q", opts.side)
	}

	srcToken, ok := registry.GetBySymbolAndChain(strings.ToUpper(opts.src), chainID)
	if !ok {
		return nil, fmt.Errorf("unknown token %q on chain %d", opts.src, chainID)
	}
	destToken, ok := registry.GetBySymbolAndChain(strings.ToUpper(opts.dest), chainID)
	if !ok {
		return nil, fmt.Errorf("unknown token %q on chain %d", opts.dest, chainID)
	}

	field := domain.FieldInput
	edited := srcToken
	if opts.side == domain.SideBuy {
		field = domain.FieldOutput
		edited = destToken
	}

	raw, err := asset.ToRaw(opts.amount, edited.Decimals())
	if err != nil {
		return nil, err
	}

	trade, err := domain.NewTrade(srcToken, destToken, raw, field)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func watchQuotes(ctx context.Context, poller *app.RatePoller, trade *domain.Trade) error {
	fmt.Printf("streaming %s -> %s quotes, ctrl-c to stop\n",
		trade.SrcToken.Symbol(), trade.DestToken.Symbol())

	updates := make(chan app.QuoteUpdate, 1)
	poller.OnUpdate(func(u app.QuoteUpdate) {
		select {
		case updates <- u:
		default:
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			if u.Err != nil {
				fmt.Printf("no quote: %v\n", u.Err)
				continue
			}
			q := u.Quote
			fmt.Printf("%s %s -> %s %s\n",
				asset.ToDisplayRounded(q.SrcAmount, q.SrcDecimals, 6), trade.SrcToken.Symbol(),
				asset.ToDisplayRounded(q.DestAmount, q.DestDecimals, 6), trade.DestToken.Symbol())
		}
	}
}

func executeSwap(ctx context.Context, module *swap.Module, trade *domain.Trade, opts swapOptions) error {
	executor := module.Executor()

	if err := executor.SetTrade(trade); err != nil {
		return err
	}

	if err := waitForQuote(ctx, module.Poller()); err != nil {
		return err
	}

	conf, err := executor.RequestSwap(ctx, opts.recipient)
	if err != nil {
		return err
	}

	printConfirmation(conf, trade)

	if conf.Approval == domain.ApprovalRequired {
		required := conf.Quote.SrcAmount
		if conf.Quote.Side == domain.SideBuy {
			required = conf.MaxSold
		}
		fmt.Printf("approving %s %s for the swap router...\n",
			asset.ToDisplayRounded(required, conf.Quote.SrcDecimals, 6),
			trade.SrcToken.Symbol())
		if err := module.Approvals().Approve(ctx, trade.SrcToken, required); err != nil {
			executor.Dismiss()
			return err
		}
	}

	if !opts.autoYes && !confirmPrompt() {
		executor.Dismiss()
		fmt.Println("cancelled")
		return nil
	}

	hash, err := executor.ConfirmSwap(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("submitted %s\n", hash.Hex())

	return waitForOutcome(ctx, module, hash.Hex())
}

func waitForQuote(ctx context.Context, poller *app.RatePoller) error {
	deadline := time.After(quoteDeadline)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if q, err := poller.Latest(); q != nil {
			return nil
		} else if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("no quote within %s", quoteDeadline)
		case <-ticker.C:
		}
	}
}

func printConfirmation(conf *app.Confirmation, trade *domain.Trade) {
	fmt.Println(conf.Summary)
	if conf.Quote.Side == domain.SideSell {
		fmt.Printf("minimum received: %s %s\n",
			asset.ToDisplayRounded(conf.MinReceived, conf.Quote.DestDecimals, 6),
			trade.DestToken.Symbol())
	} else {
		fmt.Printf("maximum sold: %s %s\n",
			asset.ToDisplayRounded(conf.MaxSold, conf.Quote.SrcDecimals, 6),
			trade.SrcToken.Symbol())
	}
	if conf.ImpactBps > 0 {
		fmt.Printf("price impact: %.2f%% (severity %d)\n",
			float64(conf.ImpactBps)/100, conf.Severity)
	}
}

func confirmPrompt() bool {
	fmt.Print("confirm swap? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// waitForOutcome blocks until the submitted swap reaches a terminal state.
func waitForOutcome(ctx context.Context, module *swap.Module, hash string) error {
	executor := module.Executor()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("still pending: %s\n", hash)
			return nil
		case <-ticker.C:
			switch executor.State() {
			case domain.StateSucceeded:
				fmt.Printf("swap confirmed: %s\n", hash)
				return nil
			case domain.StateFailed:
				return executor.LastError()
			}
		}
	}
}
