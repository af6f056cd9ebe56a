// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
	"github.com/dexflow/swapengine/internal/config"
	"github.com/dexflow/swapengine/internal/logger"
)

// Monolith is the application container giving modules access to shared
// infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	AssetRegistry() *asset.Registry
}

// Module is a bounded context that wires its own services from the shared
// infrastructure at startup.
type Module interface {
	Startup(context.Context, Monolith) error
	Shutdown(context.Context) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClient     *ethclient.Client
	assetRegistry *asset.Registry
	modules       []Module
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	ethClient, err := ethclient.Dial(cfg.Ethereum.HTTPURL)
	if err != nil {
		return nil, apperror.External(apperror.CodeEthereumConnectionFailed, cfg.Ethereum.HTTPURL, err)
	}

	return &app{
		config:        cfg,
		logger:        log,
		ethClient:     ethClient,
		assetRegistry: asset.DefaultRegistry(),
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

// StartModules starts the modules in order and remembers them for shutdown.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
		a.modules = append(a.modules, m)
	}
	return nil
}

// Close shuts started modules down in reverse order and releases the node
// connection.
func (a *app) Close() error {
	ctx := context.Background()
	for i := len(a.modules) - 1; i >= 0; i-- {
		if err := a.modules[i].Shutdown(ctx); err != nil {
			a.logger.Error(ctx, "module shutdown failed", "error", err)
		}
	}
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
