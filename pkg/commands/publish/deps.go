// Package publish provides the publish command.
package publish

import (
	"context"
	"fmt"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos/provider"
	"github.com/movedeploy/aptos-resource-publish/config"
	"github.com/movedeploy/aptos-resource-publish/deploy"
	"github.com/movedeploy/aptos-resource-publish/move"
	"github.com/movedeploy/aptos-resource-publish/operations"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// ChainLoaderFunc connects to the Aptos node and sets up the signer from the credential.
type ChainLoaderFunc func(ctx context.Context, selector uint64, nodeURL string, key *provider.PrivateKey) (fchainaptos.Chain, error)

// BuilderFactoryFunc returns the package builder for the config.
type BuilderFactoryFunc func(cfg *config.Config, lggr logger.Logger) move.Builder

// ReporterFactoryFunc returns the operations reporter for the reports file path. An empty
// path means no reports file.
type ReporterFactoryFunc func(path string) (operations.Reporter, error)

// RunFunc runs the deployment.
type RunFunc func(ctx context.Context, cfg deploy.Config, deps deploy.Deps) (*deploy.Result, error)

// defaultChainLoader initializes an RPC chain provider.
func defaultChainLoader(ctx context.Context, selector uint64, nodeURL string, key *provider.PrivateKey) (fchainaptos.Chain, error) {
	p := provider.NewRPCChainProvider(selector, provider.RPCChainProviderConfig{
		RPCURL:            nodeURL,
		DeployerSignerGen: provider.AccountGenCredential(key),
	})

	bc, err := p.Initialize(ctx)
	if err != nil {
		return fchainaptos.Chain{}, err
	}

	ch, ok := bc.(fchainaptos.Chain)
	if !ok {
		return fchainaptos.Chain{}, fmt.Errorf("unexpected chain type %T", bc)
	}

	return ch, nil
}

// defaultBuilderFactory builds with the Aptos CLI unless a payload file is configured.
func defaultBuilderFactory(cfg *config.Config, lggr logger.Logger) move.Builder {
	if cfg.PayloadFile != "" {
		return move.PayloadFileBuilder(cfg.PayloadFile)
	}

	return move.NewCLIBuilder(cfg.AptosCLI, lggr)
}

// defaultReporterFactory uses a file reporter when a path is given and an in memory
// reporter otherwise.
func defaultReporterFactory(path string) (operations.Reporter, error) {
	if path == "" {
		return operations.NewMemoryReporter(), nil
	}

	return operations.NewFileReporter(path)
}

// Deps holds the injectable dependencies of the publish command.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ChainLoader connects to the node.
	// Default: RPCChainProvider
	ChainLoader ChainLoaderFunc

	// BuilderFactory creates the package builder.
	// Default: move.CLIBuilder, or move.PayloadFileBuilder when a payload file is configured
	BuilderFactory BuilderFactoryFunc

	// ReporterFactory creates the operations reporter.
	// Default: operations.FileReporter when a reports file is configured, else in memory
	ReporterFactory ReporterFactoryFunc

	// Run runs the deployment.
	// Default: deploy.Run
	Run RunFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ChainLoader == nil {
		d.ChainLoader = defaultChainLoader
	}
	if d.BuilderFactory == nil {
		d.BuilderFactory = defaultBuilderFactory
	}
	if d.ReporterFactory == nil {
		d.ReporterFactory = defaultReporterFactory
	}
	if d.Run == nil {
		d.Run = deploy.Run
	}
}
