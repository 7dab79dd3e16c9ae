package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/movedeploy/aptos-resource-publish/chain"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos"
)

// RPCChainProviderConfig holds the configuration to initialize the RPCChainProvider.
type RPCChainProviderConfig struct {
	// Required: The URL of the Aptos node REST API. A URL without a path is given the "/v1"
	// API prefix.
	RPCURL string
	// Required: A generator for the deployer signer account. Use AccountGenPrivateKey or
	// AccountGenCredential to create a deployer signer from a private key.
	DeployerSignerGen AccountGenerator
}

// validate checks if the RPCChainProviderConfig is valid.
func (c RPCChainProviderConfig) validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc url is required")
	}
	if c.DeployerSignerGen == nil {
		return errors.New("deployer signer generator is required")
	}

	return nil
}

var _ chain.Provider = (*RPCChainProvider)(nil)

// RPCChainProvider is a chain provider that provides a chain that connects to an Aptos node via
// its REST API.
type RPCChainProvider struct {
	// Aptos chain selector, used to identify the chain.
	selector uint64

	config RPCChainProviderConfig

	// chain is set up by Initialize.
	chain *aptos.Chain
}

// NewRPCChainProvider creates a new RPCChainProvider with the given selector and configuration.
func NewRPCChainProvider(selector uint64, config RPCChainProviderConfig) *RPCChainProvider {
	return &RPCChainProvider{
		selector: selector,
		config:   config,
	}
}

// Initialize validates the configuration, generates the deployer signer and sets up the Aptos
// node client. No request is sent to the node.
func (p *RPCChainProvider) Initialize(_ context.Context) (chain.BlockChain, error) {
	if p.chain != nil {
		return *p.chain, nil // Already initialized
	}

	if err := p.config.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate provider config: %w", err)
	}

	nodeURL, err := NormalizeNodeURL(p.config.RPCURL)
	if err != nil {
		return nil, err
	}

	deployerSigner, err := p.config.DeployerSignerGen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate deployer account: %w", err)
	}

	chainIDStr, err := chain_selectors.GetChainIDFromSelector(p.selector)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID from selector %d: %w", p.selector, err)
	}

	chainID, err := strconv.ParseUint(chainIDStr, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chain ID %s: %w", chainIDStr, err)
	}

	client, err := aptoslib.NewNodeClient(nodeURL, uint8(chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create Aptos RPC client for chain %d: %w", p.selector, err)
	}

	p.chain = &aptos.Chain{
		Selector:       p.selector,
		Client:         client,
		DeployerSigner: deployerSigner,
		URL:            nodeURL,
		Confirm:        aptos.NewConfirmFunc(client),
	}

	return *p.chain, nil
}

// Name returns the name of the RPCChainProvider.
func (*RPCChainProvider) Name() string {
	return "Aptos RPC Chain Provider"
}

// ChainSelector returns the chain selector of the Aptos chain managed by this provider.
func (p *RPCChainProvider) ChainSelector() uint64 {
	return p.selector
}

// BlockChain returns the Aptos chain instance managed by this provider. You must call Initialize
// before using this method to ensure the chain is properly set up.
func (p *RPCChainProvider) BlockChain() chain.BlockChain {
	return p.chain
}

// NormalizeNodeURL validates an Aptos node URL and appends the "/v1" REST API prefix when the
// URL has no path.
func NormalizeNodeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid node url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid node url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid node url %q: missing host", raw)
	}

	if strings.Trim(u.Path, "/") == "" {
		u.Path = "/v1"
	}

	return u.String(), nil
}
