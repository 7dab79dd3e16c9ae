package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/avast/retry-go/v4"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/smartcontractkit/chainlink-testing-framework/framework"
	"github.com/smartcontractkit/chainlink-testing-framework/framework/components/blockchain"
	"github.com/smartcontractkit/freeport"
	"github.com/testcontainers/testcontainers-go"

	"github.com/movedeploy/aptos-resource-publish/chain"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos"
)

// DefaultNetworkOnce guards the creation of the CTF docker network, which may happen once per
// test binary.
var DefaultNetworkOnce = &sync.Once{}

const (
	// DefaultFundingAmount is the amount of octas the localnet faucet sends to a funded account.
	// It covers many publishes at the default gas budget.
	DefaultFundingAmount uint64 = 100_000_000_000

	defaultStartAttempts = 10
	readyAttempts        = 30
)

// CTFChainProviderConfig configures a localnet started by CTFChainProvider.
type CTFChainProviderConfig struct {
	// Required: generates the deployer signer. AccountGenCTFDefault uses the account the
	// container is started with, AccountGenNewSingleSender a fresh account that the provider
	// funds from the faucet.
	DeployerSignerGen AccountGenerator

	// Required: guards the creation of the CTF docker network. Use DefaultNetworkOnce.
	Once *sync.Once

	// FundingAmount is sent to every account funded by the provider. Zero uses
	// DefaultFundingAmount.
	FundingAmount uint64

	// StartAttempts bounds the container start retries, each with freshly reserved ports.
	// Zero uses 10.
	StartAttempts uint
}

func (c CTFChainProviderConfig) validate() error {
	if c.DeployerSignerGen == nil {
		return errors.New("deployer signer generator is required")
	}
	if c.Once == nil {
		return errors.New("sync.Once instance is required")
	}

	return nil
}

func (c CTFChainProviderConfig) fundingAmount() uint64 {
	if c.FundingAmount == 0 {
		return DefaultFundingAmount
	}

	return c.FundingAmount
}

func (c CTFChainProviderConfig) startAttempts() uint {
	if c.StartAttempts == 0 {
		return defaultStartAttempts
	}

	return c.StartAttempts
}

var _ chain.Provider = (*CTFChainProvider)(nil)

// CTFChainProvider runs an Aptos localnet in a Chainlink Testing Framework docker container for
// the end to end tests of the publisher. Besides the chain it can fund further signers, so a
// test can keep the account holding the deployer module apart from the account creating the
// resource account.
//
// Docker must be available. Starting a container takes a while, so share one provider per
// test suite.
type CTFChainProvider struct {
	t        *testing.T
	selector uint64
	config   CTFChainProviderConfig

	containerName string
	chain         *aptos.Chain
}

// NewCTFChainProvider returns a provider for the localnet of the given selector. The container
// is started by Initialize and removed when the test ends.
func NewCTFChainProvider(t *testing.T, selector uint64, config CTFChainProviderConfig) *CTFChainProvider {
	t.Helper()

	return &CTFChainProvider{
		t:        t,
		selector: selector,
		config:   config,
	}
}

// Initialize starts the localnet, waits for its REST API and funds the deployer signer.
// Subsequent calls return the same chain.
func (p *CTFChainProvider) Initialize(ctx context.Context) (chain.BlockChain, error) {
	if p.chain != nil {
		return *p.chain, nil
	}

	if err := p.config.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate provider config: %w", err)
	}

	signer, err := p.config.DeployerSignerGen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate deployer account: %w", err)
	}

	chainID, err := chainsel.GetChainIDFromSelector(p.selector)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID from selector %d: %w", p.selector, err)
	}
	numericID, err := strconv.ParseUint(chainID, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("chain ID %s of selector %d is not an Aptos chain ID: %w", chainID, p.selector, err)
	}

	url, err := p.startNetwork(ctx, chainID, signer.Address)
	if err != nil {
		return nil, err
	}

	client, err := aptoslib.NewNodeClient(url, uint8(numericID))
	if err != nil {
		return nil, fmt.Errorf("failed to create node client for %s: %w", url, err)
	}
	if err = p.waitReady(ctx, client); err != nil {
		return nil, err
	}

	if err = p.Fund(ctx, signer.Address); err != nil {
		return nil, err
	}

	p.chain = &aptos.Chain{
		Selector:       p.selector,
		Client:         client,
		DeployerSigner: signer,
		URL:            url,
		Confirm:        aptos.NewConfirmFunc(client),
	}

	return *p.chain, nil
}

// NewFundedSigner generates a new single sender account and funds it from the faucet. The
// provider must be initialized.
func (p *CTFChainProvider) NewFundedSigner(ctx context.Context) (*aptoslib.Account, error) {
	account, err := AccountGenNewSingleSender().Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account: %w", err)
	}

	if err = p.Fund(ctx, account.Address); err != nil {
		return nil, err
	}

	return account, nil
}

// Fund sends FundingAmount octas to the account with the aptos CLI inside the container.
func (p *CTFChainProvider) Fund(_ context.Context, address aptoslib.AccountAddress) error {
	if p.containerName == "" {
		return errors.New("localnet is not running")
	}

	dc, err := framework.NewDockerClient()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w", err)
	}

	addr := address.StringLong()
	if _, err = dc.ExecContainer(p.containerName, []string{
		"aptos", "account", "fund-with-faucet",
		"--account", addr,
		"--amount", strconv.FormatUint(p.config.fundingAmount(), 10),
	}); err != nil {
		return fmt.Errorf("failed to fund %s: %w", addr, err)
	}

	return nil
}

// Name returns the name of the CTFChainProvider.
func (*CTFChainProvider) Name() string {
	return "Aptos CTF Chain Provider"
}

// ChainSelector returns the chain selector of the localnet.
func (p *CTFChainProvider) ChainSelector() uint64 {
	return p.selector
}

// BlockChain returns the chain. Initialize must have succeeded.
func (p *CTFChainProvider) BlockChain() chain.BlockChain {
	return *p.chain
}

// startNetwork starts the container on freshly reserved host ports, retrying with new ports
// when the start fails, and returns the REST API URL.
func (p *CTFChainProvider) startNetwork(ctx context.Context, chainID string, owner aptoslib.AccountAddress) (string, error) {
	if err := framework.DefaultNetwork(p.config.Once); err != nil {
		return "", fmt.Errorf("failed to create docker network: %w", err)
	}

	output, err := retry.DoWithData(func() (*blockchain.Output, error) {
		ports := freeport.GetN(p.t, 2)

		out, err := blockchain.NewBlockchainNetwork(&blockchain.Input{
			Type:      blockchain.TypeAptos,
			ChainID:   chainID,
			PublicKey: owner.String(),
			CustomPorts: []string{
				fmt.Sprintf("%d:8080", ports[0]),
				fmt.Sprintf("%d:8081", ports[1]),
			},
		})
		if err != nil {
			freeport.Return(ports)
			return nil, err
		}

		return out, nil
	},
		retry.Context(ctx),
		retry.Attempts(p.config.startAttempts()),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.t.Logf("Aptos localnet did not start (attempt %d): %v", n+1, err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start localnet: %w", err)
	}

	testcontainers.CleanupContainer(p.t, output.Container)
	p.containerName = output.ContainerName

	return output.Nodes[0].ExternalHTTPUrl + "/v1", nil
}

// waitReady polls the node until its REST API answers.
func (p *CTFChainProvider) waitReady(ctx context.Context, client *aptoslib.NodeClient) error {
	err := retry.Do(func() error {
		_, err := client.GetChainId()
		return err
	},
		retry.Context(ctx),
		retry.Attempts(readyAttempts),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("localnet not ready: %w", err)
	}

	return nil
}
