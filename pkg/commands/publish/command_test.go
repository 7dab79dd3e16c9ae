package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos/provider"
	"github.com/movedeploy/aptos-resource-publish/config"
	"github.com/movedeploy/aptos-resource-publish/deploy"
	"github.com/movedeploy/aptos-resource-publish/move"
	"github.com/movedeploy/aptos-resource-publish/operations"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

const (
	testPrivateKey    = "0xE4FD0E90D32CB98DC6AD64516A421E8C2731870217CDBA64203CEB158A866304"
	testSignerAddress = "0x9b7a7333d1abd0e9c2a27d00a8a7a131d30d3b09908739d52693fe513e205c38"
)

// harness records what the command hands to its dependencies.
type harness struct {
	selector  uint64
	nodeURL   string
	key       *provider.PrivateKey
	deployCfg deploy.Config
	deployDep deploy.Deps
	runCalled bool

	loadErr error
	runErr  error
}

func (h *harness) deps() *Deps {
	return &Deps{
		ChainLoader: func(_ context.Context, selector uint64, nodeURL string, key *provider.PrivateKey) (fchainaptos.Chain, error) {
			h.selector = selector
			h.nodeURL = nodeURL
			h.key = key
			if h.loadErr != nil {
				return fchainaptos.Chain{}, h.loadErr
			}

			acc, err := provider.AccountGenCredential(key).Generate()
			if err != nil {
				return fchainaptos.Chain{}, err
			}

			return fchainaptos.Chain{Selector: selector, DeployerSigner: acc, URL: nodeURL}, nil
		},
		Run: func(_ context.Context, cfg deploy.Config, deps deploy.Deps) (*deploy.Result, error) {
			h.runCalled = true
			h.deployCfg = cfg
			h.deployDep = deps
			if h.runErr != nil {
				return nil, h.runErr
			}

			signer := deps.Signer.AccountAddress()
			deps.Logger.Infow("Running", "signer", signer.String())
			_, err := fmt.Fprintf(deps.Out, "resource account is: %s\n", "0x26b1")

			return &deploy.Result{State: deploy.PublishConfirmed}, err
		},
	}
}

func execute(t *testing.T, lggr logger.Logger, h *harness, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand(Config{Logger: lggr, Deps: h.deps()})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func requiredArgs(t *testing.T) []string {
	t.Helper()

	return []string{
		"-d", "0xcafe",
		"-k", testPrivateKey,
		"-s", "seed1",
		"-p", t.TempDir(),
	}
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "publish", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	for _, key := range config.Keys() {
		assert.NotNil(t, cmd.Flags().Lookup(config.FlagName(key)), key)
	}
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}

func TestPublish_Success(t *testing.T) {
	t.Parallel()

	h := &harness{}
	out, err := execute(t, logger.Test(t), h, requiredArgs(t)...)
	require.NoError(t, err)

	assert.Equal(t, "resource account is: 0x26b1\n", out)
	assert.Equal(t, chainsel.APTOS_LOCALNET.Selector, h.selector)
	assert.Equal(t, config.DefaultNodeURL, h.nodeURL)
	require.True(t, h.runCalled)

	cfg := h.deployCfg
	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000cafe", cfg.DeployerAddress.StringLong())
	assert.Equal(t, "seed1", cfg.Seed)
	assert.Empty(t, cfg.PackageName)
	assert.Nil(t, cfg.PublishFunction)
	assert.Empty(t, cfg.NamedAddresses)
	assert.False(t, cfg.ForcePublish)
	assert.Equal(t, deploy.GasPolicy{}, cfg.Gas)

	deps := h.deployDep
	signer := deps.Signer.AccountAddress()
	assert.Equal(t, testSignerAddress, signer.StringLong())
	assert.IsType(t, &move.CLIBuilder{}, deps.Builder)
	assert.IsType(t, &operations.MemoryReporter{}, deps.Reporter)
	assert.NotNil(t, deps.Out)
}

func TestPublish_AllOptions(t *testing.T) {
	t.Parallel()

	h := &harness{}
	dir := t.TempDir()
	args := append(requiredArgs(t),
		"-u", "https://fullnode.testnet.aptoslabs.com",
		"-n", "ccip",
		"--chain-selector", "743186221051783445",
		"--deployer-module", "factory",
		"--publish-function", "0xcafe::factory::publish",
		"--named-addresses", "mcms=0x3",
		"--max-gas-amount", "500000",
		"--gas-unit-price", "150",
		"--expiration-seconds", "60",
		"--confirm-timeout", "30s",
		"--payload-file", filepath.Join(dir, "payload.json"),
		"--reports-file", filepath.Join(dir, "reports.json"),
		"--force-publish",
	)

	_, err := execute(t, logger.Test(t), h, args...)
	require.NoError(t, err)

	assert.Equal(t, uint64(743186221051783445), h.selector)
	assert.Equal(t, "https://fullnode.testnet.aptoslabs.com", h.nodeURL)

	cfg := h.deployCfg
	assert.Equal(t, "ccip", cfg.PackageName)
	assert.Equal(t, "factory", cfg.DeployerModule)
	require.NotNil(t, cfg.PublishFunction)
	assert.Equal(t, "0xcafe::factory::publish", cfg.PublishFunction.String())
	require.Len(t, cfg.NamedAddresses, 1)
	assert.Equal(t, "mcms", cfg.NamedAddresses[0].Name)
	assert.Equal(t, deploy.GasPolicy{MaxGasAmount: 500000, GasUnitPrice: 150, ExpirationSeconds: 60}, cfg.Gas)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.True(t, cfg.ForcePublish)

	assert.Equal(t, move.PayloadFileBuilder(filepath.Join(dir, "payload.json")), h.deployDep.Builder)
	assert.IsType(t, &operations.FileReporter{}, h.deployDep.Reporter)
}

func TestPublish_InputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        func(t *testing.T) []string
		loadErr     error
		wantErr     string
		wantLoadHit bool
	}{
		{
			name:    "missing required values",
			args:    func(t *testing.T) []string { t.Helper(); return []string{"-p", t.TempDir()} },
			wantErr: "private_key is required",
		},
		{
			name: "invalid deployer address",
			args: func(t *testing.T) []string {
				t.Helper()
				return append(requiredArgs(t), "-d", "0xnothex")
			},
			wantErr: "deployer address",
		},
		{
			name: "invalid publish function",
			args: func(t *testing.T) []string {
				t.Helper()
				return append(requiredArgs(t), "--publish-function", "publish")
			},
			wantErr: "must be <address>::<module>::<function>",
		},
		{
			name: "invalid named addresses",
			args: func(t *testing.T) []string {
				t.Helper()
				return append(requiredArgs(t), "--named-addresses", "mcms")
			},
			wantErr: "expected name=address",
		},
		{
			name: "invalid log level",
			args: func(t *testing.T) []string {
				t.Helper()
				return append(requiredArgs(t), "--log-level", "loud")
			},
			wantErr: "invalid log level",
		},
		{
			name:        "chain loader fails",
			args:        requiredArgs,
			loadErr:     errors.New("invalid node url"),
			wantErr:     "invalid node url",
			wantLoadHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &harness{loadErr: tt.loadErr}
			// A nil logger makes the command build its own from the log flags.
			var lggr logger.Logger
			if tt.name != "invalid log level" {
				lggr = logger.Test(t)
			}

			_, err := execute(t, lggr, h, tt.args(t)...)
			require.ErrorIs(t, err, deploy.ErrInput)
			require.ErrorContains(t, err, tt.wantErr)
			assert.False(t, h.runCalled)
			assert.Equal(t, tt.wantLoadHit, h.key != nil)
		})
	}
}

func TestPublish_RunErrorIsReturned(t *testing.T) {
	t.Parallel()

	runErr := &deploy.StepError{State: deploy.PublishSubmitted, Err: fmt.Errorf("%w: timeout", deploy.ErrConfirmation)}
	h := &harness{runErr: runErr}

	_, err := execute(t, logger.Test(t), h, requiredArgs(t)...)
	require.ErrorIs(t, err, deploy.ErrConfirmation)

	var stepErr *deploy.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, deploy.PublishSubmitted, stepErr.State)
}

func TestPublish_PrivateKeyIsNotLeaked(t *testing.T) {
	t.Parallel()

	lggr, logs := logger.TestObserved(t, zapcore.DebugLevel)
	h := &harness{}

	out, err := execute(t, lggr, h, requiredArgs(t)...)
	require.NoError(t, err)

	assert.NotContains(t, out, testPrivateKey)
	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, testPrivateKey)
		assert.NotContains(t, fmt.Sprint(entry.ContextMap()), testPrivateKey)
		assert.NotContains(t, fmt.Sprint(entry.ContextMap()), "E4FD0E90D32CB98DC6AD64516A421E8C")
	}

	require.NotNil(t, h.key)
	assert.True(t, h.key.Empty(), "credential must be wiped when the command returns")
}

func TestPublish_PrivateKeyFromEnvironmentName(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})
	f := cmd.Flags().Lookup(config.FlagName("private_key"))
	require.NotNil(t, f)
	assert.Contains(t, f.Usage, config.EnvName("private_key"))
}

func TestDefaultReporterFactory(t *testing.T) {
	t.Parallel()

	r, err := defaultReporterFactory("")
	require.NoError(t, err)
	assert.IsType(t, &operations.MemoryReporter{}, r)

	r, err = defaultReporterFactory(filepath.Join(t.TempDir(), "reports.json"))
	require.NoError(t, err)
	assert.IsType(t, &operations.FileReporter{}, r)
}

func TestDefaultChainLoader_InvalidURL(t *testing.T) {
	t.Parallel()

	key := provider.NewPrivateKey(testPrivateKey)
	t.Cleanup(key.Wipe)

	_, err := defaultChainLoader(context.Background(), chainsel.APTOS_LOCALNET.Selector, "", key)
	require.Error(t, err)
}
