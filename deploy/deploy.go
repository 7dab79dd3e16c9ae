package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/move"
	"github.com/movedeploy/aptos-resource-publish/operations"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// DeployerNamedAddress is the named address bound to the deployer module's account.
const DeployerNamedAddress = "deployer"

// Config describes what to publish and where.
type Config struct {
	// DeployerAddress is the account holding the deployer module.
	DeployerAddress aptoslib.AccountAddress
	// DeployerModule is the module called to create the resource account. Defaults to
	// DefaultDeployerModule.
	DeployerModule string
	// Seed is combined with the signer address to derive the resource account address.
	Seed string
	// PackageName is the named address bound to the resource account. Defaults to the package
	// name in Move.toml.
	PackageName string
	// PackageDir is the directory containing Move.toml.
	PackageDir string
	// NamedAddresses are extra substitutions. The deployer and package names always win.
	NamedAddresses move.NamedAddresses
	// PublishFunction is the entry function that publishes the package. Defaults to
	// publish_package of the deployer module. FrameworkPublishFunction publishes to the signer
	// instead.
	PublishFunction *FunctionID
	// Gas is the gas policy of both transactions. Zero fields default to MuchGas.
	Gas GasPolicy
	// ConfirmTimeout bounds the wait for each transaction. Zero uses the client default.
	ConfirmTimeout time.Duration
	// ForcePublish publishes even if a previous run already published the same package.
	ForcePublish bool
}

// Deps are the collaborators of a run.
type Deps struct {
	Client  NodeClient
	Signer  aptoslib.TransactionSigner
	Confirm fchainaptos.ConfirmFunc
	Builder move.Builder
	// Reporter records the operations. Use a operations.FileReporter to make runs resumable.
	Reporter operations.Reporter
	Logger   logger.Logger
	// Out receives the resource address and the publish result.
	Out io.Writer
	// OnTransition is called on every state change.
	OnTransition TransitionFunc
}

func (d *Deps) applyDefaults() {
	if d.Reporter == nil {
		d.Reporter = operations.NewMemoryReporter()
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
}

func (d *Deps) validate() error {
	if d.Client == nil {
		return errors.New("node client is required")
	}
	if d.Signer == nil {
		return errors.New("signer is required")
	}
	if d.Confirm == nil {
		return errors.New("confirm function is required")
	}
	if d.Builder == nil {
		return errors.New("package builder is required")
	}

	return nil
}

// Result is the outcome of a run. On failure it holds whatever was completed.
type Result struct {
	State           State
	ResourceAddress aptoslib.AccountAddress
	PackageName     string
	CreateTx        *TxResult
	PublishTx       *TxResult
}

// Run derives the resource address, builds the package against it, creates the resource
// account and publishes the package. Errors are *StepError values wrapping one of the
// sentinel errors of this package.
func Run(ctx context.Context, cfg Config, deps Deps) (*Result, error) {
	deps.applyDefaults()
	if err := deps.validate(); err != nil {
		return nil, err
	}

	lggr := deps.Logger
	machine := newStateMachine(lggr, deps.OnTransition)
	result := &Result{State: Start}
	fail := func(err error) (*Result, error) {
		err = machine.fail(err)
		result.State = machine.current()

		return result, err
	}

	signerAddr := deps.Signer.AccountAddress()
	seed := []byte(cfg.Seed)

	expected, err := fchainaptos.DeriveResourceAddress(signerAddr, seed)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInput, err))
	}
	lggr.Infow("Derived resource address", "signer", signerAddr.String(), "resource", expected.String())

	pkgName, err := resolvePackageName(cfg)
	if err != nil {
		return fail(err)
	}
	result.PackageName = pkgName

	named := cfg.NamedAddresses.Merge(move.NamedAddresses{}.
		Set(DeployerNamedAddress, cfg.DeployerAddress).
		Set(pkgName, expected))

	pkg, err := deps.Builder.Build(ctx, move.BuildOptions{
		PackageDir:     cfg.PackageDir,
		NamedAddresses: named,
	})
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrBuild, err))
	}

	publishFn := DefaultPublishFunction(cfg.DeployerAddress, cfg.DeployerModule)
	if cfg.PublishFunction != nil {
		publishFn = *cfg.PublishFunction
	}

	account := NewLocalAccount(deps.Signer, deps.Client, deps.Confirm, cfg.Gas, cfg.ConfirmTimeout)
	if err = account.Sync(); err != nil {
		return fail(err)
	}

	bundle := operations.NewBundle(func() context.Context { return ctx }, lggr, deps.Reporter)

	createReport, err := operations.ExecuteOperation(bundle, CreateResourceAccountOp,
		CreateResourceAccountDeps{Account: account, Machine: machine},
		CreateResourceAccountInput{
			Signer:         signerAddr.StringLong(),
			Deployer:       cfg.DeployerAddress.StringLong(),
			DeployerModule: cfg.DeployerModule,
			Seed:           cfg.Seed,
		},
	)
	if err != nil {
		return fail(err)
	}
	if machine.current() == Start {
		lggr.Infow("Resource account already created by a previous run", "tx", createReport.Output.Hash)
	}
	if err = machine.transition(AccountCreationConfirmed); err != nil {
		return fail(err)
	}
	result.CreateTx = &createReport.Output

	// the publish target comes from the signer the transaction was sent with, not from the
	// address the package was built against
	resource, err := fchainaptos.DeriveResourceAddress(account.Address(), seed)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInput, err))
	}
	result.ResourceAddress = resource
	fmt.Fprintf(deps.Out, "resource account is: %s\n", resource.String())

	if resource != expected {
		return fail(fmt.Errorf("%w: package built for %s, account created at %s",
			ErrResourceAddressMismatch, expected.String(), resource.String()))
	}

	var publishOpts []operations.ExecuteOption[PublishPackageInput, PublishPackageDeps]
	if cfg.ForcePublish {
		publishOpts = append(publishOpts, operations.WithForceExecution[PublishPackageInput, PublishPackageDeps]())
	}

	publishReport, err := operations.ExecuteOperation(bundle, PublishPackageOp,
		PublishPackageDeps{Account: account, Package: pkg, Machine: machine},
		PublishPackageInput{
			Signer:          signerAddr.StringLong(),
			ResourceAddress: resource.StringLong(),
			Function:        publishFn.String(),
			PackageDigest:   pkg.Digest(),
		},
		publishOpts...,
	)
	if err != nil {
		return fail(err)
	}
	if machine.current() == AccountCreationConfirmed {
		lggr.Infow("Package already published by a previous run", "tx", publishReport.Output.Hash)
	}
	if err = machine.transition(PublishConfirmed); err != nil {
		return fail(err)
	}
	result.PublishTx = &publishReport.Output
	result.State = machine.current()

	fmt.Fprintf(deps.Out, "package published: tx %s (version %d)\n", publishReport.Output.Hash, publishReport.Output.Version)

	return result, nil
}

// resolvePackageName returns the configured package name, or the name from Move.toml. A
// name the manifest does not declare in [addresses] would never be substituted, so it fails
// the build.
func resolvePackageName(cfg Config) (string, error) {
	manifest, err := move.ReadManifest(cfg.PackageDir)
	if err != nil {
		if errors.Is(err, move.ErrManifestNotFound) && cfg.PackageName != "" {
			return cfg.PackageName, nil
		}
		if errors.Is(err, move.ErrManifestNotFound) {
			return "", fmt.Errorf("%w: package name is required: %w", ErrInput, err)
		}

		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	name := cfg.PackageName
	if name == "" {
		name = manifest.Package.Name
	}
	if name == "" {
		return "", fmt.Errorf("%w: package name is required and Move.toml has none", ErrInput)
	}

	if len(manifest.Addresses) > 0 && !manifest.DeclaresAddress(name) {
		return "", fmt.Errorf("%w: named address %q is not declared in %s [addresses]",
			ErrBuild, name, move.ManifestFile)
	}

	return name, nil
}
