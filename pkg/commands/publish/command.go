package publish

import (
	"fmt"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/spf13/cobra"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos/provider"
	"github.com/movedeploy/aptos-resource-publish/config"
	"github.com/movedeploy/aptos-resource-publish/deploy"
	"github.com/movedeploy/aptos-resource-publish/move"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/flags"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/text"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// Config holds the configuration of the publish command.
type Config struct {
	// Logger is used instead of a logger built from the log flags when set.
	Logger logger.Logger
	// Deps are the injectable dependencies. Nil uses production defaults.
	Deps *Deps
}

var (
	publishLong = text.LongDesc(`
		Creates a resource account and publishes a Move package to it.

		The resource account address is derived from the signer address and the seed. The package
		is built with the deployer and package named addresses bound to the deployer address and
		the resource account address, the account is created through the deployer module and,
		once the creation is confirmed, the package is published.

		Every value can also be set in the config file or with an APTOS_PUBLISH_ environment
		variable, e.g. APTOS_PUBLISH_PRIVATE_KEY. With --reports-file a run that failed after the
		account was created resumes at the publish step.
	`)

	publishExample = text.Examples(`
		# Publish to a localnet
		aptos-resource-publish publish -d 0xcafe -n my_package -p ./move -s seed1

		# Resumable run against testnet, key from the environment
		APTOS_PUBLISH_PRIVATE_KEY=0x... aptos-resource-publish publish \
		  -u https://fullnode.testnet.aptoslabs.com --chain-selector 743186221051783445 \
		  -d 0xcafe -s seed1 --reports-file reports.json
	`)
)

// NewCommand creates the publish command.
func NewCommand(cfg Config) *cobra.Command {
	deps := cfg.Deps
	if deps == nil {
		deps = &Deps{}
	}
	deps.applyDefaults()

	cmd := &cobra.Command{
		Use:          "publish",
		Short:        "Create a resource account and publish a Move package to it",
		Long:         publishLong,
		Example:      publishExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg.Logger, deps)
		},
	}

	flags.Publish(cmd)

	return cmd
}

func run(cmd *cobra.Command, lggr logger.Logger, deps *Deps) error {
	ctx := cmd.Context()

	cfg, err := config.Load(flags.MustString(cmd.Flags().GetString("config")), cmd.Flags())
	if err != nil {
		return fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}

	if lggr == nil {
		lc, err := logger.ParseConfig(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("%w: %w", deploy.ErrInput, err)
		}
		if lggr, err = lc.New(); err != nil {
			return err
		}
		defer func() { _ = lggr.Sync() }()
	}

	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}

	key := provider.NewPrivateKey(cfg.PrivateKey)
	defer key.Wipe()
	cfg.PrivateKey = ""

	if y, err := cfg.YAML(); err == nil {
		lggr.Debugw("Loaded config", "config", y)
	}

	deployCfg, err := toDeployConfig(cfg)
	if err != nil {
		return err
	}

	selector := cfg.ChainSelector
	if selector == 0 {
		selector = chainsel.APTOS_LOCALNET.Selector
	}

	ch, err := deps.ChainLoader(ctx, selector, cfg.NodeURL, key)
	if err != nil {
		return fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}
	signer := ch.DeployerSigner.AccountAddress()
	lggr.Infow("Connected to Aptos node", "chain", ch.String(), "url", ch.URL, "signer", signer.String())

	reporter, err := deps.ReporterFactory(cfg.ReportsFile)
	if err != nil {
		return fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}

	_, err = deps.Run(ctx, deployCfg, deploy.Deps{
		Client:   ch.Client,
		Signer:   ch.DeployerSigner,
		Confirm:  ch.Confirm,
		Builder:  deps.BuilderFactory(cfg, lggr),
		Reporter: reporter,
		Logger:   lggr,
		Out:      cmd.OutOrStdout(),
	})

	return err
}

// toDeployConfig parses the textual config values.
func toDeployConfig(cfg *config.Config) (deploy.Config, error) {
	deployer, err := fchainaptos.ParseAddress(cfg.DeployerAddress)
	if err != nil {
		return deploy.Config{}, fmt.Errorf("%w: deployer address: %w", deploy.ErrInput, err)
	}

	named, err := move.ParseNamedAddresses(cfg.NamedAddresses)
	if err != nil {
		return deploy.Config{}, fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}

	var publishFn *deploy.FunctionID
	if cfg.PublishFunction != "" {
		fn, err := deploy.ParseFunctionID(cfg.PublishFunction)
		if err != nil {
			return deploy.Config{}, err
		}
		publishFn = &fn
	}

	return deploy.Config{
		DeployerAddress: deployer,
		DeployerModule:  cfg.DeployerModule,
		Seed:            cfg.Seed,
		PackageName:     cfg.PackageName,
		PackageDir:      cfg.PackagePath,
		NamedAddresses:  named,
		PublishFunction: publishFn,
		Gas: deploy.GasPolicy{
			MaxGasAmount:      cfg.MaxGasAmount,
			GasUnitPrice:      cfg.GasUnitPrice,
			ExpirationSeconds: cfg.ExpirationSecs,
		},
		ConfirmTimeout: cfg.ConfirmTimeout,
		ForcePublish:   cfg.ForcePublish,
	}, nil
}
