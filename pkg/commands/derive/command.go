// Package derive provides the derive command, which computes a resource account address
// offline.
package derive

import (
	"errors"
	"fmt"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/spf13/cobra"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/chain/aptos/provider"
	"github.com/movedeploy/aptos-resource-publish/config"
	"github.com/movedeploy/aptos-resource-publish/deploy"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/flags"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/text"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// Config holds the configuration of the derive command.
type Config struct {
	Logger logger.Logger
}

var (
	deriveLong = text.LongDesc(`
		Prints the address of the resource account that the given account creates with the seed.

		The source account is given by its address or, with --private-key, by its signer key.
		No node is contacted.
	`)

	deriveExample = text.Examples(`
		# Address of the resource account created by 0xcafe with seed "seed1"
		aptos-resource-publish derive -a 0xcafe -s seed1

		# Same, for the account of a private key
		APTOS_PUBLISH_PRIVATE_KEY=0x... aptos-resource-publish derive -s seed1
	`)
)

// NewCommand creates the derive command.
func NewCommand(cfg Config) *cobra.Command {
	lggr := cfg.Logger
	if lggr == nil {
		lggr = logger.Nop()
	}

	cmd := &cobra.Command{
		Use:          "derive",
		Short:        "Print the address of a resource account",
		Long:         deriveLong,
		Example:      deriveExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load("", cmd.Flags())
			if err != nil {
				return fmt.Errorf("%w: %w", deploy.ErrInput, err)
			}

			source, err := sourceAddress(flags.MustString(cmd.Flags().GetString("address")), cfg.PrivateKey)
			if err != nil {
				return err
			}

			seed := cfg.Seed
			addr, err := fchainaptos.DeriveResourceAddress(source, []byte(seed))
			if err != nil {
				return fmt.Errorf("%w: %w", deploy.ErrInput, err)
			}

			lggr.Debugw("Derived resource address", "source", source.StringLong(), "seed", seed)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), addr.StringLong())

			return err
		},
	}

	cmd.Flags().StringP("address", "a", "", "Address of the account creating the resource account")
	cmd.Flags().StringP(config.FlagName("private_key"), "k", "",
		"Private key of the account creating the resource account, used when --address is not set (env "+
			config.EnvName("private_key")+")")
	flags.Seed(cmd)
	_ = cmd.MarkFlagRequired(config.FlagName("seed"))

	return cmd
}

// sourceAddress resolves the creating account from the address or, failing that, from the
// private key.
func sourceAddress(address, privateKey string) (aptoslib.AccountAddress, error) {
	if address != "" {
		addr, err := fchainaptos.ParseAddress(address)
		if err != nil {
			return aptoslib.AccountAddress{}, fmt.Errorf("%w: %w", deploy.ErrInput, err)
		}

		return addr, nil
	}

	if privateKey == "" {
		return aptoslib.AccountAddress{}, fmt.Errorf("%w: %w", deploy.ErrInput,
			errors.New("either --address or --private-key is required"))
	}

	key := provider.NewPrivateKey(privateKey)
	defer key.Wipe()

	acc, err := provider.AccountGenCredential(key).Generate()
	if err != nil {
		return aptoslib.AccountAddress{}, fmt.Errorf("%w: %w", deploy.ErrInput, err)
	}

	return acc.AccountAddress(), nil
}
