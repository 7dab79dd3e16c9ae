// Package flags provides the flags shared by the CLI commands.
//
// Flags that carry a config value are named after the config key (see config.FlagName), so
// that config.Load can bind them.
package flags

import (
	"github.com/spf13/cobra"

	"github.com/movedeploy/aptos-resource-publish/config"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// ConfigFile adds the --config/-c flag for the optional config file.
// Retrieve the value with cmd.Flags().GetString("config").
func ConfigFile(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Config file (yaml, toml or json)")
}

// Seed adds the --seed/-s flag.
func Seed(cmd *cobra.Command) {
	cmd.Flags().StringP(config.FlagName("seed"), "s", "", "Resource account seed (required)")
}

// Logging adds the --log-level and --log-format flags.
func Logging(cmd *cobra.Command) {
	cmd.Flags().String(config.FlagName("log_level"), config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().String(config.FlagName("log_format"), config.DefaultLogFormat, "Log format (console, json)")
}

// Publish adds every flag of the publish command. The short flags match the flags of the
// original deployment script.
func Publish(cmd *cobra.Command) {
	f := cmd.Flags()

	ConfigFile(cmd)
	Seed(cmd)
	Logging(cmd)

	f.StringP(config.FlagName("deployer_address"), "d", "", "Address of the account holding the deployer module (required)")
	f.StringP(config.FlagName("private_key"), "k", "", "Hex encoded ed25519 private key of the signer (required, prefer "+
		config.EnvName("private_key")+")")
	f.StringP(config.FlagName("node_url"), "u", config.DefaultNodeURL, "Aptos node REST API URL")
	f.StringP(config.FlagName("package_name"), "n", "", "Named address of the package, bound to the resource account (default: Move.toml package name)")
	f.StringP(config.FlagName("package_path"), "p", config.DefaultPackagePath, "Move package directory")
	f.Uint64(config.FlagName("chain_selector"), 0, "Chain selector of the network (default: Aptos localnet)")
	f.String(config.FlagName("deployer_module"), "", "Module creating the resource account (default: deployer)")
	f.String(config.FlagName("publish_function"), "", "Entry function publishing the package (default: <deployer-address>::<deployer-module>::publish_package)")
	f.String(config.FlagName("named_addresses"), "", "Extra named addresses, name=address,...")
	f.Uint64(config.FlagName("max_gas_amount"), 0, "Max gas amount per transaction (default: 2000000)")
	f.Uint64(config.FlagName("gas_unit_price"), 0, "Gas unit price in octas (default: 1000)")
	f.Uint64(config.FlagName("expiration_seconds"), 0, "Transaction expiration in seconds (default: 300)")
	f.Duration(config.FlagName("confirm_timeout"), 0, "Wait for each transaction at most this long (default: client default)")
	f.String(config.FlagName("aptos_cli"), "", "Aptos CLI binary used to build the package (default: aptos)")
	f.String(config.FlagName("payload_file"), "", "Prebuilt publish payload, skips the build")
	f.String(config.FlagName("reports_file"), "", "File recording completed steps, makes the run resumable")
	f.Bool(config.FlagName("force_publish"), false, "Publish even if the reports show the package was published")
}
