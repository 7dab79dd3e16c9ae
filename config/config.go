package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes the environment variable of every config key.
	EnvPrefix = "APTOS_PUBLISH"

	DefaultNodeURL     = "http://127.0.0.1:8080"
	DefaultPackagePath = "."
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"

	redacted = "<redacted>"
)

// Config is the configuration of a publish run.
//
// WARNING: This data type contains sensitive fields and should not be logged. Use Redacted.
type Config struct {
	NodeURL         string        `mapstructure:"node_url" yaml:"node_url"`                 // The Aptos node REST API URL
	ChainSelector   uint64        `mapstructure:"chain_selector" yaml:"chain_selector"`     // Chain selector of the target network. Zero means Aptos localnet.
	PrivateKey      string        `mapstructure:"private_key" yaml:"private_key"`           // Secret: The ed25519 private key of the signer account
	DeployerAddress string        `mapstructure:"deployer_address" yaml:"deployer_address"` // The account holding the deployer module
	DeployerModule  string        `mapstructure:"deployer_module" yaml:"deployer_module"`   // The module that creates the resource account
	PackageName     string        `mapstructure:"package_name" yaml:"package_name"`         // The named address bound to the resource account
	PackagePath     string        `mapstructure:"package_path" yaml:"package_path"`         // The Move package directory
	Seed            string        `mapstructure:"seed" yaml:"seed"`                         // The resource account seed
	PublishFunction string        `mapstructure:"publish_function" yaml:"publish_function"` // The entry function that publishes the package
	NamedAddresses  string        `mapstructure:"named_addresses" yaml:"named_addresses"`   // Extra named addresses, name=addr,...
	MaxGasAmount    uint64        `mapstructure:"max_gas_amount" yaml:"max_gas_amount"`
	GasUnitPrice    uint64        `mapstructure:"gas_unit_price" yaml:"gas_unit_price"`
	ExpirationSecs  uint64        `mapstructure:"expiration_seconds" yaml:"expiration_seconds"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout" yaml:"confirm_timeout"`
	AptosCLI        string        `mapstructure:"aptos_cli" yaml:"aptos_cli"`         // The Aptos CLI binary used to build the package
	PayloadFile     string        `mapstructure:"payload_file" yaml:"payload_file"`   // A prebuilt publish payload, skips the build
	ReportsFile     string        `mapstructure:"reports_file" yaml:"reports_file"`   // Operation reports, makes runs resumable
	ForcePublish    bool          `mapstructure:"force_publish" yaml:"force_publish"` // Publish even if a previous run published the package
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string        `mapstructure:"log_format" yaml:"log_format"`
}

var (
	// keys lists every config key. The flag of a key is the key with dashes.
	keys = []string{
		"node_url", "chain_selector", "private_key", "deployer_address", "deployer_module",
		"package_name", "package_path", "seed", "publish_function", "named_addresses",
		"max_gas_amount", "gas_unit_price", "expiration_seconds", "confirm_timeout",
		"aptos_cli", "payload_file", "reports_file", "force_publish", "log_level", "log_format",
	}

	// legacyEnvBindings are accepted after the prefixed variable of the same key.
	legacyEnvBindings = map[string][]string{
		"private_key": {"APTOS_DEPLOYER_KEY"},
		"node_url":    {"APTOS_NODE_URL"},
	}

	defaults = map[string]any{
		"node_url":     DefaultNodeURL,
		"package_path": DefaultPackagePath,
		"log_level":    DefaultLogLevel,
		"log_format":   DefaultLogFormat,
	}
)

// FlagName returns the command line flag bound to key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// EnvName returns the environment variable bound to key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// Load builds the config from, in increasing precedence: defaults, the file at filePath,
// environment variables and the flags of fs that were set. An empty filePath skips the file.
// fs may be nil.
func Load(filePath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		if _, err := os.Stat(filePath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for _, key := range keys {
		inputs := []string{key, EnvName(key)}
		inputs = append(inputs, legacyEnvBindings[key]...)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// bindFlags binds the flags named after config keys. Only flags that were set override the
// file and the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range keys {
		f := fs.Lookup(FlagName(key))
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that every required value is present. Values are parsed later, where
// they are used.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		key   string
		value string
	}{
		{"node_url", c.NodeURL},
		{"private_key", c.PrivateKey},
		{"deployer_address", c.DeployerAddress},
		{"seed", c.Seed},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required (--%s or %s)", r.key, FlagName(r.key), EnvName(r.key)))
		}
	}
	if c.PackagePath == "" && c.PayloadFile == "" {
		errs = append(errs, errors.New("package_path or payload_file is required"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy of the config that is safe to log.
func (c Config) Redacted() Config {
	if c.PrivateKey != "" {
		c.PrivateKey = redacted
	}

	return c
}

// YAML renders the redacted config.
func (c Config) YAML() (string, error) {
	b, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Keys returns every config key in a stable order.
func Keys() []string {
	return slices.Clone(keys)
}
