package move

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// DefaultAptosCLI is the Aptos CLI binary looked up on PATH when none is configured.
const DefaultAptosCLI = "aptos"

// BuildOptions describes a package build.
type BuildOptions struct {
	// PackageDir is the directory containing Move.toml.
	PackageDir string
	// NamedAddresses are substituted for the symbolic addresses of the package.
	NamedAddresses NamedAddresses
}

// Builder compiles a Move package into a publishable Package.
type Builder interface {
	Build(ctx context.Context, opts BuildOptions) (*Package, error)
}

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

var _ Builder = (*CLIBuilder)(nil)

// CLIBuilder builds packages with `aptos move build-publish-payload`.
type CLIBuilder struct {
	binary string
	runner CommandRunner
	lggr   logger.Logger
}

// CLIBuilderOption configures a CLIBuilder.
type CLIBuilderOption func(*CLIBuilder)

// WithCommandRunner replaces the runner used to invoke the Aptos CLI.
func WithCommandRunner(r CommandRunner) CLIBuilderOption {
	return func(b *CLIBuilder) {
		b.runner = r
	}
}

// NewCLIBuilder returns a builder that invokes binary, or DefaultAptosCLI if binary is empty.
func NewCLIBuilder(binary string, lggr logger.Logger, opts ...CLIBuilderOption) *CLIBuilder {
	if binary == "" {
		binary = DefaultAptosCLI
	}

	b := &CLIBuilder{
		binary: binary,
		runner: ExecRunner,
		lggr:   lggr,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build compiles the package and decodes the resulting publish payload.
func (b *CLIBuilder) Build(ctx context.Context, opts BuildOptions) (*Package, error) {
	if opts.PackageDir == "" {
		return nil, errors.New("package directory is required")
	}

	tmpDir, err := os.MkdirTemp("", "aptos-publish-payload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	payloadPath := filepath.Join(tmpDir, "payload.json")
	args := []string{
		"move", "build-publish-payload",
		"--package-dir", opts.PackageDir,
		"--json-output-file", payloadPath,
		"--assume-yes",
	}
	if len(opts.NamedAddresses) > 0 {
		args = append(args, "--named-addresses", opts.NamedAddresses.String())
	}

	b.lggr.Infow("Building Move package",
		"dir", opts.PackageDir, "named_addresses", opts.NamedAddresses.String())

	output, err := b.runner(ctx, b.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%s move build-publish-payload failed: %w\nOutput: %s", b.binary, err, string(output))
	}

	pkg, err := LoadPayloadFile(payloadPath)
	if err != nil {
		return nil, err
	}

	b.lggr.Infow("Built Move package", "modules", len(pkg.Code), "digest", pkg.Digest())

	return pkg, nil
}

var _ Builder = PayloadFileBuilder("")

// PayloadFileBuilder skips compilation and loads a payload file built ahead of time. The
// named addresses of such a payload are fixed, so BuildOptions are ignored.
type PayloadFileBuilder string

// Build loads the payload file.
func (p PayloadFileBuilder) Build(_ context.Context, _ BuildOptions) (*Package, error) {
	return LoadPayloadFile(string(p))
}
