// Package commands provides the CLI commands of the resource account publisher.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	commands := commands.New(lggr)
//	app.AddCommand(
//	    commands.Publish(),
//	    commands.Derive(),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/movedeploy/aptos-resource-publish/pkg/commands/publish"
//
//	app.AddCommand(publish.NewCommand(publish.Config{
//	    Logger: lggr,
//	    Deps:   &publish.Deps{...},  // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/movedeploy/aptos-resource-publish/pkg/commands/derive"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/publish"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger. A nil logger makes the publish
// command build its logger from the --log-level and --log-format flags.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Publish creates the publish command.
//
// Usage:
//
//	cmds := commands.New(nil)
//	rootCmd.AddCommand(cmds.Publish())
func (c *Commands) Publish() *cobra.Command {
	return publish.NewCommand(publish.Config{
		Logger: c.lggr,
	})
}

// Derive creates the derive command.
func (c *Commands) Derive() *cobra.Command {
	return derive.NewCommand(derive.Config{
		Logger: c.lggr,
	})
}
