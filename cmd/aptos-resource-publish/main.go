// Command aptos-resource-publish creates an Aptos resource account and publishes a Move package
// to it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/movedeploy/aptos-resource-publish/pkg/commands"
	"github.com/movedeploy/aptos-resource-publish/pkg/commands/text"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aptos-resource-publish",
		Short: "Publish Move packages to Aptos resource accounts",
		Long: text.LongDesc(`
			Creates a resource account through a deployer module and publishes a Move package to
			it. Run "publish" to deploy and "derive" to compute a resource account address.
		`),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// A nil logger lets each command build its logger from its own flags.
	cmds := commands.New(nil)
	root.AddCommand(cmds.Publish(), cmds.Derive())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
