/*
Package operations provides the Operations API used to run the on-chain steps of a deployment
in a structured and traceable manner.

An Operation wraps exactly one side effect (for example submitting a transaction and waiting
for it to be committed) behind a versioned Definition. ExecuteOperation runs it and records a
Report holding the input, output and error of the run in a Reporter.

Before executing, ExecuteOperation looks for a previous successful report with the same
definition and input. If one exists the operation is skipped and the recorded output is
returned, so a run that crashed half way can be restarted with a FileReporter and resume at
the first step that has not completed. WithForceExecution disables the lookup for a single
execution.

Retries are disabled by default. WithRetry and WithRetryConfig opt an execution into retries
with avast/retry-go; NewUnrecoverableError stops the retry loop early.

# Basic Usage

	op := operations.NewOperation("deploy-package", semver.MustParse("1.0.0"),
		"Publishes a package", handler)

	reporter, err := operations.NewFileReporter("reports.json")
	if err != nil {
		return err
	}

	b := operations.NewBundle(cmd.Context, lggr, reporter)
	report, err := operations.ExecuteOperation(b, op, deps, input)
*/
package operations
