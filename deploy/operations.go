package deploy

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/move"
	"github.com/movedeploy/aptos-resource-publish/operations"
)

// CreateResourceAccountInput identifies a resource account creation. Two runs with the same
// input create the same account.
type CreateResourceAccountInput struct {
	Signer         string `json:"signer"`
	Deployer       string `json:"deployer"`
	DeployerModule string `json:"deployerModule"`
	Seed           string `json:"seed"`
}

// PublishPackageInput identifies a package publish.
type PublishPackageInput struct {
	Signer          string `json:"signer"`
	ResourceAddress string `json:"resourceAddress"`
	Function        string `json:"function"`
	PackageDigest   string `json:"packageDigest"`
}

// CreateResourceAccountDeps are the dependencies of CreateResourceAccountOp.
type CreateResourceAccountDeps struct {
	Account *LocalAccount
	Machine *stateMachine
}

// PublishPackageDeps are the dependencies of PublishPackageOp.
type PublishPackageDeps struct {
	Account *LocalAccount
	Package *move.Package
	Machine *stateMachine
}

var CreateResourceAccountOp = operations.NewOperation(
	"aptos-create-resource-account",
	semver.MustParse("1.0.0"),
	"Creates a resource account through the deployer module",
	func(b operations.Bundle, deps CreateResourceAccountDeps, in CreateResourceAccountInput) (TxResult, error) {
		deployer, err := fchainaptos.ParseAddress(in.Deployer)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: deployer address: %w", ErrInput, err)
		}

		payload, err := CreateResourceAccountPayload(deployer, in.DeployerModule, []byte(in.Seed))
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: %w", ErrInput, err)
		}

		hash, err := deps.Account.Submit(payload)
		if err != nil {
			return TxResult{}, err
		}
		b.Logger.Infow("Submitted resource account creation", "tx", hash, "sequence", deps.Account.SequenceNumber())
		if err = deps.Machine.transition(AccountCreationSubmitted); err != nil {
			return TxResult{}, err
		}

		tx, err := deps.Account.Confirm(hash)
		if err != nil {
			return TxResult{}, err
		}
		b.Logger.Infow("Resource account creation confirmed", "tx", tx.Hash, "version", tx.Version)

		return tx, nil
	},
)

var PublishPackageOp = operations.NewOperation(
	"aptos-publish-package",
	semver.MustParse("1.0.0"),
	"Publishes a Move package to a resource account",
	func(b operations.Bundle, deps PublishPackageDeps, in PublishPackageInput) (TxResult, error) {
		fn, err := ParseFunctionID(in.Function)
		if err != nil {
			return TxResult{}, err
		}

		resource, err := fchainaptos.ParseAddress(in.ResourceAddress)
		if err != nil {
			return TxResult{}, fmt.Errorf("%w: resource address: %w", ErrInput, err)
		}

		payload, err := PublishPackagePayload(fn, resource, deps.Package)
		if err != nil {
			return TxResult{}, err
		}

		hash, err := deps.Account.Submit(payload)
		if err != nil {
			return TxResult{}, err
		}
		b.Logger.Infow("Submitted package publish", "tx", hash, "function", fn.String(),
			"sequence", deps.Account.SequenceNumber())
		if err = deps.Machine.transition(PublishSubmitted); err != nil {
			return TxResult{}, err
		}

		tx, err := deps.Account.Confirm(hash)
		if err != nil {
			return TxResult{}, err
		}
		b.Logger.Infow("Package publish confirmed", "tx", tx.Hash, "version", tx.Version)

		return tx, nil
	},
)
