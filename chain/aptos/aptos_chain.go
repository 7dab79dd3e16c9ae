package aptos

import (
	"fmt"
	"strconv"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ConfirmFunc waits for the transaction with the given hash to be committed and returns the
// committed transaction. It returns an error if the wait fails or the transaction was not
// successfully executed.
type ConfirmFunc func(txHash string, opts ...any) (*api.UserTransaction, error)

// Chain represents an Aptos chain.
type Chain struct {
	Selector uint64

	Client         aptos.AptosRpcClient
	DeployerSigner aptos.TransactionSigner
	URL            string

	Confirm ConfirmFunc
}

// ChainSelector returns the chain selector of the chain
func (c Chain) ChainSelector() uint64 {
	return c.Selector
}

// String returns chain name and selector "<name> (<selector>)"
func (c Chain) String() string {
	return fmt.Sprintf("%s (%d)", c.Name(), c.Selector)
}

// Name returns the name of the chain. The selector is used as the name for chains unknown to
// the selector registry.
func (c Chain) Name() string {
	id, err := chainsel.GetChainIDFromSelector(c.Selector)
	if err != nil {
		return strconv.FormatUint(c.Selector, 10)
	}

	details, err := chainsel.GetChainDetailsByChainIDAndFamily(id, chainsel.FamilyAptos)
	if err != nil || details.ChainName == "" {
		return strconv.FormatUint(c.Selector, 10)
	}

	return details.ChainName
}

// Family returns the family of the chain
func (c Chain) Family() string {
	return chainsel.FamilyAptos
}

// NewConfirmFunc returns a ConfirmFunc that waits on the given client and treats a committed
// but failed transaction as an error carrying the VM status.
func NewConfirmFunc(client aptos.AptosRpcClient) ConfirmFunc {
	return func(txHash string, opts ...any) (*api.UserTransaction, error) {
		tx, err := client.WaitForTransaction(txHash, opts...)
		if err != nil {
			return nil, err
		}

		if !tx.Success {
			return tx, fmt.Errorf("transaction %s failed: %s", txHash, tx.VmStatus)
		}

		return tx, nil
	}
}
