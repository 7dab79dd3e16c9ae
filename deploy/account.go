package deploy

import (
	"fmt"
	"time"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
)

// NodeClient is the part of the Aptos node client used to submit transactions.
type NodeClient interface {
	Account(address aptoslib.AccountAddress, ledgerVersion ...uint64) (aptoslib.AccountInfo, error)
	BuildSignAndSubmitTransaction(
		sender aptoslib.TransactionSigner, payload aptoslib.TransactionPayload, options ...any,
	) (*api.SubmitTransactionResponse, error)
}

// TxResult is a committed transaction.
type TxResult struct {
	Hash    string `json:"hash"`
	Version uint64 `json:"version"`
	GasUsed uint64 `json:"gasUsed"`
}

// LocalAccount signs and submits transactions for one signer and tracks its sequence number
// locally. The sequence number is read from the node once by Sync and advances by one for
// every confirmed transaction. A LocalAccount must not be shared between goroutines.
type LocalAccount struct {
	signer  aptoslib.TransactionSigner
	client  NodeClient
	confirm fchainaptos.ConfirmFunc
	gas     GasPolicy

	confirmTimeout time.Duration

	sequence uint64
	synced   bool
}

// NewLocalAccount returns an account that has not been synced yet.
func NewLocalAccount(
	signer aptoslib.TransactionSigner, client NodeClient, confirm fchainaptos.ConfirmFunc,
	gas GasPolicy, confirmTimeout time.Duration,
) *LocalAccount {
	return &LocalAccount{
		signer:         signer,
		client:         client,
		confirm:        confirm,
		gas:            gas.WithDefaults(),
		confirmTimeout: confirmTimeout,
	}
}

// Address returns the signer's address.
func (a *LocalAccount) Address() aptoslib.AccountAddress {
	return a.signer.AccountAddress()
}

// SequenceNumber returns the sequence number the next transaction is signed with.
func (a *LocalAccount) SequenceNumber() uint64 {
	return a.sequence
}

// Sync reads the signer's sequence number from the node.
func (a *LocalAccount) Sync() error {
	addr := a.Address()
	info, err := a.client.Account(addr)
	if err != nil {
		return fmt.Errorf("%w: failed to get account %s: %w", ErrSubmission, addr.String(), err)
	}

	seq, err := info.SequenceNumber()
	if err != nil {
		return fmt.Errorf("%w: failed to read sequence number of %s: %w", ErrSubmission, addr.String(), err)
	}

	a.sequence = seq
	a.synced = true

	return nil
}

// Submit signs the payload with the current sequence number and submits it. It returns the
// transaction hash. The sequence number is not advanced until the transaction is confirmed.
func (a *LocalAccount) Submit(payload aptoslib.TransactionPayload) (string, error) {
	if !a.synced {
		if err := a.Sync(); err != nil {
			return "", err
		}
	}

	opts := append(a.gas.options(), aptoslib.SequenceNumber(a.sequence))
	resp, err := a.client.BuildSignAndSubmitTransaction(a.signer, payload, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	return resp.Hash, nil
}

// Confirm waits for the transaction to be committed. A successfully committed transaction
// advances the sequence number.
func (a *LocalAccount) Confirm(hash string) (TxResult, error) {
	var opts []any
	if a.confirmTimeout > 0 {
		opts = append(opts, aptoslib.PollTimeout(a.confirmTimeout))
	}

	tx, err := a.confirm(hash, opts...)
	if err != nil {
		return TxResult{}, fmt.Errorf("%w: %w", ErrConfirmation, err)
	}

	a.sequence++

	return TxResult{Hash: tx.Hash, Version: tx.Version, GasUsed: tx.GasUsed}, nil
}
