package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/aptos-labs/aptos-go-sdk/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
	"github.com/movedeploy/aptos-resource-publish/move"
)

const (
	testPrivateKey  = "0xE4FD0E90D32CB98DC6AD64516A421E8C2731870217CDBA64203CEB158A866304"
	testSignerAddr  = "0x9b7a7333d1abd0e9c2a27d00a8a7a131d30d3b09908739d52693fe513e205c38"
	testResourceHex = "0x26b197709cadc58500d5916c66cdfd9b070f375c50cf647fc2e7400188fb4965"
	testSeed        = "seed1"
	testPackageName = "ccip"
)

var _ NodeClient = (*mockNodeClient)(nil)

type mockNodeClient struct {
	mock.Mock
}

func (m *mockNodeClient) Account(address aptoslib.AccountAddress, _ ...uint64) (aptoslib.AccountInfo, error) {
	args := m.Called(address)
	return args.Get(0).(aptoslib.AccountInfo), args.Error(1)
}

func (m *mockNodeClient) BuildSignAndSubmitTransaction(
	sender aptoslib.TransactionSigner, payload aptoslib.TransactionPayload, options ...any,
) (*api.SubmitTransactionResponse, error) {
	args := m.Called(sender, payload, options)
	resp, _ := args.Get(0).(*api.SubmitTransactionResponse)

	return resp, args.Error(1)
}

// accountInfo builds the node's account resource with the given sequence number.
func accountInfo(t *testing.T, seq uint64) aptoslib.AccountInfo {
	t.Helper()

	var info aptoslib.AccountInfo
	raw := fmt.Sprintf(`{"sequence_number":"%d","authentication_key":"%s"}`, seq, testSignerAddr)
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	return info
}

// entryFunction matches payloads calling the named function.
func entryFunction(name string) any {
	return mock.MatchedBy(func(p aptoslib.TransactionPayload) bool {
		ef, ok := p.Payload.(*aptoslib.EntryFunction)
		return ok && ef.Function == name
	})
}

func testSigner(t *testing.T) *aptoslib.Account {
	t.Helper()

	key := &crypto.Ed25519PrivateKey{}
	require.NoError(t, key.FromHex(testPrivateKey))
	account, err := aptoslib.NewAccountFromSigner(key)
	require.NoError(t, err)

	return account
}

func mustAddress(t *testing.T, s string) aptoslib.AccountAddress {
	t.Helper()

	addr, err := fchainaptos.ParseAddress(s)
	require.NoError(t, err)

	return addr
}

// fakeConfirm confirms transactions from a table of hash to outcome. Unknown hashes succeed.
type fakeConfirm struct {
	failures map[string]error
	version  uint64
	calls    []string
}

func (f *fakeConfirm) confirm(hash string, _ ...any) (*api.UserTransaction, error) {
	f.calls = append(f.calls, hash)
	if err, ok := f.failures[hash]; ok {
		return nil, err
	}
	f.version++

	return &api.UserTransaction{Hash: hash, Version: f.version, Success: true, GasUsed: 10}, nil
}

// fakeBuilder returns a fixed package and records the options of the last build.
type fakeBuilder struct {
	pkg  *move.Package
	err  error
	opts *move.BuildOptions
}

func (f *fakeBuilder) Build(_ context.Context, opts move.BuildOptions) (*move.Package, error) {
	f.opts = &opts
	if f.err != nil {
		return nil, f.err
	}

	return f.pkg, nil
}

func testPackage() *move.Package {
	return &move.Package{
		Metadata: []byte{0x01, 0x02},
		Code:     [][]byte{{0xa1, 0x1c, 0xeb, 0x0b}},
	}
}

// packageDir writes a Move.toml declaring the package and deployer named addresses.
func packageDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	manifest := `[package]
name = "ccip"
version = "1.0.0"

[addresses]
ccip = "_"
deployer = "_"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, move.ManifestFile), []byte(manifest), 0o600))

	return dir
}

// transitions records every state change.
type transitions struct {
	got []State
}

func (r *transitions) record(_, to State) {
	r.got = append(r.got, to)
}
