package provider

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/crypto"
	"github.com/smartcontractkit/chainlink-testing-framework/framework/components/blockchain"
)

// AccountGenerator is an interface for generating Aptos accounts.
type AccountGenerator interface {
	Generate() (*aptoslib.Account, error)
}

var (
	_ AccountGenerator = (*accountGenCTFDefault)(nil)
	_ AccountGenerator = (*accountGenNewSingleSender)(nil)
	_ AccountGenerator = (*accountGenPrivateKey)(nil)
)

// accountGenCTFDefault generates the pre-funded account of the CTF Aptos localnet container.
type accountGenCTFDefault struct {
	accountStr    string
	privateKeyStr string
}

// AccountGenCTFDefault creates a new instance of accountGenCTFDefault. It uses the default
// Aptos account and private key from the blockchain package.
func AccountGenCTFDefault() *accountGenCTFDefault {
	return &accountGenCTFDefault{
		accountStr:    blockchain.DefaultAptosAccount,
		privateKeyStr: blockchain.DefaultAptosPrivateKey,
	}
}

// Generate generates an Aptos account using the default address and private key from the
// blockchain package. It returns an error if the address or private key is invalid.
func (g *accountGenCTFDefault) Generate() (*aptoslib.Account, error) {
	var address aptoslib.AccountAddress

	if err := address.ParseStringRelaxed(g.accountStr); err != nil {
		return nil, fmt.Errorf("failed to parse account address %s: %w", g.accountStr, err)
	}

	privateKeyBytes, err := hex.DecodeString(strings.TrimPrefix(g.privateKeyStr, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	privateKey := ed25519.NewKeyFromSeed(privateKeyBytes)

	return aptoslib.NewAccountFromSigner(&crypto.Ed25519PrivateKey{Inner: privateKey}, address)
}

// accountGenNewSingleSender is an account generator that creates a new single sender account.
type accountGenNewSingleSender struct{}

// AccountGenNewSingleSender creates a new instance of accountGenNewSingleSender.
func AccountGenNewSingleSender() *accountGenNewSingleSender {
	return &accountGenNewSingleSender{}
}

// Generate generates a new random ed25519 Aptos account.
func (g *accountGenNewSingleSender) Generate() (*aptoslib.Account, error) {
	return aptoslib.NewEd25519SingleSenderAccount()
}

// accountGenPrivateKey is an account generator that creates an account from a credential handle.
type accountGenPrivateKey struct {
	privateKey *PrivateKey
}

// AccountGenPrivateKey creates an account generator for the given hex encoded private key.
func AccountGenPrivateKey(privateKey string) *accountGenPrivateKey {
	return AccountGenCredential(NewPrivateKey(privateKey))
}

// AccountGenCredential creates an account generator that reads the key from the handle. The
// caller keeps ownership of the handle and is responsible for wiping it.
func AccountGenCredential(privateKey *PrivateKey) *accountGenPrivateKey {
	return &accountGenPrivateKey{
		privateKey: privateKey,
	}
}

// Generate generates an Aptos account from the private key. The account address is the
// authentication key of the ed25519 public key, so the generated account is only correct for
// accounts whose key has never been rotated.
func (g *accountGenPrivateKey) Generate() (*aptoslib.Account, error) {
	raw, err := g.privateKey.reveal()
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	privateKey := &crypto.Ed25519PrivateKey{}
	if err := privateKey.FromHex(raw); err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return aptoslib.NewAccountFromSigner(privateKey)
}
