package aptos

import (
	"fmt"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
)

// SerializeSeed returns the BCS encoding of the seed (ULEB128 length prefix followed by the
// bytes). This is both the argument passed to create_resource_account and the seed input of
// the address derivation.
func SerializeSeed(seed []byte) ([]byte, error) {
	b, err := bcs.SerializeBytes(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize seed: %w", err)
	}

	return b, nil
}

// DeriveResourceAddress computes the address of the resource account created by source with the
// given seed:
//
//	sha3_256(source || bcs(seed) || 0xFF)
func DeriveResourceAddress(source aptoslib.AccountAddress, seed []byte) (aptoslib.AccountAddress, error) {
	serialized, err := SerializeSeed(seed)
	if err != nil {
		return aptoslib.AccountAddress{}, err
	}

	return deriveFromSerializedSeed(source, serialized), nil
}

// DeriveResourceAddressFromBytes is DeriveResourceAddress for a raw source address. It fails
// when source is not exactly AddressLength bytes long.
func DeriveResourceAddressFromBytes(source []byte, seed []byte) (aptoslib.AccountAddress, error) {
	addr, err := AddressFromBytes(source)
	if err != nil {
		return aptoslib.AccountAddress{}, err
	}

	return DeriveResourceAddress(addr, seed)
}

func deriveFromSerializedSeed(source aptoslib.AccountAddress, serializedSeed []byte) aptoslib.AccountAddress {
	return source.ResourceAccount(serializedSeed)
}
