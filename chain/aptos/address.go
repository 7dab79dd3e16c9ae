package aptos

import (
	"errors"
	"fmt"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
)

// AddressLength is the length in bytes of an Aptos account address.
const AddressLength = 32

var ErrInvalidAddress = errors.New("invalid Aptos address")

// ParseAddress parses an Aptos address string. Aptos addresses can be in various formats
// (short, long, with/without 0x prefix) but are normalized to 32 bytes.
func ParseAddress(address string) (aptoslib.AccountAddress, error) {
	var addr aptoslib.AccountAddress
	if err := addr.ParseStringRelaxed(address); err != nil {
		return aptoslib.AccountAddress{}, fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, err)
	}

	return addr, nil
}

// AddressToBytes converts an Aptos address string to bytes.
func AddressToBytes(address string) ([]byte, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	return addr[:], nil
}

// AddressFromBytes converts raw address bytes into an account address. The input must be
// exactly AddressLength bytes long.
func AddressFromBytes(b []byte) (aptoslib.AccountAddress, error) {
	if len(b) != AddressLength {
		return aptoslib.AccountAddress{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidAddress, AddressLength, len(b))
	}

	var addr aptoslib.AccountAddress
	copy(addr[:], b)

	return addr, nil
}
