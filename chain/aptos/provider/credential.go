package provider

import (
	"errors"
	"strings"
)

const redacted = "<redacted>"

var ErrCredentialWiped = errors.New("credential has been wiped")

// PrivateKey is a scoped handle to a hex encoded ed25519 private key. It is acquired once at
// start, handed to the signer generator and wiped on exit.
//
// WARNING: The raw key is only reachable from within this package. Every formatting path
// (fmt verbs, JSON) renders "<redacted>".
type PrivateKey struct {
	key []byte
}

// NewPrivateKey copies the given hex encoded key into a new credential handle.
func NewPrivateKey(hexKey string) *PrivateKey {
	return &PrivateKey{key: []byte(strings.TrimSpace(hexKey))}
}

// String implements fmt.Stringer.
func (k *PrivateKey) String() string { return redacted }

// GoString implements fmt.GoStringer so %#v does not print the key either.
func (k *PrivateKey) GoString() string { return redacted }

// MarshalJSON implements json.Marshaler.
func (k *PrivateKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Empty returns true if no key material is held.
func (k *PrivateKey) Empty() bool {
	return k == nil || len(k.key) == 0
}

// Wipe zeroes the key material. The handle is unusable afterwards.
func (k *PrivateKey) Wipe() {
	if k == nil {
		return
	}
	for i := range k.key {
		k.key[i] = 0
	}
	k.key = nil
}

func (k *PrivateKey) reveal() (string, error) {
	if k.Empty() {
		return "", ErrCredentialWiped
	}

	return string(k.key), nil
}
