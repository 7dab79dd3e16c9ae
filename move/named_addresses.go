package move

import (
	"fmt"
	"strings"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"

	fchainaptos "github.com/movedeploy/aptos-resource-publish/chain/aptos"
)

// NamedAddress maps a symbolic address used in Move source to a concrete account address.
type NamedAddress struct {
	Name    string
	Address aptoslib.AccountAddress
}

// NamedAddresses is an ordered set of named-address substitutions applied at build time.
// Names are unique; setting an existing name replaces its address in place.
type NamedAddresses []NamedAddress

// ParseNamedAddresses parses the Aptos CLI format "name=0x1,other=0x2". Whitespace around
// entries is ignored and an empty string yields an empty set.
func ParseNamedAddresses(s string) (NamedAddresses, error) {
	var out NamedAddresses
	if strings.TrimSpace(s) == "" {
		return out, nil
	}

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		name, value, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid named address %q: expected name=address", entry)
		}

		addr, err := fchainaptos.ParseAddress(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid named address %q: %w", name, err)
		}

		out = out.Set(name, addr)
	}

	return out, nil
}

// Set returns the set with name bound to addr.
func (n NamedAddresses) Set(name string, addr aptoslib.AccountAddress) NamedAddresses {
	for i := range n {
		if n[i].Name == name {
			n[i].Address = addr
			return n
		}
	}

	return append(n, NamedAddress{Name: name, Address: addr})
}

// Get returns the address bound to name.
func (n NamedAddresses) Get(name string) (aptoslib.AccountAddress, bool) {
	for _, na := range n {
		if na.Name == name {
			return na.Address, true
		}
	}

	return aptoslib.AccountAddress{}, false
}

// Merge returns n with every entry of other applied on top.
func (n NamedAddresses) Merge(other NamedAddresses) NamedAddresses {
	out := append(NamedAddresses(nil), n...)
	for _, na := range other {
		out = out.Set(na.Name, na.Address)
	}

	return out
}

// String renders the set in the format accepted by the Aptos CLI --named-addresses flag.
func (n NamedAddresses) String() string {
	parts := make([]string, 0, len(n))
	for _, na := range n {
		parts = append(parts, na.Name+"="+na.Address.StringLong())
	}

	return strings.Join(parts, ",")
}
