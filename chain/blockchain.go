package chain

import (
	"github.com/movedeploy/aptos-resource-publish/chain/aptos"
)

var _ BlockChain = aptos.Chain{}

// BlockChain is an interface that represents a chain the publisher can deploy to.
type BlockChain interface {
	// String returns chain name and selector "<name> (<selector>)"
	String() string
	// Name returns the name of the chain
	Name() string
	ChainSelector() uint64
	Family() string
}
