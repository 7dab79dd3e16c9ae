/*
Package chain defines the blockchain abstraction used by the publisher.

A BlockChain identifies a chain by its chain selector and exposes its human readable name and
family. A Provider owns the setup of a chain (node client, deployer signer) and hands out the
initialized BlockChain:

	p := provider.NewRPCChainProvider(selector, provider.RPCChainProviderConfig{
		RPCURL:            "http://127.0.0.1:8080/v1",
		DeployerSignerGen: provider.AccountGenPrivateKey(key),
	})

	bc, err := p.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize %s: %w", p.Name(), err)
	}

Family specific handles live in sub packages; chain/aptos is the only family the publisher
targets.
*/
package chain
