package chain

// EVMChain describes an EVM-compatible network. Transactions for all of them
// are built identically; only the chain id (and the RPC endpoint a caller
// broadcasts through) differs.
type EVMChain struct {
	ChainID     uint64
	Name        string
	Symbol      string
	Decimals    uint8
	RPCURL      string
	ExplorerURL string
	Testnet     bool
}

var evmChains = []EVMChain{
	{ChainID: 1, Name: "Ethereum", Symbol: "ETH", Decimals: 18, RPCURL: "https://eth.llamarpc.com", ExplorerURL: "https://etherscan.io"},
	{ChainID: 137, Name: "Polygon", Symbol: "MATIC", Decimals: 18, RPCURL: "https://polygon-rpc.com", ExplorerURL: "https://polygonscan.com"},
	{ChainID: 42161, Name: "Arbitrum One", Symbol: "ETH", Decimals: 18, RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://arbiscan.io"},
	{ChainID: 8453, Name: "Base", Symbol: "ETH", Decimals: 18, RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org"},
	{ChainID: 10, Name: "Optimism", Symbol: "ETH", Decimals: 18, RPCURL: "https://mainnet.optimism.io", ExplorerURL: "https://optimistic.etherscan.io"},
	{ChainID: 56, Name: "BNB Smart Chain", Symbol: "BNB", Decimals: 18, RPCURL: "https://bsc-dataseed.binance.org", ExplorerURL: "https://bscscan.com"},
	{ChainID: 43114, Name: "Avalanche C-Chain", Symbol: "AVAX", Decimals: 18, RPCURL: "https://api.avax.network/ext/bc/C/rpc", ExplorerURL: "https://snowtrace.io"},
	{ChainID: 11155111, Name: "Sepolia", Symbol: "ETH", Decimals: 18, RPCURL: "https://rpc.sepolia.org", ExplorerURL: "https://sepolia.etherscan.io", Testnet: true},
	{ChainID: 80002, Name: "Polygon Amoy", Symbol: "MATIC", Decimals: 18, RPCURL: "https://rpc-amoy.polygon.technology", ExplorerURL: "https://amoy.polygonscan.com", Testnet: true},
}

// EVMChainByID looks up an EVM network by chain id.
func EVMChainByID(chainID uint64) (EVMChain, bool) {
	for _, c := range evmChains {
		if c.ChainID == chainID {
			return c, true
		}
	}
	return EVMChain{}, false
}

// EVMChains returns all known EVM networks.
func EVMChains() []EVMChain {
	out := make([]EVMChain, len(evmChains))
	copy(out, evmChains)
	return out
}

// EVMChainID maps a chain enum value to its chain id. ok is false for
// non-EVM chains.
func (c Chain) EVMChainID() (uint64, bool) {
	switch c {
	case Ethereum:
		return 1, true
	case Polygon:
		return 137, true
	case Arbitrum:
		return 42161, true
	case Base:
		return 8453, true
	case Optimism:
		return 10, true
	case BSC:
		return 56, true
	case Avalanche:
		return 43114, true
	case Sepolia:
		return 11155111, true
	case PolygonAmoy:
		return 80002, true
	}
	return 0, false
}
