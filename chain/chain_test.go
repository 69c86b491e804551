package chain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinTypes(t *testing.T) {
	assert.Equal(t, uint32(0), Bitcoin.CoinType())
	assert.Equal(t, uint32(1), BitcoinTestnet.CoinType())
	assert.Equal(t, uint32(60), Ethereum.CoinType())
	assert.Equal(t, uint32(60), Arbitrum.CoinType())
	assert.Equal(t, uint32(501), Solana.CoinType())
	assert.Equal(t, uint32(501), SolanaDevnet.CoinType())
	assert.Equal(t, uint32(133), Zcash.CoinType())
	assert.Equal(t, uint32(1), ZcashTestnet.CoinType())
}

func TestCurves(t *testing.T) {
	for _, c := range All() {
		switch c {
		case Solana, SolanaDevnet:
			assert.Equal(t, Ed25519, c.Curve(), c.String())
		default:
			assert.Equal(t, Secp256k1, c.Curve(), c.String())
		}
	}
}

func TestEVMChainIDsMatchRegistry(t *testing.T) {
	for _, c := range All() {
		id, ok := c.EVMChainID()
		assert.Equal(t, c.IsEVM(), ok, c.String())
		if !ok {
			continue
		}
		def, found := EVMChainByID(id)
		require.True(t, found, c.String())
		assert.Equal(t, id, def.ChainID)
	}
}

func TestEVMChainByID(t *testing.T) {
	eth, ok := EVMChainByID(1)
	require.True(t, ok)
	assert.Equal(t, "Ethereum", eth.Name)
	assert.Equal(t, "ETH", eth.Symbol)
	assert.Equal(t, uint8(18), eth.Decimals)
	assert.False(t, eth.Testnet)

	bsc, ok := EVMChainByID(56)
	require.True(t, ok)
	assert.Equal(t, "BNB Smart Chain", bsc.Name)
	assert.Equal(t, "BNB", bsc.Symbol)

	_, ok = EVMChainByID(999999)
	assert.False(t, ok)
}

func TestEVMRegistry(t *testing.T) {
	chains := EVMChains()
	assert.Len(t, chains, 9)

	testnets := 0
	for _, c := range chains {
		assert.True(t, strings.HasPrefix(c.RPCURL, "https://"), c.Name)
		assert.True(t, strings.HasPrefix(c.ExplorerURL, "https://"), c.Name)
		assert.Equal(t, uint8(18), c.Decimals, c.Name)
		if c.Testnet {
			testnets++
		}
	}
	assert.Equal(t, 2, testnets)
}

func TestIsTestnet(t *testing.T) {
	assert.False(t, Bitcoin.IsTestnet())
	assert.True(t, BitcoinTestnet.IsTestnet())
	assert.True(t, Sepolia.IsTestnet())
	assert.True(t, PolygonAmoy.IsTestnet())
	assert.True(t, SolanaDevnet.IsTestnet())
	assert.True(t, ZcashTestnet.IsTestnet())
	assert.False(t, Zcash.IsTestnet())
}

func TestString(t *testing.T) {
	assert.Equal(t, "bitcoin", Bitcoin.String())
	assert.Equal(t, "polygon-amoy", PolygonAmoy.String())
	assert.Equal(t, "zcash-testnet", ZcashTestnet.String())
}
