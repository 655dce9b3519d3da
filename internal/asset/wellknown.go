package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDSepolia  = 11155111
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDBase     = 8453
)

// Well-known token addresses on Ethereum Mainnet
var (
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// Well-known NFT collection addresses on Ethereum Mainnet
var (
	AddrBAYC  = common.HexToAddress("0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D")
	AddrAzuki = common.HexToAddress("0xED5AF388653567Af2F388E6224dC7C4b3241C544")
)

// Well-known Assets (pre-created instances)
var (
	ETH  = NewAssetWithName(NewNativeAssetID(ChainIDEthereum), "ETH", "Ethereum", 18)
	USDC = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrUSDCEthereum), "USDC", "USD Coin", 6)
	WETH = NewAssetWithName(NewTokenAssetID(ChainIDEthereum, AddrWETHEthereum), "WETH", "Wrapped Ether", 18)
)

// Well-known Collections (pre-created instances)
var (
	BAYC  = NewCollection(ChainIDEthereum, AddrBAYC, "BAYC", "Bored Ape Yacht Club")
	Azuki = NewCollection(ChainIDEthereum, AddrAzuki, "AZUKI", "Azuki")
)

// DefaultRegistry returns a registry pre-populated with well-known
// assets and collections.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ETH)
	r.Register(USDC)
	r.Register(WETH)

	r.RegisterCollection(BAYC)
	r.RegisterCollection(Azuki)

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}
