package chain

import (
	"strings"

	"github.com/anvahreal/ravgateway/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseRPCEndpoint  string `envconfig:"BASE_RPC_ENDPOINT" default:"https://mainnet.base.org"`
	BaseUSDCContract string `envconfig:"BASE_USDC_CONTRACT" default:"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
	CeloRPCEndpoint  string `envconfig:"CELO_RPC_ENDPOINT" default:"https://forno.celo.org"`
	CeloCUSDContract string `envconfig:"CELO_CUSD_CONTRACT" default:"0x765DE816845861e75A25fCA122bb6898B8B1282a"`
	RPCTimeout       int    `envconfig:"CHAIN_RPC_TIMEOUT" default:"15"` // seconds
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Network describes one supported settlement network: where to read chain
// data from and which stablecoin contract counts as payment.
type Network struct {
	Name          string
	ChainID       int64
	RPCEndpoint   string
	TokenContract ethcommon.Address
	TokenSymbol   string
	TokenDecimals int
}

// Registry returns the static network -> token mapping for the supported set.
func (c *Config) Registry() map[string]Network {
	return map[string]Network{
		common.NetworkBase: {
			Name:          common.NetworkBase,
			ChainID:       8453,
			RPCEndpoint:   c.BaseRPCEndpoint,
			TokenContract: ethcommon.HexToAddress(c.BaseUSDCContract),
			TokenSymbol:   "USDC",
			TokenDecimals: 6,
		},
		common.NetworkCelo: {
			Name:          common.NetworkCelo,
			ChainID:       42220,
			RPCEndpoint:   c.CeloRPCEndpoint,
			TokenContract: ethcommon.HexToAddress(c.CeloCUSDContract),
			TokenSymbol:   "cUSD",
			TokenDecimals: 18,
		},
	}
}

// FindNetwork resolves a network name (case-insensitive) against the registry.
func (c *Config) FindNetwork(name string) (Network, error) {
	network, found := c.Registry()[strings.ToLower(name)]
	if !found {
		return Network{}, common.ErrUnsupportedNetwork
	}
	return network, nil
}
