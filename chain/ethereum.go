package chain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ziflex/lecho/v3"
)

var txHashRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// EthereumClient wraps an ethclient for a single configured network.
type EthereumClient struct {
	client  *ethclient.Client
	network Network
	timeout time.Duration
}

// InitClients dials every network in the registry. A network that cannot be
// dialed is a startup error: we never want to accept invoices we cannot verify.
func InitClients(ctx context.Context, cfg *Config, logger *lecho.Logger) (map[string]ReceiptClient, error) {
	clients := make(map[string]ReceiptClient)
	for name, network := range cfg.Registry() {
		client, err := ethclient.DialContext(ctx, network.RPCEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s rpc at %s: %w", name, network.RPCEndpoint, err)
		}
		logger.Infof("Connected to %s rpc: %s (%s, %d decimals)", name, network.RPCEndpoint, network.TokenSymbol, network.TokenDecimals)
		clients[name] = &EthereumClient{
			client:  client,
			network: network,
			timeout: time.Duration(cfg.RPCTimeout) * time.Second,
		}
	}
	return clients, nil
}

func (ec *EthereumClient) Network() Network {
	return ec.network
}

// GetTransactionReceipt fetches the receipt for txHash with a bounded wait.
// A syntactically invalid hash is rejected as a permanent error before any
// RPC call: it can never become valid, so it must not look retryable. A
// receipt the node does not know about (not mined yet or nonexistent) maps
// to ErrTransactionNotFound, any other RPC failure to ErrRPCError.
func (ec *EthereumClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	if !txHashRegex.MatchString(txHash) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidTransactionHash, txHash)
	}
	ctx, cancel := context.WithTimeout(ctx, ec.timeout)
	defer cancel()

	receipt, err := ec.client.TransactionReceipt(ctx, ethcommon.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, common.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRPCError, err)
	}
	return receipt, nil
}
