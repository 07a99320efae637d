package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptClient is the read-only view of a chain RPC endpoint the verifier
// needs. The concrete implementation is an ethclient, tests supply mocks.
type ReceiptClient interface {
	GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
	Network() Network
}
