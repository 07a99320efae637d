package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/anvahreal/ravgateway/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// keccak256("Transfer(address,address,uint256)")
var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// An ERC-20 Transfer log carries the indexed from/to addresses in topics 1
// and 2 and the amount as a single 32-byte word in the data section.
const (
	transferTopicCount = 3
	transferDataLength = 32
)

type TransferEvent struct {
	From   ethcommon.Address
	To     ethcommon.Address
	Amount *big.Int
}

// VerificationResult is the accepted verdict handed back to the caller, which
// then drives the paid transition.
type VerificationResult struct {
	TxHash      string
	Amount      *big.Int
	BlockNumber uint64
}

// DecodeTransferLog decodes a single receipt log as an ERC-20 Transfer
// emitted by the given token contract. Logs from other contracts, other
// event signatures, or with malformed topics/data are skipped (false),
// never an error.
func DecodeTransferLog(log *types.Log, token ethcommon.Address) (TransferEvent, bool) {
	if log == nil || log.Address != token {
		return TransferEvent{}, false
	}
	if len(log.Topics) != transferTopicCount || log.Topics[0] != transferEventSignature {
		return TransferEvent{}, false
	}
	if len(log.Data) != transferDataLength {
		return TransferEvent{}, false
	}
	return TransferEvent{
		From:   ethcommon.BytesToAddress(log.Topics[1].Bytes()),
		To:     ethcommon.BytesToAddress(log.Topics[2].Bytes()),
		Amount: new(big.Int).SetBytes(log.Data),
	}, true
}

// CentsToTokenUnits converts a USD amount in cents to the token's smallest
// unit using its fixed decimal count. All comparisons happen in integer
// smallest-unit space, floats are never involved.
func CentsToTokenUnits(amountCents int64, decimals int) *big.Int {
	units := big.NewInt(amountCents)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-2)), nil)
	return units.Mul(units, scale)
}

// TokenAmount renders a USD cent amount as the exact smallest-unit string a
// wallet needs to construct the transfer on this network.
func (n Network) TokenAmount(amountCents int64) string {
	return CentsToTokenUnits(amountCents, n.TokenDecimals).String()
}

// VerifyReceipt checks a fetched receipt against the expected invoice terms:
// the transaction succeeded, the network's stablecoin contract emitted a
// Transfer to the expected recipient, and the amount covers the expected
// smallest-unit value. Overpayment passes, the merchant keeps the surplus.
func VerifyReceipt(receipt *types.Receipt, network Network, txHash, recipientAddress string, amountCents int64) (*VerificationResult, error) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, common.ErrTransactionFailed
	}

	recipient := ethcommon.HexToAddress(recipientAddress)
	expected := CentsToTokenUnits(amountCents, network.TokenDecimals)

	// A receipt can carry several token transfers (router contracts, batched
	// sends). Prefer the one addressed to the invoice recipient.
	var match, firstSeen *TransferEvent
	for _, log := range receipt.Logs {
		decoded, ok := DecodeTransferLog(log, network.TokenContract)
		if !ok {
			continue
		}
		if firstSeen == nil {
			first := decoded
			firstSeen = &first
		}
		if strings.EqualFold(decoded.To.Hex(), recipient.Hex()) {
			found := decoded
			match = &found
			break
		}
	}
	if firstSeen == nil {
		return nil, fmt.Errorf("%w: no %s transfer emitted by %s", common.ErrTransferEventNotFound, network.TokenSymbol, network.TokenContract.Hex())
	}
	if match == nil {
		return nil, fmt.Errorf("%w: got %s want %s", common.ErrRecipientMismatch, firstSeen.To.Hex(), recipient.Hex())
	}

	if match.Amount.Cmp(expected) < 0 {
		return nil, fmt.Errorf("%w: got %s want at least %s", common.ErrAmountMismatch, match.Amount.String(), expected.String())
	}

	return &VerificationResult{
		TxHash:      txHash,
		Amount:      match.Amount,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}
