package chain

import (
	"math/big"
	"testing"

	"github.com/anvahreal/ravgateway/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

var (
	testToken     = ethcommon.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	testRecipient = ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	testSender    = ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	otherAddress  = ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")
	testTxHash    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

var testNetwork = Network{
	Name:          common.NetworkBase,
	ChainID:       8453,
	TokenContract: testToken,
	TokenSymbol:   "USDC",
	TokenDecimals: 6,
}

func transferLog(token, from, to ethcommon.Address, amount *big.Int) *types.Log {
	return &types.Log{
		Address: token,
		Topics: []ethcommon.Hash{
			transferEventSignature,
			ethcommon.BytesToHash(from.Bytes()),
			ethcommon.BytesToHash(to.Bytes()),
		},
		Data: ethcommon.LeftPadBytes(amount.Bytes(), 32),
	}
}

func successfulReceipt(logs ...*types.Log) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(123456),
		Logs:        logs,
	}
}

func TestDecodeTransferLog(t *testing.T) {
	amount := big.NewInt(25000000)
	event, ok := DecodeTransferLog(transferLog(testToken, testSender, testRecipient, amount), testToken)
	assert.True(t, ok)
	assert.Equal(t, testSender, event.From)
	assert.Equal(t, testRecipient, event.To)
	assert.Equal(t, 0, event.Amount.Cmp(amount))
}

func TestDecodeTransferLogSkipsOtherContracts(t *testing.T) {
	log := transferLog(otherAddress, testSender, testRecipient, big.NewInt(1))
	_, ok := DecodeTransferLog(log, testToken)
	assert.False(t, ok)
}

func TestDecodeTransferLogSkipsOtherEvents(t *testing.T) {
	log := transferLog(testToken, testSender, testRecipient, big.NewInt(1))
	log.Topics[0] = ethcommon.HexToHash("0xdeadbeef")
	_, ok := DecodeTransferLog(log, testToken)
	assert.False(t, ok)
}

func TestDecodeTransferLogSkipsMalformedData(t *testing.T) {
	log := transferLog(testToken, testSender, testRecipient, big.NewInt(1))
	log.Data = []byte{0x01}
	_, ok := DecodeTransferLog(log, testToken)
	assert.False(t, ok)
}

func TestCentsToTokenUnits(t *testing.T) {
	// $250.00 in USDC (6 decimals)
	assert.Equal(t, "250000000", CentsToTokenUnits(25000, 6).String())
	// $250.00 in cUSD (18 decimals), far beyond int64 range
	assert.Equal(t, "250000000000000000000", CentsToTokenUnits(25000, 18).String())
	// $0.01 is exactly one cent worth of smallest units
	assert.Equal(t, "10000", CentsToTokenUnits(1, 6).String())
}

func TestVerifyReceiptAcceptsExactAmount(t *testing.T) {
	amount := CentsToTokenUnits(25000, 6)
	receipt := successfulReceipt(transferLog(testToken, testSender, testRecipient, amount))

	result, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.NoError(t, err)
	assert.Equal(t, testTxHash, result.TxHash)
	assert.Equal(t, 0, result.Amount.Cmp(amount))
	assert.Equal(t, uint64(123456), result.BlockNumber)
}

func TestVerifyReceiptAcceptsOverpayment(t *testing.T) {
	amount := new(big.Int).Add(CentsToTokenUnits(25000, 6), big.NewInt(1))
	receipt := successfulReceipt(transferLog(testToken, testSender, testRecipient, amount))

	result, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Amount.Cmp(amount))
}

func TestVerifyReceiptRejectsOneUnitShort(t *testing.T) {
	amount := new(big.Int).Sub(CentsToTokenUnits(25000, 6), big.NewInt(1))
	receipt := successfulReceipt(transferLog(testToken, testSender, testRecipient, amount))

	_, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.ErrorIs(t, err, common.ErrAmountMismatch)
}

func TestVerifyReceiptRejectsRevertedTransaction(t *testing.T) {
	receipt := successfulReceipt(transferLog(testToken, testSender, testRecipient, CentsToTokenUnits(25000, 6)))
	receipt.Status = types.ReceiptStatusFailed

	_, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.ErrorIs(t, err, common.ErrTransactionFailed)
}

func TestVerifyReceiptRejectsWrongRecipient(t *testing.T) {
	receipt := successfulReceipt(transferLog(testToken, testSender, otherAddress, CentsToTokenUnits(25000, 6)))

	_, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.ErrorIs(t, err, common.ErrRecipientMismatch)
}

func TestVerifyReceiptRejectsMissingTransfer(t *testing.T) {
	// the only transfer in the receipt is from a different token contract
	receipt := successfulReceipt(transferLog(otherAddress, testSender, testRecipient, CentsToTokenUnits(25000, 6)))

	_, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.ErrorIs(t, err, common.ErrTransferEventNotFound)
}

func TestVerifyReceiptPicksTransferToRecipient(t *testing.T) {
	// batched send: an unrelated transfer precedes the one paying the invoice
	amount := CentsToTokenUnits(25000, 6)
	receipt := successfulReceipt(
		transferLog(testToken, testSender, otherAddress, big.NewInt(1)),
		transferLog(testToken, testSender, testRecipient, amount),
	)

	result, err := VerifyReceipt(receipt, testNetwork, testTxHash, testRecipient.Hex(), 25000)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Amount.Cmp(amount))
}

func TestVerifyReceiptRecipientCaseInsensitive(t *testing.T) {
	amount := CentsToTokenUnits(100, 6)
	receipt := successfulReceipt(transferLog(testToken, testSender, testRecipient, amount))

	_, err := VerifyReceipt(receipt, testNetwork, testTxHash, "0X1111111111111111111111111111111111111111", 100)
	assert.NoError(t, err)
}
