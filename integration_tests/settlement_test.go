package integration_tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anvahreal/ravgateway/chain"
	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	txHashA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	txHashB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type SettlementTestSuite struct {
	suite.Suite
	svc        *service.GatewayService
	merchantID int64
}

func (suite *SettlementTestSuite) SetupSuite() {
	svc, err := gatewayTestServiceInit("settlement")
	if err != nil {
		suite.T().Fatalf("Error initializing test service: %v", err)
	}
	suite.svc = svc

	merchant, err := svc.CreateMerchant(context.Background(), "merchant@example.com", "password123", testMerchantWallet)
	if err != nil {
		suite.T().Fatalf("Error creating test merchant: %v", err)
	}
	suite.merchantID = merchant.ID
}

func (suite *SettlementTestSuite) markPaid(invoiceID, txHash string) (*models.Invoice, error) {
	return suite.svc.MarkPaid(context.Background(), invoiceID, txHash, chain.CentsToTokenUnits(5000, 6), 7777)
}

func (suite *SettlementTestSuite) TestMarkPaidSetsSettlementFields() {
	invoice, err := createPayableInvoice(suite.svc, suite.merchantID, 5000)
	assert.NoError(suite.T(), err)

	settled, err := suite.markPaid(invoice.ID, txHashA)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, settled.Status)
	// a paid invoice always carries its settlement proof
	assert.Equal(suite.T(), txHashA, settled.TxHash)
	assert.False(suite.T(), settled.PaidAt.IsZero())
	assert.Equal(suite.T(), "500000000", settled.PaidAmount)
	assert.Equal(suite.T(), uint64(7777), settled.PaidBlockNumber)
}

func (suite *SettlementTestSuite) TestMarkPaidIdempotentReplay() {
	invoice, err := createPayableInvoice(suite.svc, suite.merchantID, 5000)
	assert.NoError(suite.T(), err)

	first, err := suite.markPaid(invoice.ID, txHashA)
	assert.NoError(suite.T(), err)

	// same (invoice, tx) again, e.g. two browser tabs polling
	replayed, err := suite.markPaid(invoice.ID, txHashA)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, replayed.Status)
	assert.Equal(suite.T(), first.TxHash, replayed.TxHash)
	assert.True(suite.T(), first.PaidAt.Time.Equal(replayed.PaidAt.Time))
}

func (suite *SettlementTestSuite) TestMarkPaidConflictKeepsStoredTx() {
	invoice, err := createPayableInvoice(suite.svc, suite.merchantID, 5000)
	assert.NoError(suite.T(), err)

	_, err = suite.markPaid(invoice.ID, txHashA)
	assert.NoError(suite.T(), err)

	_, err = suite.markPaid(invoice.ID, txHashB)
	assert.ErrorIs(suite.T(), err, common.ErrAlreadyPaidWithDifferentTx)

	stored, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), txHashA, stored.TxHash)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, stored.Status)
}

func (suite *SettlementTestSuite) TestMarkPaidRejectsDraft() {
	invoice, err := suite.svc.AddInvoice(context.Background(), suite.merchantID, 5000, common.NetworkBase, "", "", time.Time{})
	assert.NoError(suite.T(), err)

	_, err = suite.markPaid(invoice.ID, txHashA)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)

	stored, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusDraft, stored.Status)
	assert.Empty(suite.T(), stored.TxHash)
}

func (suite *SettlementTestSuite) TestMarkPaidMissingInvoice() {
	_, err := suite.markPaid("00000000-0000-0000-0000-000000000000", txHashA)
	assert.ErrorIs(suite.T(), err, common.ErrInvoiceNotFound)
}

func (suite *SettlementTestSuite) TestConcurrentSettlementsExactlyOneWins() {
	invoice, err := createPayableInvoice(suite.svc, suite.merchantID, 5000)
	assert.NoError(suite.T(), err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, hash := range []string{txHashA, txHashB} {
		wg.Add(1)
		go func(i int, hash string) {
			defer wg.Done()
			_, errs[i] = suite.markPaid(invoice.ID, hash)
		}(i, hash)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(suite.T(), err, common.ErrAlreadyPaidWithDifferentTx)
		}
	}
	assert.Equal(suite.T(), 1, winners)

	stored, err := suite.svc.FindInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, stored.Status)
	assert.Contains(suite.T(), []string{txHashA, txHashB}, stored.TxHash)
}

func (suite *SettlementTestSuite) TestViewedInvoiceStillSettles() {
	invoice, err := createPayableInvoice(suite.svc, suite.merchantID, 5000)
	assert.NoError(suite.T(), err)

	viewed, err := suite.svc.TrackView(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusViewed, viewed.Status)

	settled, err := suite.markPaid(invoice.ID, txHashA)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, settled.Status)
}

func TestSettlementTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementTestSuite))
}
