package integration_tests

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/anvahreal/ravgateway/chain"
	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/lib/logging"
	"github.com/anvahreal/ravgateway/lib/service"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	testMerchantWallet = "0x1111111111111111111111111111111111111111"
	testPayerAddress   = "0x2222222222222222222222222222222222222222"
)

// gatewayTestServiceInit builds a service against an in-memory database.
// Each suite gets its own named database so table creation never collides.
func gatewayTestServiceInit(dbName string) (*service.GatewayService, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName))
	if err != nil {
		return nil, err
	}
	// a single connection keeps the shared in-memory db alive and
	// serializes writes the way the production pool's row locks would
	sqldb.SetMaxOpenConns(1)
	dbConn := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Merchant)(nil),
		(*models.APIKey)(nil),
		(*models.Invoice)(nil),
		(*models.PendingPayment)(nil),
	} {
		if _, err := dbConn.NewCreateTable().Model(model).Exec(ctx); err != nil {
			return nil, err
		}
	}
	// mirrors the unique index the constraints migration adds on postgres,
	// needed for the ON CONFLICT dedup of queued payment hashes
	if _, err := dbConn.NewCreateIndex().
		Model((*models.PendingPayment)(nil)).
		Index("pending_payments_invoice_tx_idx").
		Unique().
		Column("invoice_id", "tx_hash").
		Exec(ctx); err != nil {
		return nil, err
	}

	chainCfg, err := chain.LoadConfig()
	if err != nil {
		return nil, err
	}

	svc := &service.GatewayService{
		Config: &service.Config{
			JWTSecret:             []byte("SECRET"),
			JWTAccessTokenExpiry:  3600,
			DefaultInvoiceDueDays: 30,
			PendingCheckInterval:  30,
			PendingMaxAttempts:    40,
		},
		DB:            dbConn,
		ChainConfig:   chainCfg,
		ChainClients:  map[string]chain.ReceiptClient{},
		Logger:        logging.Logger(""),
		InvoicePubSub: service.NewPubsub(),
	}
	return svc, nil
}

// fakeReceiptClient stands in for a chain rpc endpoint, returning one
// canned receipt or error and counting how often it was asked.
type fakeReceiptClient struct {
	receipt *types.Receipt
	err     error
	network chain.Network
	calls   int
}

func (f *fakeReceiptClient) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	f.calls++
	return f.receipt, f.err
}

func (f *fakeReceiptClient) Network() chain.Network { return f.network }

// transferReceipt builds a successful receipt carrying one stablecoin
// Transfer of amount smallest units to the merchant wallet.
func transferReceipt(network chain.Network, amount *big.Int) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(7777),
		Logs: []*types.Log{{
			Address: network.TokenContract,
			Topics: []ethcommon.Hash{
				crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
				ethcommon.BytesToHash(ethcommon.HexToAddress(testPayerAddress).Bytes()),
				ethcommon.BytesToHash(ethcommon.HexToAddress(testMerchantWallet).Bytes()),
			},
			Data: ethcommon.LeftPadBytes(amount.Bytes(), 32),
		}},
	}
}

// createPayableInvoice runs the real issue + send path so the invoice sits
// in the sent state with the merchant wallet snapshotted.
func createPayableInvoice(svc *service.GatewayService, merchantID int64, amountCents int64) (*models.Invoice, error) {
	ctx := context.Background()
	invoice, err := svc.AddInvoice(ctx, merchantID, amountCents, common.NetworkBase, "test invoice", "", time.Time{})
	if err != nil {
		return nil, err
	}
	return svc.SendInvoice(ctx, merchantID, invoice.ID)
}
