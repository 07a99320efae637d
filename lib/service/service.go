package service

import (
	"context"

	"github.com/anvahreal/ravgateway/chain"
	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/rabbitmq"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

// GatewayService bundles the collaborators every operation needs: the
// invoice store, one receipt client per supported network, and the
// fan-out used after settlement.
type GatewayService struct {
	Config         *Config
	DB             *bun.DB
	ChainConfig    *chain.Config
	ChainClients   map[string]chain.ReceiptClient
	Logger         *lecho.Logger
	InvoicePubSub  *Pubsub
	RabbitMQClient rabbitmq.Client
}

func (svc *GatewayService) ReceiptClientFor(network string) (chain.ReceiptClient, bool) {
	client, found := svc.ChainClients[network]
	return client, found
}

// SubscribePaidInvoices adapts the in-process pubsub to the rabbitmq
// publisher's subscription contract.
func (svc *GatewayService) SubscribePaidInvoices(ctx context.Context) (chan models.Invoice, func(), error) {
	ch := make(chan models.Invoice, 16)
	subID, err := svc.InvoicePubSub.Subscribe(common.TopicInvoicePaid, ch)
	if err != nil {
		return nil, nil, err
	}
	return ch, func() { svc.InvoicePubSub.Unsubscribe(subID, common.TopicInvoicePaid) }, nil
}
