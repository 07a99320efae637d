package rabbitmq_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeAMQPClient struct {
	declaredExchanges []string
	publications      chan published
}

func newFakeAMQPClient() *fakeAMQPClient {
	return &fakeAMQPClient{publications: make(chan published, 10)}
}

func (f *fakeAMQPClient) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.publications <- published{exchange: exchange, key: key, msg: msg}
	return nil
}

func (f *fakeAMQPClient) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declaredExchanges = append(f.declaredExchanges, name)
	return nil
}

func (f *fakeAMQPClient) Close() error { return nil }

func TestNewClientDeclaresPaidExchange(t *testing.T) {
	amqpClient := newFakeAMQPClient()

	_, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithPaidExchange("test_exchange"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"test_exchange"}, amqpClient.declaredExchanges)
}

func TestStartPublishInvoices(t *testing.T) {
	amqpClient := newFakeAMQPClient()
	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithPaidExchange("test_exchange"))
	assert.NoError(t, err)

	invoice := models.Invoice{
		ID:      "11111111-0000-0000-0000-000000000001",
		Network: "base",
		Status:  "paid",
		TxHash:  "0xabc",
	}

	invoiceChan := make(chan models.Invoice, 1)
	invoiceChan <- invoice
	subscribe := func(ctx context.Context) (chan models.Invoice, func(), error) {
		return invoiceChan, func() {}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.StartPublishInvoices(ctx, subscribe)
	}()

	select {
	case p := <-amqpClient.publications:
		assert.Equal(t, "test_exchange", p.exchange)
		assert.Equal(t, "invoice.paid.base", p.key)

		var got models.Invoice
		assert.NoError(t, json.Unmarshal(p.msg.Body, &got))
		assert.Equal(t, invoice.ID, got.ID)
		assert.Equal(t, invoice.TxHash, got.TxHash)
	case <-time.After(time.Second):
		t.Fatal("no invoice published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
