package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anvahreal/ravgateway/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

const (
	contentTypeJSON = "application/json"
)

// SubscribeToPaidInvoicesFunc hands the publisher a channel of freshly
// settled invoices, typically backed by the service pubsub.
type SubscribeToPaidInvoicesFunc = func(ctx context.Context) (chan models.Invoice, func(), error)

type Client interface {
	StartPublishInvoices(ctx context.Context, invoicesSubscribeFunc SubscribeToPaidInvoicesFunc) error
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	paidExchange string
}

type ClientOption = func(client *DefaultClient)

func WithPaidExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.paidExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,
		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),
		paidExchange: "ravgateway_invoice_paid",
	}
	for _, opt := range options {
		opt(client)
	}

	err := client.amqpClient.ExchangeDeclare(
		client.paidExchange,
		// topic is a less strict version of direct
		"topic",
		// durable
		true,
		// auto-deleted
		false,
		// internal
		false,
		// no-wait
		false,
		// arguments
		nil,
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

// StartPublishInvoices forwards every settled invoice to the paid exchange,
// routed as invoice.paid.<network>. Consumers (accounting, email senders)
// bind what they need.
func (client *DefaultClient) StartPublishInvoices(ctx context.Context, invoicesSubscribeFunc SubscribeToPaidInvoicesFunc) error {
	invoiceChan, unsubscribe, err := invoicesSubscribeFunc(ctx)
	if err != nil {
		return err
	}
	defer unsubscribe()

	client.logger.Infof("Starting rabbitmq publisher on exchange %s", client.paidExchange)
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case invoice := <-invoiceChan:
			err := client.publishToPaidExchange(ctx, invoice)
			if err != nil {
				client.logger.Error(err)
				sentry.CaptureException(err)
			}
		}
	}
}

func (client *DefaultClient) publishToPaidExchange(ctx context.Context, invoice models.Invoice) error {
	payload := new(bytes.Buffer)
	if err := json.NewEncoder(payload).Encode(invoice); err != nil {
		return err
	}

	key := fmt.Sprintf("invoice.paid.%s", invoice.Network)
	client.logger.Debugf("Publishing invoice %s with routing key %s", invoice.ID, key)

	return client.amqpClient.PublishWithContext(ctx,
		client.paidExchange,
		key,
		// mandatory
		false,
		// immediate
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
}
