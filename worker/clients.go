package worker

import (
	"encoding/json"

	"github.com/streadway/amqp"

	"text2phenotype.com/itn/rmq"
	"text2phenotype.com/itn/s3client"
)

// rmqTransactions is the queue side of the worker.
type rmqTransactions interface {
	publishResult(result ResultMessage, correlationID string) error
	ack(delivery *amqp.Delivery) error
	reject(delivery *amqp.Delivery, requeue bool) error
	deliveries() <-chan amqp.Delivery
	// closed returns the close notifications of the request and response
	// channels.
	closed() (req, resp <-chan *amqp.Error)
	close()
}

// s3Transactions moves document texts and tagging results.
type s3Transactions interface {
	getText(key string) ([]byte, error)
	saveResults(key, result string) error
	close()
}

type rmqClientWrapper struct {
	client *rmq.Client
}

func (wrapper *rmqClientWrapper) publishResult(result ResultMessage, correlationID string) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return wrapper.client.PublishResult(amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Body:          body,
	})
}

func (wrapper *rmqClientWrapper) ack(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

func (wrapper *rmqClientWrapper) reject(delivery *amqp.Delivery, requeue bool) error {
	return delivery.Reject(requeue)
}

func (wrapper *rmqClientWrapper) deliveries() <-chan amqp.Delivery {
	return wrapper.client.Deliveries
}

func (wrapper *rmqClientWrapper) closed() (req, resp <-chan *amqp.Error) {
	return wrapper.client.ReqChanErrors, wrapper.client.RespChanErrors
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.client.Close()
}

type s3ClientWrapper struct {
	client *s3client.Client
}

func (wrapper *s3ClientWrapper) getText(key string) ([]byte, error) {
	return wrapper.client.Download(key)
}

func (wrapper *s3ClientWrapper) saveResults(key, result string) error {
	_, err := wrapper.client.Upload(result, key)
	return err
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.client.Close()
}
