package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"text2phenotype.com/itn/logger"
)

type Config struct {
	Host                    string `envconfig:"ITN_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"ITN_RMQ_PORT" default:"5672"`
	Username                string `envconfig:"ITN_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"ITN_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"ITN_RMQ_EXCHANGE" default:"itn-exchange"`
	MaxParallelRequestCount int    `envconfig:"ITN_RMQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TaskQueue               string `envconfig:"ITN_RMQ_TASK_QUEUE" default:"itn-tasks"`
	ResultQueue             string `envconfig:"ITN_RMQ_RESULT_QUEUE" default:"itn-results"`
}

// Client consumes tagging tasks on one connection and publishes results on
// another.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	itnLogger      zerolog.Logger
}

func ReadEnvironment() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

func NewClient() (*Client, error) {
	itnLogger := logger.NewLogger("RMQ client")
	config, err := ReadEnvironment()
	if err != nil {
		itnLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := config.URL()
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}

	for _, queue := range []string{config.TaskQueue, config.ResultQueue} {
		if err = declare(reqChannel, config.Exchange, queue); err != nil {
			return nil, err
		}
	}
	if err = reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		config.TaskQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	itnLogger.Info().
		Str("task_queue", config.TaskQueue).
		Str("result_queue", config.ResultQueue).
		Msg("Consuming tagging tasks")

	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		itnLogger:      itnLogger,
	}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}
	if exchange == "" {
		return nil
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", queue, err)
	}
	return nil
}

// PublishResult sends msg to the result queue.
func (c *Client) PublishResult(msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ResultQueue,
		false, // mandatory
		false, // immediate
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func (config Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
