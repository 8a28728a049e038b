package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"text2phenotype.com/itn/logger"
	"text2phenotype.com/itn/pipeline"
	"text2phenotype.com/itn/rmq"
	"text2phenotype.com/itn/s3client"
	"text2phenotype.com/itn/tasks"
)

type Config struct {
	TaskMaxRetries int `envconfig:"ITN_RETRY_TASK_COUNT_MAX" default:"3"`
	// MaxInFlight bounds the documents tagged at once.
	MaxInFlight int `envconfig:"ITN_WORKER_MAX_IN_FLIGHT" default:"4"`
}

// Worker tags the documents announced on the task queue with the grammar
// each message asks for.
type Worker struct {
	config    Config
	router    *pipeline.Router
	redis     redisTransactions
	s3        s3Transactions
	rmq       rmqTransactions
	itnLogger *zerolog.Logger
	inFlight  chan struct{}
	wg        sync.WaitGroup
}

func New(router *pipeline.Router) (*Worker, error) {
	itnLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		itnLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}
	if len(router.Keys()) == 0 {
		return nil, errors.New("worker needs at least one grammar")
	}
	worker := newWorker(config, router, &itnLogger)

	rmqClient, err := rmq.NewClient()
	if err != nil {
		return nil, fmt.Errorf("rmq: %w", err)
	}
	s3Client, err := s3client.New()
	if err != nil {
		rmqClient.Close()
		return nil, fmt.Errorf("s3: %w", err)
	}
	tasksClient, err := tasks.NewClient()
	if err != nil {
		rmqClient.Close()
		s3Client.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.s3 = &s3ClientWrapper{s3Client}
	worker.redis = &redisClientWrapper{tasksClient}
	return worker, nil
}

func newWorker(config Config, router *pipeline.Router, itnLogger *zerolog.Logger) *Worker {
	if config.MaxInFlight < 1 {
		config.MaxInFlight = 1
	}
	keys := make([]string, 0)
	for _, k := range router.Keys() {
		keys = append(keys, k.String())
	}
	itnLogger.Info().Strs("grammars", keys).Int("max_in_flight", config.MaxInFlight).Msg("Worker configured")
	return &Worker{
		config:    config,
		router:    router,
		itnLogger: itnLogger,
		inFlight:  make(chan struct{}, config.MaxInFlight),
	}
}

// Run consumes deliveries until ctx is done or the RMQ connection cannot be
// restored. Documents in flight are finished before it returns.
func (worker *Worker) Run(ctx context.Context) error {
	defer worker.Close()
	defer worker.wg.Wait()
	for {
		reqClosed, respClosed := worker.rmq.closed()
		select {
		case <-ctx.Done():
			worker.itnLogger.Info().Msg("Stopping worker")
			return ctx.Err()
		case delivery, ok := <-worker.rmq.deliveries():
			if !ok {
				if err := worker.reconnectRMQ("deliveries channel closed", nil); err != nil {
					return err
				}
				continue
			}
			worker.dispatch(ctx, delivery)
		case rmqErr := <-reqClosed:
			if err := worker.reconnectRMQ("request channel closed", rmqErr); err != nil {
				return err
			}
		case rmqErr := <-respClosed:
			if err := worker.reconnectRMQ("response channel closed", rmqErr); err != nil {
				return err
			}
		}
	}
}

// dispatch tags delivery in the background once an in-flight slot is free.
func (worker *Worker) dispatch(ctx context.Context, delivery amqp.Delivery) {
	select {
	case worker.inFlight <- struct{}{}:
	default:
		select {
		case worker.inFlight <- struct{}{}:
		case <-ctx.Done():
			_ = worker.rmq.reject(&delivery, true)
			return
		}
	}
	worker.wg.Add(1)
	go func() {
		defer worker.wg.Done()
		defer func() { <-worker.inFlight }()
		worker.processMessage(&delivery)
	}()
}

func (worker *Worker) reconnectRMQ(reason string, rmqErr *amqp.Error) error {
	event := worker.itnLogger.Error().Str("reason", reason)
	if rmqErr != nil {
		event = event.Err(rmqErr)
	}
	event.Msg("RMQ connection lost, reconnecting")
	rmqClient, err := rmq.NewClient()
	if err != nil {
		return fmt.Errorf("rmq reconnect after %s: %w", reason, err)
	}
	worker.rmq.close()
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.itnLogger.Info().Msg("Reconnected to RMQ")
	return nil
}

func (worker *Worker) Close() {
	worker.redis.close()
	worker.s3.close()
	worker.rmq.close()
}
