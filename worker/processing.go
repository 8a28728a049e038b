package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"text2phenotype.com/itn/pipeline"
	"text2phenotype.com/itn/tasks"
	"text2phenotype.com/itn/utils"
)

// Message asks for one document to be tagged. Empty language and direction
// select the default grammar; missing fields fall back to the stored task.
type Message struct {
	DocID       string `json:"doc_id"`
	TextFileKey string `json:"text_file_key"`
	Language    string `json:"language,omitempty"`
	Direction   string `json:"direction,omitempty"`
}

// ResultMessage is published once a document reaches a final state.
type ResultMessage struct {
	DocID          string           `json:"doc_id"`
	Language       string           `json:"language,omitempty"`
	Direction      string           `json:"direction,omitempty"`
	Status         tasks.TaskStatus `json:"status"`
	ResultsFileKey string           `json:"results_file_key,omitempty"`
	Sender         string           `json:"sender"`
}

type Task struct {
	ctx      context.Context
	delivery *amqp.Delivery
	docTask  *tasks.DocumentTask
	message  *Message
	key      pipeline.Key
	ppln     pipeline.Pipeline
	// routeErr is set when no loaded grammar matches the message.
	routeErr  error
	itnLogger *zerolog.Logger
}

var errPipelineFailed = errors.New("pipeline failed")

// resultsFileKey is processed/documents/<doc>/<doc>.<direction>_results.json.
func resultsFileKey(task *Task) string {
	return path.Join(
		"processed",
		"documents",
		task.message.DocID,
		fmt.Sprintf("%s.%s_results.json", task.message.DocID, task.key.Direction),
	)
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	deliveryLogger := worker.itnLogger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(delivery)
	if err != nil {
		deliveryLogger.Err(err).Str("body", string(delivery.Body)).Msg("Failed to create task for delivery")
		worker.giveBack(delivery, &deliveryLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.giveBack(delivery, task.itnLogger)
		return
	}
	if err = worker.rmq.publishResult(worker.resultMessage(task), delivery.CorrelationId); err != nil {
		task.itnLogger.Err(err).Msg("Could not publish result")
		worker.giveBack(delivery, task.itnLogger)
		return
	}
	if err = worker.rmq.ack(delivery); err != nil {
		task.itnLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.itnLogger.Info().Str("status", string(task.docTask.Status)).Msg("Finished processing RMQ message")
}

// giveBack requeues a delivery that failed for the first time and drops it
// after that.
func (worker *Worker) giveBack(delivery *amqp.Delivery, log *zerolog.Logger) {
	requeue := !delivery.Redelivered
	if err := worker.rmq.reject(delivery, requeue); err != nil {
		log.Err(err).Bool("requeue", requeue).Msg("Failed to reject delivery")
		return
	}
	log.Info().Bool("requeue", requeue).Msg("Rejected delivery")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if message.DocID == "" {
		return nil, errors.New("message has no doc_id")
	}
	ctx := context.Background()
	docTask, err := worker.redis.getDocumentTask(ctx, message.DocID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document task: %w", err)
	}
	if message.TextFileKey == "" {
		message.TextFileKey = docTask.TextFileKey
	}
	if message.Language == "" {
		message.Language = docTask.Language
	}
	if message.Direction == "" {
		message.Direction = docTask.Direction
	}

	task := Task{
		ctx:      ctx,
		delivery: delivery,
		docTask:  docTask,
		message:  &message,
	}
	task.ppln, task.key, task.routeErr = worker.router.Route(message.Language, message.Direction)
	taskLogger := worker.itnLogger.With().
		Str("tid", message.DocID).
		Str("grammar", task.key.String()).
		Logger()
	task.itnLogger = &taskLogger
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.itnLogger.Err(err).Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if task.routeErr != nil {
		task.itnLogger.Err(task.routeErr).Msg("No grammar for document, marking it as failed")
		return worker.redis.onTaskUnsupported(task, task.routeErr)
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.itnLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update document task: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.itnLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return errPipelineFailed
	}
	task.itnLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.itnLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.itnLogger.Info().Msgf("Tagging document, attempt # %d", task.docTask.Attempts)
	if task.message.TextFileKey == "" {
		return errors.New("document has no text file key")
	}
	data, err := worker.s3.getText(task.message.TextFileKey)
	if err != nil {
		task.itnLogger.Err(err).Caller().Msg("Could not fetch text data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	result, ok := <-task.ppln(pipeline.Request{
		Tid:  task.message.DocID,
		Text: string(data),
	})
	if !ok {
		return errors.New("pipeline channel was closed before returning anything")
	}
	task.itnLogger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResults(resultsFileKey(task), result); err != nil {
		task.itnLogger.Err(err).Caller().Msg("Could not save results to s3")
		return fmt.Errorf("failed to save results to s3: %w", err)
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskLogger := task.itnLogger.With().Str("status", string(task.docTask.Status)).Logger()
	if task.docTask.Status.Complete() {
		taskLogger.Info().Msg("Task is already complete, sending result again.")
		return false, nil
	}
	if task.docTask.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("ITN task has exceeded retries. Marking it as failed.")
		err := worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}

func (worker *Worker) resultMessage(task *Task) ResultMessage {
	msg := ResultMessage{
		DocID:     task.message.DocID,
		Language:  task.message.Language,
		Direction: task.message.Direction,
		Status:    task.docTask.Status,
		Sender:    "itn",
	}
	if task.routeErr == nil {
		msg.Language = task.key.Language
		msg.Direction = string(task.key.Direction)
	}
	if msg.Status == tasks.TaskStatusCompletedSuccess {
		msg.ResultsFileKey = task.docTask.ResultsFileKey
	}
	return msg
}
